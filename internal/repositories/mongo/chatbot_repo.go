package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

type QuestionRepository interface {
	List(ctx context.Context) ([]models.InterviewQuestion, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, q *models.InterviewQuestion) (primitive.ObjectID, error)
	InsertMany(ctx context.Context, qs []models.InterviewQuestion) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Reorder sets order = position for every id in ids.
	Reorder(ctx context.Context, ids []primitive.ObjectID) error
}

type questionRepo struct {
	col *mongo.Collection
}

func NewQuestionRepo(db *mongo.Database) QuestionRepository {
	return &questionRepo{col: db.Collection(ColQuestions)}
}

func (r *questionRepo) List(ctx context.Context) ([]models.InterviewQuestion, error) {
	return findAll[models.InterviewQuestion](ctx, r.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}))
}

func (r *questionRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *questionRepo) Create(ctx context.Context, q *models.InterviewQuestion) (primitive.ObjectID, error) {
	res, err := r.col.InsertOne(ctx, q)
	if err != nil {
		return primitive.NilObjectID, err
	}
	q.ID = insertedID(res)
	return q.ID, nil
}

func (r *questionRepo) InsertMany(ctx context.Context, qs []models.InterviewQuestion) error {
	if len(qs) == 0 {
		return nil
	}
	docs := make([]any, len(qs))
	for i := range qs {
		docs[i] = qs[i]
	}
	_, err := r.col.InsertMany(ctx, docs)
	return err
}

func (r *questionRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	return updateByID(ctx, r.col, id, set)
}

func (r *questionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id)
}

func (r *questionRepo) Reorder(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, len(ids))
	for i, id := range ids {
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"order": i}})
	}
	_, err := r.col.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// MaterialRepository holds the single general-admission material document.
type MaterialRepository interface {
	Get(ctx context.Context) (*models.GeneralMaterial, error)
	Upsert(ctx context.Context, content string) error
	// InsertIfMissing creates the document only when none exists and returns the stored one.
	InsertIfMissing(ctx context.Context, content string) (*models.GeneralMaterial, error)
}

type materialRepo struct {
	col *mongo.Collection
}

func NewMaterialRepo(db *mongo.Database) MaterialRepository {
	return &materialRepo{col: db.Collection(ColMaterial)}
}

func (r *materialRepo) Get(ctx context.Context) (*models.GeneralMaterial, error) {
	var m models.GeneralMaterial
	err := r.col.FindOne(ctx, bson.M{}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &m, err
}

func (r *materialRepo) Upsert(ctx context.Context, content string) error {
	_, err := r.col.UpdateOne(ctx, bson.M{},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *materialRepo) InsertIfMissing(ctx context.Context, content string) (*models.GeneralMaterial, error) {
	var m models.GeneralMaterial
	err := r.col.FindOneAndUpdate(ctx, bson.M{},
		bson.M{"$setOnInsert": bson.M{"content": content, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&m)
	return &m, err
}

type FileRepository interface {
	Create(ctx context.Context, f *models.ChatbotFile) (primitive.ObjectID, error)
	// List omits file bytes.
	List(ctx context.Context) ([]models.ChatbotFile, error)
	ListWithData(ctx context.Context) ([]models.ChatbotFile, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatbotFile, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type fileRepo struct {
	col *mongo.Collection
}

func NewFileRepo(db *mongo.Database) FileRepository {
	return &fileRepo{col: db.Collection(ColFiles)}
}

func (r *fileRepo) Create(ctx context.Context, f *models.ChatbotFile) (primitive.ObjectID, error) {
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, f)
	if err != nil {
		return primitive.NilObjectID, err
	}
	f.ID = insertedID(res)
	return f.ID, nil
}

func (r *fileRepo) List(ctx context.Context) ([]models.ChatbotFile, error) {
	return findAll[models.ChatbotFile](ctx, r.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}}).SetProjection(bson.M{"data": 0}))
}

func (r *fileRepo) ListWithData(ctx context.Context) ([]models.ChatbotFile, error) {
	return findAll[models.ChatbotFile](ctx, r.col, bson.M{},
		options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}}))
}

func (r *fileRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ChatbotFile, error) {
	return findByID[models.ChatbotFile](ctx, r.col, id)
}

func (r *fileRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id)
}
