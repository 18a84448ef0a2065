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

type StudentRepository interface {
	Create(ctx context.Context, s *models.Student) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error)
	// GetAccountByEmail only matches students that signed up with a password.
	GetAccountByEmail(ctx context.Context, email string) (*models.Student, error)
	List(ctx context.Context, search string, p utils.Page) ([]models.Student, int64, error)
	ListRegistered(ctx context.Context, search string, p utils.Page) ([]models.Student, int64, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (modified bool, err error)
	SetDocument(ctx context.Context, id primitive.ObjectID, fileType, path string) error
	SaveRecommendation(ctx context.Context, id primitive.ObjectID, rec *models.RecommendationRecord) error
	Count(ctx context.Context) (int64, error)

	// interview persistence
	SaveInterview(ctx context.Context, fields map[string]string, transcript []models.TranscriptEntry) (string, error)
	AttachRecommendation(ctx context.Context, studentID, recommendation string) error
}

type studentRepo struct {
	col *mongo.Collection
}

func NewStudentRepo(db *mongo.Database) StudentRepository {
	return &studentRepo{col: db.Collection(ColStudents)}
}

func (r *studentRepo) Create(ctx context.Context, s *models.Student) (primitive.ObjectID, error) {
	if s.CreatedAt == nil {
		now := time.Now().UTC()
		s.CreatedAt = &now
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return primitive.NilObjectID, mapWriteErr(err)
	}
	s.ID = insertedID(res)
	return s.ID, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Student, error) {
	return findByID[models.Student](ctx, r.col, id)
}

func (r *studentRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Student, error) {
	var s models.Student
	err := r.col.FindOne(ctx, bson.M{"email": email, "password": bson.M{"$exists": true}}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *studentRepo) List(ctx context.Context, search string, p utils.Page) ([]models.Student, int64, error) {
	filter := searchFilter(search, "full_name", "email", "program_choice")
	return findPage[models.Student](ctx, r.col, filter, p,
		options.Find().SetProjection(bson.M{"password": 0}))
}

func (r *studentRepo) ListRegistered(ctx context.Context, search string, p utils.Page) ([]models.Student, int64, error) {
	filter := searchFilter(search, "full_name", "email", "applied_program", "applied_university", "nationality")
	return findPage[models.Student](ctx, r.col, filter, p,
		options.Find().SetProjection(bson.M{"password": 0, "full_interview": 0}))
}

func (r *studentRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	set["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, utils.ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *studentRepo) SetDocument(ctx context.Context, id primitive.ObjectID, fileType, path string) error {
	return updateByID(ctx, r.col, id, bson.M{"documents." + fileType: path})
}

func (r *studentRepo) SaveRecommendation(ctx context.Context, id primitive.ObjectID, rec *models.RecommendationRecord) error {
	return updateByID(ctx, r.col, id, bson.M{"recommendation": rec})
}

func (r *studentRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// SaveInterview inserts a finished interview as a new student document.
func (r *studentRepo) SaveInterview(ctx context.Context, fields map[string]string, transcript []models.TranscriptEntry) (string, error) {
	doc := make(bson.M, len(fields)+2)
	for k, v := range fields {
		doc[k] = v
	}
	if transcript == nil {
		transcript = []models.TranscriptEntry{}
	}
	doc["full_interview"] = transcript
	doc["created_at"] = time.Now().UTC()

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", mapWriteErr(err)
	}
	return insertedID(res).Hex(), nil
}

func (r *studentRepo) AttachRecommendation(ctx context.Context, studentID, recommendation string) error {
	id, err := ParseID(studentID)
	if err != nil {
		return err
	}
	return updateByID(ctx, r.col, id, bson.M{"recommendations": recommendation})
}
