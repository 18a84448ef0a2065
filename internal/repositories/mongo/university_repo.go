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

type UniversityRepository interface {
	Create(ctx context.Context, u *models.University) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.University, error)
	GetByEmail(ctx context.Context, email string) (*models.University, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context, search string, p utils.Page) ([]models.University, int64, error)
	Count(ctx context.Context) (int64, error)
}

type universityRepo struct {
	col *mongo.Collection
}

func NewUniversityRepo(db *mongo.Database) UniversityRepository {
	return &universityRepo{col: db.Collection(ColUniversities)}
}

func (r *universityRepo) Create(ctx context.Context, u *models.University) (primitive.ObjectID, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return primitive.NilObjectID, mapWriteErr(err)
	}
	u.ID = insertedID(res)
	return u.ID, nil
}

func (r *universityRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.University, error) {
	return findByID[models.University](ctx, r.col, id)
}

func (r *universityRepo) GetByEmail(ctx context.Context, email string) (*models.University, error) {
	var u models.University
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *universityRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *universityRepo) List(ctx context.Context, search string, p utils.Page) ([]models.University, int64, error) {
	filter := searchFilter(search, "name", "contactPerson", "email", "address")
	return findPage[models.University](ctx, r.col, filter, p,
		options.Find().SetProjection(bson.M{"password": 0}))
}

func (r *universityRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
