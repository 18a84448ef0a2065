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

type AdminRepository interface {
	Create(ctx context.Context, a *models.Admin) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	List(ctx context.Context) ([]models.Admin, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

type adminRepo struct {
	col *mongo.Collection
}

func NewAdminRepo(db *mongo.Database) AdminRepository {
	return &adminRepo{col: db.Collection(ColAdmins)}
}

var noPassword = bson.M{"password": 0}

func (r *adminRepo) Create(ctx context.Context, a *models.Admin) (primitive.ObjectID, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, mapWriteErr(err)
	}
	a.ID = insertedID(res)
	return a.ID, nil
}

func (r *adminRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return findByID[models.Admin](ctx, r.col, id, options.FindOne().SetProjection(noPassword))
}

// GetByEmail includes the password hash; it backs login only.
func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *adminRepo) List(ctx context.Context) ([]models.Admin, error) {
	return findAll[models.Admin](ctx, r.col, bson.M{}, options.Find().SetProjection(noPassword))
}

func (r *adminRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return updateByID(ctx, r.col, id, set)
}

func (r *adminRepo) Delete(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var a models.Admin
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}, options.FindOneAndDelete().SetProjection(noPassword)).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *adminRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

type SubAdminRepository interface {
	Create(ctx context.Context, s *models.SubAdmin) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SubAdmin, error)
	List(ctx context.Context) ([]models.SubAdmin, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.SubAdmin, error)
	Count(ctx context.Context) (int64, error)
}

type subAdminRepo struct {
	col *mongo.Collection
}

func NewSubAdminRepo(db *mongo.Database) SubAdminRepository {
	return &subAdminRepo{col: db.Collection(ColSubAdmins)}
}

func (r *subAdminRepo) Create(ctx context.Context, s *models.SubAdmin) (primitive.ObjectID, error) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return primitive.NilObjectID, err
	}
	s.ID = insertedID(res)
	return s.ID, nil
}

func (r *subAdminRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SubAdmin, error) {
	return findByID[models.SubAdmin](ctx, r.col, id)
}

func (r *subAdminRepo) List(ctx context.Context) ([]models.SubAdmin, error) {
	return findAll[models.SubAdmin](ctx, r.col, bson.M{})
}

func (r *subAdminRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	return updateByID(ctx, r.col, id, set)
}

func (r *subAdminRepo) Delete(ctx context.Context, id primitive.ObjectID) (*models.SubAdmin, error) {
	var s models.SubAdmin
	err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *subAdminRepo) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
