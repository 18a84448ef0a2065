package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/admission/internal/models"
)

// ChildRepository stores records owned by a university (campuses, departments, programs, faculty).
type ChildRepository[T any] interface {
	Create(ctx context.Context, doc *T) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	ListByUniversity(ctx context.Context, universityID string) ([]T, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type childRepo[T any] struct {
	col *mongo.Collection
}

func newChildRepo[T any](db *mongo.Database, name string) ChildRepository[T] {
	return &childRepo[T]{col: db.Collection(name)}
}

func NewCampusRepo(db *mongo.Database) ChildRepository[models.Campus] {
	return newChildRepo[models.Campus](db, ColCampuses)
}

func NewDepartmentRepo(db *mongo.Database) ChildRepository[models.Department] {
	return newChildRepo[models.Department](db, ColDepartments)
}

func NewProgramRepo(db *mongo.Database) ChildRepository[models.Program] {
	return newChildRepo[models.Program](db, ColPrograms)
}

func NewFacultyRepo(db *mongo.Database) ChildRepository[models.Faculty] {
	return newChildRepo[models.Faculty](db, ColFaculty)
}

func (r *childRepo[T]) Create(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, mapWriteErr(err)
	}
	return insertedID(res), nil
}

func (r *childRepo[T]) GetByID(ctx context.Context, id primitive.ObjectID) (*T, error) {
	return findByID[T](ctx, r.col, id)
}

func (r *childRepo[T]) ListByUniversity(ctx context.Context, universityID string) ([]T, error) {
	return findAll[T](ctx, r.col, bson.M{"universityId": universityID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Update applies a partial $set and stamps updatedAt.
func (r *childRepo[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	return updateByID(ctx, r.col, id, set)
}

func (r *childRepo[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.col, id)
}

func (r *childRepo[T]) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}
