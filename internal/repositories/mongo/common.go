package mongo

import (
	"context"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yoockh/admission/internal/utils"
)

// Collection names of the admission_office database.
const (
	ColStudents     = "students"
	ColUniversities = "universities"
	ColCampuses     = "campuses"
	ColDepartments  = "departments"
	ColPrograms     = "programs"
	ColFaculty      = "faculty"
	ColAdmins       = "admins"
	ColSubAdmins    = "subadmins"
	ColQuestions    = "chatbot_questions"
	ColMaterial     = "chatbot_general_material"
	ColFiles        = "chatbot_files"
)

// ParseID converts a hex id, mapping malformed input to utils.ErrInvalidID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, utils.ErrInvalidID
	}
	return oid, nil
}

// searchFilter matches q literally and case-insensitively against any of fields.
func searchFilter(q string, fields ...string) bson.M {
	q = strings.TrimSpace(q)
	if q == "" {
		return bson.M{}
	}
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: rx})
	}
	return bson.M{"$or": or}
}

func mapWriteErr(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return utils.ErrDuplicate
	}
	return err
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid
	}
	return primitive.NilObjectID
}

// findPage runs a counted, paginated find.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, p utils.Page, opts ...*options.FindOptions) ([]T, int64, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.MergeFindOptions(append(opts, options.Find().SetSkip(p.Skip()).SetLimit(p.Limit()))...)
	cur, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findByID[T any](ctx context.Context, col *mongo.Collection, id primitive.ObjectID, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	err := col.FindOne(ctx, bson.M{"_id": id}, opts...).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func updateByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, set bson.M) error {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}
