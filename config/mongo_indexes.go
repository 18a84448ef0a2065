package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongorepo "github.com/yoockh/admission/internal/repositories/mongo"
)

// mongoIndexes lists the indexes each collection needs.
func mongoIndexes() map[string][]mongo.IndexModel {
	byUniversity := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "universityId", Value: 1}},
		Options: options.Index().SetName("by_university"),
	}}

	return map[string][]mongo.IndexModel{
		// interview records have no password and may repeat an email; accounts may not
		mongorepo.ColStudents: {
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().
					SetName("uniq_account_email").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"password": bson.M{"$exists": true}}),
			},
			{
				Keys:    bson.D{{Key: "created_at", Value: -1}},
				Options: options.Index().SetName("by_created"),
			},
		},
		mongorepo.ColUniversities: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		}},
		mongorepo.ColAdmins: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		}},
		mongorepo.ColCampuses:    byUniversity,
		mongorepo.ColDepartments: byUniversity,
		mongorepo.ColPrograms:    byUniversity,
		mongorepo.ColFaculty:     byUniversity,
		mongorepo.ColQuestions: {{
			Keys:    bson.D{{Key: "order", Value: 1}},
			Options: options.Index().SetName("by_order"),
		}},
		mongorepo.ColFiles: {{
			Keys:    bson.D{{Key: "uploadedAt", Value: -1}},
			Options: options.Index().SetName("by_uploaded"),
		}},
	}
}

func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for col, idx := range mongoIndexes() {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", col, err)
		}
	}
	return nil
}
