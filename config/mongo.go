package config

import (
	"context"
	"crypto/tls"
	"errors"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultMongoDB = "admission_office"

var MongoClient *mongo.Client

// MongoDB returns the admission database named by MONGO_DB.
func MongoDB() *mongo.Database {
	return MongoClient.Database(env("MONGO_DB", DefaultMongoDB))
}

func mongoClientOptions(uri string) *options.ClientOptions {
	opts := options.Client().ApplyURI(uri).
		SetAppName(env("MONGO_APP_NAME", "admission-office")).
		SetServerSelectionTimeout(envDuration("MONGO_SELECT_TIMEOUT", 20*time.Second)).
		SetConnectTimeout(15 * time.Second).
		SetMaxPoolSize(uint64(envInt("MONGO_MAX_POOL", 20))).
		SetMinPoolSize(1)

	// Atlas clusters reject some Go 1.24 TLS 1.3 handshakes
	if envBool("MONGO_FORCE_TLS12") {
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: envBool("MONGO_INSECURE_TLS"),
			MinVersion:         tls.VersionTLS12,
			MaxVersion:         tls.VersionTLS12,
		})
	}
	return opts
}

// InitMongo connects to MONGO_URI and pings it. Mongo is required.
func InitMongo(ctx context.Context) error {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return errors.New("MONGO_URI environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, mongoClientOptions(uri))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}

	MongoClient = client
	return nil
}
