// Package cache stores the read-mostly chatbot reference data (question list,
// general material, extracted file text) between Mongo reads.
package cache

import (
	"context"
	"time"
)

// Keys for the read-mostly chatbot reference data.
const (
	KeyQuestions = "chatbot:questions"
	KeyMaterial  = "chatbot:material"
	KeyFilesText = "chatbot:files:text"
)

// ReferenceTTL bounds staleness when a write on another instance missed invalidation.
const ReferenceTTL = 10 * time.Minute

// Cache is a JSON value cache. A miss is (false, nil); an error means the
// backend failed and the caller should fall through to the source.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
