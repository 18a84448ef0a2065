package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/admission/internal/chatbot"
)

const (
	DefaultTTL     = 24 * time.Hour
	DefaultLockTTL = 2 * time.Minute
)

var (
	ErrNotFound = errors.New("chat session not found")
	// ErrBusy is returned when another turn holds the session lock past the wait limit.
	ErrBusy = errors.New("chat session is busy")
)

// Store keeps chat sessions keyed by id. Lock serialises turns on one session.
type Store interface {
	Get(ctx context.Context, id string) (*chatbot.Session, error)
	Save(ctx context.Context, s *chatbot.Session) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
