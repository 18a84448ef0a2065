package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yoockh/admission/internal/models"
	"github.com/yoockh/admission/internal/utils"
)

// ChatLogRepo stores chat turns. Insert is idempotent on row id so a replayed
// stream batch does not fail on rows that were already written.
type ChatLogRepo interface {
	Insert(ctx context.Context, logs ...*models.ChatLog) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatLog, error)
	LatestN(ctx context.Context, n int) ([]models.ChatLog, error)
	GetByID(ctx context.Context, id string) (*models.ChatLog, error)
}

type chatLogRepo struct {
	db *gorm.DB
}

func NewChatLogRepo(db *gorm.DB) ChatLogRepo {
	return &chatLogRepo{db: db}
}

func (r *chatLogRepo) Insert(ctx context.Context, logs ...*models.ChatLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(logs).Error
}

// ListBySession returns the turns of one chat in the order they happened.
func (r *chatLogRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatLog, error) {
	if limit <= 0 {
		limit = 200
	}

	var rows []models.ChatLog
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// LatestN returns the newest turns across all sessions, newest first.
func (r *chatLogRepo) LatestN(ctx context.Context, n int) ([]models.ChatLog, error) {
	if n <= 0 {
		n = 50
	}
	var rows []models.ChatLog
	err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Limit(n).
		Find(&rows).Error
	return rows, err
}

func (r *chatLogRepo) GetByID(ctx context.Context, id string) (*models.ChatLog, error) {
	var row models.ChatLog
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}
