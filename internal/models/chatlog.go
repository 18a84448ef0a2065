package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ChatLog is the relational audit trail of chat turns.
type ChatLog struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string         `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Role      string         `gorm:"column:role;type:text" json:"role"` // "user" | "assistant"
	Mode      string         `gorm:"column:mode;type:text" json:"mode"`
	Content   string         `gorm:"column:content;type:text" json:"content"`
	Keywords  pq.StringArray `gorm:"column:keywords;type:text[]" json:"keywords"`
	Timestamp time.Time      `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (ChatLog) TableName() string { return "chat_logs" }
