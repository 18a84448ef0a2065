package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InterviewQuestion is one step of the scripted interview; Order defines the sequence.
type InterviewQuestion struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Question    string             `bson:"question" json:"question"`
	Field       string             `bson:"field" json:"field"`
	Type        string             `bson:"type" json:"type"`
	Restriction string             `bson:"restriction,omitempty" json:"restriction"`
	Order       int                `bson:"order" json:"order"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type GeneralMaterial struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Content   string             `bson:"content" json:"content"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ChatbotFile is an uploaded Word document with university data; Data is never listed.
type ChatbotFile struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Filename   string             `bson:"filename" json:"filename"`
	Size       int64              `bson:"size" json:"size"`
	Data       []byte             `bson:"data,omitempty" json:"-"`
	UploadedAt time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
