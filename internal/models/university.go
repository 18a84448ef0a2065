package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type University struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name"`
	ContactPerson string             `bson:"contactPerson" json:"contactPerson"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"password" json:"-"`
	Address       string             `bson:"address" json:"address"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// Campus, Department, Program and Faculty all hang off a university by its hex id.

type Campus struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UniversityID string             `bson:"universityId" json:"universityId"`
	Name         string             `bson:"name" json:"name"`
	Address      string             `bson:"address" json:"address"`
	Contact      string             `bson:"contact" json:"contact"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Department struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UniversityID string             `bson:"universityId" json:"universityId"`
	Name         string             `bson:"name" json:"name"`
	Campus       string             `bson:"campus" json:"campus"`
	Description  string             `bson:"description" json:"description"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Program struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UniversityID string             `bson:"universityId" json:"universityId"`
	Title        string             `bson:"title" json:"title"`
	Campus       string             `bson:"campus" json:"campus"`
	Department   string             `bson:"department" json:"department"`
	Duration     string             `bson:"duration" json:"duration"`
	Fees         string             `bson:"fees" json:"fees"`
	Description  string             `bson:"description" json:"description"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

type Faculty struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UniversityID string             `bson:"universityId" json:"universityId"`
	Name         string             `bson:"name" json:"name"`
	Designation  string             `bson:"designation" json:"designation"`
	Campus       string             `bson:"campus" json:"campus"`
	Department   string             `bson:"department" json:"department"`
	Email        string             `bson:"email" json:"email"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
