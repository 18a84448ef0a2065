package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleUniversity Role = "university"
	RoleAdmin      Role = "admin"
)

type Admin struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

type SubAdmin struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type DashboardCounts struct {
	Universities int64 `json:"universities"`
	Admins       int64 `json:"admins"`
	Students     int64 `json:"students"`
}

type UniversityDashboardCounts struct {
	Students    int64 `json:"students"`
	Campuses    int64 `json:"campuses"`
	Departments int64 `json:"departments"`
	Faculty     int64 `json:"faculty"`
	Programs    int64 `json:"programs"`
}
