// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlan represents a user's named, fixed-duration training program.
type TrainingPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"` // Owning user
	Name          string             `bson:"name" json:"name"`     // e.g., "Hypertrophy Block 1"
	DurationWeeks int                `bson:"durationWeeks" json:"durationWeeks"`
	IsActive      bool               `bson:"isActive" json:"isActive"` // At most one active plan per user
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
