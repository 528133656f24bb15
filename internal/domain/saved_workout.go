// internal/domain/saved_workout.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedWorkout is a named, ordered selection of a plan's exercises the user
// keeps for quick reuse. Its lifecycle is independent of weeks/progress but
// bound to the parent plan (deleted with it, not duplicated with it).
type SavedWorkout struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"userId" json:"userId"`
	PlanID      primitive.ObjectID   `bson:"planId" json:"planId"`
	Name        string               `bson:"name" json:"name"` // e.g., "Push Day A"
	ExerciseIDs []primitive.ObjectID `bson:"exerciseIds" json:"exerciseIds"` // Order matters
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
