// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is one prescribed movement inside a TrainingPlan.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"` // Owning user (must match the plan's owner)
	PlanID       primitive.ObjectID `bson:"planId" json:"planId"` // Parent plan
	DefinitionID primitive.ObjectID `bson:"definitionId" json:"definitionId"` // Link to the exercise definition/library entry

	Sets     int      `bson:"sets" json:"sets"` // Prescribed sets per week, >= 1
	Reps     string   `bson:"reps" json:"reps"` // Free-form: "8-12", "10", "AMRAP"
	Weight   *float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Duration *int     `bson:"duration,omitempty" json:"duration,omitempty"` // Seconds, for timed movements
	Order    *int     `bson:"order,omitempty" json:"order,omitempty"`       // Position within the plan
	Comments string   `bson:"comments,omitempty" json:"comments,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
