package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityAction type for the kind of event recorded in the activity log.
type ActivityAction string

const (
	ActionSetsUpdated       ActivityAction = "sets_updated"
	ActionExerciseCompleted ActivityAction = "exercise_completed"
	ActionExerciseReopened  ActivityAction = "exercise_reopened"
)

// ActivityEntry is one row of the user's activity log. Entries reference the
// exercise they describe (not the plan directly), which is why a plan delete
// has to collect exercise ids before cascading here.
type ActivityEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"`
	Action     ActivityAction     `bson:"action" json:"action"`
	SetsDelta  int                `bson:"setsDelta" json:"setsDelta"` // Signed increment as requested
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
