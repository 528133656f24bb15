// internal/domain/weekly_progress.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeeklyNote is a free-text note attached to a progress row for one week.
type WeeklyNote struct {
	ID   string    `bson:"id" json:"id"` // UUID, assigned when the note is added
	Date time.Time `bson:"date" json:"date"`
	Text string    `bson:"text" json:"text"`
}

// WeeklyProgress is the per-exercise, per-week completion counter and its
// derived done-state. Exactly one document exists per
// (userId, planId, exerciseId, weekNumber); rows are created lazily by the
// first update (upsert).
type WeeklyProgress struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	WeekNumber int                `bson:"weekNumber" json:"weekNumber"` // >= 1

	SetsCompleted  int        `bson:"setsCompleted" json:"setsCompleted"` // 0 <= setsCompleted <= total sets
	IsExerciseDone bool       `bson:"isExerciseDone" json:"isExerciseDone"`
	CompletedAt    *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"` // Set on the write that first completes the week
	LastUpdatedAt  time.Time  `bson:"lastUpdatedAt" json:"lastUpdatedAt"`

	Notes []WeeklyNote `bson:"notes" json:"notes"`
}
