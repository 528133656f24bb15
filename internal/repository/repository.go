package repository

import (
	"context"
	"time"

	"planfit/planfit-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicateKey = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner runs a function with all-or-nothing visibility. The ctx passed to
// fn carries the active session/transaction and must be used for every store
// call made inside the block; there is no implicit transaction state. Any
// error returned by fn (or a ctx deadline hit mid-flight) aborts all writes
// made inside the block, and the session is released on every exit path.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProgressKey identifies exactly one WeeklyProgress row.
type ProgressKey struct {
	UserID     primitive.ObjectID
	PlanID     primitive.ObjectID
	ExerciseID primitive.ObjectID
	WeekNumber int
}

// SetCompletionChange describes one atomic counter transition. The store
// must apply it in a single conditional mutation (upsert included), never as
// a read followed by a separate write.
type SetCompletionChange struct {
	Increment   int  // Signed; ignored when CompleteAll is set
	TotalSets   int  // Clamp ceiling, >= 1
	CompleteAll bool // Jump straight to TotalSets
	Now         time.Time
}

// TrainingPlanRepository defines the interface for interacting with training plan data.
// Every targeted read/write is scoped to the owning user; zero matched
// documents means ErrNotFound, never a silent no-op.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetByIDForUser(ctx context.Context, planID, userID primitive.ObjectID) (*domain.TrainingPlan, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error)
	Rename(ctx context.Context, planID, userID primitive.ObjectID, name string) error
	// DeactivateAllForUser clears isActive on every plan of the user except
	// keepID (pass NilObjectID to deactivate all). Implementations must
	// write every matching plan, not just the active ones, so that two
	// concurrent activation transactions for one user always overlap on a
	// document and cannot both commit. Returns the number of plans written.
	DeactivateAllForUser(ctx context.Context, userID, keepID primitive.ObjectID) (int64, error)
	SetActiveFlag(ctx context.Context, planID, userID primitive.ObjectID, active bool) error
	Delete(ctx context.Context, planID, userID primitive.ObjectID) error
	CountActiveForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, exercises []domain.Exercise) error
	GetByIDForUser(ctx context.Context, exerciseID, userID primitive.ObjectID) (*domain.Exercise, error)
	GetByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]domain.Exercise, error)
	IDsByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, exerciseID, planID, userID primitive.ObjectID) error
	DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error)
}

// WeeklyProgressRepository defines the interface for interacting with
// per-week set-completion rows.
type WeeklyProgressRepository interface {
	// ApplySetCompletion upserts the row for key and applies change as one
	// atomic mutation: clamp setsCompleted into [0, TotalSets], derive
	// isExerciseDone, set completedAt on the first false->true transition,
	// clear it on true->false, refresh lastUpdatedAt. Returns the row as of
	// after the write plus the done flag as of before it, captured inside
	// the same mutation so callers can classify the transition without a
	// racy pre-read.
	ApplySetCompletion(ctx context.Context, key ProgressKey, change SetCompletionChange) (*domain.WeeklyProgress, bool, error)
	AppendNote(ctx context.Context, key ProgressKey, note domain.WeeklyNote) (*domain.WeeklyProgress, error)
	GetByKey(ctx context.Context, key ProgressKey) (*domain.WeeklyProgress, error)
	GetByPlanAndWeek(ctx context.Context, planID, userID primitive.ObjectID, weekNumber int) ([]domain.WeeklyProgress, error)
	DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error)
}

// SavedWorkoutRepository defines the interface for interacting with saved workouts.
type SavedWorkoutRepository interface {
	Create(ctx context.Context, workout *domain.SavedWorkout) (primitive.ObjectID, error)
	GetByIDForUser(ctx context.Context, workoutID, userID primitive.ObjectID) (*domain.SavedWorkout, error)
	GetByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]domain.SavedWorkout, error)
	Delete(ctx context.Context, workoutID, userID primitive.ObjectID) error
	DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error)
}

// ActivityRepository defines the interface for the append-only activity log.
type ActivityRepository interface {
	Append(ctx context.Context, entry *domain.ActivityEntry) (primitive.ObjectID, error)
	GetByExerciseID(ctx context.Context, exerciseID, userID primitive.ObjectID) ([]domain.ActivityEntry, error)
	DeleteByExerciseIDs(ctx context.Context, exerciseIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error)
}
