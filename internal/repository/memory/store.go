// Package memory provides map-backed implementations of the repository
// interfaces. It backs the test suite and the server's memory driver; the
// semantics mirror the mongo implementations, including upsert atomicity
// and transaction rollback.
package memory

import (
	"context"
	"fmt"
	"sync"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all collections behind one mutex. Every repository handed out
// by the accessors shares it.
type Store struct {
	mu sync.Mutex

	plans         map[primitive.ObjectID]domain.TrainingPlan
	exercises     map[primitive.ObjectID]domain.Exercise
	progress      map[string]domain.WeeklyProgress
	savedWorkouts map[primitive.ObjectID]domain.SavedWorkout
	activity      map[primitive.ObjectID]domain.ActivityEntry

	// txMu serializes transactions; snapshots make rollback possible.
	txMu sync.Mutex
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		plans:         make(map[primitive.ObjectID]domain.TrainingPlan),
		exercises:     make(map[primitive.ObjectID]domain.Exercise),
		progress:      make(map[string]domain.WeeklyProgress),
		savedWorkouts: make(map[primitive.ObjectID]domain.SavedWorkout),
		activity:      make(map[primitive.ObjectID]domain.ActivityEntry),
	}
}

func (s *Store) Plans() repository.TrainingPlanRepository      { return &planRepo{s: s} }
func (s *Store) Exercises() repository.ExerciseRepository      { return &exerciseRepo{s: s} }
func (s *Store) Progress() repository.WeeklyProgressRepository { return &progressRepo{s: s} }
func (s *Store) SavedWorkouts() repository.SavedWorkoutRepository {
	return &savedWorkoutRepo{s: s}
}
func (s *Store) Activity() repository.ActivityRepository { return &activityRepo{s: s} }
func (s *Store) TxRunner() repository.TxRunner           { return &txRunner{s: s} }

func progressKeyString(key repository.ProgressKey) string {
	return fmt.Sprintf("%s/%s/%s/%d", key.UserID.Hex(), key.PlanID.Hex(), key.ExerciseID.Hex(), key.WeekNumber)
}

type snapshot struct {
	plans         map[primitive.ObjectID]domain.TrainingPlan
	exercises     map[primitive.ObjectID]domain.Exercise
	progress      map[string]domain.WeeklyProgress
	savedWorkouts map[primitive.ObjectID]domain.SavedWorkout
	activity      map[primitive.ObjectID]domain.ActivityEntry
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		plans:         copyMap(s.plans),
		exercises:     copyMap(s.exercises),
		progress:      copyMap(s.progress),
		savedWorkouts: copyMap(s.savedWorkouts),
		activity:      copyMap(s.activity),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans = snap.plans
	s.exercises = snap.exercises
	s.progress = snap.progress
	s.savedWorkouts = snap.savedWorkouts
	s.activity = snap.activity
}

// txRunner implements repository.TxRunner by serializing transactions and
// restoring a pre-transaction snapshot if fn fails or the context expires.
type txRunner struct {
	s *Store
}

func (r *txRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := r.s.snapshot()
	if err := fn(ctx); err != nil {
		r.s.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		// Deadline hit mid-block: abort, no partial writes stay visible.
		r.s.restore(snap)
		return err
	}
	return nil
}
