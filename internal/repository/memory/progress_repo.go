package memory

import (
	"context"
	"errors"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// progressRepo implements repository.WeeklyProgressRepository.
type progressRepo struct {
	s *Store
}

// ApplySetCompletion applies the clamped counter transition under the store
// mutex, so concurrent callers serialize exactly like the mongo pipeline
// update does. It takes only the store mutex, not the transaction lock: a
// counter write landing between a failing transaction's snapshot and its
// restore is rolled back with it. A dev/test store tolerates that; callers
// needing transactional isolation go through WithinTransaction.
func (r *progressRepo) ApplySetCompletion(ctx context.Context, key repository.ProgressKey, change repository.SetCompletionChange) (*domain.WeeklyProgress, bool, error) {
	if change.TotalSets < 1 {
		return nil, false, errors.New("totalSets must be a positive integer")
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ks := progressKeyString(key)
	row, ok := r.s.progress[ks]
	if !ok {
		row = domain.WeeklyProgress{
			ID:         primitive.NewObjectID(),
			UserID:     key.UserID,
			PlanID:     key.PlanID,
			ExerciseID: key.ExerciseID,
			WeekNumber: key.WeekNumber,
			Notes:      []domain.WeeklyNote{},
		}
	}
	wasDone := row.IsExerciseDone

	newSets := row.SetsCompleted + change.Increment
	if change.CompleteAll {
		newSets = change.TotalSets
	}
	if newSets < 0 {
		newSets = 0
	}
	if newSets > change.TotalSets {
		newSets = change.TotalSets
	}

	now := change.Now.UTC()
	row.SetsCompleted = newSets
	row.IsExerciseDone = newSets >= change.TotalSets
	if row.IsExerciseDone {
		if row.CompletedAt == nil {
			completedAt := now
			row.CompletedAt = &completedAt
		}
	} else {
		row.CompletedAt = nil
	}
	row.LastUpdatedAt = now

	r.s.progress[ks] = row
	out := row
	return &out, wasDone, nil
}

func (r *progressRepo) AppendNote(ctx context.Context, key repository.ProgressKey, note domain.WeeklyNote) (*domain.WeeklyProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ks := progressKeyString(key)
	row, ok := r.s.progress[ks]
	if !ok {
		row = domain.WeeklyProgress{
			ID:         primitive.NewObjectID(),
			UserID:     key.UserID,
			PlanID:     key.PlanID,
			ExerciseID: key.ExerciseID,
			WeekNumber: key.WeekNumber,
		}
	}
	notes := make([]domain.WeeklyNote, len(row.Notes), len(row.Notes)+1)
	copy(notes, row.Notes)
	row.Notes = append(notes, note)
	row.LastUpdatedAt = note.Date.UTC()

	r.s.progress[ks] = row
	out := row
	return &out, nil
}

func (r *progressRepo) GetByKey(ctx context.Context, key repository.ProgressKey) (*domain.WeeklyProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.progress[progressKeyString(key)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := row
	return &out, nil
}

func (r *progressRepo) GetByPlanAndWeek(ctx context.Context, planID, userID primitive.ObjectID, weekNumber int) ([]domain.WeeklyProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []domain.WeeklyProgress
	for _, row := range r.s.progress {
		if row.PlanID == planID && row.UserID == userID && row.WeekNumber == weekNumber {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (r *progressRepo) DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for ks, row := range r.s.progress {
		if row.PlanID == planID && row.UserID == userID {
			delete(r.s.progress, ks)
			deleted++
		}
	}
	return deleted, nil
}
