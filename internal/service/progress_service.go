package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"
	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---

// ProgressService is the set-completion counter engine: it owns the clamped,
// atomic per-week counter transition and its derived done state.
type ProgressService interface {
	// UpdateSetCompletion applies a signed increment (or completeAll) to the
	// (user, plan, exercise, week) counter. The row is created lazily; the
	// result is clamped into [0, totalSets]. totalSets == 0 means "use the
	// exercise's own persisted sets value"; an explicit positive value
	// overrides it.
	UpdateSetCompletion(ctx context.Context, userID, planID, exerciseID primitive.ObjectID, weekNumber, setsIncrement, totalSets int, completeAll bool) (*domain.WeeklyProgress, error)

	AddWeeklyNote(ctx context.Context, userID, planID, exerciseID primitive.ObjectID, weekNumber int, text string) (*domain.WeeklyProgress, error)
	PlanProgress(ctx context.Context, userID, planID primitive.ObjectID, weekNumber int) ([]domain.WeeklyProgress, error)
}

// --- Service Implementation ---

// progressService implements the ProgressService interface.
type progressService struct {
	exerciseRepo repository.ExerciseRepository
	progressRepo repository.WeeklyProgressRepository
	activityRepo repository.ActivityRepository
	metrics      *metrics.Manager
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	exerciseRepo repository.ExerciseRepository,
	progressRepo repository.WeeklyProgressRepository,
	activityRepo repository.ActivityRepository,
	manager *metrics.Manager,
) ProgressService {
	return &progressService{
		exerciseRepo: exerciseRepo,
		progressRepo: progressRepo,
		activityRepo: activityRepo,
		metrics:      manager,
	}
}

// UpdateSetCompletion validates the request, resolves the clamp ceiling and
// delegates the transition to the repository's single atomic mutation. The
// compute-then-write never spans two round trips, so concurrent increments
// against the same key serialize instead of losing updates.
func (s *progressService) UpdateSetCompletion(ctx context.Context, userID, planID, exerciseID primitive.ObjectID, weekNumber, setsIncrement, totalSets int, completeAll bool) (*domain.WeeklyProgress, error) {
	// 1. Validate before touching the store.
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, validationErr("user, plan and exercise ids are required")
	}
	if weekNumber < 1 {
		return nil, validationErr("weekNumber must be >= 1")
	}
	if totalSets < 0 {
		return nil, validationErr("totalSets must not be negative")
	}

	// 2. Verify the exercise exists, is owned by the caller and hangs under
	// the named plan.
	exercise, err := s.exerciseRepo.GetByIDForUser(ctx, exerciseID, userID)
	if err != nil {
		return nil, storageErr(err, ErrExerciseNotFound)
	}
	if exercise.PlanID != planID {
		return nil, ErrExerciseNotFound
	}

	// 3. Resolve the clamp ceiling: explicit argument wins, otherwise the
	// exercise's persisted sets value.
	if totalSets == 0 {
		totalSets = exercise.Sets
	}
	if totalSets < 1 {
		return nil, validationErr("totalSets must be a positive integer")
	}

	key := repository.ProgressKey{
		UserID:     userID,
		PlanID:     planID,
		ExerciseID: exerciseID,
		WeekNumber: weekNumber,
	}

	// 4. One atomic document mutation: clamp, derive done, stamp times. The
	// pre-write done flag comes back from the same mutation, so the
	// transition classification below cannot be skewed by a concurrent
	// update racing a separate pre-read.
	progress, wasDone, err := s.progressRepo.ApplySetCompletion(ctx, key, repository.SetCompletionChange{
		Increment:   setsIncrement,
		TotalSets:   totalSets,
		CompleteAll: completeAll,
		Now:         time.Now().UTC(),
	})
	if err != nil {
		return nil, storageErr(err, ErrProgressNotFound)
	}

	action := domain.ActionSetsUpdated
	if progress.IsExerciseDone && !wasDone {
		action = domain.ActionExerciseCompleted
	} else if !progress.IsExerciseDone && wasDone {
		action = domain.ActionExerciseReopened
	}
	s.metrics.CounterProgressUpdates.Inc()
	if action == domain.ActionExerciseCompleted {
		// Completions count transitions, not repeated updates on an
		// already-done row.
		s.metrics.CounterExercisesDone.Inc()
	}

	// 5. Record the event. Best effort: a failed append never fails the
	// already-committed counter update.
	entry := &domain.ActivityEntry{
		UserID:     userID,
		ExerciseID: exerciseID,
		WeekNumber: weekNumber,
		Action:     action,
		SetsDelta:  setsIncrement,
		CreatedAt:  progress.LastUpdatedAt,
	}
	if _, err := s.activityRepo.Append(ctx, entry); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"userId":     userID.Hex(),
			"exerciseId": exerciseID.Hex(),
			"week":       weekNumber,
		}).Warn("failed to append activity entry")
	}

	return progress, nil
}

// AddWeeklyNote attaches a free-text note to the week's progress row,
// creating the row if the user writes before logging any sets.
func (s *progressService) AddWeeklyNote(ctx context.Context, userID, planID, exerciseID primitive.ObjectID, weekNumber int, text string) (*domain.WeeklyProgress, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, validationErr("user, plan and exercise ids are required")
	}
	if weekNumber < 1 {
		return nil, validationErr("weekNumber must be >= 1")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationErr("note text is required")
	}

	exercise, err := s.exerciseRepo.GetByIDForUser(ctx, exerciseID, userID)
	if err != nil {
		return nil, storageErr(err, ErrExerciseNotFound)
	}
	if exercise.PlanID != planID {
		return nil, ErrExerciseNotFound
	}

	key := repository.ProgressKey{
		UserID:     userID,
		PlanID:     planID,
		ExerciseID: exerciseID,
		WeekNumber: weekNumber,
	}
	note := domain.WeeklyNote{
		ID:   uuid.NewString(),
		Date: time.Now().UTC(),
		Text: text,
	}
	progress, err := s.progressRepo.AppendNote(ctx, key, note)
	if err != nil {
		return nil, storageErr(err, ErrProgressNotFound)
	}
	return progress, nil
}

// PlanProgress lists one week's progress rows across the plan.
func (s *progressService) PlanProgress(ctx context.Context, userID, planID primitive.ObjectID, weekNumber int) ([]domain.WeeklyProgress, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	if weekNumber < 1 {
		return nil, validationErr("weekNumber must be >= 1")
	}
	rows, err := s.progressRepo.GetByPlanAndWeek(ctx, planID, userID, weekNumber)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storageErr(err, ErrProgressNotFound)
	}
	return rows, nil
}
