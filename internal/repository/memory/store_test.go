package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestApplySetCompletion_UpsertsAndClamps(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	key := repository.ProgressKey{
		UserID:     primitive.NewObjectID(),
		PlanID:     primitive.NewObjectID(),
		ExerciseID: primitive.NewObjectID(),
		WeekNumber: 1,
	}

	// First touch creates the row from zero and applies the increment.
	row, wasDone, err := store.Progress().ApplySetCompletion(ctx, key, repository.SetCompletionChange{
		Increment: 2, TotalSets: 3, Now: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, row.SetsCompleted)
	assert.False(t, row.IsExerciseDone)
	assert.False(t, wasDone, "a fresh row was never done")
	assert.NotNil(t, row.Notes, "notes default to an empty list")

	// Only one row exists afterwards.
	fetched, err := store.Progress().GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, row.ID, fetched.ID)

	// The returned pre-write flag tracks each write's starting state.
	row, wasDone, err = store.Progress().ApplySetCompletion(ctx, key, repository.SetCompletionChange{
		Increment: 1, TotalSets: 3, Now: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, row.IsExerciseDone)
	assert.False(t, wasDone)

	_, wasDone, err = store.Progress().ApplySetCompletion(ctx, key, repository.SetCompletionChange{
		Increment: 0, TotalSets: 3, Now: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, wasDone)

	_, _, err = store.Progress().ApplySetCompletion(ctx, key, repository.SetCompletionChange{
		Increment: 0, TotalSets: 0, Now: time.Now(),
	})
	assert.Error(t, err, "non-positive ceiling is a programming error at this layer")
}

func TestDeactivateAllForUser_WritesInactivePlansToo(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	var planIDs []primitive.ObjectID
	for _, name := range []string{"A", "B", "C"} {
		planID, err := store.Plans().Create(ctx, &domain.TrainingPlan{
			UserID:        userID,
			Name:          name,
			DurationWeeks: 4,
		})
		require.NoError(t, err)
		planIDs = append(planIDs, planID)
	}

	// No plan is active, yet every non-kept plan must be written: concurrent
	// activation transactions rely on this overlap to conflict instead of
	// both committing.
	written, err := store.Plans().DeactivateAllForUser(ctx, userID, planIDs[0])
	require.NoError(t, err)
	assert.EqualValues(t, 2, written)
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	planID, err := store.Plans().Create(ctx, &domain.TrainingPlan{
		UserID:        userID,
		Name:          "Plan",
		DurationWeeks: 4,
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.TxRunner().WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := store.Plans().Delete(txCtx, planID, userID); err != nil {
			return err
		}
		_, err := store.Exercises().Create(txCtx, &domain.Exercise{
			UserID: userID,
			PlanID: planID,
			Sets:   3,
			Reps:   "10",
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Both the delete and the insert were undone.
	plan, err := store.Plans().GetByIDForUser(ctx, planID, userID)
	require.NoError(t, err)
	assert.Equal(t, planID, plan.ID)
	exercises, err := store.Exercises().GetByPlanID(ctx, planID, userID)
	require.NoError(t, err)
	assert.Empty(t, exercises)
}

func TestWithinTransaction_ExpiredContextAborts(t *testing.T) {
	store := NewStore()
	userID := primitive.NewObjectID()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.TxRunner().WithinTransaction(ctx, func(txCtx context.Context) error {
		_, err := store.Plans().Create(txCtx, &domain.TrainingPlan{
			UserID:        userID,
			Name:          "Plan",
			DurationWeeks: 4,
		})
		return err
	})
	require.Error(t, err)

	plans, err := store.Plans().GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, plans, "a cancelled transaction leaves no writes behind")
}
