package service

import (
	"context"
	"sync"
	"testing"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository/memory"
	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testDeps struct {
	store    *memory.Store
	metrics  *metrics.Manager
	plans    PlanService
	progress ProgressService
	workouts WorkoutService
	userID   primitive.ObjectID
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	store := memory.NewStore()
	manager := metrics.NewTestManager()
	return &testDeps{
		store:   store,
		metrics: manager,
		plans: NewPlanService(
			store.Plans(), store.Exercises(), store.Progress(),
			store.SavedWorkouts(), store.Activity(), store.TxRunner(),
		),
		progress: NewProgressService(store.Exercises(), store.Progress(), store.Activity(), manager),
		workouts: NewWorkoutService(store.Plans(), store.Exercises(), store.SavedWorkouts()),
		userID:   primitive.NewObjectID(),
	}
}

// newPlanWithExercise seeds a plan with one exercise of the given sets.
func (d *testDeps) newPlanWithExercise(t *testing.T, sets int) (*domain.TrainingPlan, *domain.Exercise) {
	t.Helper()
	ctx := context.Background()

	plan, err := d.plans.CreatePlan(ctx, d.userID, "Test Plan", 8)
	require.NoError(t, err)

	exercise, err := d.plans.AddExercise(ctx, d.userID, plan.ID, domain.Exercise{
		DefinitionID: primitive.NewObjectID(),
		Sets:         sets,
		Reps:         "8-12",
	})
	require.NoError(t, err)
	return plan, exercise
}

func TestUpdateSetCompletion_ClampsWithinBounds(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	// A huge increment clamps to the ceiling, not an error.
	progress, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 100, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.SetsCompleted)
	assert.True(t, progress.IsExerciseDone)

	// A huge decrement clamps to zero.
	progress, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, -100, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.SetsCompleted)
	assert.False(t, progress.IsExerciseDone)
}

func TestUpdateSetCompletion_DoneStateAlwaysDerived(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 4)

	for _, increment := range []int{1, 2, -1, 3, -10, 4, 0} {
		progress, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 2, increment, 0, false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, progress.SetsCompleted, 0)
		assert.LessOrEqual(t, progress.SetsCompleted, 4)
		assert.Equal(t, progress.SetsCompleted >= 4, progress.IsExerciseDone,
			"isExerciseDone must equal setsCompleted >= totalSets after every write")
	}
}

func TestUpdateSetCompletion_CompleteAllWinsOverIncrement(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 5)

	progress, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, -3, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 5, progress.SetsCompleted)
	assert.True(t, progress.IsExerciseDone)
	require.NotNil(t, progress.CompletedAt)
}

func TestUpdateSetCompletion_ZeroIncrementIsIdempotentNoOp(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	_, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 2, 0, false)
	require.NoError(t, err)

	first, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 0, 0, false)
	require.NoError(t, err)
	second, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 0, 0, false)
	require.NoError(t, err)

	assert.Equal(t, first.SetsCompleted, second.SetsCompleted)
	assert.Equal(t, first.IsExerciseDone, second.IsExerciseDone)
	assert.False(t, second.LastUpdatedAt.Before(first.LastUpdatedAt))
}

func TestUpdateSetCompletion_ConcurrentIncrementsAreNotLost(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	const n = 16
	plan, exercise := d.newPlanWithExercise(t, n)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 1, 0, false)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	progress, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, n, progress.SetsCompleted, "concurrent increments must not be lost")
	assert.True(t, progress.IsExerciseDone)
}

func TestUpdateSetCompletion_CompletedAtLifecycle(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	// Three +1 increments complete the exercise.
	var completed *domain.WeeklyProgress
	for i := 0; i < 3; i++ {
		var err error
		completed, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 1, 0, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, completed.SetsCompleted)
	assert.True(t, completed.IsExerciseDone)
	require.NotNil(t, completed.CompletedAt)
	firstCompletedAt := *completed.CompletedAt

	// Completing again must not move the first-completion timestamp.
	again, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 0, 0, true)
	require.NoError(t, err)
	require.NotNil(t, again.CompletedAt)
	assert.True(t, again.CompletedAt.Equal(firstCompletedAt), "completedAt is set exactly once")

	// Dropping below the threshold reopens the exercise and clears the stamp.
	reopened, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, -1, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.SetsCompleted)
	assert.False(t, reopened.IsExerciseDone)
	assert.Nil(t, reopened.CompletedAt)
}

func TestUpdateSetCompletion_TotalSetsResolution(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	// totalSets == 0 falls back to the exercise's persisted sets value.
	progress, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 0, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 3, progress.SetsCompleted)

	// An explicit argument overrides the stored value.
	progress, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 2, 0, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 5, progress.SetsCompleted)
}

func TestUpdateSetCompletion_ValidationRejectedBeforeStore(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	_, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 0, 1, 0, false)
	assert.ErrorIs(t, err, domain.ErrValidation, "weekNumber < 1")

	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 1, -2, false)
	assert.ErrorIs(t, err, domain.ErrValidation, "negative totalSets")

	_, err = d.progress.UpdateSetCompletion(ctx, primitive.NilObjectID, plan.ID, exercise.ID, 1, 1, 0, false)
	assert.ErrorIs(t, err, domain.ErrValidation, "missing user id")
}

func TestUpdateSetCompletion_TenantIsolation(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	// Another user cannot touch this exercise.
	otherUser := primitive.NewObjectID()
	_, err := d.progress.UpdateSetCompletion(ctx, otherUser, plan.ID, exercise.ID, 1, 1, 0, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The exercise must hang under the named plan.
	otherPlan, err := d.plans.CreatePlan(ctx, d.userID, "Other Plan", 4)
	require.NoError(t, err)
	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, otherPlan.ID, exercise.ID, 1, 1, 0, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateSetCompletion_ActivityAndCompletionCounting(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	// Complete, repeat a no-op on the done row, then reopen.
	_, err := d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 3, 0, false)
	require.NoError(t, err)
	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 0, 0, false)
	require.NoError(t, err)
	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, -1, 0, false)
	require.NoError(t, err)

	// The action reflects the transition of each write, not its end state.
	entries, err := d.store.Activity().GetByExerciseID(ctx, exercise.ID, d.userID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	byAction := map[domain.ActivityAction]int{}
	for _, entry := range entries {
		byAction[entry.Action]++
	}
	assert.Equal(t, 1, byAction[domain.ActionExerciseCompleted])
	assert.Equal(t, 1, byAction[domain.ActionSetsUpdated])
	assert.Equal(t, 1, byAction[domain.ActionExerciseReopened])

	// The completion counter saw one transition, not two done results.
	assert.Equal(t, float64(1), testutil.ToFloat64(d.metrics.CounterExercisesDone))
	assert.Equal(t, float64(3), testutil.ToFloat64(d.metrics.CounterProgressUpdates))
}

func TestAddWeeklyNote(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)

	progress, err := d.progress.AddWeeklyNote(ctx, d.userID, plan.ID, exercise.ID, 2, "felt strong")
	require.NoError(t, err)
	require.Len(t, progress.Notes, 1)
	assert.NotEmpty(t, progress.Notes[0].ID)
	assert.Equal(t, "felt strong", progress.Notes[0].Text)
	// The note-first path creates the row with a zero counter.
	assert.Equal(t, 0, progress.SetsCompleted)

	_, err = d.progress.AddWeeklyNote(ctx, d.userID, plan.ID, exercise.ID, 2, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanProgress_ListsWeekRows(t *testing.T) {
	d := newTestDeps(t)
	ctx := context.Background()
	plan, exercise := d.newPlanWithExercise(t, 3)
	second, err := d.plans.AddExercise(ctx, d.userID, plan.ID, domain.Exercise{
		DefinitionID: primitive.NewObjectID(),
		Sets:         4,
		Reps:         "10",
	})
	require.NoError(t, err)

	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 1, 1, 0, false)
	require.NoError(t, err)
	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, second.ID, 1, 2, 0, false)
	require.NoError(t, err)
	_, err = d.progress.UpdateSetCompletion(ctx, d.userID, plan.ID, exercise.ID, 2, 1, 0, false)
	require.NoError(t, err)

	rows, err := d.progress.PlanProgress(ctx, d.userID, plan.ID, 1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
