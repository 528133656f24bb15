package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// planRepo implements repository.TrainingPlanRepository.
type planRepo struct {
	s *Store
}

func (r *planRepo) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" || plan.DurationWeeks < 1 {
		return primitive.NilObjectID, errors.New("plan requires userId, name and a positive durationWeeks")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	r.s.plans[plan.ID] = *plan
	return plan.ID, nil
}

func (r *planRepo) GetByIDForUser(ctx context.Context, planID, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	plan, ok := r.s.plans[planID]
	if !ok || plan.UserID != userID {
		return nil, repository.ErrNotFound
	}
	out := plan
	return &out, nil
}

func (r *planRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var plans []domain.TrainingPlan
	for _, plan := range r.s.plans {
		if plan.UserID == userID {
			plans = append(plans, plan)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].CreatedAt.After(plans[j].CreatedAt) })
	return plans, nil
}

func (r *planRepo) Rename(ctx context.Context, planID, userID primitive.ObjectID, name string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	plan, ok := r.s.plans[planID]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	plan.Name = name
	plan.UpdatedAt = time.Now().UTC()
	r.s.plans[planID] = plan
	return nil
}

// DeactivateAllForUser writes every plan of the user except keepID, active
// or not, mirroring the mongo implementation's overlapping-write-set
// behavior for concurrent activations.
func (r *planRepo) DeactivateAllForUser(ctx context.Context, userID, keepID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var modified int64
	for id, plan := range r.s.plans {
		if plan.UserID == userID && id != keepID {
			plan.IsActive = false
			plan.UpdatedAt = time.Now().UTC()
			r.s.plans[id] = plan
			modified++
		}
	}
	return modified, nil
}

func (r *planRepo) SetActiveFlag(ctx context.Context, planID, userID primitive.ObjectID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	plan, ok := r.s.plans[planID]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	plan.IsActive = active
	plan.UpdatedAt = time.Now().UTC()
	r.s.plans[planID] = plan
	return nil
}

func (r *planRepo) Delete(ctx context.Context, planID, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	plan, ok := r.s.plans[planID]
	if !ok || plan.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.plans, planID)
	return nil
}

func (r *planRepo) CountActiveForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, plan := range r.s.plans {
		if plan.UserID == userID && plan.IsActive {
			count++
		}
	}
	return count, nil
}

// exerciseRepo implements repository.ExerciseRepository.
type exerciseRepo struct {
	s *Store
}

func (r *exerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.UserID == primitive.NilObjectID || exercise.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise requires userId and planId")
	}
	if exercise.Sets < 1 {
		return primitive.NilObjectID, errors.New("exercise requires at least one set")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if exercise.ID == primitive.NilObjectID {
		exercise.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.s.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *exerciseRepo) CreateMany(ctx context.Context, exercises []domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	for i := range exercises {
		if exercises[i].ID == primitive.NilObjectID {
			exercises[i].ID = primitive.NewObjectID()
		}
		exercises[i].CreatedAt = now
		exercises[i].UpdatedAt = now
		r.s.exercises[exercises[i].ID] = exercises[i]
	}
	return nil
}

func (r *exerciseRepo) GetByIDForUser(ctx context.Context, exerciseID, userID primitive.ObjectID) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exercise, ok := r.s.exercises[exerciseID]
	if !ok || exercise.UserID != userID {
		return nil, repository.ErrNotFound
	}
	out := exercise
	return &out, nil
}

func (r *exerciseRepo) GetByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var exercises []domain.Exercise
	for _, exercise := range r.s.exercises {
		if exercise.PlanID == planID && exercise.UserID == userID {
			exercises = append(exercises, exercise)
		}
	}
	sort.Slice(exercises, func(i, j int) bool {
		oi, oj := 0, 0
		if exercises[i].Order != nil {
			oi = *exercises[i].Order
		}
		if exercises[j].Order != nil {
			oj = *exercises[j].Order
		}
		if oi != oj {
			return oi < oj
		}
		return exercises[i].CreatedAt.Before(exercises[j].CreatedAt)
	})
	return exercises, nil
}

func (r *exerciseRepo) IDsByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	exercises, err := r.GetByPlanID(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(exercises))
	for i, exercise := range exercises {
		ids[i] = exercise.ID
	}
	return ids, nil
}

func (r *exerciseRepo) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.exercises[exercise.ID]
	if !ok || existing.UserID != exercise.UserID || existing.PlanID != exercise.PlanID {
		return repository.ErrNotFound
	}
	updated := *exercise
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	r.s.exercises[exercise.ID] = updated
	return nil
}

func (r *exerciseRepo) Delete(ctx context.Context, exerciseID, planID, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	exercise, ok := r.s.exercises[exerciseID]
	if !ok || exercise.UserID != userID || exercise.PlanID != planID {
		return repository.ErrNotFound
	}
	delete(r.s.exercises, exerciseID)
	return nil
}

func (r *exerciseRepo) DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, exercise := range r.s.exercises {
		if exercise.PlanID == planID && exercise.UserID == userID {
			delete(r.s.exercises, id)
			deleted++
		}
	}
	return deleted, nil
}

// savedWorkoutRepo implements repository.SavedWorkoutRepository.
type savedWorkoutRepo struct {
	s *Store
}

func (r *savedWorkoutRepo) Create(ctx context.Context, workout *domain.SavedWorkout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.PlanID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("saved workout requires userId, planId and name")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if workout.ID == primitive.NilObjectID {
		workout.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now
	r.s.savedWorkouts[workout.ID] = *workout
	return workout.ID, nil
}

func (r *savedWorkoutRepo) GetByIDForUser(ctx context.Context, workoutID, userID primitive.ObjectID) (*domain.SavedWorkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	workout, ok := r.s.savedWorkouts[workoutID]
	if !ok || workout.UserID != userID {
		return nil, repository.ErrNotFound
	}
	out := workout
	return &out, nil
}

func (r *savedWorkoutRepo) GetByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]domain.SavedWorkout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var workouts []domain.SavedWorkout
	for _, workout := range r.s.savedWorkouts {
		if workout.PlanID == planID && workout.UserID == userID {
			workouts = append(workouts, workout)
		}
	}
	sort.Slice(workouts, func(i, j int) bool { return workouts[i].CreatedAt.After(workouts[j].CreatedAt) })
	return workouts, nil
}

func (r *savedWorkoutRepo) Delete(ctx context.Context, workoutID, userID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	workout, ok := r.s.savedWorkouts[workoutID]
	if !ok || workout.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.savedWorkouts, workoutID)
	return nil
}

func (r *savedWorkoutRepo) DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, workout := range r.s.savedWorkouts {
		if workout.PlanID == planID && workout.UserID == userID {
			delete(r.s.savedWorkouts, id)
			deleted++
		}
	}
	return deleted, nil
}

// activityRepo implements repository.ActivityRepository.
type activityRepo struct {
	s *Store
}

func (r *activityRepo) Append(ctx context.Context, entry *domain.ActivityEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("activity entry requires userId and exerciseId")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID == primitive.NilObjectID {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.s.activity[entry.ID] = *entry
	return entry.ID, nil
}

func (r *activityRepo) GetByExerciseID(ctx context.Context, exerciseID, userID primitive.ObjectID) ([]domain.ActivityEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var entries []domain.ActivityEntry
	for _, entry := range r.s.activity {
		if entry.ExerciseID == exerciseID && entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.After(entries[j].CreatedAt) })
	return entries, nil
}

func (r *activityRepo) DeleteByExerciseIDs(ctx context.Context, exerciseIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	wanted := make(map[primitive.ObjectID]struct{}, len(exerciseIDs))
	for _, id := range exerciseIDs {
		wanted[id] = struct{}{}
	}
	var deleted int64
	for id, entry := range r.s.activity {
		if entry.UserID != userID {
			continue
		}
		if _, ok := wanted[entry.ExerciseID]; ok {
			delete(r.s.activity, id)
			deleted++
		}
	}
	return deleted, nil
}
