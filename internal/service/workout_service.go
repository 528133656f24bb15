package service

import (
	"context"
	"strings"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutService manages saved workouts: named, ordered exercise selections
// a user keeps under a plan.
type WorkoutService interface {
	SaveWorkout(ctx context.Context, userID, planID primitive.ObjectID, name string, exerciseIDs []primitive.ObjectID) (*domain.SavedWorkout, error)
	ListSavedWorkouts(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.SavedWorkout, error)
	DeleteSavedWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error
}

type workoutService struct {
	planRepo         repository.TrainingPlanRepository
	exerciseRepo     repository.ExerciseRepository
	savedWorkoutRepo repository.SavedWorkoutRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	planRepo repository.TrainingPlanRepository,
	exerciseRepo repository.ExerciseRepository,
	savedWorkoutRepo repository.SavedWorkoutRepository,
) WorkoutService {
	return &workoutService{
		planRepo:         planRepo,
		exerciseRepo:     exerciseRepo,
		savedWorkoutRepo: savedWorkoutRepo,
	}
}

func (s *workoutService) SaveWorkout(ctx context.Context, userID, planID primitive.ObjectID, name string, exerciseIDs []primitive.ObjectID) (*domain.SavedWorkout, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("workout name is required")
	}
	if len(exerciseIDs) == 0 {
		return nil, validationErr("at least one exercise is required")
	}

	if _, err := s.planRepo.GetByIDForUser(ctx, planID, userID); err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	// Every referenced exercise must exist under this plan and owner.
	for _, exerciseID := range exerciseIDs {
		exercise, err := s.exerciseRepo.GetByIDForUser(ctx, exerciseID, userID)
		if err != nil {
			return nil, storageErr(err, ErrExerciseNotFound)
		}
		if exercise.PlanID != planID {
			return nil, ErrExerciseNotFound
		}
	}

	workout := &domain.SavedWorkout{
		UserID:      userID,
		PlanID:      planID,
		Name:        name,
		ExerciseIDs: exerciseIDs,
	}
	workoutID, err := s.savedWorkoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, storageErr(err, ErrSavedWorkoutNotFound)
	}
	workout.ID = workoutID
	return workout, nil
}

func (s *workoutService) ListSavedWorkouts(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.SavedWorkout, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	workouts, err := s.savedWorkoutRepo.GetByPlanID(ctx, planID, userID)
	if err != nil {
		return nil, storageErr(err, ErrSavedWorkoutNotFound)
	}
	return workouts, nil
}

func (s *workoutService) DeleteSavedWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || workoutID == primitive.NilObjectID {
		return validationErr("user and workout ids are required")
	}
	if err := s.savedWorkoutRepo.Delete(ctx, workoutID, userID); err != nil {
		return storageErr(err, ErrSavedWorkoutNotFound)
	}
	return nil
}
