package service

import (
	"context"
	"strings"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Service Interface ---

// PlanService is the plan lifecycle manager. SetActive, DeletePlan and
// DuplicatePlan are the transactional entry points; the rest is tenant-scoped
// CRUD over plans and their exercises.
type PlanService interface {
	CreatePlan(ctx context.Context, userID primitive.ObjectID, name string, durationWeeks int) (*domain.TrainingPlan, error)
	GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.TrainingPlan, error)
	ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error)
	RenamePlan(ctx context.Context, userID, planID primitive.ObjectID, name string) (*domain.TrainingPlan, error)

	// SetActive makes planID the user's single active plan: every other plan
	// is deactivated and planID activated inside one transaction.
	SetActive(ctx context.Context, userID, planID primitive.ObjectID) (*domain.TrainingPlan, error)
	// DeletePlan removes the plan and cascades over exercises, weekly
	// progress, activity entries and saved workouts, all inside one
	// transaction. A partial cascade never becomes visible.
	DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error
	// DuplicatePlan copies the plan and its exercises under fresh ids.
	// Progress and saved workouts are not copied; the duplicate is inactive.
	DuplicatePlan(ctx context.Context, userID, planID primitive.ObjectID, newName string) (*domain.TrainingPlan, error)

	AddExercise(ctx context.Context, userID, planID primitive.ObjectID, exercise domain.Exercise) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, planID primitive.ObjectID, exercise domain.Exercise) (*domain.Exercise, error)
	RemoveExercise(ctx context.Context, userID, planID, exerciseID primitive.ObjectID) error
	ListExercises(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.Exercise, error)
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	planRepo         repository.TrainingPlanRepository
	exerciseRepo     repository.ExerciseRepository
	progressRepo     repository.WeeklyProgressRepository
	savedWorkoutRepo repository.SavedWorkoutRepository
	activityRepo     repository.ActivityRepository
	txRunner         repository.TxRunner
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	planRepo repository.TrainingPlanRepository,
	exerciseRepo repository.ExerciseRepository,
	progressRepo repository.WeeklyProgressRepository,
	savedWorkoutRepo repository.SavedWorkoutRepository,
	activityRepo repository.ActivityRepository,
	txRunner repository.TxRunner,
) PlanService {
	return &planService{
		planRepo:         planRepo,
		exerciseRepo:     exerciseRepo,
		progressRepo:     progressRepo,
		savedWorkoutRepo: savedWorkoutRepo,
		activityRepo:     activityRepo,
		txRunner:         txRunner,
	}
}

// === Plan CRUD ===

func (s *planService) CreatePlan(ctx context.Context, userID primitive.ObjectID, name string, durationWeeks int) (*domain.TrainingPlan, error) {
	if userID == primitive.NilObjectID {
		return nil, validationErr("user id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("plan name is required")
	}
	if durationWeeks < 1 {
		return nil, validationErr("durationWeeks must be >= 1")
	}

	plan := &domain.TrainingPlan{
		UserID:        userID,
		Name:          name,
		DurationWeeks: durationWeeks,
		IsActive:      false,
	}
	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	plan.ID = planID
	return plan, nil
}

func (s *planService) GetPlan(ctx context.Context, userID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	plan, err := s.planRepo.GetByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	return plan, nil
}

func (s *planService) ListPlans(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	if userID == primitive.NilObjectID {
		return nil, validationErr("user id is required")
	}
	plans, err := s.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	return plans, nil
}

func (s *planService) RenamePlan(ctx context.Context, userID, planID primitive.ObjectID, name string) (*domain.TrainingPlan, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr("plan name is required")
	}
	if err := s.planRepo.Rename(ctx, planID, userID, name); err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	plan, err := s.planRepo.GetByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	return plan, nil
}

// === Lifecycle: SetActive ===

// SetActive enforces the single-active-plan invariant. Existence and
// ownership are checked before any mutation, then deactivate-others and
// activate-target run inside one transaction: a crash mid-transition can
// never leave two plans active, or none when one was requested.
func (s *planService) SetActive(ctx context.Context, userID, planID primitive.ObjectID) (*domain.TrainingPlan, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}

	err := s.txRunner.WithinTransaction(ctx, func(txCtx context.Context) error {
		// Fail before mutating anything.
		if _, err := s.planRepo.GetByIDForUser(txCtx, planID, userID); err != nil {
			return err
		}
		if _, err := s.planRepo.DeactivateAllForUser(txCtx, userID, planID); err != nil {
			return err
		}
		return s.planRepo.SetActiveFlag(txCtx, planID, userID, true)
	})
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}

	plan, err := s.planRepo.GetByIDForUser(ctx, planID, userID)
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	return plan, nil
}

// === Lifecycle: DeletePlan ===

// DeletePlan runs the full cascade in one transaction, in dependency order:
// exercise ids are captured before the exercises are deleted (the activity
// log keys off exercise id, not plan id), and the plan row goes last so an
// aborted transaction leaves the plan visible and the delete retryable.
func (s *planService) DeletePlan(ctx context.Context, userID, planID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return validationErr("user and plan ids are required")
	}

	err := s.txRunner.WithinTransaction(ctx, func(txCtx context.Context) error {
		// 1. Ownership check; no side effects on failure.
		if _, err := s.planRepo.GetByIDForUser(txCtx, planID, userID); err != nil {
			return err
		}
		// 2. Capture exercise ids before they go away.
		exerciseIDs, err := s.exerciseRepo.IDsByPlanID(txCtx, planID, userID)
		if err != nil {
			return err
		}
		// 3-5. Dependent collections.
		if _, err := s.exerciseRepo.DeleteByPlanID(txCtx, planID, userID); err != nil {
			return err
		}
		if _, err := s.progressRepo.DeleteByPlanID(txCtx, planID, userID); err != nil {
			return err
		}
		if _, err := s.activityRepo.DeleteByExerciseIDs(txCtx, exerciseIDs, userID); err != nil {
			return err
		}
		if _, err := s.savedWorkoutRepo.DeleteByPlanID(txCtx, planID, userID); err != nil {
			return err
		}
		// 6. The plan itself, last. Its matched count is the success signal.
		return s.planRepo.Delete(txCtx, planID, userID)
	})
	if err != nil {
		return storageErr(err, ErrPlanNotFound)
	}

	log.WithFields(log.Fields{
		"userId": userID.Hex(),
		"planId": planID.Hex(),
	}).Info("training plan deleted")
	return nil
}

// === Lifecycle: DuplicatePlan ===

// DuplicatePlan copies the plan document and its exercises inside one
// transaction. The duplicate gets a fresh identity, starts inactive, and
// begins with a clean progress history.
func (s *planService) DuplicatePlan(ctx context.Context, userID, planID primitive.ObjectID, newName string) (*domain.TrainingPlan, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}

	var duplicate *domain.TrainingPlan
	err := s.txRunner.WithinTransaction(ctx, func(txCtx context.Context) error {
		source, err := s.planRepo.GetByIDForUser(txCtx, planID, userID)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(newName)
		if name == "" {
			name = source.Name + " (copy)"
		}
		duplicate = &domain.TrainingPlan{
			UserID:        userID,
			Name:          name,
			DurationWeeks: source.DurationWeeks,
			IsActive:      false, // Duplicates are never auto-activated
		}
		newPlanID, err := s.planRepo.Create(txCtx, duplicate)
		if err != nil {
			return err
		}
		duplicate.ID = newPlanID

		exercises, err := s.exerciseRepo.GetByPlanID(txCtx, planID, userID)
		if err != nil {
			return err
		}
		copies := make([]domain.Exercise, len(exercises))
		for i, exercise := range exercises {
			copied := exercise
			copied.ID = primitive.NewObjectID()
			copied.PlanID = newPlanID
			copies[i] = copied
		}
		return s.exerciseRepo.CreateMany(txCtx, copies)
	})
	if err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	return duplicate, nil
}

// === Exercise CRUD ===

func (s *planService) AddExercise(ctx context.Context, userID, planID primitive.ObjectID, exercise domain.Exercise) (*domain.Exercise, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	if exercise.Sets < 1 {
		return nil, validationErr("sets must be >= 1")
	}

	// The parent plan must exist and belong to the caller.
	if _, err := s.planRepo.GetByIDForUser(ctx, planID, userID); err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}

	exercise.ID = primitive.NilObjectID
	exercise.UserID = userID
	exercise.PlanID = planID
	exerciseID, err := s.exerciseRepo.Create(ctx, &exercise)
	if err != nil {
		return nil, storageErr(err, ErrExerciseNotFound)
	}
	exercise.ID = exerciseID
	return &exercise, nil
}

func (s *planService) UpdateExercise(ctx context.Context, userID, planID primitive.ObjectID, exercise domain.Exercise) (*domain.Exercise, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID || exercise.ID == primitive.NilObjectID {
		return nil, validationErr("user, plan and exercise ids are required")
	}
	if exercise.Sets < 1 {
		return nil, validationErr("sets must be >= 1")
	}

	exercise.UserID = userID
	exercise.PlanID = planID
	if err := s.exerciseRepo.Update(ctx, &exercise); err != nil {
		return nil, storageErr(err, ErrExerciseNotFound)
	}
	updated, err := s.exerciseRepo.GetByIDForUser(ctx, exercise.ID, userID)
	if err != nil {
		return nil, storageErr(err, ErrExerciseNotFound)
	}
	return updated, nil
}

func (s *planService) RemoveExercise(ctx context.Context, userID, planID, exerciseID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return validationErr("user, plan and exercise ids are required")
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID, planID, userID); err != nil {
		return storageErr(err, ErrExerciseNotFound)
	}
	return nil
}

func (s *planService) ListExercises(ctx context.Context, userID, planID primitive.ObjectID) ([]domain.Exercise, error) {
	if userID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, validationErr("user and plan ids are required")
	}
	if _, err := s.planRepo.GetByIDForUser(ctx, planID, userID); err != nil {
		return nil, storageErr(err, ErrPlanNotFound)
	}
	exercises, err := s.exerciseRepo.GetByPlanID(ctx, planID, userID)
	if err != nil {
		return nil, storageErr(err, ErrExerciseNotFound)
	}
	return exercises, nil
}
