package service

import (
	"errors"
	"fmt"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"
)

// --- Error Definitions ---
// All service errors wrap one of the domain taxonomy sentinels so callers
// classify with errors.Is(err, domain.ErrNotFound) etc.
var (
	ErrPlanNotFound         = fmt.Errorf("%w: training plan", domain.ErrNotFound)
	ErrExerciseNotFound     = fmt.Errorf("%w: exercise", domain.ErrNotFound)
	ErrProgressNotFound     = fmt.Errorf("%w: weekly progress", domain.ErrNotFound)
	ErrSavedWorkoutNotFound = fmt.Errorf("%w: saved workout", domain.ErrNotFound)
)

func validationErr(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}

// storageErr classifies a repository failure: not-found surfaces as the
// typed not-found, anything else as a storage failure with the cause kept
// in the chain.
func storageErr(err error, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
