package api

import (
	"net/http"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// SaveWorkoutRequest defines the expected JSON for saving a workout.
type SaveWorkoutRequest struct {
	Name        string   `json:"name" binding:"required"`
	ExerciseIDs []string `json:"exerciseIds" binding:"required,min=1"`
}

// SavedWorkoutResponse is the DTO for returning a saved workout.
type SavedWorkoutResponse struct {
	ID          string    `json:"id"`
	PlanID      string    `json:"planId"`
	Name        string    `json:"name"`
	ExerciseIDs []string  `json:"exerciseIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapSavedWorkoutToResponse converts a domain.SavedWorkout to its DTO.
func MapSavedWorkoutToResponse(workout *domain.SavedWorkout) SavedWorkoutResponse {
	if workout == nil {
		return SavedWorkoutResponse{}
	}
	exerciseIDs := make([]string, len(workout.ExerciseIDs))
	for i, id := range workout.ExerciseIDs {
		exerciseIDs[i] = id.Hex()
	}
	return SavedWorkoutResponse{
		ID:          workout.ID.Hex(),
		PlanID:      workout.PlanID.Hex(),
		Name:        workout.Name,
		ExerciseIDs: exerciseIDs,
		CreatedAt:   workout.CreatedAt,
		UpdatedAt:   workout.UpdatedAt,
	}
}

// SaveWorkout handles POST /plans/:planId/workouts.
func (h *WorkoutHandler) SaveWorkout(c *gin.Context) {
	var req SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	exerciseIDs := make([]primitive.ObjectID, len(req.ExerciseIDs))
	for i, idStr := range req.ExerciseIDs {
		id, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise id format")
			return
		}
		exerciseIDs[i] = id
	}

	workout, err := h.workoutService.SaveWorkout(c.Request.Context(), userID, planID, req.Name, exerciseIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapSavedWorkoutToResponse(workout))
}

// ListSavedWorkouts handles GET /plans/:planId/workouts.
func (h *WorkoutHandler) ListSavedWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	workouts, err := h.workoutService.ListSavedWorkouts(c.Request.Context(), userID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	responses := make([]SavedWorkoutResponse, len(workouts))
	for i, workout := range workouts {
		responses[i] = MapSavedWorkoutToResponse(&workout)
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteSavedWorkout handles DELETE /workouts/:workoutId.
func (h *WorkoutHandler) DeleteSavedWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSavedWorkout(c.Request.Context(), userID, workoutID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
