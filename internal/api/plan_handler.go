package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/service"
	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
	metrics     *metrics.Manager
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService, manager *metrics.Manager) *PlanHandler {
	return &PlanHandler{planService: planService, metrics: manager}
}

// --- DTOs for API (Data Transfer Objects) ---

// CreatePlanRequest defines the expected JSON for creating a plan.
type CreatePlanRequest struct {
	Name          string `json:"name" binding:"required"`
	DurationWeeks int    `json:"durationWeeks" binding:"required,min=1"`
}

// RenamePlanRequest defines the expected JSON for renaming a plan.
type RenamePlanRequest struct {
	Name string `json:"name" binding:"required"`
}

// DuplicatePlanRequest defines the expected JSON for duplicating a plan.
type DuplicatePlanRequest struct {
	Name string `json:"name"` // Optional; defaults to "<source> (copy)"
}

// PlanResponse is the DTO for returning plan details.
type PlanResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DurationWeeks int       `json:"durationWeeks"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ExerciseRequest defines the expected JSON for adding/updating an exercise.
type ExerciseRequest struct {
	DefinitionID string   `json:"definitionId" binding:"required"`
	Sets         int      `json:"sets" binding:"required,min=1"`
	Reps         string   `json:"reps" binding:"required"`
	Weight       *float64 `json:"weight"`
	Duration     *int     `json:"duration"`
	Order        *int     `json:"order"`
	Comments     string   `json:"comments"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID           string    `json:"id"`
	PlanID       string    `json:"planId"`
	DefinitionID string    `json:"definitionId"`
	Sets         int       `json:"sets"`
	Reps         string    `json:"reps"`
	Weight       *float64  `json:"weight,omitempty"`
	Duration     *int      `json:"duration,omitempty"`
	Order        *int      `json:"order,omitempty"`
	Comments     string    `json:"comments,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MapPlanToResponse converts a domain.TrainingPlan to PlanResponse DTO.
func MapPlanToResponse(plan *domain.TrainingPlan) PlanResponse {
	if plan == nil {
		return PlanResponse{}
	}
	return PlanResponse{
		ID:            plan.ID.Hex(),
		Name:          plan.Name,
		DurationWeeks: plan.DurationWeeks,
		IsActive:      plan.IsActive,
		CreatedAt:     plan.CreatedAt,
		UpdatedAt:     plan.UpdatedAt,
	}
}

// MapPlansToResponse converts a slice of domain.TrainingPlan to DTOs.
func MapPlansToResponse(plans []domain.TrainingPlan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i, plan := range plans {
		responses[i] = MapPlanToResponse(&plan)
	}
	return responses
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(exercise *domain.Exercise) ExerciseResponse {
	if exercise == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:           exercise.ID.Hex(),
		PlanID:       exercise.PlanID.Hex(),
		DefinitionID: exercise.DefinitionID.Hex(),
		Sets:         exercise.Sets,
		Reps:         exercise.Reps,
		Weight:       exercise.Weight,
		Duration:     exercise.Duration,
		Order:        exercise.Order,
		Comments:     exercise.Comments,
		CreatedAt:    exercise.CreatedAt,
		UpdatedAt:    exercise.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, exercise := range exercises {
		responses[i] = MapExerciseToResponse(&exercise)
	}
	return responses
}

// --- Handler Methods ---

// CreatePlan handles POST /plans.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, req.Name, req.DurationWeeks)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// ListPlans handles GET /plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetPlan handles GET /plans/:planId.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), userID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// RenamePlan handles PATCH /plans/:planId.
func (h *PlanHandler) RenamePlan(c *gin.Context) {
	var req RenamePlanRequest
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

	plan, err := h.planService.RenamePlan(c.Request.Context(), userID, planID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// ActivatePlan handles POST /plans/:planId/activate.
func (h *PlanHandler) ActivatePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	plan, err := h.planService.SetActive(c.Request.Context(), userID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.CounterPlanLifecycleOps.WithLabelValues("activate").Inc()
	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// DeletePlan handles DELETE /plans/:planId.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.CounterPlanLifecycleOps.WithLabelValues("delete").Inc()
	c.Status(http.StatusNoContent)
}

// DuplicatePlan handles POST /plans/:planId/duplicate.
func (h *PlanHandler) DuplicatePlan(c *gin.Context) {
	// The body is optional; an absent name falls back to the default.
	var req DuplicatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
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

	duplicate, err := h.planService.DuplicatePlan(c.Request.Context(), userID, planID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.CounterPlanLifecycleOps.WithLabelValues("duplicate").Inc()
	c.JSON(http.StatusCreated, MapPlanToResponse(duplicate))
}

// AddExercise handles POST /plans/:planId/exercises.
func (h *PlanHandler) AddExercise(c *gin.Context) {
	var req ExerciseRequest
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
	exercise, ok := exerciseFromRequest(c, req)
	if !ok {
		return
	}

	created, err := h.planService.AddExercise(c.Request.Context(), userID, planID, exercise)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(created))
}

// UpdateExercise handles PUT /plans/:planId/exercises/:exerciseId.
func (h *PlanHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
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
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}
	exercise, ok := exerciseFromRequest(c, req)
	if !ok {
		return
	}
	exercise.ID = exerciseID

	updated, err := h.planService.UpdateExercise(c.Request.Context(), userID, planID, exercise)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(updated))
}

// RemoveExercise handles DELETE /plans/:planId/exercises/:exerciseId.
func (h *PlanHandler) RemoveExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.planService.RemoveExercise(c.Request.Context(), userID, planID, exerciseID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListExercises handles GET /plans/:planId/exercises.
func (h *PlanHandler) ListExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	exercises, err := h.planService.ListExercises(c.Request.Context(), userID, planID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

func exerciseFromRequest(c *gin.Context, req ExerciseRequest) (domain.Exercise, bool) {
	definitionID, err := primitive.ObjectIDFromHex(req.DefinitionID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid definitionId format")
		return domain.Exercise{}, false
	}
	return domain.Exercise{
		DefinitionID: definitionID,
		Sets:         req.Sets,
		Reps:         req.Reps,
		Weight:       req.Weight,
		Duration:     req.Duration,
		Order:        req.Order,
		Comments:     req.Comments,
	}, true
}
