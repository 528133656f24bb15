package api

import (
	"net/http"
	"strconv"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// --- DTOs ---

// UpdateProgressRequest defines the expected JSON for a set-completion update.
type UpdateProgressRequest struct {
	WeekNumber    int  `json:"weekNumber" binding:"required,min=1"`
	SetsIncrement int  `json:"setsIncrement"`           // Signed; 0 is a valid no-op
	TotalSets     int  `json:"totalSets" binding:"min=0"` // 0 = use the exercise's sets
	CompleteAll   bool `json:"completeAll"`
}

// AddNoteRequest defines the expected JSON for a weekly note.
type AddNoteRequest struct {
	WeekNumber int    `json:"weekNumber" binding:"required,min=1"`
	Text       string `json:"text" binding:"required"`
}

// WeeklyNoteResponse is the DTO for a weekly note.
type WeeklyNoteResponse struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

// ProgressResponse is the DTO for returning a progress row.
type ProgressResponse struct {
	ID             string               `json:"id"`
	PlanID         string               `json:"planId"`
	ExerciseID     string               `json:"exerciseId"`
	WeekNumber     int                  `json:"weekNumber"`
	SetsCompleted  int                  `json:"setsCompleted"`
	IsExerciseDone bool                 `json:"isExerciseDone"`
	CompletedAt    *time.Time           `json:"completedAt,omitempty"`
	LastUpdatedAt  time.Time            `json:"lastUpdatedAt"`
	Notes          []WeeklyNoteResponse `json:"notes"`
}

// MapProgressToResponse converts a domain.WeeklyProgress to its DTO.
func MapProgressToResponse(progress *domain.WeeklyProgress) ProgressResponse {
	if progress == nil {
		return ProgressResponse{}
	}
	notes := make([]WeeklyNoteResponse, len(progress.Notes))
	for i, note := range progress.Notes {
		notes[i] = WeeklyNoteResponse{ID: note.ID, Date: note.Date, Text: note.Text}
	}
	return ProgressResponse{
		ID:             progress.ID.Hex(),
		PlanID:         progress.PlanID.Hex(),
		ExerciseID:     progress.ExerciseID.Hex(),
		WeekNumber:     progress.WeekNumber,
		SetsCompleted:  progress.SetsCompleted,
		IsExerciseDone: progress.IsExerciseDone,
		CompletedAt:    progress.CompletedAt,
		LastUpdatedAt:  progress.LastUpdatedAt,
		Notes:          notes,
	}
}

// --- Handler Methods ---

// UpdateProgress handles POST /plans/:planId/exercises/:exerciseId/progress.
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	var req UpdateProgressRequest
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

	progress, err := h.progressService.UpdateSetCompletion(
		c.Request.Context(),
		userID, planID, exerciseID,
		req.WeekNumber, req.SetsIncrement, req.TotalSets, req.CompleteAll,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressToResponse(progress))
}

// AddNote handles POST /plans/:planId/exercises/:exerciseId/notes.
func (h *ProgressHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
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

	progress, err := h.progressService.AddWeeklyNote(
		c.Request.Context(), userID, planID, exerciseID, req.WeekNumber, req.Text,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProgressToResponse(progress))
}

// PlanProgress handles GET /plans/:planId/progress?week=N.
func (h *ProgressHandler) PlanProgress(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}
	week, err := strconv.Atoi(c.DefaultQuery("week", "1"))
	if err != nil || week < 1 {
		abortWithError(c, http.StatusBadRequest, "Invalid week parameter")
		return
	}

	rows, err := h.progressService.PlanProgress(c.Request.Context(), userID, planID, week)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	responses := make([]ProgressResponse, len(rows))
	for i, row := range rows {
		responses[i] = MapProgressToResponse(&row)
	}
	c.JSON(http.StatusOK, responses)
}
