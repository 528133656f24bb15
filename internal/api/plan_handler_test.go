package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"planfit/planfit-app/internal/repository/memory"
	"planfit/planfit-app/internal/service"
	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	registry := prometheus.NewRegistry()
	manager := metrics.NewManager("planfit", "test_server", registry)

	planService := service.NewPlanService(
		store.Plans(), store.Exercises(), store.Progress(),
		store.SavedWorkouts(), store.Activity(), store.TxRunner(),
	)
	progressService := service.NewProgressService(store.Exercises(), store.Progress(), store.Activity(), manager)
	workoutService := service.NewWorkoutService(store.Plans(), store.Exercises(), store.SavedWorkouts())

	router := gin.New()
	SetupRoutes(router, planService, progressService, workoutService, manager, registry)
	return router
}

func doJSON(router *gin.Engine, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestIdentityMiddleware(t *testing.T) {
	router := newTestRouter(t)

	// Missing identity header.
	resp := doJSON(router, http.MethodGet, "/api/v1/plans", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Malformed identity.
	resp = doJSON(router, http.MethodGet, "/api/v1/plans", "not-an-object-id", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(router, http.MethodGet, "/api/v1/plans", primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestPlanLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	userID := primitive.NewObjectID().Hex()

	// Create a plan.
	resp := doJSON(router, http.MethodPost, "/api/v1/plans", userID, gin.H{
		"name":          "Block 1",
		"durationWeeks": 8,
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var plan PlanResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &plan))
	assert.False(t, plan.IsActive)

	// Add an exercise under it.
	resp = doJSON(router, http.MethodPost, "/api/v1/plans/"+plan.ID+"/exercises", userID, gin.H{
		"definitionId": primitive.NewObjectID().Hex(),
		"sets":         3,
		"reps":         "8-12",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var exercise ExerciseResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &exercise))

	// Activate it.
	resp = doJSON(router, http.MethodPost, "/api/v1/plans/"+plan.ID+"/activate", userID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// Log three sets, one at a time.
	progressPath := fmt.Sprintf("/api/v1/plans/%s/exercises/%s/progress", plan.ID, exercise.ID)
	var progress ProgressResponse
	for i := 0; i < 3; i++ {
		resp = doJSON(router, http.MethodPost, progressPath, userID, gin.H{
			"weekNumber":    1,
			"setsIncrement": 1,
		})
		require.Equal(t, http.StatusOK, resp.Code)
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &progress))
	}
	assert.Equal(t, 3, progress.SetsCompleted)
	assert.True(t, progress.IsExerciseDone)
	assert.NotNil(t, progress.CompletedAt)

	// Duplicate and confirm the copy is inactive.
	resp = doJSON(router, http.MethodPost, "/api/v1/plans/"+plan.ID+"/duplicate", userID, gin.H{})
	require.Equal(t, http.StatusCreated, resp.Code)
	var duplicate PlanResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &duplicate))
	assert.False(t, duplicate.IsActive)
	assert.NotEqual(t, plan.ID, duplicate.ID)

	// Delete the original.
	resp = doJSON(router, http.MethodDelete, "/api/v1/plans/"+plan.ID, userID, nil)
	require.Equal(t, http.StatusNoContent, resp.Code)
	resp = doJSON(router, http.MethodGet, "/api/v1/plans/"+plan.ID, userID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	router := newTestRouter(t)
	userID := primitive.NewObjectID().Hex()

	// Unknown plan -> 404.
	resp := doJSON(router, http.MethodGet, "/api/v1/plans/"+primitive.NewObjectID().Hex(), userID, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Malformed plan id -> 400, rejected at the boundary before any service call.
	resp = doJSON(router, http.MethodGet, "/api/v1/plans/garbage", userID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Invalid body -> 400.
	resp = doJSON(router, http.MethodPost, "/api/v1/plans", userID, gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Foreign user's plan -> 404, not 403: existence is not revealed.
	createResp := doJSON(router, http.MethodPost, "/api/v1/plans", userID, gin.H{
		"name": "Private", "durationWeeks": 4,
	})
	require.Equal(t, http.StatusCreated, createResp.Code)
	var plan PlanResponse
	require.NoError(t, json.Unmarshal(createResp.Body.Bytes(), &plan))

	otherUser := primitive.NewObjectID().Hex()
	resp = doJSON(router, http.MethodGet, "/api/v1/plans/"+plan.ID, otherUser, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPing(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusOK, recorder.Code)
}
