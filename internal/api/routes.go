package api

import (
	"net/http"

	"planfit/planfit-app/internal/service"
	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires handlers onto the router. Identity and metrics
// middleware cover the whole API group; /ping and /metrics stay open.
func SetupRoutes(
	router *gin.Engine,
	planService service.PlanService,
	progressService service.ProgressService,
	workoutService service.WorkoutService,
	manager *metrics.Manager,
	registry *prometheus.Registry,
) {
	planHandler := NewPlanHandler(planService, manager)
	progressHandler := NewProgressHandler(progressService)
	workoutHandler := NewWorkoutHandler(workoutService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	apiV1 := router.Group("/api/v1")
	apiV1.Use(MetricsMiddleware(manager), IdentityMiddleware())
	{
		planGroup := apiV1.Group("/plans")
		{
			planGroup.POST("", planHandler.CreatePlan)
			planGroup.GET("", planHandler.ListPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.PATCH("/:planId", planHandler.RenamePlan)
			planGroup.DELETE("/:planId", planHandler.DeletePlan)
			planGroup.POST("/:planId/activate", planHandler.ActivatePlan)
			planGroup.POST("/:planId/duplicate", planHandler.DuplicatePlan)

			planGroup.POST("/:planId/exercises", planHandler.AddExercise)
			planGroup.GET("/:planId/exercises", planHandler.ListExercises)
			planGroup.PUT("/:planId/exercises/:exerciseId", planHandler.UpdateExercise)
			planGroup.DELETE("/:planId/exercises/:exerciseId", planHandler.RemoveExercise)

			planGroup.POST("/:planId/exercises/:exerciseId/progress", progressHandler.UpdateProgress)
			planGroup.POST("/:planId/exercises/:exerciseId/notes", progressHandler.AddNote)
			planGroup.GET("/:planId/progress", progressHandler.PlanProgress)

			planGroup.POST("/:planId/workouts", workoutHandler.SaveWorkout)
			planGroup.GET("/:planId/workouts", workoutHandler.ListSavedWorkouts)
		}

		apiV1.DELETE("/workouts/:workoutId", workoutHandler.DeleteSavedWorkout)
	}
}
