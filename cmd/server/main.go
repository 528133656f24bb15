package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planfit/planfit-app/internal/api"
	"planfit/planfit-app/internal/config"
	"planfit/planfit-app/internal/repository"
	"planfit/planfit-app/internal/repository/memory"
	mongorepo "planfit/planfit-app/internal/repository/mongo"
	"planfit/planfit-app/internal/service"
	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.Info("Starting planfit server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	log.Info("Configuration loaded.")

	// --- Store wiring ---
	// Repositories and the transaction runner are constructed here and
	// injected; nothing below holds implicit global store state.
	var (
		planRepo         repository.TrainingPlanRepository
		exerciseRepo     repository.ExerciseRepository
		progressRepo     repository.WeeklyProgressRepository
		savedWorkoutRepo repository.SavedWorkoutRepository
		activityRepo     repository.ActivityRepository
		txRunner         repository.TxRunner
	)

	switch cfg.Database.Driver {
	case "memory":
		log.Warn("Using in-memory store; data will not survive a restart.")
		store := memory.NewStore()
		planRepo = store.Plans()
		exerciseRepo = store.Exercises()
		progressRepo = store.Progress()
		savedWorkoutRepo = store.SavedWorkouts()
		activityRepo = store.Activity()
		txRunner = store.TxRunner()

	default:
		dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Info("Disconnecting MongoDB...")
			if err := mongorepo.DisconnectDB(dbClient); err != nil {
				log.Errorf("Failed to disconnect MongoDB: %v", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.Info("Database connection established.")

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			if err := mongorepo.EnsureTrainingPlanIndexes(ctx, appDB.Collection("training_plans")); err != nil {
				log.Warnf("training_plans index creation failed: %v", err)
			}
			if err := mongorepo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises")); err != nil {
				log.Warnf("exercises index creation failed: %v", err)
			}
			if err := mongorepo.EnsureWeeklyProgressIndexes(ctx, appDB.Collection("weekly_progress")); err != nil {
				log.Warnf("weekly_progress index creation failed: %v", err)
			}
			if err := mongorepo.EnsureSavedWorkoutIndexes(ctx, appDB.Collection("saved_workouts")); err != nil {
				log.Warnf("saved_workouts index creation failed: %v", err)
			}
			if err := mongorepo.EnsureActivityIndexes(ctx, appDB.Collection("activity_log")); err != nil {
				log.Warnf("activity_log index creation failed: %v", err)
			}
			log.Info("Index creation process completed.")
		}()

		planRepo = mongorepo.NewMongoTrainingPlanRepository(appDB)
		exerciseRepo = mongorepo.NewMongoExerciseRepository(appDB)
		progressRepo = mongorepo.NewMongoWeeklyProgressRepository(appDB)
		savedWorkoutRepo = mongorepo.NewMongoSavedWorkoutRepository(appDB)
		activityRepo = mongorepo.NewMongoActivityRepository(appDB)
		txRunner = mongorepo.NewMongoTxRunner(dbClient)
	}

	// --- Telemetry ---
	registry := prometheus.NewRegistry()
	manager := metrics.NewManager("planfit", "server", registry)

	// --- Services ---
	log.Info("Initializing services...")
	planService := service.NewPlanService(planRepo, exerciseRepo, progressRepo, savedWorkoutRepo, activityRepo, txRunner)
	progressService := service.NewProgressService(exerciseRepo, progressRepo, activityRepo, manager)
	workoutService := service.NewWorkoutService(planRepo, exerciseRepo, savedWorkoutRepo)

	// --- Router ---
	router := gin.Default()
	log.Info("Setting up API routes...")
	api.SetupRoutes(router, planService, progressService, workoutService, manager, registry)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Infof("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}
