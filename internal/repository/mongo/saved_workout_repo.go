// internal/repository/mongo/saved_workout_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const savedWorkoutCollectionName = "saved_workouts"

// mongoSavedWorkoutRepository implements repository.SavedWorkoutRepository
type mongoSavedWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoSavedWorkoutRepository creates a new SavedWorkout repository.
func NewMongoSavedWorkoutRepository(db *mongo.Database) repository.SavedWorkoutRepository {
	return &mongoSavedWorkoutRepository{
		collection: db.Collection(savedWorkoutCollectionName),
	}
}

// Create inserts a new saved workout.
func (r *mongoSavedWorkoutRepository) Create(ctx context.Context, workout *domain.SavedWorkout) (primitive.ObjectID, error) {
	if workout.UserID == primitive.NilObjectID || workout.PlanID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("saved workout requires userId, planId and name")
	}
	if workout.ID == primitive.NilObjectID {
		workout.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByIDForUser retrieves one saved workout, scoped to its owner.
func (r *mongoSavedWorkoutRepository) GetByIDForUser(ctx context.Context, workoutID, userID primitive.ObjectID) (*domain.SavedWorkout, error) {
	var workout domain.SavedWorkout
	filter := bson.M{"_id": workoutID, "userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByPlanID retrieves the plan's saved workouts, newest first.
func (r *mongoSavedWorkoutRepository) GetByPlanID(ctx context.Context, planID, userID primitive.ObjectID) ([]domain.SavedWorkout, error) {
	var workouts []domain.SavedWorkout
	filter := bson.M{"planId": planID, "userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// Delete removes one saved workout, scoped to its owner.
func (r *mongoSavedWorkoutRepository) Delete(ctx context.Context, workoutID, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": workoutID, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByPlanID removes every saved workout under the plan; part of the
// plan delete cascade.
func (r *mongoSavedWorkoutRepository) DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID, "userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureSavedWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureSavedWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
