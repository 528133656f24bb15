// internal/repository/mongo/activity_repo.go
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

const activityCollectionName = "activity_log"

// mongoActivityRepository implements repository.ActivityRepository
type mongoActivityRepository struct {
	collection *mongo.Collection
}

// NewMongoActivityRepository creates a new activity log repository.
func NewMongoActivityRepository(db *mongo.Database) repository.ActivityRepository {
	return &mongoActivityRepository{
		collection: db.Collection(activityCollectionName),
	}
}

// Append inserts one activity entry.
func (r *mongoActivityRepository) Append(ctx context.Context, entry *domain.ActivityEntry) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("activity entry requires userId and exerciseId")
	}
	if entry.ID == primitive.NilObjectID {
		entry.ID = primitive.NewObjectID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted activity ID")
	}
	return insertedID, nil
}

// GetByExerciseID lists a single exercise's activity, newest first.
func (r *mongoActivityRepository) GetByExerciseID(ctx context.Context, exerciseID, userID primitive.ObjectID) ([]domain.ActivityEntry, error) {
	var entries []domain.ActivityEntry
	filter := bson.M{"exerciseId": exerciseID, "userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByExerciseIDs removes every entry referencing any of the given
// exercise ids, scoped to the user. The plan delete cascade calls this with
// the ids it captured before deleting the exercises themselves.
func (r *mongoActivityRepository) DeleteByExerciseIDs(ctx context.Context, exerciseIDs []primitive.ObjectID, userID primitive.ObjectID) (int64, error) {
	if len(exerciseIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"userId":     userID,
		"exerciseId": bson.M{"$in": exerciseIDs},
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureActivityIndexes creates necessary indexes. Call during startup.
func EnsureActivityIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
