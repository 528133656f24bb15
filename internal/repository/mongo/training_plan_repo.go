// internal/repository/mongo/training_plan_repo.go
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

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.Name == "" || plan.DurationWeeks < 1 {
		return primitive.NilObjectID, errors.New("plan requires userId, name and a positive durationWeeks")
	}
	if plan.ID == primitive.NilObjectID {
		plan.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByIDForUser retrieves a single plan, scoped to its owner.
func (r *mongoTrainingPlanRepository) GetByIDForUser(ctx context.Context, planID, userID primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	filter := bson.M{"_id": planID, "userId": userID}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByUserID retrieves all plans owned by the user, newest first.
func (r *mongoTrainingPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	var plans []domain.TrainingPlan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	// Empty slice when the user has no plans; not an error.
	return plans, nil
}

// Rename updates the plan name, scoped to its owner.
func (r *mongoTrainingPlanRepository) Rename(ctx context.Context, planID, userID primitive.ObjectID, name string) error {
	filter := bson.M{"_id": planID, "userId": userID}
	update := bson.M{"$set": bson.M{"name": name, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateAllForUser clears isActive on every plan of the user except
// keepID. It deliberately writes every plan, not just the currently active
// ones: two concurrent activation transactions for the same user must
// overlap on at least one document so the transaction layer aborts and
// retries one of them instead of committing two active plans. Filtering on
// isActive would give them disjoint write sets when no plan is active yet.
func (r *mongoTrainingPlanRepository) DeactivateAllForUser(ctx context.Context, userID, keepID primitive.ObjectID) (int64, error) {
	filter := bson.M{"userId": userID}
	if keepID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": keepID}
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// SetActiveFlag flips isActive on a single plan, scoped to its owner.
func (r *mongoTrainingPlanRepository) SetActiveFlag(ctx context.Context, planID, userID primitive.ObjectID, active bool) error {
	filter := bson.M{"_id": planID, "userId": userID}
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the plan document itself. Dependent collections are the
// caller's (transactional) responsibility.
func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, planID, userID primitive.ObjectID) error {
	filter := bson.M{"_id": planID, "userId": userID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Plan didn't exist, or belongs to a different user.
		return repository.ErrNotFound
	}
	return nil
}

// CountActiveForUser counts the user's active plans (0 or 1 when the
// invariant holds).
func (r *mongoTrainingPlanRepository) CountActiveForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "isActive": true})
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Active-plan lookups
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
