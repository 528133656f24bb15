// internal/repository/mongo/weekly_progress_repo.go
package mongo

import (
	"context"
	"errors"

	"planfit/planfit-app/internal/domain"
	"planfit/planfit-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const weeklyProgressCollectionName = "weekly_progress"

// mongoWeeklyProgressRepository implements repository.WeeklyProgressRepository
type mongoWeeklyProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoWeeklyProgressRepository creates a new WeeklyProgress repository.
func NewMongoWeeklyProgressRepository(db *mongo.Database) repository.WeeklyProgressRepository {
	return &mongoWeeklyProgressRepository{
		collection: db.Collection(weeklyProgressCollectionName),
	}
}

func keyFilter(key repository.ProgressKey) bson.M {
	return bson.M{
		"userId":     key.UserID,
		"planId":     key.PlanID,
		"exerciseId": key.ExerciseID,
		"weekNumber": key.WeekNumber,
	}
}

// ApplySetCompletion performs the whole counter transition as ONE
// FindOneAndUpdate with an aggregation-pipeline update: the server computes
// clamp, done-state and completedAt against the current document and applies
// them atomically. Concurrent callers for the same key can never observe or
// produce an intermediate state, and increments cannot be lost the way a
// read-modify-write pair would lose them. The upsert creates the row with
// setsCompleted seeded to 0 on first touch; the equality fields of the
// filter become part of the inserted document.
func (r *mongoWeeklyProgressRepository) ApplySetCompletion(ctx context.Context, key repository.ProgressKey, change repository.SetCompletionChange) (*domain.WeeklyProgress, bool, error) {
	if change.TotalSets < 1 {
		return nil, false, errors.New("totalSets must be a positive integer")
	}
	now := change.Now.UTC()

	var newSets interface{}
	if change.CompleteAll {
		newSets = change.TotalSets
	} else {
		newSets = bson.M{"$max": bson.A{0, bson.M{"$min": bson.A{
			change.TotalSets,
			bson.M{"$add": bson.A{"$setsCompleted", change.Increment}},
		}}}}
	}

	pipeline := mongo.Pipeline{
		// Seed defaults so a fresh upsert behaves like an existing row with
		// setsCompleted = 0, and stash the pre-write done flag before it is
		// recomputed. prevDone rides along in the document so the returned
		// row carries the transition.
		{{Key: "$set", Value: bson.M{
			"setsCompleted": bson.M{"$ifNull": bson.A{"$setsCompleted", 0}},
			"notes":         bson.M{"$ifNull": bson.A{"$notes", bson.A{}}},
			"prevDone":      bson.M{"$ifNull": bson.A{"$isExerciseDone", false}},
		}}},
		{{Key: "$set", Value: bson.M{
			"setsCompleted": newSets,
		}}},
		// Later stages see the clamped value from the stage above.
		{{Key: "$set", Value: bson.M{
			"isExerciseDone": bson.M{"$gte": bson.A{"$setsCompleted", change.TotalSets}},
		}}},
		{{Key: "$set", Value: bson.M{
			// Set once on first completion, removed again if the counter
			// drops back below the threshold.
			"completedAt": bson.M{"$cond": bson.A{
				"$isExerciseDone",
				bson.M{"$ifNull": bson.A{"$completedAt", now}},
				"$$REMOVE",
			}},
			"lastUpdatedAt": now,
		}}},
	}

	findOptions := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result struct {
		domain.WeeklyProgress `bson:",inline"`
		PrevDone              bool `bson:"prevDone"`
	}
	err := r.collection.FindOneAndUpdate(ctx, keyFilter(key), pipeline, findOptions).Decode(&result)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-touch upserts raced on the unique key; the row exists
		// now, so a single re-run applies cleanly.
		err = r.collection.FindOneAndUpdate(ctx, keyFilter(key), pipeline, findOptions).Decode(&result)
	}
	if err != nil {
		return nil, false, err
	}
	return &result.WeeklyProgress, result.PrevDone, nil
}

// AppendNote pushes a weekly note onto the row, upserting it if the user
// writes a note before logging any sets.
func (r *mongoWeeklyProgressRepository) AppendNote(ctx context.Context, key repository.ProgressKey, note domain.WeeklyNote) (*domain.WeeklyProgress, error) {
	update := bson.M{
		"$push": bson.M{"notes": note},
		"$set":  bson.M{"lastUpdatedAt": note.Date.UTC()},
		"$setOnInsert": bson.M{
			"setsCompleted":  0,
			"isExerciseDone": false,
		},
	}
	findOptions := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var progress domain.WeeklyProgress
	err := r.collection.FindOneAndUpdate(ctx, keyFilter(key), update, findOptions).Decode(&progress)
	if mongo.IsDuplicateKeyError(err) {
		err = r.collection.FindOneAndUpdate(ctx, keyFilter(key), update, findOptions).Decode(&progress)
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetByKey retrieves one progress row.
func (r *mongoWeeklyProgressRepository) GetByKey(ctx context.Context, key repository.ProgressKey) (*domain.WeeklyProgress, error) {
	var progress domain.WeeklyProgress
	err := r.collection.FindOne(ctx, keyFilter(key)).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// GetByPlanAndWeek lists one week's progress rows across a plan.
func (r *mongoWeeklyProgressRepository) GetByPlanAndWeek(ctx context.Context, planID, userID primitive.ObjectID, weekNumber int) ([]domain.WeeklyProgress, error) {
	var rows []domain.WeeklyProgress
	filter := bson.M{"userId": userID, "planId": planID, "weekNumber": weekNumber}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByPlanID removes all progress rows under the plan; part of the plan
// delete cascade.
func (r *mongoWeeklyProgressRepository) DeleteByPlanID(ctx context.Context, planID, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"planId": planID, "userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureWeeklyProgressIndexes creates necessary indexes. The unique compound
// index is what makes the upsert race benign: at most one row can ever exist
// per (user, plan, exercise, week).
func EnsureWeeklyProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "planId", Value: 1},
				{Key: "exerciseId", Value: 1},
				{Key: "weekNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
