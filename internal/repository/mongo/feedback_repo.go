package mongo

import (
	"context"
	"errors"
	"time"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const feedbackCollectionName = "feedback"

// mongoFeedbackRepository implements repository.FeedbackRepository
type mongoFeedbackRepository struct {
	collection *mongo.Collection
}

// NewMongoFeedbackRepository creates a new Feedback repository backed by MongoDB.
func NewMongoFeedbackRepository(db *mongo.Database) repository.FeedbackRepository {
	return &mongoFeedbackRepository{
		collection: db.Collection(feedbackCollectionName),
	}
}

// Create inserts feedback. Returns ErrDuplicate when the (client, nutritionist)
// pair already has feedback, via the unique compound index.
func (r *mongoFeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error) {
	if feedback.ClientID == primitive.NilObjectID || feedback.NutritionistID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("feedback requires clientId and nutritionistId")
	}
	if feedback.Rating < domain.FeedbackMinRating || feedback.Rating > domain.FeedbackMaxRating {
		return primitive.NilObjectID, errors.New("feedback rating must be between 1 and 5")
	}

	feedback.ID = primitive.NewObjectID()
	feedback.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted feedback ID")
	}
	return insertedID, nil
}

// FindByPair returns the feedback for (client, nutritionist), or ErrNotFound.
func (r *mongoFeedbackRepository) FindByPair(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.Feedback, error) {
	filter := bson.M{"clientId": clientID, "nutritionistId": nutritionistID}

	var feedback domain.Feedback
	err := r.collection.FindOne(ctx, filter).Decode(&feedback)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &feedback, nil
}

// Delete removes feedback unconditionally (admin moderation).
func (r *mongoFeedbackRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByNutritionist retrieves a nutritionist's feedback, newest-first.
func (r *mongoFeedbackRepository) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.Feedback, error) {
	filter := bson.M{"nutritionistId": nutritionistID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var feedback []domain.Feedback
	if err = cursor.All(ctx, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// EnsureFeedbackIndexes creates necessary indexes for the feedback collection.
func EnsureFeedbackIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// At most one feedback per (client, nutritionist) pair.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "nutritionistId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
