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

const mealPlanRequestCollectionName = "meal_plan_requests"

// mongoMealPlanRequestRepository implements repository.MealPlanRequestRepository
type mongoMealPlanRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoMealPlanRequestRepository creates a new MealPlanRequest repository backed by MongoDB.
func NewMongoMealPlanRequestRepository(db *mongo.Database) repository.MealPlanRequestRepository {
	return &mongoMealPlanRequestRepository{
		collection: db.Collection(mealPlanRequestCollectionName),
	}
}

// Create inserts a new meal plan request.
func (r *mongoMealPlanRequestRepository) Create(ctx context.Context, req *domain.MealPlanRequest) (primitive.ObjectID, error) {
	if req.ClientID == primitive.NilObjectID || req.NutritionistID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("meal plan request requires clientId and nutritionistId")
	}

	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.MealPlanRequestPending
	}

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted meal plan request ID")
	}
	return insertedID, nil
}

// GetByID retrieves a meal plan request by ID.
func (r *mongoMealPlanRequestRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlanRequest, error) {
	var req domain.MealPlanRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindPending returns a pending request for the (client, nutritionist) pair.
func (r *mongoMealPlanRequestRepository) FindPending(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.MealPlanRequest, error) {
	filter := bson.M{
		"clientId":       clientID,
		"nutritionistId": nutritionistID,
		"status":         domain.MealPlanRequestPending,
	}

	var req domain.MealPlanRequest
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateStatus sets the status, filtered by nutritionist ownership.
func (r *mongoMealPlanRequestRepository) UpdateStatus(ctx context.Context, id, nutritionistID primitive.ObjectID, status domain.MealPlanRequestStatus) error {
	filter := bson.M{"_id": id, "nutritionistId": nutritionistID}
	return r.setStatus(ctx, filter, status)
}

// SetStatus sets the status without an ownership filter; callers are expected
// to have verified ownership already (plan submit/delete side effects).
func (r *mongoMealPlanRequestRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.MealPlanRequestStatus) error {
	return r.setStatus(ctx, bson.M{"_id": id}, status)
}

func (r *mongoMealPlanRequestRepository) setStatus(ctx context.Context, filter bson.M, status domain.MealPlanRequestStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByClient retrieves the client's requests, newest-first.
func (r *mongoMealPlanRequestRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlanRequest, error) {
	return r.list(ctx, bson.M{"clientId": clientID})
}

// ListByNutritionist retrieves the nutritionist's requests, newest-first.
func (r *mongoMealPlanRequestRepository) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlanRequest, error) {
	return r.list(ctx, bson.M{"nutritionistId": nutritionistID})
}

func (r *mongoMealPlanRequestRepository) list(ctx context.Context, filter bson.M) ([]domain.MealPlanRequest, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []domain.MealPlanRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// EnsureMealPlanRequestIndexes creates necessary indexes for the meal_plan_requests collection.
func EnsureMealPlanRequestIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "nutritionistId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
