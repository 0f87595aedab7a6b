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

const mealPlanCollectionName = "meal_plans"

// mongoMealPlanRepository implements repository.MealPlanRepository
type mongoMealPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoMealPlanRepository creates a new MealPlan repository backed by MongoDB.
func NewMongoMealPlanRepository(db *mongo.Database) repository.MealPlanRepository {
	return &mongoMealPlanRepository{
		collection: db.Collection(mealPlanCollectionName),
	}
}

// Create inserts a new meal plan.
func (r *mongoMealPlanRepository) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.NutritionistID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("meal plan requires clientId and nutritionistId")
	}

	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Unique sparse index on mealPlanRequestId: one plan per request.
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted meal plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a meal plan by ID.
func (r *mongoMealPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	var plan domain.MealPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByRequestID returns the plan referencing the given meal plan request.
func (r *mongoMealPlanRepository) GetByRequestID(ctx context.Context, requestID primitive.ObjectID) (*domain.MealPlan, error) {
	var plan domain.MealPlan
	err := r.collection.FindOne(ctx, bson.M{"mealPlanRequestId": requestID}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Delete removes a plan, filtered by nutritionist ownership.
func (r *mongoMealPlanRepository) Delete(ctx context.Context, id, nutritionistID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "nutritionistId": nutritionistID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByClient retrieves the client's plans, newest-first.
func (r *mongoMealPlanRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlan, error) {
	return r.list(ctx, bson.M{"clientId": clientID})
}

// ListByNutritionist retrieves the nutritionist's plans, newest-first.
func (r *mongoMealPlanRepository) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlan, error) {
	return r.list(ctx, bson.M{"nutritionistId": nutritionistID})
}

func (r *mongoMealPlanRepository) list(ctx context.Context, filter bson.M) ([]domain.MealPlan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []domain.MealPlan
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// EnsureMealPlanIndexes creates necessary indexes for the meal_plans collection.
func EnsureMealPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One plan per request; sparse because early plans may lack a back-reference.
			Keys:    bson.D{{Key: "mealPlanRequestId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "nutritionistId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
