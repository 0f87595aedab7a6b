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

const consultancyCollectionName = "consultancy_requests"

// mongoConsultancyRepository implements repository.ConsultancyRequestRepository
type mongoConsultancyRepository struct {
	collection *mongo.Collection
}

// NewMongoConsultancyRepository creates a new ConsultancyRequest repository backed by MongoDB.
func NewMongoConsultancyRepository(db *mongo.Database) repository.ConsultancyRequestRepository {
	return &mongoConsultancyRepository{
		collection: db.Collection(consultancyCollectionName),
	}
}

// Create inserts a new consultancy request.
func (r *mongoConsultancyRepository) Create(ctx context.Context, req *domain.ConsultancyRequest) (primitive.ObjectID, error) {
	if req.ClientID == primitive.NilObjectID || req.NutritionistID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("consultancy request requires clientId and nutritionistId")
	}

	req.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = domain.ConsultancyPending
	}

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted consultancy request ID")
	}
	return insertedID, nil
}

// GetByID retrieves a consultancy request by ID.
func (r *mongoConsultancyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ConsultancyRequest, error) {
	var req domain.ConsultancyRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// FindPending returns the pending request for the (client, nutritionist) pair.
func (r *mongoConsultancyRepository) FindPending(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.ConsultancyRequest, error) {
	filter := bson.M{
		"clientId":       clientID,
		"nutritionistId": nutritionistID,
		"status":         domain.ConsultancyPending,
	}

	var req domain.ConsultancyRequest
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateResponse sets status and responseMessage. The filter on both _id and
// nutritionistId is the ownership check: a nutritionist can only mutate their
// own requests.
func (r *mongoConsultancyRepository) UpdateResponse(ctx context.Context, id, nutritionistID primitive.ObjectID, status domain.ConsultancyStatus, responseMessage string) error {
	filter := bson.M{"_id": id, "nutritionistId": nutritionistID}
	update := bson.M{
		"$set": bson.M{
			"status":          status,
			"responseMessage": responseMessage,
			"updatedAt":       time.Now().UTC(),
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

// Delete removes a request, filtered by nutritionist ownership.
func (r *mongoConsultancyRepository) Delete(ctx context.Context, id, nutritionistID primitive.ObjectID) error {
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

// ListByClient retrieves the client's requests, newest-first.
func (r *mongoConsultancyRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ConsultancyRequest, error) {
	return r.list(ctx, bson.M{"clientId": clientID})
}

// ListByNutritionist retrieves the nutritionist's requests, newest-first.
func (r *mongoConsultancyRepository) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.ConsultancyRequest, error) {
	return r.list(ctx, bson.M{"nutritionistId": nutritionistID})
}

func (r *mongoConsultancyRepository) list(ctx context.Context, filter bson.M) ([]domain.ConsultancyRequest, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []domain.ConsultancyRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// EnsureConsultancyIndexes creates necessary indexes for the consultancy_requests collection.
func EnsureConsultancyIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Supports the pending-pair duplicate check and client listings.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "nutritionistId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "nutritionistId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
