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

const paymentCollectionName = "payments"

// mongoPaymentRepository implements repository.PaymentRepository
type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new Payment repository backed by MongoDB.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

// Create inserts a new payment. Returns ErrDuplicate when the referenceId
// collides with the unique index.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if payment.ClientID == primitive.NilObjectID || payment.MealPlanRequestID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("payment requires clientId and mealPlanRequestId")
	}
	if payment.ReferenceID == "" {
		return primitive.NilObjectID, errors.New("payment requires a referenceId")
	}

	payment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	payment.PaymentDate = now
	payment.UpdatedAt = now
	if payment.Status == "" {
		payment.Status = domain.PaymentProcessing
	}

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted payment ID")
	}
	return insertedID, nil
}

// GetByID retrieves a payment by ID.
func (r *mongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindByRequestAndStatus returns the payment matching (request, status).
func (r *mongoPaymentRepository) FindByRequestAndStatus(ctx context.Context, requestID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error) {
	filter := bson.M{"mealPlanRequestId": requestID, "status": status}

	var payment domain.Payment
	err := r.collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// HasPaid reports whether a paid payment exists for (request, client).
// This is the payment-gating predicate; it is evaluated fresh on every call.
func (r *mongoPaymentRepository) HasPaid(ctx context.Context, requestID, clientID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"mealPlanRequestId": requestID,
		"clientId":          clientID,
		"status":            domain.PaymentPaid,
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SetStatus overwrites the payment status unconditionally (admin verification).
func (r *mongoPaymentRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByClient retrieves the client's payments, newest-first.
func (r *mongoPaymentRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Payment, error) {
	return r.list(ctx, bson.M{"clientId": clientID})
}

// ListAll retrieves every payment, newest-first. Admin verification view.
func (r *mongoPaymentRepository) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return r.list(ctx, bson.M{})
}

func (r *mongoPaymentRepository) list(ctx context.Context, filter bson.M) ([]domain.Payment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "paymentDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []domain.Payment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// EnsurePaymentIndexes creates necessary indexes for the payments collection.
func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "referenceId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "mealPlanRequestId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "paymentDate", Value: -1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
