package repository

import (
	"context"

	"powerplate/nutrition-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, profile *domain.CustomerProfile) error
	SetNutritionistStatus(ctx context.Context, id primitive.ObjectID, status domain.NutritionistStatus) error
	SetImageKey(ctx context.Context, id primitive.ObjectID, imageKey string) error
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// ConsultancyRequestRepository defines the interface for consultancy request data.
type ConsultancyRequestRepository interface {
	Create(ctx context.Context, req *domain.ConsultancyRequest) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ConsultancyRequest, error)
	// FindPending returns the pending request for the pair, or ErrNotFound.
	FindPending(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.ConsultancyRequest, error)
	// UpdateResponse sets status and responseMessage, filtered by nutritionist
	// ownership. Returns ErrNotFound if no request matches (id, nutritionist).
	UpdateResponse(ctx context.Context, id, nutritionistID primitive.ObjectID, status domain.ConsultancyStatus, responseMessage string) error
	// Delete is filtered by nutritionist ownership.
	Delete(ctx context.Context, id, nutritionistID primitive.ObjectID) error
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ConsultancyRequest, error)
	ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.ConsultancyRequest, error)
}

// MealPlanRequestRepository defines the interface for meal plan request data.
type MealPlanRequestRepository interface {
	Create(ctx context.Context, req *domain.MealPlanRequest) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlanRequest, error)
	FindPending(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.MealPlanRequest, error)
	// UpdateStatus filtered by nutritionist ownership.
	UpdateStatus(ctx context.Context, id, nutritionistID primitive.ObjectID, status domain.MealPlanRequestStatus) error
	// SetStatus updates status without an ownership filter. Used by the
	// lifecycle side effects (plan submit/delete) after ownership was checked.
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.MealPlanRequestStatus) error
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlanRequest, error)
	ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlanRequest, error)
}

// MealPlanRepository defines the interface for generated meal plan data.
type MealPlanRepository interface {
	Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	// GetByRequestID returns the plan referencing the given request, or ErrNotFound.
	GetByRequestID(ctx context.Context, requestID primitive.ObjectID) (*domain.MealPlan, error)
	// Delete is filtered by nutritionist ownership.
	Delete(ctx context.Context, id, nutritionistID primitive.ObjectID) error
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlan, error)
	ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlan, error)
}

// PaymentRepository defines the interface for payment data.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error)
	// FindByRequestAndStatus returns the payment matching (request, status), or ErrNotFound.
	FindByRequestAndStatus(ctx context.Context, requestID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error)
	// HasPaid reports whether a paid payment exists for (request, client).
	HasPaid(ctx context.Context, requestID, clientID primitive.ObjectID) (bool, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus) error
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
}

// ProgressRepository defines the interface for progress snapshot data.
type ProgressRepository interface {
	Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error)
	// ListByPlan returns entries for the plan, newest-first.
	ListByPlan(ctx context.Context, mealPlanID primitive.ObjectID) ([]domain.Progress, error)
}

// FeedbackRepository defines the interface for feedback data.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error)
	// FindByPair returns the feedback for (client, nutritionist), or ErrNotFound.
	FindByPair(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.Feedback, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.Feedback, error)
}
