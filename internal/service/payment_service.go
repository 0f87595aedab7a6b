package service

import (
	"context"
	"errors"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPaymentNotFound          = errors.New("payment not found")
	ErrProcessingPaymentExists  = errors.New("a processing payment already exists for this meal plan request")
	ErrDuplicateReferenceID     = errors.New("a payment with this reference ID already exists")
	ErrInvalidPaymentStatus     = errors.New("payment status must be one of processing, paid, rejected")
	ErrPaymentRequestMissing    = errors.New("meal plan request for this payment not found")
	ErrPaymentRequestNotOwned   = errors.New("meal plan request does not belong to this client")
	ErrPaymentReferenceRequired = errors.New("payment reference ID is required")
)

// --- Service Interface ---
type PaymentService interface {
	// Initiate records a customer's manual bank payment by reference ID.
	// The duplicate-processing check and the insert run under the shared
	// per-request lock so concurrent initiations cannot both pass the check.
	Initiate(ctx context.Context, clientID, requestID primitive.ObjectID, referenceID string) (*domain.Payment, error)
	// SetStatus is the admin verification step: an unconditional overwrite,
	// any state to any state.
	SetStatus(ctx context.Context, paymentID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error)
	// CanViewPlan is the payment gate: true iff a paid payment exists for
	// (request, client). Evaluated fresh on every call.
	CanViewPlan(ctx context.Context, clientID, requestID primitive.ObjectID) (bool, error)
	ListForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
}

// --- Service Implementation ---

type paymentService struct {
	paymentRepo repository.PaymentRepository
	requestRepo repository.MealPlanRequestRepository
	locks       *RequestLocks
	// amount is the fixed default charged per meal plan, from config.
	amount float64
}

// NewPaymentService creates a new instance of paymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	requestRepo repository.MealPlanRequestRepository,
	locks *RequestLocks,
	amount float64,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		requestRepo: requestRepo,
		locks:       locks,
		amount:      amount,
	}
}

// Initiate creates a processing payment for a meal plan request.
func (s *paymentService) Initiate(ctx context.Context, clientID, requestID primitive.ObjectID, referenceID string) (*domain.Payment, error) {
	if clientID == primitive.NilObjectID || requestID == primitive.NilObjectID {
		return nil, errors.New("client ID and request ID are required")
	}
	if referenceID == "" {
		return nil, ErrPaymentReferenceRequired
	}

	key := requestID.Hex()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// The request must exist before money is attached to it, and only its
	// owner may pay for it.
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentRequestMissing
		}
		return nil, err
	}
	if request.ClientID != clientID {
		return nil, ErrPaymentRequestNotOwned
	}

	// Only one processing payment per request. A rejected payment frees the
	// request for a new attempt.
	_, err = s.paymentRepo.FindByRequestAndStatus(ctx, requestID, domain.PaymentProcessing)
	if err == nil {
		return nil, ErrProcessingPaymentExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	payment := &domain.Payment{
		ClientID:          clientID,
		MealPlanRequestID: requestID,
		Amount:            s.amount,
		ReferenceID:       referenceID,
		Status:            domain.PaymentProcessing,
	}

	paymentID, err := s.paymentRepo.Create(ctx, payment)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateReferenceID
		}
		return nil, err
	}
	payment.ID = paymentID
	return payment, nil
}

// SetStatus overwrites a payment's status (admin verification).
func (s *paymentService) SetStatus(ctx context.Context, paymentID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error) {
	if paymentID == primitive.NilObjectID {
		return nil, errors.New("payment ID is required")
	}
	if !domain.ValidPaymentStatus(status) {
		return nil, ErrInvalidPaymentStatus
	}

	err := s.paymentRepo.SetStatus(ctx, paymentID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// CanViewPlan evaluates the payment gate.
func (s *paymentService) CanViewPlan(ctx context.Context, clientID, requestID primitive.ObjectID) (bool, error) {
	if clientID == primitive.NilObjectID || requestID == primitive.NilObjectID {
		return false, errors.New("client ID and request ID are required")
	}
	return s.paymentRepo.HasPaid(ctx, requestID, clientID)
}

// ListForClient retrieves the client's payments, newest-first.
func (s *paymentService) ListForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Payment, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.paymentRepo.ListByClient(ctx, clientID)
}

// ListAll retrieves all payments (admin verification queue).
func (s *paymentService) ListAll(ctx context.Context) ([]domain.Payment, error) {
	return s.paymentRepo.ListAll(ctx)
}
