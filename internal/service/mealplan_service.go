package service

import (
	"context"
	"errors"
	"time"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMealPlanRequestNotFound   = errors.New("meal plan request not found")
	ErrMealPlanNotFound          = errors.New("meal plan not found")
	ErrMealPlanRequestNotOwned   = errors.New("access denied: nutritionist does not own this meal plan request")
	ErrPlanAlreadySubmitted      = errors.New("a meal plan has already been submitted for this request")
	ErrPendingMealPlanRequest    = errors.New("a pending meal plan request already exists for this nutritionist")
	ErrMealPlanValidationFailed  = errors.New("meal plan requires client, nutritionist, start date, end date and a weekly plan")
	ErrInvalidMealPlanStatus     = errors.New("status must be one of pending, approved, rejected, created")
	ErrMealPlanNotPaid           = errors.New("meal plan is not available until payment is verified")
	ErrMealPlanStatusResetFailed = errors.New("meal plan submission rolled back: request status update failed")
)

// DeletePlanResult reports the outcome of a plan deletion. Warning is set
// when the plan was removed but its parent request could not be reset, so
// the caller can see which sub-step failed.
type DeletePlanResult struct {
	Deleted bool   `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

// --- Service Interface ---
type MealPlanService interface {
	// Apply files a new intake form. Duplicate-pending handling is
	// configurable; when disallowed the same pair rule as consultancy
	// requests applies.
	Apply(ctx context.Context, clientID, nutritionistID primitive.ObjectID, form domain.MealPlanRequest) (*domain.MealPlanRequest, error)
	SubmitGeneratedPlan(ctx context.Context, nutritionistID, clientID, requestID primitive.ObjectID, startDate, endDate time.Time, weeklyPlan domain.WeeklyPlan, notes string) (*domain.MealPlan, error)
	DeleteGeneratedPlan(ctx context.Context, nutritionistID, planID primitive.ObjectID) (*DeletePlanResult, error)
	UpdateRequestStatus(ctx context.Context, nutritionistID, requestID primitive.ObjectID, status domain.MealPlanRequestStatus) (*domain.MealPlanRequest, error)

	// GetPlanForCustomer is payment-gated: the paid-payment predicate is
	// re-evaluated on every fetch, never cached.
	GetPlanForCustomer(ctx context.Context, clientID, requestID primitive.ObjectID) (*domain.MealPlan, error)
	GetPlanForNutritionist(ctx context.Context, nutritionistID, planID primitive.ObjectID) (*domain.MealPlan, error)

	ListRequestsForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlanRequest, error)
	ListRequestsForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlanRequest, error)
	ListPlansForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlan, error)
}

// --- Service Implementation ---

type mealPlanService struct {
	requestRepo repository.MealPlanRequestRepository
	planRepo    repository.MealPlanRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	locks       *RequestLocks
	// allowDuplicateRequests preserves the historical behavior of letting a
	// client file several requests to the same nutritionist.
	allowDuplicateRequests bool
}

// NewMealPlanService creates a new instance of mealPlanService.
func NewMealPlanService(
	requestRepo repository.MealPlanRequestRepository,
	planRepo repository.MealPlanRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	locks *RequestLocks,
	allowDuplicateRequests bool,
) MealPlanService {
	return &mealPlanService{
		requestRepo:            requestRepo,
		planRepo:               planRepo,
		paymentRepo:            paymentRepo,
		userRepo:               userRepo,
		locks:                  locks,
		allowDuplicateRequests: allowDuplicateRequests,
	}
}

// === Request Lifecycle ===

// Apply inserts a new meal plan request with status pending.
func (s *mealPlanService) Apply(ctx context.Context, clientID, nutritionistID primitive.ObjectID, form domain.MealPlanRequest) (*domain.MealPlanRequest, error) {
	if clientID == primitive.NilObjectID || nutritionistID == primitive.NilObjectID {
		return nil, errors.New("client ID and nutritionist ID are required")
	}

	// Verify the target exists and is actually a nutritionist.
	nutritionist, err := s.userRepo.GetByID(ctx, nutritionistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNutritionistNotFound
		}
		return nil, err
	}
	if !nutritionist.IsNutritionist() {
		return nil, ErrNutritionistNotFound
	}

	if !s.allowDuplicateRequests {
		_, err := s.requestRepo.FindPending(ctx, clientID, nutritionistID)
		if err == nil {
			return nil, ErrPendingMealPlanRequest
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	request := &domain.MealPlanRequest{
		ClientID:        clientID,
		NutritionistID:  nutritionistID,
		BasicInfo:       form.BasicInfo,
		HealthInfo:      form.HealthInfo,
		DietaryInfo:     form.DietaryInfo,
		MealPrefs:       form.MealPrefs,
		GoalInfo:        form.GoalInfo,
		AdditionalPrefs: form.AdditionalPrefs,
		Status:          domain.MealPlanRequestPending,
	}

	requestID, err := s.requestRepo.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	request.ID = requestID
	return request, nil
}

// UpdateRequestStatus lets the nutritionist move a request between the four
// schema states. Nothing in the lifecycle triggers approved/rejected
// automatically; they are reachable only through this operation.
func (s *mealPlanService) UpdateRequestStatus(ctx context.Context, nutritionistID, requestID primitive.ObjectID, status domain.MealPlanRequestStatus) (*domain.MealPlanRequest, error) {
	if nutritionistID == primitive.NilObjectID || requestID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID and request ID are required")
	}
	if !domain.ValidMealPlanRequestStatus(status) {
		return nil, ErrInvalidMealPlanStatus
	}

	err := s.requestRepo.UpdateStatus(ctx, requestID, nutritionistID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanRequestNotFound
		}
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, requestID)
}

// === Plan Lifecycle ===

// SubmitGeneratedPlan inserts the nutritionist-authored plan and flips the
// referenced request to created. Both writes run under the per-request lock,
// and the insert is compensated if the status flip fails, so the pair cannot
// be observed half-applied.
func (s *mealPlanService) SubmitGeneratedPlan(ctx context.Context, nutritionistID, clientID, requestID primitive.ObjectID, startDate, endDate time.Time, weeklyPlan domain.WeeklyPlan, notes string) (*domain.MealPlan, error) {
	if clientID == primitive.NilObjectID || nutritionistID == primitive.NilObjectID ||
		startDate.IsZero() || endDate.IsZero() || weeklyPlan.IsEmpty() {
		return nil, ErrMealPlanValidationFailed
	}
	if requestID == primitive.NilObjectID {
		return nil, errors.New("meal plan request ID is required")
	}

	key := requestID.Hex()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	// Ownership and existence check on the request.
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanRequestNotFound
		}
		return nil, err
	}
	if request.NutritionistID != nutritionistID {
		return nil, ErrMealPlanRequestNotOwned
	}

	// created implies exactly one plan references this request.
	_, err = s.planRepo.GetByRequestID(ctx, requestID)
	if err == nil {
		return nil, ErrPlanAlreadySubmitted
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	plan := &domain.MealPlan{
		ClientID:          clientID,
		NutritionistID:    nutritionistID,
		MealPlanRequestID: &requestID,
		StartDate:         startDate,
		EndDate:           endDate,
		WeeklyPlan:        weeklyPlan,
		Notes:             notes,
	}

	planID, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPlanAlreadySubmitted
		}
		return nil, err
	}
	plan.ID = planID

	// Flip the request to created. If this fails, remove the plan again so
	// the two documents stay consistent.
	if err := s.requestRepo.SetStatus(ctx, requestID, domain.MealPlanRequestCreated); err != nil {
		_ = s.planRepo.Delete(ctx, planID, nutritionistID)
		return nil, ErrMealPlanStatusResetFailed
	}

	return plan, nil
}

// DeleteGeneratedPlan removes a plan the nutritionist owns and resets its
// parent request to pending. If the parent request is gone the deletion still
// succeeds and the result carries a warning naming the failed sub-step.
func (s *mealPlanService) DeleteGeneratedPlan(ctx context.Context, nutritionistID, planID primitive.ObjectID) (*DeletePlanResult, error) {
	if nutritionistID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID and plan ID are required")
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	if plan.NutritionistID != nutritionistID {
		// Not owned reads the same as not found, matching the repository's
		// ownership-filtered delete.
		return nil, ErrMealPlanNotFound
	}

	if plan.MealPlanRequestID == nil {
		// No back-reference; nothing to reset.
		if err := s.planRepo.Delete(ctx, planID, nutritionistID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrMealPlanNotFound
			}
			return nil, err
		}
		return &DeletePlanResult{Deleted: true}, nil
	}

	key := plan.MealPlanRequestID.Hex()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.planRepo.Delete(ctx, planID, nutritionistID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}

	result := &DeletePlanResult{Deleted: true}
	if err := s.requestRepo.SetStatus(ctx, *plan.MealPlanRequestID, domain.MealPlanRequestPending); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			result.Warning = "meal plan deleted, but its request no longer exists and was not reset to pending"
		} else {
			result.Warning = "meal plan deleted, but resetting the request to pending failed"
		}
	}
	return result, nil
}

// === Plan Reads ===

// GetPlanForCustomer fetches the plan for a request the client owns, gated by
// a paid payment.
func (s *mealPlanService) GetPlanForCustomer(ctx context.Context, clientID, requestID primitive.ObjectID) (*domain.MealPlan, error) {
	if clientID == primitive.NilObjectID || requestID == primitive.NilObjectID {
		return nil, errors.New("client ID and request ID are required")
	}

	plan, err := s.planRepo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	if plan.ClientID != clientID {
		return nil, ErrMealPlanNotFound
	}

	paid, err := s.paymentRepo.HasPaid(ctx, requestID, clientID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrMealPlanNotPaid
	}
	return plan, nil
}

// GetPlanForNutritionist fetches a plan the nutritionist authored; no payment
// gate applies to the author.
func (s *mealPlanService) GetPlanForNutritionist(ctx context.Context, nutritionistID, planID primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	if plan.NutritionistID != nutritionistID {
		return nil, ErrMealPlanNotFound
	}
	return plan, nil
}

// === Listings ===

func (s *mealPlanService) ListRequestsForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlanRequest, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.requestRepo.ListByClient(ctx, clientID)
}

func (s *mealPlanService) ListRequestsForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlanRequest, error) {
	if nutritionistID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID is required")
	}
	return s.requestRepo.ListByNutritionist(ctx, nutritionistID)
}

func (s *mealPlanService) ListPlansForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlan, error) {
	if nutritionistID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID is required")
	}
	return s.planRepo.ListByNutritionist(ctx, nutritionistID)
}
