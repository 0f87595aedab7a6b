package service

import (
	"context"
	"testing"
	"time"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mealPlanFixture struct {
	svc            MealPlanService
	requestRepo    *fakeMealPlanRequestRepo
	planRepo       *fakeMealPlanRepo
	paymentRepo    *fakePaymentRepo
	userRepo       *fakeUserRepo
	clientID       primitive.ObjectID
	nutritionistID primitive.ObjectID
}

func newMealPlanFixture(t *testing.T, allowDuplicates bool) *mealPlanFixture {
	t.Helper()
	requestRepo := newFakeMealPlanRequestRepo()
	planRepo := newFakeMealPlanRepo()
	paymentRepo := newFakePaymentRepo()
	userRepo := newFakeUserRepo()

	nutritionistID, err := userRepo.Create(context.Background(), &domain.User{
		Name:  "Nadia",
		Email: "nadia@example.com",
		Role:  domain.RoleNutritionist,
	})
	require.NoError(t, err)

	return &mealPlanFixture{
		svc:            NewMealPlanService(requestRepo, planRepo, paymentRepo, userRepo, NewRequestLocks(), allowDuplicates),
		requestRepo:    requestRepo,
		planRepo:       planRepo,
		paymentRepo:    paymentRepo,
		userRepo:       userRepo,
		clientID:       primitive.NewObjectID(),
		nutritionistID: nutritionistID,
	}
}

func (f *mealPlanFixture) apply(t *testing.T) *domain.MealPlanRequest {
	t.Helper()
	req, err := f.svc.Apply(context.Background(), f.clientID, f.nutritionistID, domain.MealPlanRequest{
		BasicInfo: domain.BasicInfo{Weight: 82, Height: 178, Age: 34, Gender: "female", ActivityLevel: "moderate"},
		GoalInfo:  domain.GoalInfo{Goal: "weight loss", TargetWeight: 72},
	})
	require.NoError(t, err)
	return req
}

func (f *mealPlanFixture) submit(t *testing.T, requestID primitive.ObjectID) *domain.MealPlan {
	t.Helper()
	plan, err := f.svc.SubmitGeneratedPlan(context.Background(), f.nutritionistID, f.clientID, requestID,
		time.Now(), time.Now().AddDate(0, 0, 7), sampleWeeklyPlan(), "High protein week")
	require.NoError(t, err)
	return plan
}

func TestApplyCreatesPendingRequest(t *testing.T) {
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	assert.Equal(t, domain.MealPlanRequestPending, req.Status)
	assert.False(t, req.ID.IsZero())
}

func TestApplyTargetMustBeNutritionist(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)

	_, err := f.svc.Apply(ctx, f.clientID, primitive.NewObjectID(), domain.MealPlanRequest{})
	assert.ErrorIs(t, err, ErrNutritionistNotFound)

	// A fellow customer is not a valid target either.
	customerID, err := f.userRepo.Create(ctx, &domain.User{Name: "Carl", Email: "carl@example.com", Role: domain.RoleCustomer})
	require.NoError(t, err)
	_, err = f.svc.Apply(ctx, f.clientID, customerID, domain.MealPlanRequest{})
	assert.ErrorIs(t, err, ErrNutritionistNotFound)
}

func TestApplyDuplicatePolicy(t *testing.T) {
	ctx := context.Background()

	// Default policy: several open requests to the same nutritionist are fine.
	f := newMealPlanFixture(t, true)
	f.apply(t)
	_, err := f.svc.Apply(ctx, f.clientID, f.nutritionistID, domain.MealPlanRequest{})
	assert.NoError(t, err)

	// Strict policy: a second pending request for the pair is a conflict.
	f = newMealPlanFixture(t, false)
	f.apply(t)
	_, err = f.svc.Apply(ctx, f.clientID, f.nutritionistID, domain.MealPlanRequest{})
	assert.ErrorIs(t, err, ErrPendingMealPlanRequest)
}

func TestSubmitPlanAdvancesRequestToCreated(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)

	plan := f.submit(t, req.ID)
	require.NotNil(t, plan.MealPlanRequestID)
	assert.Equal(t, req.ID, *plan.MealPlanRequestID)

	updated, err := f.requestRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MealPlanRequestCreated, updated.Status)
}

func TestSubmitPlanTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	f.submit(t, req.ID)

	_, err := f.svc.SubmitGeneratedPlan(ctx, f.nutritionistID, f.clientID, req.ID,
		time.Now(), time.Now().AddDate(0, 0, 7), sampleWeeklyPlan(), "")
	assert.ErrorIs(t, err, ErrPlanAlreadySubmitted)
}

func TestSubmitPlanOwnership(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)

	_, err := f.svc.SubmitGeneratedPlan(ctx, primitive.NewObjectID(), f.clientID, req.ID,
		time.Now(), time.Now().AddDate(0, 0, 7), sampleWeeklyPlan(), "")
	assert.ErrorIs(t, err, ErrMealPlanRequestNotOwned)
}

func TestSubmitPlanValidation(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)

	// An all-empty weekly plan is rejected before anything is written.
	_, err := f.svc.SubmitGeneratedPlan(ctx, f.nutritionistID, f.clientID, req.ID,
		time.Now(), time.Now().AddDate(0, 0, 7), domain.WeeklyPlan{}, "")
	assert.ErrorIs(t, err, ErrMealPlanValidationFailed)

	_, err = f.svc.SubmitGeneratedPlan(ctx, f.nutritionistID, f.clientID, req.ID,
		time.Time{}, time.Now(), sampleWeeklyPlan(), "")
	assert.ErrorIs(t, err, ErrMealPlanValidationFailed)
}

func TestSubmitPlanCompensatesFailedStatusFlip(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)

	f.requestRepo.setStatusErr = repository.ErrUpdateFailed
	_, err := f.svc.SubmitGeneratedPlan(ctx, f.nutritionistID, f.clientID, req.ID,
		time.Now(), time.Now().AddDate(0, 0, 7), sampleWeeklyPlan(), "")
	assert.ErrorIs(t, err, ErrMealPlanStatusResetFailed)

	// The inserted plan was rolled back, so a retry succeeds once the
	// request update works again.
	_, err = f.planRepo.GetByRequestID(ctx, req.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	f.requestRepo.setStatusErr = nil
	f.submit(t, req.ID)
}

func TestDeletePlanResetsRequestToPending(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	plan := f.submit(t, req.ID)

	result, err := f.svc.DeleteGeneratedPlan(ctx, f.nutritionistID, plan.ID)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.Empty(t, result.Warning)

	updated, err := f.requestRepo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MealPlanRequestPending, updated.Status)

	// The pair is back at the start of the cycle; a new submission works.
	f.submit(t, req.ID)
}

func TestDeletePlanWithMissingRequestWarns(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	plan := f.submit(t, req.ID)

	// Simulate the parent request disappearing out from under the plan.
	f.requestRepo.mu.Lock()
	delete(f.requestRepo.requests, req.ID)
	f.requestRepo.mu.Unlock()

	result, err := f.svc.DeleteGeneratedPlan(ctx, f.nutritionistID, plan.ID)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.NotEmpty(t, result.Warning)
}

func TestDeletePlanOwnership(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	plan := f.submit(t, req.ID)

	// A stranger's delete reads as not found, same as the repository filter.
	_, err := f.svc.DeleteGeneratedPlan(ctx, primitive.NewObjectID(), plan.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotFound)
}

func TestGetPlanForCustomerPaymentGate(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	f.submit(t, req.ID)

	// No payment: content refused.
	_, err := f.svc.GetPlanForCustomer(ctx, f.clientID, req.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotPaid)

	// Processing payment: still refused.
	payment := &domain.Payment{ClientID: f.clientID, MealPlanRequestID: req.ID, ReferenceID: "REF100", Status: domain.PaymentProcessing}
	paymentID, err := f.paymentRepo.Create(ctx, payment)
	require.NoError(t, err)
	_, err = f.svc.GetPlanForCustomer(ctx, f.clientID, req.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotPaid)

	// Paid: visible.
	require.NoError(t, f.paymentRepo.SetStatus(ctx, paymentID, domain.PaymentPaid))
	plan, err := f.svc.GetPlanForCustomer(ctx, f.clientID, req.ID)
	require.NoError(t, err)
	assert.False(t, plan.WeeklyPlan.IsEmpty())

	// The gate is re-evaluated on every read: a later rejection revokes access.
	require.NoError(t, f.paymentRepo.SetStatus(ctx, paymentID, domain.PaymentRejected))
	_, err = f.svc.GetPlanForCustomer(ctx, f.clientID, req.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotPaid)
}

func TestGetPlanForCustomerTenancy(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	f.submit(t, req.ID)

	// Another customer cannot see the plan even with a paid payment of their own.
	_, err := f.svc.GetPlanForCustomer(ctx, primitive.NewObjectID(), req.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotFound)
}

func TestUpdateRequestStatus(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)

	updated, err := f.svc.UpdateRequestStatus(ctx, f.nutritionistID, req.ID, domain.MealPlanRequestApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.MealPlanRequestApproved, updated.Status)

	_, err = f.svc.UpdateRequestStatus(ctx, f.nutritionistID, req.ID, domain.MealPlanRequestStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidMealPlanStatus)

	_, err = f.svc.UpdateRequestStatus(ctx, primitive.NewObjectID(), req.ID, domain.MealPlanRequestRejected)
	assert.ErrorIs(t, err, ErrMealPlanRequestNotFound)
}

func TestGetPlanForNutritionist(t *testing.T) {
	ctx := context.Background()
	f := newMealPlanFixture(t, true)
	req := f.apply(t)
	plan := f.submit(t, req.ID)

	// The author sees the plan without any payment.
	got, err := f.svc.GetPlanForNutritionist(ctx, f.nutritionistID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)

	_, err = f.svc.GetPlanForNutritionist(ctx, primitive.NewObjectID(), plan.ID)
	assert.ErrorIs(t, err, ErrMealPlanNotFound)
}
