package service

import (
	"context"
	"testing"

	"powerplate/nutrition-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentFixture struct {
	svc         PaymentService
	paymentRepo *fakePaymentRepo
	requestRepo *fakeMealPlanRequestRepo
	clientID    primitive.ObjectID
	requestID   primitive.ObjectID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	paymentRepo := newFakePaymentRepo()
	requestRepo := newFakeMealPlanRequestRepo()
	clientID := primitive.NewObjectID()

	request := &domain.MealPlanRequest{ClientID: clientID, NutritionistID: primitive.NewObjectID(), Status: domain.MealPlanRequestPending}
	requestID, err := requestRepo.Create(context.Background(), request)
	require.NoError(t, err)

	return &paymentFixture{
		svc:         NewPaymentService(paymentRepo, requestRepo, NewRequestLocks(), 49.99),
		paymentRepo: paymentRepo,
		requestRepo: requestRepo,
		clientID:    clientID,
		requestID:   requestID,
	}
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	payment, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentProcessing, payment.Status)
	assert.Equal(t, 49.99, payment.Amount)
	assert.Equal(t, "REF001", payment.ReferenceID)
}

func TestInitiatePaymentValidation(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	_, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "")
	assert.ErrorIs(t, err, ErrPaymentReferenceRequired)

	_, err = f.svc.Initiate(ctx, f.clientID, primitive.NewObjectID(), "REF001")
	assert.ErrorIs(t, err, ErrPaymentRequestMissing)
}

func TestInitiateRequiresRequestOwnership(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	// Another customer cannot attach money to this request, and the attempt
	// must not occupy the one processing slot.
	_, err := f.svc.Initiate(ctx, primitive.NewObjectID(), f.requestID, "REF-OTHER")
	assert.ErrorIs(t, err, ErrPaymentRequestNotOwned)

	payment, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentProcessing, payment.Status)
}

func TestOneProcessingPaymentPerRequest(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	first, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	require.NoError(t, err)

	_, err = f.svc.Initiate(ctx, f.clientID, f.requestID, "REF002")
	assert.ErrorIs(t, err, ErrProcessingPaymentExists)

	// A rejected payment frees the request for another attempt.
	_, err = f.svc.SetStatus(ctx, first.ID, domain.PaymentRejected)
	require.NoError(t, err)

	second, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF002")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentProcessing, second.Status)
}

func TestDuplicateReferenceID(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	first, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	require.NoError(t, err)
	_, err = f.svc.SetStatus(ctx, first.ID, domain.PaymentRejected)
	require.NoError(t, err)

	// The reference stays taken even after rejection.
	_, err = f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	assert.ErrorIs(t, err, ErrDuplicateReferenceID)
}

func TestSetStatusIsUnconditional(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	payment, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	require.NoError(t, err)

	// Verification can move any state to any state, including undoing paid.
	updated, err := f.svc.SetStatus(ctx, payment.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.Status)

	updated, err = f.svc.SetStatus(ctx, payment.ID, domain.PaymentRejected)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRejected, updated.Status)

	_, err = f.svc.SetStatus(ctx, payment.ID, domain.PaymentStatus("refunded"))
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)

	_, err = f.svc.SetStatus(ctx, primitive.NewObjectID(), domain.PaymentPaid)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCanViewPlan(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	// No payment at all.
	ok, err := f.svc.CanViewPlan(ctx, f.clientID, f.requestID)
	require.NoError(t, err)
	assert.False(t, ok)

	payment, err := f.svc.Initiate(ctx, f.clientID, f.requestID, "REF001")
	require.NoError(t, err)

	// Processing does not open the gate.
	ok, err = f.svc.CanViewPlan(ctx, f.clientID, f.requestID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.SetStatus(ctx, payment.ID, domain.PaymentPaid)
	require.NoError(t, err)

	ok, err = f.svc.CanViewPlan(ctx, f.clientID, f.requestID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The paid payment belongs to this client only.
	ok, err = f.svc.CanViewPlan(ctx, primitive.NewObjectID(), f.requestID)
	require.NoError(t, err)
	assert.False(t, ok)
}
