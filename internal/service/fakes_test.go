package service

import (
	"context"
	"sync"
	"time"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. They mirror the
// filter semantics of the mongo implementations: ownership-filtered updates
// miss as ErrNotFound and unique indexes surface as ErrDuplicate.

// --- Users ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	user.ID = id
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[id] = *user
	return id, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := u
	return &copy, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, profile *domain.CustomerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Role != domain.RoleCustomer {
		return repository.ErrNotFound
	}
	u.Profile = profile
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetNutritionistStatus(ctx context.Context, id primitive.ObjectID, status domain.NutritionistStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Role != domain.RoleNutritionist {
		return repository.ErrNotFound
	}
	u.Status = status
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) SetImageKey(ctx context.Context, id primitive.ObjectID, imageKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ImageKey = imageKey
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// --- Consultancy Requests ---

type fakeConsultancyRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]domain.ConsultancyRequest
}

func newFakeConsultancyRepo() *fakeConsultancyRepo {
	return &fakeConsultancyRepo{requests: make(map[primitive.ObjectID]domain.ConsultancyRequest)}
}

func (r *fakeConsultancyRepo) Create(ctx context.Context, req *domain.ConsultancyRequest) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	req.ID = id
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.requests[id] = *req
	return id, nil
}

func (r *fakeConsultancyRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ConsultancyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := req
	return &copy, nil
}

func (r *fakeConsultancyRepo) FindPending(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.ConsultancyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ClientID == clientID && req.NutritionistID == nutritionistID && req.Status == domain.ConsultancyPending {
			copy := req
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeConsultancyRepo) UpdateResponse(ctx context.Context, id, nutritionistID primitive.ObjectID, status domain.ConsultancyStatus, responseMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.NutritionistID != nutritionistID {
		return repository.ErrNotFound
	}
	req.Status = status
	req.ResponseMessage = responseMessage
	req.UpdatedAt = time.Now()
	r.requests[id] = req
	return nil
}

func (r *fakeConsultancyRepo) Delete(ctx context.Context, id, nutritionistID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.NutritionistID != nutritionistID {
		return repository.ErrNotFound
	}
	delete(r.requests, id)
	return nil
}

func (r *fakeConsultancyRepo) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ConsultancyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ConsultancyRequest
	for _, req := range r.requests {
		if req.ClientID == clientID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeConsultancyRepo) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.ConsultancyRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ConsultancyRequest
	for _, req := range r.requests {
		if req.NutritionistID == nutritionistID {
			out = append(out, req)
		}
	}
	return out, nil
}

// --- Meal Plan Requests ---

type fakeMealPlanRequestRepo struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]domain.MealPlanRequest
	// setStatusErr, when set, is returned by SetStatus to exercise the
	// compensation paths.
	setStatusErr error
}

func newFakeMealPlanRequestRepo() *fakeMealPlanRequestRepo {
	return &fakeMealPlanRequestRepo{requests: make(map[primitive.ObjectID]domain.MealPlanRequest)}
}

func (r *fakeMealPlanRequestRepo) Create(ctx context.Context, req *domain.MealPlanRequest) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	req.ID = id
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.requests[id] = *req
	return id, nil
}

func (r *fakeMealPlanRequestRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := req
	return &copy, nil
}

func (r *fakeMealPlanRequestRepo) FindPending(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.MealPlanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ClientID == clientID && req.NutritionistID == nutritionistID && req.Status == domain.MealPlanRequestPending {
			copy := req
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMealPlanRequestRepo) UpdateStatus(ctx context.Context, id, nutritionistID primitive.ObjectID, status domain.MealPlanRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.NutritionistID != nutritionistID {
		return repository.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	r.requests[id] = req
	return nil
}

func (r *fakeMealPlanRequestRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.MealPlanRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setStatusErr != nil {
		return r.setStatusErr
	}
	req, ok := r.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	r.requests[id] = req
	return nil
}

func (r *fakeMealPlanRequestRepo) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MealPlanRequest
	for _, req := range r.requests {
		if req.ClientID == clientID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeMealPlanRequestRepo) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MealPlanRequest
	for _, req := range r.requests {
		if req.NutritionistID == nutritionistID {
			out = append(out, req)
		}
	}
	return out, nil
}

// --- Meal Plans ---

type fakeMealPlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]domain.MealPlan
}

func newFakeMealPlanRepo() *fakeMealPlanRepo {
	return &fakeMealPlanRepo{plans: make(map[primitive.ObjectID]domain.MealPlan)}
}

func (r *fakeMealPlanRepo) Create(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if plan.MealPlanRequestID != nil {
		for _, p := range r.plans {
			if p.MealPlanRequestID != nil && *p.MealPlanRequestID == *plan.MealPlanRequestID {
				return primitive.NilObjectID, repository.ErrDuplicate
			}
		}
	}
	id := primitive.NewObjectID()
	plan.ID = id
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	r.plans[id] = *plan
	return id, nil
}

func (r *fakeMealPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := plan
	return &copy, nil
}

func (r *fakeMealPlanRepo) GetByRequestID(ctx context.Context, requestID primitive.ObjectID) (*domain.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, plan := range r.plans {
		if plan.MealPlanRequestID != nil && *plan.MealPlanRequestID == requestID {
			copy := plan
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMealPlanRepo) Delete(ctx context.Context, id, nutritionistID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok || plan.NutritionistID != nutritionistID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

func (r *fakeMealPlanRepo) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MealPlan
	for _, plan := range r.plans {
		if plan.ClientID == clientID {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (r *fakeMealPlanRepo) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.MealPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MealPlan
	for _, plan := range r.plans {
		if plan.NutritionistID == nutritionistID {
			out = append(out, plan)
		}
	}
	return out, nil
}

// --- Payments ---

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[primitive.ObjectID]domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[primitive.ObjectID]domain.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ReferenceID == payment.ReferenceID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	payment.ID = id
	payment.PaymentDate = time.Now()
	payment.UpdatedAt = payment.PaymentDate
	r.payments[id] = *payment
	return id, nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := p
	return &copy, nil
}

func (r *fakePaymentRepo) FindByRequestAndStatus(ctx context.Context, requestID primitive.ObjectID, status domain.PaymentStatus) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.MealPlanRequestID == requestID && p.Status == status {
			copy := p
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePaymentRepo) HasPaid(ctx context.Context, requestID, clientID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.MealPlanRequestID == requestID && p.ClientID == clientID && p.Status == domain.PaymentPaid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	r.payments[id] = p
	return nil
}

func (r *fakePaymentRepo) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) ListAll(ctx context.Context) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		out = append(out, p)
	}
	return out, nil
}

// --- Progress ---

type fakeProgressRepo struct {
	mu      sync.Mutex
	entries []domain.Progress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{}
}

func (r *fakeProgressRepo) Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	progress.ID = id
	if progress.Date.IsZero() {
		progress.Date = time.Now()
	}
	r.entries = append(r.entries, *progress)
	return id, nil
}

func (r *fakeProgressRepo) ListByPlan(ctx context.Context, mealPlanID primitive.ObjectID) ([]domain.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Progress
	for _, e := range r.entries {
		if e.MealPlanID == mealPlanID {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- Feedback ---

type fakeFeedbackRepo struct {
	mu        sync.Mutex
	feedbacks map[primitive.ObjectID]domain.Feedback
}

func newFakeFeedbackRepo() *fakeFeedbackRepo {
	return &fakeFeedbackRepo{feedbacks: make(map[primitive.ObjectID]domain.Feedback)}
}

func (r *fakeFeedbackRepo) Create(ctx context.Context, feedback *domain.Feedback) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.feedbacks {
		if f.ClientID == feedback.ClientID && f.NutritionistID == feedback.NutritionistID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	feedback.ID = id
	feedback.CreatedAt = time.Now()
	r.feedbacks[id] = *feedback
	return id, nil
}

func (r *fakeFeedbackRepo) FindByPair(ctx context.Context, clientID, nutritionistID primitive.ObjectID) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.feedbacks {
		if f.ClientID == clientID && f.NutritionistID == nutritionistID {
			copy := f
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeFeedbackRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.feedbacks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.feedbacks, id)
	return nil
}

func (r *fakeFeedbackRepo) ListByNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Feedback
	for _, f := range r.feedbacks {
		if f.NutritionistID == nutritionistID {
			out = append(out, f)
		}
	}
	return out, nil
}

// --- File Storage ---

type fakeFileStorage struct {
	mu      sync.Mutex
	deleted []string
}

func newFakeFileStorage() *fakeFileStorage {
	return &fakeFileStorage{}
}

func (s *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (s *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (s *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, objectKey)
	return nil
}

// --- Shared helpers ---

func sampleWeeklyPlan() domain.WeeklyPlan {
	return domain.WeeklyPlan{
		Monday: domain.DailyPlan{
			Breakfast: []domain.MealEntry{{Name: "Oatmeal with berries", Portion: "1 bowl", Calories: 350, Protein: 12, Carbs: 55, Fat: 8}},
			Lunch:     []domain.MealEntry{{Name: "Grilled chicken salad", Portion: "300g", Calories: 450, Protein: 40, Carbs: 15, Fat: 22}},
			Dinner:    []domain.MealEntry{{Name: "Baked salmon with rice", Portion: "350g", Calories: 550, Protein: 38, Carbs: 45, Fat: 20}},
		},
	}
}
