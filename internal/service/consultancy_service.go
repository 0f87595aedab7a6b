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
	ErrConsultancyRequestNotFound = errors.New("consultancy request not found")
	ErrPendingRequestExists       = errors.New("a pending consultancy request already exists for this nutritionist")
	ErrInvalidConsultancyStatus   = errors.New("consultancy response status must be accepted or rejected")
	ErrNutritionistNotFound       = errors.New("nutritionist not found")
)

// --- Service Interface ---
type ConsultancyService interface {
	Create(ctx context.Context, clientID, nutritionistID primitive.ObjectID, message, problem string) (*domain.ConsultancyRequest, error)
	Respond(ctx context.Context, nutritionistID, requestID primitive.ObjectID, status domain.ConsultancyStatus, responseMessage string) (*domain.ConsultancyRequest, error)
	Delete(ctx context.Context, nutritionistID, requestID primitive.ObjectID) error
	ListForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ConsultancyRequest, error)
	ListForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.ConsultancyRequest, error)
}

// --- Service Implementation ---

type consultancyService struct {
	consultancyRepo repository.ConsultancyRequestRepository
	userRepo        repository.UserRepository
}

// NewConsultancyService creates a new instance of consultancyService.
func NewConsultancyService(consultancyRepo repository.ConsultancyRequestRepository, userRepo repository.UserRepository) ConsultancyService {
	return &consultancyService{
		consultancyRepo: consultancyRepo,
		userRepo:        userRepo,
	}
}

// Create files a new consultancy request. At most one pending request may
// exist per (client, nutritionist) pair.
func (s *consultancyService) Create(ctx context.Context, clientID, nutritionistID primitive.ObjectID, message, problem string) (*domain.ConsultancyRequest, error) {
	if clientID == primitive.NilObjectID || nutritionistID == primitive.NilObjectID {
		return nil, errors.New("client ID and nutritionist ID are required")
	}
	if message == "" {
		return nil, errors.New("message is required")
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

	// Duplicate pending check for the pair.
	_, err = s.consultancyRepo.FindPending(ctx, clientID, nutritionistID)
	if err == nil {
		return nil, ErrPendingRequestExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	request := &domain.ConsultancyRequest{
		ClientID:       clientID,
		NutritionistID: nutritionistID,
		Message:        message,
		Problem:        problem,
		Status:         domain.ConsultancyPending,
	}

	requestID, err := s.consultancyRepo.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	request.ID = requestID
	return request, nil
}

// Respond accepts or rejects a request. The repository filters on
// (requestID, nutritionistID); a miss means not found or not owned and is
// reported identically. Accepted/rejected are terminal: once responded there
// is no route back to pending.
func (s *consultancyService) Respond(ctx context.Context, nutritionistID, requestID primitive.ObjectID, status domain.ConsultancyStatus, responseMessage string) (*domain.ConsultancyRequest, error) {
	if nutritionistID == primitive.NilObjectID || requestID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID and request ID are required")
	}
	if status != domain.ConsultancyAccepted && status != domain.ConsultancyRejected {
		return nil, ErrInvalidConsultancyStatus
	}

	err := s.consultancyRepo.UpdateResponse(ctx, requestID, nutritionistID, status, responseMessage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConsultancyRequestNotFound
		}
		return nil, err
	}

	return s.consultancyRepo.GetByID(ctx, requestID)
}

// Delete removes a request, same ownership filter as Respond.
func (s *consultancyService) Delete(ctx context.Context, nutritionistID, requestID primitive.ObjectID) error {
	if nutritionistID == primitive.NilObjectID || requestID == primitive.NilObjectID {
		return errors.New("nutritionist ID and request ID are required")
	}

	err := s.consultancyRepo.Delete(ctx, requestID, nutritionistID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrConsultancyRequestNotFound
	}
	return err
}

// ListForClient retrieves the client's requests, newest-first.
func (s *consultancyService) ListForClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ConsultancyRequest, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	return s.consultancyRepo.ListByClient(ctx, clientID)
}

// ListForNutritionist retrieves the nutritionist's requests, newest-first.
func (s *consultancyService) ListForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.ConsultancyRequest, error) {
	if nutritionistID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID is required")
	}
	return s.consultancyRepo.ListByNutritionist(ctx, nutritionistID)
}
