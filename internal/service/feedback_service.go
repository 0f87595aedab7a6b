package service

import (
	"context"
	"errors"
	"fmt"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrFeedbackNotFound       = errors.New("feedback not found")
	ErrFeedbackExists         = errors.New("feedback already submitted for this nutritionist")
	ErrInvalidRating          = errors.New("rating must be between 1 and 5")
	ErrFeedbackTargetNotFound = errors.New("nutritionist not found")
)

// --- Service Interface ---
type FeedbackService interface {
	Submit(ctx context.Context, clientID, nutritionistID primitive.ObjectID, rating int, comment string) (*domain.Feedback, error)
	Delete(ctx context.Context, feedbackID primitive.ObjectID) error
	ListForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.Feedback, error)
}

// --- Service Implementation ---

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	userRepo     repository.UserRepository
}

// NewFeedbackService creates a new instance of feedbackService.
func NewFeedbackService(feedbackRepo repository.FeedbackRepository, userRepo repository.UserRepository) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
	}
}

// Submit records a client's rating of a nutritionist. One entry per
// client/nutritionist pair; a second submission is a conflict.
func (s *feedbackService) Submit(ctx context.Context, clientID, nutritionistID primitive.ObjectID, rating int, comment string) (*domain.Feedback, error) {
	if clientID == primitive.NilObjectID || nutritionistID == primitive.NilObjectID {
		return nil, errors.New("client ID and nutritionist ID are required")
	}
	if rating < domain.FeedbackMinRating || rating > domain.FeedbackMaxRating {
		return nil, ErrInvalidRating
	}

	target, err := s.userRepo.GetByID(ctx, nutritionistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFeedbackTargetNotFound
		}
		return nil, err
	}
	if !target.IsNutritionist() {
		return nil, ErrFeedbackTargetNotFound
	}

	existing, err := s.feedbackRepo.FindByPair(ctx, clientID, nutritionistID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing feedback: %w", err)
	}
	if existing != nil {
		return nil, ErrFeedbackExists
	}

	feedback := &domain.Feedback{
		ClientID:       clientID,
		NutritionistID: nutritionistID,
		Rating:         rating,
		Comment:        comment,
	}

	feedbackID, err := s.feedbackRepo.Create(ctx, feedback)
	if err != nil {
		// Unique index on the pair backstops the pre-check under races.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrFeedbackExists
		}
		return nil, err
	}
	feedback.ID = feedbackID
	return feedback, nil
}

// Delete removes a feedback entry. Admin-only at the handler level, so no
// ownership filter here.
func (s *feedbackService) Delete(ctx context.Context, feedbackID primitive.ObjectID) error {
	if feedbackID == primitive.NilObjectID {
		return errors.New("feedback ID is required")
	}
	err := s.feedbackRepo.Delete(ctx, feedbackID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFeedbackNotFound
		}
		return err
	}
	return nil
}

func (s *feedbackService) ListForNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) ([]domain.Feedback, error) {
	if nutritionistID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID is required")
	}
	return s.feedbackRepo.ListByNutritionist(ctx, nutritionistID)
}
