package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"
	"powerplate/nutrition-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgressPlanNotFound = errors.New("meal plan for this progress entry not found")
	ErrProgressAccessDenied = errors.New("access denied to progress entries for this meal plan")
	ErrPhotoUploadURLFailed = errors.New("failed to generate photo upload URL")
	ErrInvalidPhotoType     = errors.New("invalid or missing image content type")
)

// ProgressPhotoUploadURL carries the presigned PUT URL and the object key the
// client must echo back when recording the entry.
type ProgressPhotoUploadURL struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// ProgressEntry is a progress snapshot enriched with temporary photo URLs.
type ProgressEntry struct {
	domain.Progress
	PhotoURLs []string `json:"photoUrls,omitempty"`
}

// --- Service Interface ---
type ProgressService interface {
	Record(ctx context.Context, clientID, mealPlanID primitive.ObjectID, weight, height float64, measurements domain.Measurements, photoKeys []string, notes string) (*domain.Progress, error)
	// History returns the client's entries for a plan, newest-first.
	// Cross-tenant access raises ErrProgressAccessDenied, not an empty list.
	History(ctx context.Context, clientID, mealPlanID primitive.ObjectID) ([]ProgressEntry, error)
	HistoryForNutritionist(ctx context.Context, nutritionistID, mealPlanID primitive.ObjectID) ([]ProgressEntry, error)
	RequestPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, contentType string) (*ProgressPhotoUploadURL, error)
}

// --- Service Implementation ---

type progressService struct {
	progressRepo repository.ProgressRepository
	planRepo     repository.MealPlanRepository
	fileStorage  storage.FileStorage
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	planRepo repository.MealPlanRepository,
	fileStorage storage.FileStorage,
) ProgressService {
	return &progressService{
		progressRepo: progressRepo,
		planRepo:     planRepo,
		fileStorage:  fileStorage,
	}
}

// Record creates a progress snapshot. The owning nutritionist is derived from
// the referenced plan, never supplied by the caller.
func (s *progressService) Record(ctx context.Context, clientID, mealPlanID primitive.ObjectID, weight, height float64, measurements domain.Measurements, photoKeys []string, notes string) (*domain.Progress, error) {
	if clientID == primitive.NilObjectID || mealPlanID == primitive.NilObjectID {
		return nil, errors.New("client ID and meal plan ID are required")
	}

	plan, err := s.planRepo.GetByID(ctx, mealPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressPlanNotFound
		}
		return nil, err
	}
	if plan.ClientID != clientID {
		return nil, ErrProgressAccessDenied
	}

	progress := &domain.Progress{
		ClientID:       clientID,
		MealPlanID:     mealPlanID,
		NutritionistID: plan.NutritionistID,
		Weight:         weight,
		Height:         height,
		Measurements:   measurements,
		PhotoKeys:      photoKeys,
		Notes:          notes,
	}

	progressID, err := s.progressRepo.Create(ctx, progress)
	if err != nil {
		return nil, err
	}
	progress.ID = progressID
	return progress, nil
}

// History returns the client's entries for a plan.
func (s *progressService) History(ctx context.Context, clientID, mealPlanID primitive.ObjectID) ([]ProgressEntry, error) {
	if clientID == primitive.NilObjectID || mealPlanID == primitive.NilObjectID {
		return nil, errors.New("client ID and meal plan ID are required")
	}

	// Explicit ownership check up front; a plan belonging to someone else is
	// a Forbidden, not an empty result.
	plan, err := s.planRepo.GetByID(ctx, mealPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressPlanNotFound
		}
		return nil, err
	}
	if plan.ClientID != clientID {
		return nil, ErrProgressAccessDenied
	}

	entries, err := s.progressRepo.ListByPlan(ctx, mealPlanID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, entries), nil
}

// HistoryForNutritionist returns entries for a plan the nutritionist authored.
func (s *progressService) HistoryForNutritionist(ctx context.Context, nutritionistID, mealPlanID primitive.ObjectID) ([]ProgressEntry, error) {
	if nutritionistID == primitive.NilObjectID || mealPlanID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID and meal plan ID are required")
	}

	plan, err := s.planRepo.GetByID(ctx, mealPlanID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressPlanNotFound
		}
		return nil, err
	}
	if plan.NutritionistID != nutritionistID {
		return nil, ErrProgressAccessDenied
	}

	entries, err := s.progressRepo.ListByPlan(ctx, mealPlanID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, entries), nil
}

// RequestPhotoUploadURL generates a presigned PUT URL for a progress photo.
// The service never touches photo bytes; the client uploads directly to S3
// and reports the object key back on Record.
func (s *progressService) RequestPhotoUploadURL(ctx context.Context, clientID primitive.ObjectID, contentType string) (*ProgressPhotoUploadURL, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidPhotoType
	}

	ext := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		ext = "." + parts[1]
	}
	objectKey := path.Join("progress", clientID.Hex(), fmt.Sprintf("%s%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrPhotoUploadURLFailed
	}

	return &ProgressPhotoUploadURL{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// enrich attaches temporary download URLs for stored photo keys. URL
// generation failures leave the entry without URLs rather than failing the
// whole read.
func (s *progressService) enrich(ctx context.Context, entries []domain.Progress) []ProgressEntry {
	result := make([]ProgressEntry, len(entries))
	for i, e := range entries {
		entry := ProgressEntry{Progress: e}
		for _, key := range e.PhotoKeys {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
			if err != nil {
				continue
			}
			entry.PhotoURLs = append(entry.PhotoURLs, url)
		}
		result[i] = entry
	}
	return result
}
