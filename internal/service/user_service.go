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
	ErrProfileNotFound    = errors.New("user profile not found")
	ErrNotCustomer        = errors.New("user is not a customer")
	ErrInvalidImageType   = errors.New("invalid or missing image content type")
	ErrImageURLGeneration = errors.New("failed to generate image URL")
)

// ProfileImageUploadURL carries the presigned PUT URL and the object key the
// client must confirm once the upload completes.
type ProfileImageUploadURL struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type UserService interface {
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	UpdateCustomerProfile(ctx context.Context, clientID primitive.ObjectID, profile *domain.CustomerProfile) (*domain.User, error)
	// ListNutritionists returns the public roster customers browse before
	// filing a request. Blocked nutritionists stay listed; blocking only
	// cuts off login.
	ListNutritionists(ctx context.Context) ([]domain.User, error)
	GetNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) (*domain.User, error)

	// Profile image upload flow: request a presigned URL, upload directly
	// to S3, then confirm with the object key.
	RequestImageUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*ProfileImageUploadURL, error)
	ConfirmImageUpload(ctx context.Context, userID primitive.ObjectID, objectKey string) error
	GetImageDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error)
}

// --- Service Implementation ---

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateCustomerProfile replaces the customer's physical profile.
func (s *userService) UpdateCustomerProfile(ctx context.Context, clientID primitive.ObjectID, profile *domain.CustomerProfile) (*domain.User, error) {
	if clientID == primitive.NilObjectID {
		return nil, errors.New("client ID is required")
	}
	if profile == nil {
		return nil, errors.New("profile is required")
	}

	err := s.userRepo.UpdateProfile(ctx, clientID, profile)
	if err != nil {
		// The update filter requires the customer role, so a nutritionist ID
		// here also surfaces as not found.
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	return s.userRepo.GetByID(ctx, clientID)
}

func (s *userService) ListNutritionists(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.ListByRole(ctx, domain.RoleNutritionist)
}

func (s *userService) GetNutritionist(ctx context.Context, nutritionistID primitive.ObjectID) (*domain.User, error) {
	if nutritionistID == primitive.NilObjectID {
		return nil, errors.New("nutritionist ID is required")
	}
	user, err := s.userRepo.GetByID(ctx, nutritionistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNutritionistNotFound
		}
		return nil, err
	}
	if !user.IsNutritionist() {
		return nil, ErrNutritionistNotFound
	}
	return user, nil
}

// RequestImageUploadURL generates a presigned PUT URL for a profile image.
func (s *userService) RequestImageUploadURL(ctx context.Context, userID primitive.ObjectID, contentType string) (*ProfileImageUploadURL, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidImageType
	}

	ext := ""
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
		ext = "." + parts[1]
	}
	objectKey := path.Join("profiles", userID.Hex(), fmt.Sprintf("%s%s", uuid.NewString(), ext))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrImageURLGeneration
	}

	return &ProfileImageUploadURL{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmImageUpload records the uploaded object key on the user. Called
// after the client has PUT the file to S3 with the presigned URL. The
// previous image, if any, is deleted best effort.
func (s *userService) ConfirmImageUpload(ctx context.Context, userID primitive.ObjectID, objectKey string) error {
	if userID == primitive.NilObjectID || objectKey == "" {
		return errors.New("user ID and object key are required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProfileNotFound
		}
		return err
	}

	if err := s.userRepo.SetImageKey(ctx, userID, objectKey); err != nil {
		return err
	}

	if user.ImageKey != "" && user.ImageKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, user.ImageKey)
	}
	return nil
}

// GetImageDownloadURL returns a temporary URL for the user's profile image,
// or an empty string when none is set.
func (s *userService) GetImageDownloadURL(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.ImageKey == "" {
		return "", nil
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, user.ImageKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrImageURLGeneration
	}
	return url, nil
}
