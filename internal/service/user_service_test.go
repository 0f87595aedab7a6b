package service

import (
	"context"
	"strings"
	"testing"

	"powerplate/nutrition-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateCustomerProfile(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, newFakeFileStorage())

	clientID, err := userRepo.Create(ctx, &domain.User{Name: "Carol", Email: "carol@example.com", Role: domain.RoleCustomer})
	require.NoError(t, err)

	user, err := svc.UpdateCustomerProfile(ctx, clientID, &domain.CustomerProfile{Weight: 70, Height: 172, Age: 29})
	require.NoError(t, err)
	require.NotNil(t, user.Profile)
	assert.Equal(t, 70.0, user.Profile.Weight)

	// The profile update is scoped to customers.
	nutritionistID, err := userRepo.Create(ctx, &domain.User{Name: "Nadia", Email: "nadia@example.com", Role: domain.RoleNutritionist})
	require.NoError(t, err)
	_, err = svc.UpdateCustomerProfile(ctx, nutritionistID, &domain.CustomerProfile{Weight: 70})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestListNutritionists(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	svc := NewUserService(userRepo, newFakeFileStorage())

	_, err := userRepo.Create(ctx, &domain.User{Name: "Carol", Email: "carol@example.com", Role: domain.RoleCustomer})
	require.NoError(t, err)
	nadiaID, err := userRepo.Create(ctx, &domain.User{Name: "Nadia", Email: "nadia@example.com", Role: domain.RoleNutritionist, Status: domain.NutritionistActive})
	require.NoError(t, err)
	blockedID, err := userRepo.Create(ctx, &domain.User{Name: "Boris", Email: "boris@example.com", Role: domain.RoleNutritionist, Status: domain.NutritionistBlocked})
	require.NoError(t, err)

	list, err := svc.ListNutritionists(ctx)
	require.NoError(t, err)
	// Blocking cuts off login, not visibility.
	assert.Len(t, list, 2)

	got, err := svc.GetNutritionist(ctx, nadiaID)
	require.NoError(t, err)
	assert.Equal(t, "Nadia", got.Name)

	_, err = svc.GetNutritionist(ctx, blockedID)
	assert.NoError(t, err)

	_, err = svc.GetNutritionist(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNutritionistNotFound)
}

func TestProfileImageUploadFlow(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	fileStorage := newFakeFileStorage()
	svc := NewUserService(userRepo, fileStorage)

	userID, err := userRepo.Create(ctx, &domain.User{Name: "Carol", Email: "carol@example.com", Role: domain.RoleCustomer})
	require.NoError(t, err)

	result, err := svc.RequestImageUploadURL(ctx, userID, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.ObjectKey, "profiles/"+userID.Hex()+"/"))

	_, err = svc.RequestImageUploadURL(ctx, userID, "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidImageType)

	require.NoError(t, svc.ConfirmImageUpload(ctx, userID, result.ObjectKey))

	url, err := svc.GetImageDownloadURL(ctx, userID)
	require.NoError(t, err)
	assert.True(t, strings.Contains(url, result.ObjectKey))

	// Replacing the image deletes the previous object.
	second, err := svc.RequestImageUploadURL(ctx, userID, "image/png")
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmImageUpload(ctx, userID, second.ObjectKey))
	assert.Contains(t, fileStorage.deleted, result.ObjectKey)
}
