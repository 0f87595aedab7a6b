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

type progressFixture struct {
	svc            ProgressService
	planRepo       *fakeMealPlanRepo
	clientID       primitive.ObjectID
	nutritionistID primitive.ObjectID
	planID         primitive.ObjectID
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	planRepo := newFakeMealPlanRepo()
	clientID := primitive.NewObjectID()
	nutritionistID := primitive.NewObjectID()

	planID, err := planRepo.Create(context.Background(), &domain.MealPlan{
		ClientID:       clientID,
		NutritionistID: nutritionistID,
		WeeklyPlan:     sampleWeeklyPlan(),
	})
	require.NoError(t, err)

	return &progressFixture{
		svc:            NewProgressService(newFakeProgressRepo(), planRepo, newFakeFileStorage()),
		planRepo:       planRepo,
		clientID:       clientID,
		nutritionistID: nutritionistID,
		planID:         planID,
	}
}

func TestRecordProgressDerivesNutritionist(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture(t)

	entry, err := f.svc.Record(ctx, f.clientID, f.planID, 81.5, 178, domain.Measurements{Waist: 88}, nil, "feeling good")
	require.NoError(t, err)
	// The owning nutritionist comes from the plan, not the caller.
	assert.Equal(t, f.nutritionistID, entry.NutritionistID)
	assert.False(t, entry.Date.IsZero())
}

func TestRecordProgressCrossTenant(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture(t)

	_, err := f.svc.Record(ctx, primitive.NewObjectID(), f.planID, 81.5, 178, domain.Measurements{}, nil, "")
	assert.ErrorIs(t, err, ErrProgressAccessDenied)

	_, err = f.svc.Record(ctx, f.clientID, primitive.NewObjectID(), 81.5, 178, domain.Measurements{}, nil, "")
	assert.ErrorIs(t, err, ErrProgressPlanNotFound)
}

func TestProgressHistory(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture(t)

	_, err := f.svc.Record(ctx, f.clientID, f.planID, 82, 178, domain.Measurements{}, []string{"progress/key1.jpg"}, "week one")
	require.NoError(t, err)
	_, err = f.svc.Record(ctx, f.clientID, f.planID, 81, 178, domain.Measurements{}, nil, "week two")
	require.NoError(t, err)

	entries, err := f.svc.History(ctx, f.clientID, f.planID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Photo keys are resolved to temporary URLs on read.
	var withPhoto *ProgressEntry
	for i := range entries {
		if len(entries[i].PhotoURLs) > 0 {
			withPhoto = &entries[i]
		}
	}
	require.NotNil(t, withPhoto)
	assert.True(t, strings.Contains(withPhoto.PhotoURLs[0], "progress/key1.jpg"))
}

func TestProgressHistoryCrossTenantIsForbidden(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture(t)

	_, err := f.svc.Record(ctx, f.clientID, f.planID, 82, 178, domain.Measurements{}, nil, "")
	require.NoError(t, err)

	// A different customer reading this plan's history is refused, not
	// given an empty list.
	_, err = f.svc.History(ctx, primitive.NewObjectID(), f.planID)
	assert.ErrorIs(t, err, ErrProgressAccessDenied)

	// Same for a nutritionist who did not author the plan.
	_, err = f.svc.HistoryForNutritionist(ctx, primitive.NewObjectID(), f.planID)
	assert.ErrorIs(t, err, ErrProgressAccessDenied)

	entries, err := f.svc.HistoryForNutritionist(ctx, f.nutritionistID, f.planID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRequestPhotoUploadURL(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture(t)

	result, err := f.svc.RequestPhotoUploadURL(ctx, f.clientID, "image/jpeg")
	require.NoError(t, err)
	assert.NotEmpty(t, result.UploadURL)
	assert.True(t, strings.HasPrefix(result.ObjectKey, "progress/"+f.clientID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(result.ObjectKey, ".jpeg"))

	_, err = f.svc.RequestPhotoUploadURL(ctx, f.clientID, "video/mp4")
	assert.ErrorIs(t, err, ErrInvalidPhotoType)
}
