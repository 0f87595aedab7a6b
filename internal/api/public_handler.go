package api

import (
	"errors"
	"net/http"

	"powerplate/nutrition-app/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the unauthenticated browsing surface: the nutritionist
// roster customers consult before registering or filing a request.
type PublicHandler struct {
	userService     service.UserService
	feedbackService service.FeedbackService
}

func NewPublicHandler(userService service.UserService, feedbackService service.FeedbackService) *PublicHandler {
	return &PublicHandler{
		userService:     userService,
		feedbackService: feedbackService,
	}
}

// ListNutritionists returns the nutritionist roster.
func (h *PublicHandler) ListNutritionists(c *gin.Context) {
	nutritionists, err := h.userService.ListNutritionists(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve nutritionists.")
		return
	}

	c.JSON(http.StatusOK, MapUsersToResponse(nutritionists))
}

// GetNutritionist returns one nutritionist's public profile.
func (h *PublicHandler) GetNutritionist(c *gin.Context) {
	nutritionistID, ok := pathID(c, "nutritionistId")
	if !ok {
		return
	}

	nutritionist, err := h.userService.GetNutritionist(c.Request.Context(), nutritionistID)
	if err != nil {
		if errors.Is(err, service.ErrNutritionistNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve nutritionist.")
		}
		return
	}

	resp := MapUserToResponse(nutritionist)
	// Best effort; the profile stays readable without an image URL.
	if url, err := h.userService.GetImageDownloadURL(c.Request.Context(), nutritionistID); err == nil {
		resp.ImageURL = url
	}

	c.JSON(http.StatusOK, resp)
}

// GetNutritionistFeedback returns the ratings left for a nutritionist.
func (h *PublicHandler) GetNutritionistFeedback(c *gin.Context) {
	nutritionistID, ok := pathID(c, "nutritionistId")
	if !ok {
		return
	}

	feedbacks, err := h.feedbackService.ListForNutritionist(c.Request.Context(), nutritionistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve feedback.")
		return
	}

	c.JSON(http.StatusOK, MapFeedbacksToResponse(feedbacks))
}
