package api

import (
	"errors"
	"net/http"
	"time"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NutritionistHandler bundles the services a nutritionist interacts with.
type NutritionistHandler struct {
	consultancyService service.ConsultancyService
	mealPlanService    service.MealPlanService
	progressService    service.ProgressService
	feedbackService    service.FeedbackService
}

func NewNutritionistHandler(
	consultancyService service.ConsultancyService,
	mealPlanService service.MealPlanService,
	progressService service.ProgressService,
	feedbackService service.FeedbackService,
) *NutritionistHandler {
	return &NutritionistHandler{
		consultancyService: consultancyService,
		mealPlanService:    mealPlanService,
		progressService:    progressService,
		feedbackService:    feedbackService,
	}
}

// --- DTOs ---

type RespondConsultancyRequest struct {
	Status          domain.ConsultancyStatus `json:"status" binding:"required,oneof=accepted rejected"`
	ResponseMessage string                   `json:"responseMessage"`
}

type UpdateRequestStatusRequest struct {
	Status domain.MealPlanRequestStatus `json:"status" binding:"required"`
}

type SubmitMealPlanRequest struct {
	ClientID  string            `json:"clientId" binding:"required"`
	StartDate time.Time         `json:"startDate" binding:"required"`
	EndDate   time.Time         `json:"endDate" binding:"required"`
	Plan      domain.WeeklyPlan `json:"weeklyPlan" binding:"required"`
	Notes     string            `json:"notes"`
}

type MealPlanResponse struct {
	ID                string            `json:"id"`
	ClientID          string            `json:"clientId"`
	NutritionistID    string            `json:"nutritionistId"`
	MealPlanRequestID string            `json:"mealPlanRequestId,omitempty"`
	StartDate         time.Time         `json:"startDate"`
	EndDate           time.Time         `json:"endDate"`
	WeeklyPlan        domain.WeeklyPlan `json:"weeklyPlan"`
	Notes             string            `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

type DeleteMealPlanResponse struct {
	Deleted bool   `json:"deleted"`
	Warning string `json:"warning,omitempty"`
}

// --- Consultancy ---

// GetMyConsultancyRequests returns requests addressed to the nutritionist.
func (h *NutritionistHandler) GetMyConsultancyRequests(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.consultancyService.ListForNutritionist(c.Request.Context(), nutritionistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve consultancy requests.")
		return
	}

	c.JSON(http.StatusOK, MapConsultanciesToResponse(requests))
}

// RespondToConsultancy accepts or rejects a pending consultancy request.
// Both outcomes are terminal.
func (h *NutritionistHandler) RespondToConsultancy(c *gin.Context) {
	var req RespondConsultancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}

	updated, err := h.consultancyService.Respond(c.Request.Context(), nutritionistID, requestID, req.Status, req.ResponseMessage)
	if err != nil {
		if errors.Is(err, service.ErrConsultancyRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidConsultancyStatus) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to respond to consultancy request.")
		}
		return
	}

	c.JSON(http.StatusOK, MapConsultancyToResponse(updated))
}

// DeleteConsultancyRequest removes a request addressed to the nutritionist.
func (h *NutritionistHandler) DeleteConsultancyRequest(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}

	err := h.consultancyService.Delete(c.Request.Context(), nutritionistID, requestID)
	if err != nil {
		if errors.Is(err, service.ErrConsultancyRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete consultancy request.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// --- Meal Plan Requests ---

// GetMyMealPlanRequests returns intake forms addressed to the nutritionist.
func (h *NutritionistHandler) GetMyMealPlanRequests(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.mealPlanService.ListRequestsForNutritionist(c.Request.Context(), nutritionistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve meal plan requests.")
		return
	}

	c.JSON(http.StatusOK, MapMealPlanRequestsToResponse(requests))
}

// UpdateMealPlanRequestStatus sets a request to any of the schema states.
func (h *NutritionistHandler) UpdateMealPlanRequestStatus(c *gin.Context) {
	var req UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}

	updated, err := h.mealPlanService.UpdateRequestStatus(c.Request.Context(), nutritionistID, requestID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrMealPlanRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidMealPlanStatus) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update request status.")
		}
		return
	}

	c.JSON(http.StatusOK, MapMealPlanRequestToResponse(updated))
}

// --- Meal Plans ---

// SubmitMealPlan creates the weekly plan for a request and advances the
// request to "created" in the same guarded section.
func (h *NutritionistHandler) SubmitMealPlan(c *gin.Context) {
	var req SubmitMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}
	clientID, err := primitive.ObjectIDFromHex(req.ClientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	plan, err := h.mealPlanService.SubmitGeneratedPlan(c.Request.Context(), nutritionistID, clientID, requestID, req.StartDate, req.EndDate, req.Plan, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrMealPlanRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrMealPlanRequestNotOwned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrPlanAlreadySubmitted) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrMealPlanValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit meal plan.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapMealPlanToResponse(plan))
}

// DeleteMealPlan removes a plan and resets its request to "pending". When
// the back-referenced request no longer exists the deletion still succeeds
// and the response carries a warning.
func (h *NutritionistHandler) DeleteMealPlan(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	result, err := h.mealPlanService.DeleteGeneratedPlan(c.Request.Context(), nutritionistID, planID)
	if err != nil {
		if errors.Is(err, service.ErrMealPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete meal plan.")
		}
		return
	}

	c.JSON(http.StatusOK, DeleteMealPlanResponse{
		Deleted: result.Deleted,
		Warning: result.Warning,
	})
}

// GetMealPlan returns one of the nutritionist's own plans.
func (h *NutritionistHandler) GetMealPlan(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	plan, err := h.mealPlanService.GetPlanForNutritionist(c.Request.Context(), nutritionistID, planID)
	if err != nil {
		if errors.Is(err, service.ErrMealPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve meal plan.")
		}
		return
	}

	c.JSON(http.StatusOK, MapMealPlanToResponse(plan))
}

// GetMyMealPlans returns all plans authored by the nutritionist.
func (h *NutritionistHandler) GetMyMealPlans(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}

	plans, err := h.mealPlanService.ListPlansForNutritionist(c.Request.Context(), nutritionistID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve meal plans.")
		return
	}

	c.JSON(http.StatusOK, MapMealPlansToResponse(plans))
}

// --- Progress ---

// GetClientProgress returns progress entries for a plan the nutritionist authored.
func (h *NutritionistHandler) GetClientProgress(c *gin.Context) {
	nutritionistID, ok := callerID(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	entries, err := h.progressService.HistoryForNutritionist(c.Request.Context(), nutritionistID, planID)
	if err != nil {
		if errors.Is(err, service.ErrProgressPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrProgressAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve progress history.")
		}
		return
	}

	if entries == nil {
		entries = []service.ProgressEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// --- Feedback ---

// GetMyFeedback returns ratings customers have left for the nutritionist.
func (h *NutritionistHandler) GetMyFeedback(c *gin.Context) {
	nutritionistID, ok := callerID(c)
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

// --- Mappers ---

func MapMealPlanToResponse(p *domain.MealPlan) MealPlanResponse {
	if p == nil {
		return MealPlanResponse{}
	}
	resp := MealPlanResponse{
		ID:             p.ID.Hex(),
		ClientID:       p.ClientID.Hex(),
		NutritionistID: p.NutritionistID.Hex(),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		WeeklyPlan:     p.WeeklyPlan,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.MealPlanRequestID != nil && *p.MealPlanRequestID != primitive.NilObjectID {
		resp.MealPlanRequestID = (*p.MealPlanRequestID).Hex()
	}
	return resp
}

func MapMealPlansToResponse(plans []domain.MealPlan) []MealPlanResponse {
	responses := make([]MealPlanResponse, len(plans))
	for i, p := range plans {
		responses[i] = MapMealPlanToResponse(&p)
	}
	return responses
}
