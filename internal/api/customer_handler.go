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

// CustomerHandler bundles the services a customer interacts with.
type CustomerHandler struct {
	consultancyService service.ConsultancyService
	mealPlanService    service.MealPlanService
	paymentService     service.PaymentService
	progressService    service.ProgressService
	feedbackService    service.FeedbackService
	userService        service.UserService
}

func NewCustomerHandler(
	consultancyService service.ConsultancyService,
	mealPlanService service.MealPlanService,
	paymentService service.PaymentService,
	progressService service.ProgressService,
	feedbackService service.FeedbackService,
	userService service.UserService,
) *CustomerHandler {
	return &CustomerHandler{
		consultancyService: consultancyService,
		mealPlanService:    mealPlanService,
		paymentService:     paymentService,
		progressService:    progressService,
		feedbackService:    feedbackService,
		userService:        userService,
	}
}

// --- DTOs ---

type CreateConsultancyRequest struct {
	NutritionistID string `json:"nutritionistId" binding:"required"`
	Message        string `json:"message" binding:"required"`
	Problem        string `json:"problem"`
}

type ConsultancyResponse struct {
	ID              string                   `json:"id"`
	ClientID        string                   `json:"clientId"`
	NutritionistID  string                   `json:"nutritionistId"`
	Message         string                   `json:"message"`
	Problem         string                   `json:"problem,omitempty"`
	Status          domain.ConsultancyStatus `json:"status"`
	ResponseMessage string                   `json:"responseMessage,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type ApplyMealPlanRequest struct {
	NutritionistID  string                 `json:"nutritionistId" binding:"required"`
	BasicInfo       domain.BasicInfo       `json:"basicInfo" binding:"required"`
	HealthInfo      domain.HealthInfo      `json:"healthInfo"`
	DietaryInfo     domain.DietaryInfo     `json:"dietaryInfo"`
	MealPreferences domain.MealPreferences `json:"mealPreferences"`
	GoalInfo        domain.GoalInfo        `json:"goalInfo"`
	AdditionalPrefs string                 `json:"additionalPreferences"`
}

type MealPlanRequestResponse struct {
	ID              string                       `json:"id"`
	ClientID        string                       `json:"clientId"`
	NutritionistID  string                       `json:"nutritionistId"`
	BasicInfo       domain.BasicInfo             `json:"basicInfo"`
	HealthInfo      domain.HealthInfo            `json:"healthInfo,omitempty"`
	DietaryInfo     domain.DietaryInfo           `json:"dietaryInfo,omitempty"`
	MealPreferences domain.MealPreferences       `json:"mealPreferences,omitempty"`
	GoalInfo        domain.GoalInfo              `json:"goalInfo,omitempty"`
	AdditionalPrefs string                       `json:"additionalPreferences,omitempty"`
	Status          domain.MealPlanRequestStatus `json:"status"`
	CreatedAt       time.Time                    `json:"createdAt"`
	UpdatedAt       time.Time                    `json:"updatedAt"`
}

type InitiatePaymentRequest struct {
	MealPlanRequestID string `json:"mealPlanRequestId" binding:"required"`
	ReferenceID       string `json:"referenceId" binding:"required"`
}

type PaymentResponse struct {
	ID                string               `json:"id"`
	ClientID          string               `json:"clientId"`
	MealPlanRequestID string               `json:"mealPlanRequestId"`
	Amount            float64              `json:"amount"`
	ReferenceID       string               `json:"referenceId"`
	Status            domain.PaymentStatus `json:"status"`
	PaymentDate       time.Time            `json:"paymentDate"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

type RecordProgressRequest struct {
	MealPlanID   string              `json:"mealPlanId" binding:"required"`
	Weight       float64             `json:"weight"`
	Height       float64             `json:"height"`
	Measurements domain.Measurements `json:"measurements"`
	PhotoKeys    []string            `json:"photoKeys"`
	Notes        string              `json:"notes"`
}

type PhotoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type SubmitFeedbackRequest struct {
	NutritionistID string `json:"nutritionistId" binding:"required"`
	Rating         int    `json:"rating" binding:"required"`
	Comment        string `json:"comment"`
}

type FeedbackResponse struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"clientId"`
	NutritionistID string    `json:"nutritionistId"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Profile domain.CustomerProfile `json:"profile" binding:"required"`
}

type ImageUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmImageRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Helpers ---

// callerID extracts the authenticated user's ObjectID from the JWT context.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathID parses an ObjectID path parameter, aborting with 400 on bad input.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// --- Consultancy ---

// CreateConsultancyRequest godoc
// @Summary File a consultancy request with a nutritionist
// @Tags Customer
// @Security BearerAuth
// @Router /customer/consultancy-requests [post]
func (h *CustomerHandler) CreateConsultancyRequest(c *gin.Context) {
	var req CreateConsultancyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	nutritionistID, err := primitive.ObjectIDFromHex(req.NutritionistID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid nutritionist ID format.")
		return
	}

	created, err := h.consultancyService.Create(c.Request.Context(), clientID, nutritionistID, req.Message, req.Problem)
	if err != nil {
		if errors.Is(err, service.ErrNutritionistNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrPendingRequestExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create consultancy request.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapConsultancyToResponse(created))
}

// GetMyConsultancyRequests returns the customer's consultancy requests, newest first.
func (h *CustomerHandler) GetMyConsultancyRequests(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.consultancyService.ListForClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve consultancy requests.")
		return
	}

	c.JSON(http.StatusOK, MapConsultanciesToResponse(requests))
}

// --- Meal Plan Requests ---

// ApplyForMealPlan files an intake form with a nutritionist.
func (h *CustomerHandler) ApplyForMealPlan(c *gin.Context) {
	var req ApplyMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	nutritionistID, err := primitive.ObjectIDFromHex(req.NutritionistID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid nutritionist ID format.")
		return
	}

	form := domain.MealPlanRequest{
		BasicInfo:       req.BasicInfo,
		HealthInfo:      req.HealthInfo,
		DietaryInfo:     req.DietaryInfo,
		MealPrefs:       req.MealPreferences,
		GoalInfo:        req.GoalInfo,
		AdditionalPrefs: req.AdditionalPrefs,
	}

	created, err := h.mealPlanService.Apply(c.Request.Context(), clientID, nutritionistID, form)
	if err != nil {
		if errors.Is(err, service.ErrNutritionistNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrPendingMealPlanRequest) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit meal plan request.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapMealPlanRequestToResponse(created))
}

// GetMyMealPlanRequests returns the customer's intake forms with their statuses.
func (h *CustomerHandler) GetMyMealPlanRequests(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	requests, err := h.mealPlanService.ListRequestsForClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve meal plan requests.")
		return
	}

	c.JSON(http.StatusOK, MapMealPlanRequestsToResponse(requests))
}

// GetMyMealPlan returns the generated plan for one of the customer's
// requests. Visibility is payment gated; without a paid payment the plan
// content is never returned.
func (h *CustomerHandler) GetMyMealPlan(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}

	plan, err := h.mealPlanService.GetPlanForCustomer(c.Request.Context(), clientID, requestID)
	if err != nil {
		if errors.Is(err, service.ErrMealPlanNotFound) || errors.Is(err, service.ErrMealPlanRequestNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrMealPlanNotPaid) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve meal plan.")
		}
		return
	}

	c.JSON(http.StatusOK, MapMealPlanToResponse(plan))
}

// --- Payments ---

// InitiatePayment records a manual bank payment for a meal plan request.
func (h *CustomerHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	requestID, err := primitive.ObjectIDFromHex(req.MealPlanRequestID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan request ID format.")
		return
	}

	payment, err := h.paymentService.Initiate(c.Request.Context(), clientID, requestID, req.ReferenceID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentRequestMissing) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrPaymentRequestNotOwned) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else if errors.Is(err, service.ErrProcessingPaymentExists) || errors.Is(err, service.ErrDuplicateReferenceID) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else if errors.Is(err, service.ErrPaymentReferenceRequired) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to initiate payment.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapPaymentToResponse(payment))
}

// GetMyPayments returns the customer's payment history, newest first.
func (h *CustomerHandler) GetMyPayments(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListForClient(c.Request.Context(), clientID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve payments.")
		return
	}

	c.JSON(http.StatusOK, MapPaymentsToResponse(payments))
}

// --- Progress ---

// RecordProgress appends a body measurement snapshot for one of the
// customer's meal plans.
func (h *CustomerHandler) RecordProgress(c *gin.Context) {
	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.MealPlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid meal plan ID format.")
		return
	}

	progress, err := h.progressService.Record(c.Request.Context(), clientID, planID, req.Weight, req.Height, req.Measurements, req.PhotoKeys, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrProgressPlanNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrProgressAccessDenied) {
			abortWithError(c, http.StatusForbidden, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to record progress.")
		}
		return
	}

	c.JSON(http.StatusCreated, progress)
}

// GetMyProgress returns the customer's progress history for a plan.
func (h *CustomerHandler) GetMyProgress(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "planId")
	if !ok {
		return
	}

	entries, err := h.progressService.History(c.Request.Context(), clientID, planID)
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

// RequestProgressPhotoURL returns a presigned PUT URL for a progress photo.
func (h *CustomerHandler) RequestProgressPhotoURL(c *gin.Context) {
	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.progressService.RequestPhotoUploadURL(c.Request.Context(), clientID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPhotoType) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// --- Feedback ---

// SubmitFeedback records the customer's one-time rating of a nutritionist.
func (h *CustomerHandler) SubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	nutritionistID, err := primitive.ObjectIDFromHex(req.NutritionistID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid nutritionist ID format.")
		return
	}

	feedback, err := h.feedbackService.Submit(c.Request.Context(), clientID, nutritionistID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRating) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else if errors.Is(err, service.ErrFeedbackTargetNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrFeedbackExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to submit feedback.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapFeedbackToResponse(feedback))
}

// --- Profile ---

// GetMyProfile returns the authenticated user's account details.
func (h *CustomerHandler) GetMyProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMyProfile replaces the customer's physical profile.
func (h *CustomerHandler) UpdateMyProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateCustomerProfile(c.Request.Context(), clientID, &req.Profile)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update profile.")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// RequestProfileImageURL returns a presigned PUT URL for a profile image.
func (h *CustomerHandler) RequestProfileImageURL(c *gin.Context) {
	var req ImageUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	result, err := h.userService.RequestImageUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImageType) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// ConfirmProfileImage records the uploaded object key on the user.
func (h *CustomerHandler) ConfirmProfileImage(c *gin.Context) {
	var req ConfirmImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.userService.ConfirmImageUpload(c.Request.Context(), userID, req.ObjectKey); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm image upload.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"objectKey": req.ObjectKey})
}

// GetProfileImage returns a presigned download URL for the stored profile
// image. The URL is empty when no image has been uploaded.
func (h *CustomerHandler) GetProfileImage(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	url, err := h.userService.GetImageDownloadURL(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate download URL.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

// --- Mappers ---

func MapConsultancyToResponse(r *domain.ConsultancyRequest) ConsultancyResponse {
	if r == nil {
		return ConsultancyResponse{}
	}
	return ConsultancyResponse{
		ID:              r.ID.Hex(),
		ClientID:        r.ClientID.Hex(),
		NutritionistID:  r.NutritionistID.Hex(),
		Message:         r.Message,
		Problem:         r.Problem,
		Status:          r.Status,
		ResponseMessage: r.ResponseMessage,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func MapConsultanciesToResponse(requests []domain.ConsultancyRequest) []ConsultancyResponse {
	responses := make([]ConsultancyResponse, len(requests))
	for i, r := range requests {
		responses[i] = MapConsultancyToResponse(&r)
	}
	return responses
}

func MapMealPlanRequestToResponse(r *domain.MealPlanRequest) MealPlanRequestResponse {
	if r == nil {
		return MealPlanRequestResponse{}
	}
	return MealPlanRequestResponse{
		ID:              r.ID.Hex(),
		ClientID:        r.ClientID.Hex(),
		NutritionistID:  r.NutritionistID.Hex(),
		BasicInfo:       r.BasicInfo,
		HealthInfo:      r.HealthInfo,
		DietaryInfo:     r.DietaryInfo,
		MealPreferences: r.MealPrefs,
		GoalInfo:        r.GoalInfo,
		AdditionalPrefs: r.AdditionalPrefs,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func MapMealPlanRequestsToResponse(requests []domain.MealPlanRequest) []MealPlanRequestResponse {
	responses := make([]MealPlanRequestResponse, len(requests))
	for i, r := range requests {
		responses[i] = MapMealPlanRequestToResponse(&r)
	}
	return responses
}

func MapPaymentToResponse(p *domain.Payment) PaymentResponse {
	if p == nil {
		return PaymentResponse{}
	}
	return PaymentResponse{
		ID:                p.ID.Hex(),
		ClientID:          p.ClientID.Hex(),
		MealPlanRequestID: p.MealPlanRequestID.Hex(),
		Amount:            p.Amount,
		ReferenceID:       p.ReferenceID,
		Status:            p.Status,
		PaymentDate:       p.PaymentDate,
		UpdatedAt:         p.UpdatedAt,
	}
}

func MapPaymentsToResponse(payments []domain.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = MapPaymentToResponse(&p)
	}
	return responses
}

func MapFeedbackToResponse(f *domain.Feedback) FeedbackResponse {
	if f == nil {
		return FeedbackResponse{}
	}
	return FeedbackResponse{
		ID:             f.ID.Hex(),
		ClientID:       f.ClientID.Hex(),
		NutritionistID: f.NutritionistID.Hex(),
		Rating:         f.Rating,
		Comment:        f.Comment,
		CreatedAt:      f.CreatedAt,
	}
}

func MapFeedbacksToResponse(feedbacks []domain.Feedback) []FeedbackResponse {
	responses := make([]FeedbackResponse, len(feedbacks))
	for i, f := range feedbacks {
		responses[i] = MapFeedbackToResponse(&f)
	}
	return responses
}
