package api

import (
	"errors"
	"net/http"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler bundles the back-office operations: nutritionist account
// management, payment verification and feedback moderation.
type AdminHandler struct {
	authService     service.AuthService
	paymentService  service.PaymentService
	feedbackService service.FeedbackService
}

func NewAdminHandler(
	authService service.AuthService,
	paymentService service.PaymentService,
	feedbackService service.FeedbackService,
) *AdminHandler {
	return &AdminHandler{
		authService:     authService,
		paymentService:  paymentService,
		feedbackService: feedbackService,
	}
}

// --- DTOs ---

type CreateNutritionistRequest struct {
	Name         string                      `json:"name" binding:"required"`
	Email        string                      `json:"email" binding:"required,email"`
	Password     string                      `json:"password" binding:"required,min=8"`
	Professional *domain.NutritionistProfile `json:"professional"`
}

type SetNutritionistStatusRequest struct {
	Status domain.NutritionistStatus `json:"status" binding:"required,oneof=active blocked"`
}

type SetPaymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" binding:"required"`
}

// --- Nutritionist Accounts ---

// CreateNutritionist provisions a nutritionist account. There is no
// self-service registration for nutritionists.
func (h *AdminHandler) CreateNutritionist(c *gin.Context) {
	var req CreateNutritionistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.authService.CreateNutritionist(c.Request.Context(), req.Name, req.Email, req.Password, req.Professional)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create nutritionist account.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// SetNutritionistStatus blocks or reinstates a nutritionist. Blocking only
// refuses future logins; existing records are untouched.
func (h *AdminHandler) SetNutritionistStatus(c *gin.Context) {
	var req SetNutritionistStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	nutritionistID, ok := pathID(c, "nutritionistId")
	if !ok {
		return
	}

	err := h.authService.SetNutritionistStatus(c.Request.Context(), nutritionistID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrNotNutritionist) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update nutritionist status.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// --- Payments ---

// ListPayments returns every payment record for manual verification.
func (h *AdminHandler) ListPayments(c *gin.Context) {
	payments, err := h.paymentService.ListAll(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve payments.")
		return
	}

	c.JSON(http.StatusOK, MapPaymentsToResponse(payments))
}

// SetPaymentStatus is the verification step: an unconditional overwrite to
// any of the three states after the admin checks the bank statement.
func (h *AdminHandler) SetPaymentStatus(c *gin.Context) {
	var req SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	paymentID, ok := pathID(c, "paymentId")
	if !ok {
		return
	}

	payment, err := h.paymentService.SetStatus(c.Request.Context(), paymentID, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else if errors.Is(err, service.ErrInvalidPaymentStatus) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update payment status.")
		}
		return
	}

	c.JSON(http.StatusOK, MapPaymentToResponse(payment))
}

// --- Feedback Moderation ---

// DeleteFeedback removes a feedback entry regardless of author.
func (h *AdminHandler) DeleteFeedback(c *gin.Context) {
	feedbackID, ok := pathID(c, "feedbackId")
	if !ok {
		return
	}

	err := h.feedbackService.Delete(c.Request.Context(), feedbackID)
	if err != nil {
		if errors.Is(err, service.ErrFeedbackNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete feedback.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
