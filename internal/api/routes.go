package api

import (
	"net/http"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	consultancyService service.ConsultancyService,
	mealPlanService service.MealPlanService,
	paymentService service.PaymentService,
	progressService service.ProgressService,
	feedbackService service.FeedbackService,
) {
	authHandler := NewAuthHandler(authService)
	publicHandler := NewPublicHandler(userService, feedbackService)
	customerHandler := NewCustomerHandler(consultancyService, mealPlanService, paymentService, progressService, feedbackService, userService)
	nutritionistHandler := NewNutritionistHandler(consultancyService, mealPlanService, progressService, feedbackService)
	adminHandler := NewAdminHandler(authService, paymentService, feedbackService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Public browsing surface, no token required.
		nutritionistsGroup := apiV1.Group("/nutritionists")
		{
			nutritionistsGroup.GET("", publicHandler.ListNutritionists)
			nutritionistsGroup.GET("/:nutritionistId", publicHandler.GetNutritionist)
			nutritionistsGroup.GET("/:nutritionistId/feedback", publicHandler.GetNutritionistFeedback)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Customer Routes ---
		customerGroup := protected.Group("/customer")
		customerGroup.Use(RoleMiddleware(domain.RoleCustomer))
		{
			customerGroup.GET("/profile", customerHandler.GetMyProfile)
			customerGroup.PUT("/profile", customerHandler.UpdateMyProfile)
			customerGroup.POST("/profile/image-url", customerHandler.RequestProfileImageURL)
			customerGroup.POST("/profile/image", customerHandler.ConfirmProfileImage)
			customerGroup.GET("/profile/image", customerHandler.GetProfileImage)

			customerGroup.POST("/consultancy-requests", customerHandler.CreateConsultancyRequest)
			customerGroup.GET("/consultancy-requests", customerHandler.GetMyConsultancyRequests)

			customerGroup.POST("/meal-plan-requests", customerHandler.ApplyForMealPlan)
			customerGroup.GET("/meal-plan-requests", customerHandler.GetMyMealPlanRequests)
			// Plan content behind this route is payment gated.
			customerGroup.GET("/meal-plan-requests/:requestId/plan", customerHandler.GetMyMealPlan)

			customerGroup.POST("/payments", customerHandler.InitiatePayment)
			customerGroup.GET("/payments", customerHandler.GetMyPayments)

			customerGroup.POST("/progress", customerHandler.RecordProgress)
			customerGroup.GET("/plans/:planId/progress", customerHandler.GetMyProgress)
			customerGroup.POST("/progress/photo-url", customerHandler.RequestProgressPhotoURL)

			customerGroup.POST("/feedback", customerHandler.SubmitFeedback)
		}

		// --- Nutritionist Routes ---
		nutritionistGroup := protected.Group("/nutritionist")
		nutritionistGroup.Use(RoleMiddleware(domain.RoleNutritionist))
		{
			nutritionistGroup.GET("/consultancy-requests", nutritionistHandler.GetMyConsultancyRequests)
			nutritionistGroup.PUT("/consultancy-requests/:requestId", nutritionistHandler.RespondToConsultancy)
			nutritionistGroup.DELETE("/consultancy-requests/:requestId", nutritionistHandler.DeleteConsultancyRequest)

			nutritionistGroup.GET("/meal-plan-requests", nutritionistHandler.GetMyMealPlanRequests)
			nutritionistGroup.PUT("/meal-plan-requests/:requestId/status", nutritionistHandler.UpdateMealPlanRequestStatus)
			nutritionistGroup.POST("/meal-plan-requests/:requestId/plan", nutritionistHandler.SubmitMealPlan)

			nutritionistGroup.GET("/plans", nutritionistHandler.GetMyMealPlans)
			nutritionistGroup.GET("/plans/:planId", nutritionistHandler.GetMealPlan)
			nutritionistGroup.DELETE("/plans/:planId", nutritionistHandler.DeleteMealPlan)

			nutritionistGroup.GET("/plans/:planId/progress", nutritionistHandler.GetClientProgress)
			nutritionistGroup.GET("/feedback", nutritionistHandler.GetMyFeedback)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/nutritionists", adminHandler.CreateNutritionist)
			adminGroup.PUT("/nutritionists/:nutritionistId/status", adminHandler.SetNutritionistStatus)

			adminGroup.GET("/payments", adminHandler.ListPayments)
			adminGroup.PUT("/payments/:paymentId/status", adminHandler.SetPaymentStatus)

			adminGroup.DELETE("/feedback/:feedbackId", adminHandler.DeleteFeedback)
		}
	}
}
