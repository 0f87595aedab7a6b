package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"powerplate/nutrition-app/internal/api"
	"powerplate/nutrition-app/internal/config"
	"powerplate/nutrition-app/internal/repository/mongo"
	"powerplate/nutrition-app/internal/service"
	"powerplate/nutrition-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title PowerPlate Nutrition API
// @version 1.0
// @description API for the nutrition consultancy marketplace: consultancy requests, meal plans, payments, progress tracking and feedback.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Nutrition App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureConsultancyIndexes(ctx, appDB.Collection("consultancy_requests"))
		mongo.EnsureMealPlanRequestIndexes(ctx, appDB.Collection("meal_plan_requests"))
		mongo.EnsureMealPlanIndexes(ctx, appDB.Collection("meal_plans"))
		mongo.EnsurePaymentIndexes(ctx, appDB.Collection("payments"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("progress"))
		mongo.EnsureFeedbackIndexes(ctx, appDB.Collection("feedback"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	consultancyRepo := mongo.NewMongoConsultancyRepository(appDB)
	mealPlanRequestRepo := mongo.NewMongoMealPlanRequestRepository(appDB)
	mealPlanRepo := mongo.NewMongoMealPlanRepository(appDB)
	paymentRepo := mongo.NewMongoPaymentRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	feedbackRepo := mongo.NewMongoFeedbackRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	// The meal plan and payment services share one lock set so plan
	// submission and payment initiation serialize per request.
	requestLocks := service.NewRequestLocks()

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, fileStorage)
	consultancyService := service.NewConsultancyService(consultancyRepo, userRepo)
	mealPlanService := service.NewMealPlanService(mealPlanRequestRepo, mealPlanRepo, paymentRepo, userRepo, requestLocks, cfg.Plans.AllowDuplicateRequests)
	paymentService := service.NewPaymentService(paymentRepo, mealPlanRequestRepo, requestLocks, cfg.Payment.Amount)
	progressService := service.NewProgressService(progressRepo, mealPlanRepo, fileStorage)
	feedbackService := service.NewFeedbackService(feedbackRepo, userRepo)

	// --- Bootstrap Admin Account ---
	if cfg.Admin.Email != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Printf("ERROR: Failed to ensure admin account: %v", err)
		}
		cancel()
	}

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default()

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, userService, consultancyService, mealPlanService, paymentService, progressService, feedbackService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
