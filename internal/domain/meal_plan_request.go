package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlanRequestStatus type for the meal plan request lifecycle
type MealPlanRequestStatus string

const (
	MealPlanRequestPending  MealPlanRequestStatus = "pending"
	MealPlanRequestApproved MealPlanRequestStatus = "approved"
	MealPlanRequestRejected MealPlanRequestStatus = "rejected"
	MealPlanRequestCreated  MealPlanRequestStatus = "created"
)

// ValidMealPlanRequestStatus reports whether s is one of the four schema states.
func ValidMealPlanRequestStatus(s MealPlanRequestStatus) bool {
	switch s {
	case MealPlanRequestPending, MealPlanRequestApproved, MealPlanRequestRejected, MealPlanRequestCreated:
		return true
	}
	return false
}

// MealPlanRequest is the structured intake form a customer submits to request
// a personalized weekly diet. Status advances to "created" only as a side
// effect of the nutritionist submitting a MealPlan for it, and resets to
// "pending" when that plan is deleted.
type MealPlanRequest struct {
	ID              primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID    `bson:"clientId" json:"clientId"`
	NutritionistID  primitive.ObjectID    `bson:"nutritionistId" json:"nutritionistId"`
	BasicInfo       BasicInfo             `bson:"basicInfo" json:"basicInfo"`
	HealthInfo      HealthInfo            `bson:"healthInfo,omitempty" json:"healthInfo,omitempty"`
	DietaryInfo     DietaryInfo           `bson:"dietaryInfo,omitempty" json:"dietaryInfo,omitempty"`
	MealPrefs       MealPreferences       `bson:"mealPreferences,omitempty" json:"mealPreferences,omitempty"`
	GoalInfo        GoalInfo              `bson:"goalInfo,omitempty" json:"goalInfo,omitempty"`
	AdditionalPrefs string                `bson:"additionalPreferences,omitempty" json:"additionalPreferences,omitempty"`
	Status          MealPlanRequestStatus `bson:"status" json:"status"`
	CreatedAt       time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// BasicInfo mirrors the customer's physical profile at application time.
type BasicInfo struct {
	Weight        float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	Height        float64 `bson:"height,omitempty" json:"height,omitempty"`
	Age           int     `bson:"age,omitempty" json:"age,omitempty"`
	Gender        string  `bson:"gender,omitempty" json:"gender,omitempty"`
	ActivityLevel string  `bson:"activityLevel,omitempty" json:"activityLevel,omitempty"`
}

type HealthInfo struct {
	MedicalConditions []string `bson:"medicalConditions,omitempty" json:"medicalConditions,omitempty"`
	Allergies         []string `bson:"allergies,omitempty" json:"allergies,omitempty"`
	Medications       []string `bson:"medications,omitempty" json:"medications,omitempty"`
}

type DietaryInfo struct {
	DietType     string   `bson:"dietType,omitempty" json:"dietType,omitempty"` // e.g., "vegetarian", "keto"
	Restrictions []string `bson:"restrictions,omitempty" json:"restrictions,omitempty"`
	Dislikes     []string `bson:"dislikes,omitempty" json:"dislikes,omitempty"`
}

type MealPreferences struct {
	MealsPerDay   int      `bson:"mealsPerDay,omitempty" json:"mealsPerDay,omitempty"`
	CuisineStyles []string `bson:"cuisineStyles,omitempty" json:"cuisineStyles,omitempty"`
	CookingTime   string   `bson:"cookingTime,omitempty" json:"cookingTime,omitempty"` // e.g., "under 30min"
	BudgetPerWeek float64  `bson:"budgetPerWeek,omitempty" json:"budgetPerWeek,omitempty"`
}

type GoalInfo struct {
	Goal         string  `bson:"goal,omitempty" json:"goal,omitempty"` // e.g., "weight loss", "muscle gain"
	TargetWeight float64 `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	Timeframe    string  `bson:"timeframe,omitempty" json:"timeframe,omitempty"`
}
