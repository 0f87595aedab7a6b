package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealPlan is the nutritionist-authored weekly plan produced for a
// MealPlanRequest. Owned exclusively by the authoring nutritionist; one plan
// exists per request (enforced by the submit/delete handlers, not schema).
// Its content is visible to the client only after an associated payment
// reaches "paid".
type MealPlan struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID          primitive.ObjectID  `bson:"clientId" json:"clientId"`
	NutritionistID    primitive.ObjectID  `bson:"nutritionistId" json:"nutritionistId"`
	MealPlanRequestID *primitive.ObjectID `bson:"mealPlanRequestId,omitempty" json:"mealPlanRequestId,omitempty"`
	StartDate         time.Time           `bson:"startDate" json:"startDate"`
	EndDate           time.Time           `bson:"endDate" json:"endDate"`
	WeeklyPlan        WeeklyPlan          `bson:"weeklyPlan" json:"weeklyPlan"`
	Notes             string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// WeeklyPlan maps each weekday to its daily plan.
type WeeklyPlan struct {
	Monday    DailyPlan `bson:"monday,omitempty" json:"monday,omitempty"`
	Tuesday   DailyPlan `bson:"tuesday,omitempty" json:"tuesday,omitempty"`
	Wednesday DailyPlan `bson:"wednesday,omitempty" json:"wednesday,omitempty"`
	Thursday  DailyPlan `bson:"thursday,omitempty" json:"thursday,omitempty"`
	Friday    DailyPlan `bson:"friday,omitempty" json:"friday,omitempty"`
	Saturday  DailyPlan `bson:"saturday,omitempty" json:"saturday,omitempty"`
	Sunday    DailyPlan `bson:"sunday,omitempty" json:"sunday,omitempty"`
}

// IsEmpty reports whether no day of the week has any meals.
func (w WeeklyPlan) IsEmpty() bool {
	days := []DailyPlan{w.Monday, w.Tuesday, w.Wednesday, w.Thursday, w.Friday, w.Saturday, w.Sunday}
	for _, d := range days {
		if len(d.Breakfast) > 0 || len(d.Lunch) > 0 || len(d.Dinner) > 0 {
			return false
		}
	}
	return true
}

// DailyPlan holds per-meal-slot lists of meal entries.
type DailyPlan struct {
	Breakfast []MealEntry `bson:"breakfast,omitempty" json:"breakfast,omitempty"`
	Lunch     []MealEntry `bson:"lunch,omitempty" json:"lunch,omitempty"`
	Dinner    []MealEntry `bson:"dinner,omitempty" json:"dinner,omitempty"`
}

// MealEntry is a single meal with its macro totals.
type MealEntry struct {
	Name     string  `bson:"name" json:"name"`
	Portion  string  `bson:"portion,omitempty" json:"portion,omitempty"` // e.g., "200g", "1 cup"
	Calories float64 `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"` // grams
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`     // grams
	Fat      float64 `bson:"fat,omitempty" json:"fat,omitempty"`         // grams
}
