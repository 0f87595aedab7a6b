package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Progress is a dated snapshot of a client's body measurements tied to a
// specific meal plan. Append-only; it is never updated once recorded.
// NutritionistID is derived from the referenced plan at record time.
type Progress struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID       primitive.ObjectID `bson:"clientId" json:"clientId"`
	MealPlanID     primitive.ObjectID `bson:"mealPlanId" json:"mealPlanId"`
	NutritionistID primitive.ObjectID `bson:"nutritionistId" json:"nutritionistId"`
	Weight         float64            `bson:"weight,omitempty" json:"weight,omitempty"`
	Height         float64            `bson:"height,omitempty" json:"height,omitempty"`
	Measurements   Measurements       `bson:"measurements,omitempty" json:"measurements,omitempty"`
	PhotoKeys      []string           `bson:"photoKeys,omitempty" json:"-"` // S3 object keys, URLs generated on read
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Date           time.Time          `bson:"date" json:"date"`
}

// Measurements holds the tracked body circumferences in centimeters.
type Measurements struct {
	Waist  float64 `bson:"waist,omitempty" json:"waist,omitempty"`
	Chest  float64 `bson:"chest,omitempty" json:"chest,omitempty"`
	Arms   float64 `bson:"arms,omitempty" json:"arms,omitempty"`
	Thighs float64 `bson:"thighs,omitempty" json:"thighs,omitempty"`
}
