package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	FeedbackMinRating = 1
	FeedbackMaxRating = 5
)

// Feedback is a customer's rating of a nutritionist. At most one feedback
// exists per (client, nutritionist) pair, backed by a unique compound index.
type Feedback struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID       primitive.ObjectID `bson:"clientId" json:"clientId"`
	NutritionistID primitive.ObjectID `bson:"nutritionistId" json:"nutritionistId"`
	Rating         int                `bson:"rating" json:"rating"` // 1..5
	Comment        string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
