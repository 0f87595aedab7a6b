package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConsultancyStatus type for the consultancy request lifecycle
type ConsultancyStatus string

const (
	ConsultancyPending  ConsultancyStatus = "pending"
	ConsultancyAccepted ConsultancyStatus = "accepted"
	ConsultancyRejected ConsultancyStatus = "rejected"
)

// ConsultancyRequest is a free-form advice request from a customer to a
// nutritionist, independent of meal planning. At most one pending request
// may exist per (client, nutritionist) pair. Accepted/rejected are terminal;
// there is no route to undo a response.
type ConsultancyRequest struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	NutritionistID  primitive.ObjectID `bson:"nutritionistId" json:"nutritionistId"`
	Message         string             `bson:"message" json:"message"`
	Problem         string             `bson:"problem,omitempty" json:"problem,omitempty"`
	Status          ConsultancyStatus  `bson:"status" json:"status"`
	ResponseMessage string             `bson:"responseMessage,omitempty" json:"responseMessage,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
