package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus type for the payment lifecycle
type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentRejected   PaymentStatus = "rejected"
)

// ValidPaymentStatus reports whether s is one of the three payment states.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentProcessing, PaymentPaid, PaymentRejected:
		return true
	}
	return false
}

// Payment is a manually-verified payment record gating visibility of a meal
// plan. ReferenceID is the caller-supplied bank reference and carries a
// unique index. At most one processing payment may exist per request.
type Payment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID          primitive.ObjectID `bson:"clientId" json:"clientId"`
	MealPlanRequestID primitive.ObjectID `bson:"mealPlanRequestId" json:"mealPlanRequestId"`
	Amount            float64            `bson:"amount" json:"amount"`
	ReferenceID       string             `bson:"referenceId" json:"referenceId"`
	Status            PaymentStatus      `bson:"status" json:"status"`
	PaymentDate       time.Time          `bson:"paymentDate" json:"paymentDate"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}
