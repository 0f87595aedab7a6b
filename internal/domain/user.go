package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCustomer     Role = "customer"
	RoleNutritionist Role = "nutritionist"
	RoleAdmin        Role = "admin"
)

// NutritionistStatus controls whether a nutritionist may authenticate.
type NutritionistStatus string

const (
	NutritionistActive  NutritionistStatus = "active"
	NutritionistBlocked NutritionistStatus = "blocked"
)

// User represents any account in the system (Customer, Nutritionist or Admin).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique index
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Customer-specific physical profile ---
	Profile *CustomerProfile `bson:"profile,omitempty" json:"profile,omitempty"`

	// --- Nutritionist-specific ---
	Professional *NutritionistProfile `bson:"professional,omitempty" json:"professional,omitempty"`
	// A blocked nutritionist cannot log in; existing requests and plans persist.
	Status NutritionistStatus `bson:"status,omitempty" json:"status,omitempty"`

	// Object key of the uploaded profile image; the file itself lives in S3.
	ImageKey string `bson:"imageKey,omitempty" json:"-"`
}

// CustomerProfile holds the customer's physical data used on intake forms.
type CustomerProfile struct {
	Weight float64 `bson:"weight,omitempty" json:"weight,omitempty"` // kg
	Height float64 `bson:"height,omitempty" json:"height,omitempty"` // cm
	Age    int     `bson:"age,omitempty" json:"age,omitempty"`
	Gender string  `bson:"gender,omitempty" json:"gender,omitempty"`
	Phone  string  `bson:"phone,omitempty" json:"phone,omitempty"`
}

// NutritionistProfile holds the professional data shown to customers.
type NutritionistProfile struct {
	Qualification   string  `bson:"qualification,omitempty" json:"qualification,omitempty"`
	Specialization  string  `bson:"specialization,omitempty" json:"specialization,omitempty"`
	ExperienceYears int     `bson:"experienceYears,omitempty" json:"experienceYears,omitempty"`
	Bio             string  `bson:"bio,omitempty" json:"bio,omitempty"`
	ConsultationFee float64 `bson:"consultationFee,omitempty" json:"consultationFee,omitempty"`
}

func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

func (u *User) IsNutritionist() bool {
	return u.Role == RoleNutritionist
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsBlocked reports whether a nutritionist account is blocked from logging in.
func (u *User) IsBlocked() bool {
	return u.Role == RoleNutritionist && u.Status == NutritionistBlocked
}
