package service

import (
	"context"
	"errors"
	"time"

	"powerplate/nutrition-app/internal/domain"
	"powerplate/nutrition-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrAccountBlocked       = errors.New("account is blocked")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotNutritionist      = errors.New("user is not a nutritionist")
)

// --- Service Interface ---
type AuthService interface {
	// RegisterCustomer creates a customer account. Customers self-register;
	// nutritionists are created by an admin via CreateNutritionist.
	RegisterCustomer(ctx context.Context, name, email, password string, profile *domain.CustomerProfile) (*domain.User, error)
	CreateNutritionist(ctx context.Context, name, email, password string, professional *domain.NutritionistProfile) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	SetNutritionistStatus(ctx context.Context, nutritionistID primitive.ObjectID, status domain.NutritionistStatus) error
	// EnsureAdmin creates the admin account from config if it does not exist.
	EnsureAdmin(ctx context.Context, email, password string) error
}

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// RegisterCustomer handles new customer registration.
func (s *authService) RegisterCustomer(ctx context.Context, name, email, password string, profile *domain.CustomerProfile) (*domain.User, error) {
	return s.register(ctx, &domain.User{
		Name:    name,
		Email:   email,
		Role:    domain.RoleCustomer,
		Profile: profile,
	}, password)
}

// CreateNutritionist creates a nutritionist account (admin operation).
// New nutritionists start active.
func (s *authService) CreateNutritionist(ctx context.Context, name, email, password string, professional *domain.NutritionistProfile) (*domain.User, error) {
	return s.register(ctx, &domain.User{
		Name:         name,
		Email:        email,
		Role:         domain.RoleNutritionist,
		Professional: professional,
		Status:       domain.NutritionistActive,
	}, password)
}

func (s *authService) register(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if user.Name == "" || user.Email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}

	// Check if user already exists. The unique email index backstops the
	// race between this check and Create.
	_, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}
	user.PasswordHash = string(hashedPassword)

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation. A blocked
// nutritionist is refused even with correct credentials.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	if user.IsBlocked() {
		err = ErrAccountBlocked
		user = nil
		return
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// SetNutritionistStatus blocks or unblocks a nutritionist (admin operation).
// Existing requests and plans persist either way.
func (s *authService) SetNutritionistStatus(ctx context.Context, nutritionistID primitive.ObjectID, status domain.NutritionistStatus) error {
	if status != domain.NutritionistActive && status != domain.NutritionistBlocked {
		return errors.New("status must be active or blocked")
	}
	err := s.userRepo.SetNutritionistStatus(ctx, nutritionistID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotNutritionist
	}
	return err
}

// EnsureAdmin creates the configured admin account if missing. Idempotent.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil // No admin configured; admin routes are then unusable.
	}
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}
	_, err = s.userRepo.Create(ctx, &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleAdmin,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil // Lost a startup race with another instance; fine.
	}
	return err
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "nutrition-app",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}
