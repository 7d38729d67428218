package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mememates-backend/internal/apperrors"
	"mememates-backend/internal/models"
	"mememates-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenExpDays = 7
	bcryptCost   = 10
)

// Claims are the verified contents of a bearer token.
type Claims struct {
	UserID string
	Email  string
}

// UserStore is the subset of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// AuthService is the single identity entry point: it registers users, checks
// credentials, and issues and verifies every bearer token in the system.
type AuthService struct {
	users     UserStore
	sessions  SessionStore
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, sessions SessionStore, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		jwtSecret: jwtSecret,
	}
}

// Register creates a user from credentials and returns it along with a
// signed token. Duplicate emails are rejected before hashing.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, "Registration failed", err)
	}
	if exists {
		return nil, "", apperrors.AlreadyExists("User with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, "Registration failed", err)
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  string(hash),
		Interests: []string{},
		Photos:    []string{},
		IsNewUser: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, "Registration failed", err)
	}

	token, err := s.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, "Registration failed", err)
	}

	return user, token, nil
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords produce the identical error so callers cannot tell them apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", apperrors.Unauthorized("Invalid credentials")
		}
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, "Login failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeInternal, "Login failed", err)
	}

	return user, token, nil
}

// StartSession records a server-side session for the user and returns its id.
func (s *AuthService) StartSession(ctx context.Context, user *models.User) (string, error) {
	return s.sessions.Create(ctx, &Session{
		UserID:    user.ID,
		Email:     user.Email,
		IsNewUser: user.IsNewUser,
	})
}

// GenerateToken signs a bearer token embedding the user id and email with a
// fixed 7-day expiry.
func (s *AuthService) GenerateToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   time.Now().AddDate(0, 0, tokenExpDays).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies integrity and expiry and returns the embedded
// claims. Expired tokens are reported distinctly so clients can trigger a
// re-login flow.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.TokenExpired("Token expired")
		}
		return nil, apperrors.Wrap(apperrors.CodeUnauthenticated, "Invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	userID, ok := claims["id"].(string)
	if !ok || userID == "" {
		return nil, apperrors.Unauthorized("Invalid token")
	}
	email, _ := claims["email"].(string)

	return &Claims{UserID: userID, Email: email}, nil
}
