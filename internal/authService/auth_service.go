package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"live-auction-api/internal/auctionerrors"
	"live-auction-api/internal/models"
	"live-auction-api/internal/repository"
	"live-auction-api/utils"
)

// AuthService defines registration, login, and profile token management
type AuthService struct {
	store  repository.Store
	tokens *JWTManager
}

// NewAuthService creates a new AuthService instance
func NewAuthService(store repository.Store, tokens *JWTManager) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
	}
}

// Register creates a user document with a hashed password and issues a token.
// New users start with role "user", no hosting rights, and an empty wallet.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, string, error) {
	if email == "" || displayName == "" {
		return nil, "", fmt.Errorf("service: %w - missing email or display name", auctionerrors.ErrInvalidInput)
	}
	if len(password) < 6 {
		return nil, "", fmt.Errorf("service: %w - password must be at least 6 characters", auctionerrors.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("service: failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		UserID:       utils.GenerateID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		Role:         "user",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("service: failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.UserID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("service: failed to issue token for %s: %w", user.UserID, err)
	}

	return user, token, nil
}

// Login verifies credentials and issues a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("service: %w - missing email or password", auctionerrors.ErrInvalidInput)
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("service: %w", auctionerrors.ErrBadCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("service: %w", auctionerrors.ErrBadCredentials)
	}

	token, err := s.tokens.Issue(user.UserID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("service: failed to issue token for %s: %w", user.UserID, err)
	}

	return user, token, nil
}

// GetProfile returns the caller's user document
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load user %s: %w", userID, err)
	}
	return user, nil
}

// UpdateFCMToken stores the caller's push token
func (s *AuthService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	if userID == "" {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if token == "" {
		return fmt.Errorf("service: %w - missing FCM token", auctionerrors.ErrInvalidInput)
	}

	if err := s.store.UpdateFCMToken(ctx, userID, token); err != nil {
		return fmt.Errorf("service: failed to update FCM token for %s: %w", userID, err)
	}
	return nil
}
