package auth

import (
	"context"
	"fmt"
	"time"

	fbauth "firebase.google.com/go/auth"
	"github.com/golang-jwt/jwt/v5"

	"live-auction-api/internal/auctionerrors"
)

// TokenVerifier turns a bearer token into the caller's user ID
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Claims is the local JWT claim set
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 tokens for the local auth mode
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

// NewJWTManager creates a manager from the shared signing secret
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue signs a token for the user
func (m *JWTManager) Issue(userID, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the user ID
func (m *JWTManager) Verify(_ context.Context, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("auth: %w", auctionerrors.ErrUnauthenticated)
	}
	return claims.UserID, nil
}

// FirebaseVerifier verifies Firebase ID tokens with the Admin SDK
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier wraps an existing Firebase Auth client
func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify validates an ID token and returns its subject
func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	token, err := v.client.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return "", fmt.Errorf("auth: %w", auctionerrors.ErrUnauthenticated)
	}
	return token.UID, nil
}
