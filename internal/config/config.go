package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
)

// Auth modes. "jwt" issues and verifies local HS256 tokens; "firebase"
// verifies Firebase ID tokens.
const (
	AuthModeJWT      = "jwt"
	AuthModeFirebase = "firebase"
)

type Config struct {
	Port             string
	Environment      string
	LogLevel         string
	StoreBackend     string
	CredentialsPath  string
	ProjectID        string
	AuthMode         string
	JWTSecret        string
	JWTExpiry        time.Duration
	StripeSecretKey  string
	StripeWebhookKey string
	BidHistoryLimit  int
}

// Load reads configuration from the environment, with .env as a fallback
// source for local development.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// No .env file is fine in deployed environments.
		_ = err
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("GO_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		StoreBackend:     getEnv("STORE_BACKEND", StoreMemory),
		CredentialsPath:  getEnv("FIREBASE_CREDENTIALS_PATH", "./serviceAccountKey.json"),
		ProjectID:        getEnv("FIREBASE_PROJECT_ID", ""),
		AuthMode:         getEnv("AUTH_MODE", AuthModeJWT),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTExpiry:        getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		StripeSecretKey:  getEnv("STRIPE_SECRET_KEY", "sk_test_demo"),
		StripeWebhookKey: getEnv("STRIPE_WEBHOOK_SECRET", "whsec_demo"),
		BidHistoryLimit:  getIntEnv("BID_HISTORY_LIMIT", 50),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
