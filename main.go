package main

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	auction "live-auction-api/internal/auctionService"
	auth "live-auction-api/internal/authService"
	"live-auction-api/internal/config"
	notification "live-auction-api/internal/notificationService"
	payment "live-auction-api/internal/paymentService"
	"live-auction-api/internal/repository"
	"live-auction-api/internal/server"
	"live-auction-api/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	store, pusher, verifier, cleanup, err := buildBackends(ctx, cfg)
	if err != nil {
		utils.Fatal("failed to initialize backends", map[string]any{"error": err.Error()})
	}
	defer cleanup()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	if verifier == nil {
		verifier = jwtManager
	}

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookKey)

	router := server.SetupRouter(server.Services{
		Auction:      auction.NewAuctionService(store, cfg.BidHistoryLimit),
		Payment:      payment.NewPaymentService(store, gateway),
		Notification: notification.NewNotificationService(store, pusher),
		Auth:         auth.NewAuthService(store, jwtManager),
		Verifier:     verifier,
	})

	addr := ":" + cfg.Port
	utils.Info("starting live auction API", map[string]any{
		"addr":  addr,
		"store": cfg.StoreBackend,
		"auth":  cfg.AuthMode,
		"env":   cfg.Environment,
	})
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildBackends constructs the store, push sender, and token verifier from
// configuration. Firebase clients are created once here and injected; no
// package-level singletons.
func buildBackends(ctx context.Context, cfg *config.Config) (repository.Store, notification.Pusher, auth.TokenVerifier, func(), error) {
	cleanup := func() {}

	needsFirebase := cfg.StoreBackend == config.StoreFirestore || cfg.AuthMode == config.AuthModeFirebase
	if !needsFirebase {
		return repository.NewMemoryRepo(), notification.NewLogPusher(), nil, cleanup, nil
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, opt)
	if err != nil {
		return nil, nil, nil, cleanup, fmt.Errorf("initialize firebase app: %w", err)
	}

	var store repository.Store = repository.NewMemoryRepo()
	if cfg.StoreBackend == config.StoreFirestore {
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, nil, nil, cleanup, fmt.Errorf("initialize firestore: %w", err)
		}
		store = repository.NewFirestoreRepo(client)
		cleanup = func() { client.Close() }
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, nil, nil, cleanup, fmt.Errorf("initialize messaging: %w", err)
	}
	var pusher notification.Pusher = notification.NewFCMPusher(messagingClient)

	var verifier auth.TokenVerifier
	if cfg.AuthMode == config.AuthModeFirebase {
		authClient, err := app.Auth(ctx)
		if err != nil {
			return nil, nil, nil, cleanup, fmt.Errorf("initialize firebase auth: %w", err)
		}
		verifier = auth.NewFirebaseVerifier(authClient)
	}

	return store, pusher, verifier, cleanup, nil
}
