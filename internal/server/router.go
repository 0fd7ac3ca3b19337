package server

import (
	"github.com/gin-gonic/gin"

	auctionsvc "live-auction-api/internal/auctionService"
	authsvc "live-auction-api/internal/authService"
	notificationsvc "live-auction-api/internal/notificationService"
	paymentsvc "live-auction-api/internal/paymentService"
	auctionhandler "live-auction-api/services/auction/handler"
	authhandler "live-auction-api/services/auth/handler"
	notificationhandler "live-auction-api/services/notification/handler"
	paymenthandler "live-auction-api/services/payment/handler"
)

// Services bundles everything the router needs. All fields are required.
type Services struct {
	Auction      *auctionsvc.AuctionService
	Payment      *paymentsvc.PaymentService
	Notification *notificationsvc.NotificationService
	Auth         *authsvc.AuthService
	Verifier     authsvc.TokenVerifier
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svcs Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(CORS())

	auctionHandler := auctionhandler.NewAuctionHandler(svcs.Auction)
	paymentHandler := paymenthandler.NewPaymentHandler(svcs.Payment)
	notificationHandler := notificationhandler.NewNotificationHandler(svcs.Notification)
	authHandler := authhandler.NewAuthHandler(svcs.Auth)

	requireAuth := AuthMiddleware(svcs.Verifier)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "message": "live auction API is running"})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.RegisterHandler)
			auth.POST("/login", authHandler.LoginHandler)

			authProtected := auth.Group("")
			authProtected.Use(requireAuth)
			{
				authProtected.GET("/me", authHandler.ProfileHandler)
				authProtected.POST("/fcm-token", authHandler.UpdateFCMTokenHandler)
			}
		}

		auctions := api.Group("/auctions")
		{
			// Auction details and listing are public.
			auctions.GET("", auctionHandler.ListAuctionsHandler)
			auctions.GET("/:auction_id", auctionHandler.GetAuctionDetailsHandler)

			auctionsProtected := auctions.Group("")
			auctionsProtected.Use(requireAuth)
			{
				auctionsProtected.POST("", auctionHandler.CreateAuctionHandler)
				auctionsProtected.POST("/:auction_id/bids", auctionHandler.PlaceBidHandler)
				auctionsProtected.POST("/:auction_id/end", auctionHandler.EndAuctionHandler)
			}
		}

		payments := api.Group("/payments")
		payments.Use(requireAuth)
		{
			payments.POST("/intents", paymentHandler.CreatePaymentIntentHandler)
			payments.POST("/confirm", paymentHandler.ConfirmPaymentHandler)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.POST("", notificationHandler.SendNotificationHandler)
			notifications.POST("/auction-update", notificationHandler.AuctionUpdateHandler)
		}
	}

	// Gateway webhooks authenticate by signature, not bearer token.
	router.POST("/webhooks/stripe", paymentHandler.StripeWebhookHandler)

	return router
}
