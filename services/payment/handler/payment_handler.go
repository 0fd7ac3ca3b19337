package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	payment "live-auction-api/internal/paymentService"
	"live-auction-api/services/helpers"
	"live-auction-api/utils"
)

type PaymentServiceInterface interface {
	CreatePaymentIntent(ctx context.Context, userID string, amount float64, currency, auctionID, bidID string) (*payment.Intent, error)
	ConfirmPayment(ctx context.Context, userID, paymentIntentID, auctionID, bidID string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*payment.WebhookEvent, error)
}

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(service PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePaymentIntentHandler handles POST /api/payments/intents
func (h *PaymentHandler) CreatePaymentIntentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req helpers.CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreatePaymentIntentHandler", err)
		return
	}

	intent, err := h.service.CreatePaymentIntent(c.Request.Context(), userID, req.Amount, req.Currency, req.AuctionID, req.BidID)
	if err != nil {
		helpers.HandleServiceError(c, "CreatePaymentIntentHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.CreatePaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, "payment intent created successfully")
	helpers.LogSuccess("CreatePaymentIntentHandler", "payment intent created successfully", map[string]any{
		"payment_intent_id": intent.ID,
		"user_id":           userID,
		"amount":            req.Amount,
	})
}

// ConfirmPaymentHandler handles POST /api/payments/confirm
func (h *PaymentHandler) ConfirmPaymentHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req helpers.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ConfirmPaymentHandler", err)
		return
	}

	status, err := h.service.ConfirmPayment(c.Request.Context(), userID, req.PaymentIntentID, req.AuctionID, req.BidID)
	if err != nil {
		helpers.HandleServiceError(c, "ConfirmPaymentHandler", err, map[string]any{
			"payment_intent_id": req.PaymentIntentID,
			"user_id":           userID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.ConfirmPaymentResponse{Status: status}, "payment processed successfully")
	helpers.LogSuccess("ConfirmPaymentHandler", "payment processed successfully", map[string]any{
		"payment_intent_id": req.PaymentIntentID,
		"status":            status,
	})
}

// StripeWebhookHandler handles POST /webhooks/stripe. The signature check
// happens before anything else; an unverifiable payload is rejected with 400.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read payload")
		return
	}

	event, err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.Warn("StripeWebhookHandler: webhook rejected", map[string]any{"error": err.Error()})
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	utils.Info("StripeWebhookHandler: event received", map[string]any{
		"type":      event.Type,
		"intent_id": event.IntentID,
	})
	c.JSON(http.StatusOK, gin.H{"received": true})
}
