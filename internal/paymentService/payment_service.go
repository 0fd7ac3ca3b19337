package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"live-auction-api/internal/auctionerrors"
	"live-auction-api/internal/models"
	"live-auction-api/internal/repository"
	"live-auction-api/utils"
)

// Intent is the gateway-agnostic view of a payment intent
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64 // smallest currency unit
}

// WebhookEvent is a verified gateway webhook payload
type WebhookEvent struct {
	Type     string
	IntentID string
}

// Gateway abstracts the payment provider so handlers and tests can
// substitute a fake (the Stripe client is one implementation).
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency, customerID string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}

// PaymentService defines the business logic for payment intent lifecycle
type PaymentService struct {
	store   repository.Store
	gateway Gateway
}

// NewPaymentService creates a new PaymentService instance
func NewPaymentService(store repository.Store, gateway Gateway) *PaymentService {
	return &PaymentService{
		store:   store,
		gateway: gateway,
	}
}

// CreatePaymentIntent creates a gateway intent for the caller and mirrors it
// in a local payment record
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID string, amount float64, currency, auctionID, bidID string) (*Intent, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("service: %w - non-positive amount", auctionerrors.ErrInvalidInput)
	}
	if currency == "" {
		currency = "usd"
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load user %s: %w", userID, err)
	}

	cents := int64(math.Round(amount * 100))
	intent, err := s.gateway.CreateIntent(ctx, cents, currency, user.StripeCustomerID, map[string]string{
		"userId":    userID,
		"auctionId": auctionID,
		"bidId":     bidID,
		"type":      "auction_bid",
	})
	if err != nil {
		return nil, fmt.Errorf("service: failed to create payment intent for user %s: %w", userID, err)
	}

	now := time.Now().UTC()
	record := &models.Payment{
		PaymentIntentID: intent.ID,
		UserID:          userID,
		AuctionID:       auctionID,
		BidID:           bidID,
		Amount:          amount,
		Currency:        currency,
		Status:          models.PaymentStatusRequiresMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreatePayment(ctx, record); err != nil {
		return nil, fmt.Errorf("service: failed to store payment record %s: %w", intent.ID, err)
	}

	return intent, nil
}

// ConfirmPayment re-fetches the intent from the gateway; on success it marks
// the local record and linked bid paid and credits the caller's wallet.
// The returned string is the gateway's intent status.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID, paymentIntentID, auctionID, bidID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if paymentIntentID == "" {
		return "", fmt.Errorf("service: %w - missing payment intent ID", auctionerrors.ErrInvalidInput)
	}

	intent, err := s.gateway.RetrieveIntent(ctx, paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("service: failed to retrieve intent %s: %w", paymentIntentID, err)
	}

	if intent.Status != models.PaymentStatusSucceeded {
		return intent.Status, nil
	}

	if err := s.store.SetPaymentStatus(ctx, paymentIntentID, models.PaymentStatusSucceeded); err != nil {
		return "", fmt.Errorf("service: failed to update payment %s: %w", paymentIntentID, err)
	}

	if auctionID != "" && bidID != "" {
		if err := s.store.MarkBidPaid(ctx, auctionID, bidID, time.Now().UTC()); err != nil {
			return "", fmt.Errorf("service: failed to mark bid %s paid: %w", bidID, err)
		}
	}

	if err := s.store.CreditWallet(ctx, userID, float64(intent.Amount)/100); err != nil {
		return "", fmt.Errorf("service: failed to credit wallet for user %s: %w", userID, err)
	}

	return intent.Status, nil
}

// HandleWebhook verifies a gateway event and mirrors the intent status into
// the local payment record. Wallet credit stays with ConfirmPayment; the
// webhook never mutates balances, so replays are harmless.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return nil, fmt.Errorf("service: webhook verification failed: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = s.store.SetPaymentStatus(ctx, event.IntentID, models.PaymentStatusSucceeded)
	case "payment_intent.payment_failed":
		err = s.store.SetPaymentStatus(ctx, event.IntentID, "payment_failed")
	default:
		utils.Info("unhandled webhook event type", map[string]any{"type": event.Type})
		return event, nil
	}

	// An event for an intent we never recorded is logged and dropped.
	if err != nil && errors.Is(err, auctionerrors.ErrPaymentNotFound) {
		utils.Warn("webhook event for unknown payment intent", map[string]any{
			"type":      event.Type,
			"intent_id": event.IntentID,
		})
		return event, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to mirror webhook event %s: %w", event.Type, err)
	}

	return event, nil
}
