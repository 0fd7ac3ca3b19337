package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"live-auction-api/internal/auctionerrors"
	"live-auction-api/internal/models"
	"live-auction-api/internal/repository"
	"live-auction-api/utils"
)

// Pusher sends one push message to a device token and returns the transport
// message ID. FCM is the production implementation.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) (string, error)
}

// FanOutResult summarizes a per-participant dispatch attempt
type FanOutResult struct {
	UserID    string `json:"userId"`
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// NotificationService dispatches push messages and records each attempt
type NotificationService struct {
	store  repository.Store
	pusher Pusher
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(store repository.Store, pusher Pusher) *NotificationService {
	return &NotificationService{
		store:  store,
		pusher: pusher,
	}
}

// SendNotification pushes a message to one user. A missing token is a
// precondition failure; a transport failure is still recorded.
func (s *NotificationService) SendNotification(ctx context.Context, userID, title, body string, data map[string]string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("service: %w - missing user ID", auctionerrors.ErrInvalidInput)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("service: failed to load user %s: %w", userID, err)
	}
	if user.FCMToken == "" {
		return "", fmt.Errorf("service: %w", auctionerrors.ErrNoFCMToken)
	}

	if data == nil {
		data = map[string]string{}
	}
	data["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)

	messageID, sendErr := s.pusher.Send(ctx, user.FCMToken, title, body, data)

	record := &models.Notification{
		NotificationID: utils.GenerateID(),
		UserID:         userID,
		Title:          title,
		Body:           body,
		Data:           data,
		Status:         models.NotificationStatusSent,
		MessageID:      messageID,
		CreatedAt:      time.Now().UTC(),
	}
	if sendErr != nil {
		record.Status = models.NotificationStatusFailed
	}
	if err := s.store.SaveNotification(ctx, record); err != nil {
		utils.Error("failed to store notification record", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}

	if sendErr != nil {
		return "", fmt.Errorf("service: failed to push to user %s: %w", userID, sendErr)
	}
	return messageID, nil
}

// SendAuctionUpdate fans a message out to every auction participant. Each
// send is best effort; one failure does not stop the rest.
func (s *NotificationService) SendAuctionUpdate(ctx context.Context, auctionID, updateType, message string) ([]FanOutResult, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - missing auction ID", auctionerrors.ErrInvalidInput)
	}

	participants, err := s.store.GetParticipants(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load participants for %s: %w", auctionID, err)
	}

	data := map[string]string{
		"auctionId": auctionID,
		"type":      updateType,
		"timestamp": strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	results := make([]FanOutResult, 0, len(participants))
	for _, participant := range participants {
		if participant.FCMToken == "" {
			continue
		}

		messageID, sendErr := s.pusher.Send(ctx, participant.FCMToken, "Auction Update", message, data)
		if sendErr != nil {
			utils.Warn("failed to send auction update", map[string]any{
				"auction_id": auctionID,
				"user_id":    participant.UserID,
				"error":      sendErr.Error(),
			})
			results = append(results, FanOutResult{
				UserID: participant.UserID,
				Status: models.NotificationStatusFailed,
				Error:  sendErr.Error(),
			})
			continue
		}

		results = append(results, FanOutResult{
			UserID:    participant.UserID,
			MessageID: messageID,
			Status:    models.NotificationStatusSent,
		})
	}

	return results, nil
}
