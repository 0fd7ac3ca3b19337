package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	notification "live-auction-api/internal/notificationService"
	"live-auction-api/services/helpers"
	"live-auction-api/utils"
)

type NotificationServiceInterface interface {
	SendNotification(ctx context.Context, userID, title, body string, data map[string]string) (string, error)
	SendAuctionUpdate(ctx context.Context, auctionID, updateType, message string) ([]notification.FanOutResult, error)
}

type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// SendNotificationHandler handles POST /api/notifications
func (h *NotificationHandler) SendNotificationHandler(c *gin.Context) {
	var req helpers.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "SendNotificationHandler", err)
		return
	}

	messageID, err := h.service.SendNotification(c.Request.Context(), req.UserID, req.Title, req.Body, req.Data)
	if err != nil {
		helpers.HandleServiceError(c, "SendNotificationHandler", err, map[string]any{"user_id": req.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.SendNotificationResponse{MessageID: messageID}, "notification sent successfully")
	helpers.LogSuccess("SendNotificationHandler", "notification sent successfully", map[string]any{
		"user_id":    req.UserID,
		"message_id": messageID,
	})
}

// AuctionUpdateHandler handles POST /api/notifications/auction-update
func (h *NotificationHandler) AuctionUpdateHandler(c *gin.Context) {
	var req helpers.AuctionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "AuctionUpdateHandler", err)
		return
	}

	results, err := h.service.SendAuctionUpdate(c.Request.Context(), req.AuctionID, req.Type, req.Message)
	if err != nil {
		helpers.HandleServiceError(c, "AuctionUpdateHandler", err, map[string]any{"auction_id": req.AuctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"notificationsSent": len(results),
		"notifications":     results,
	}, "auction update dispatched")
	helpers.LogSuccess("AuctionUpdateHandler", "auction update dispatched", map[string]any{
		"auction_id": req.AuctionID,
		"count":      len(results),
	})
}
