package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	auction "live-auction-api/internal/auctionService"
	model "live-auction-api/internal/models"
	"live-auction-api/internal/repository"
	"live-auction-api/services/helpers"
	"live-auction-api/utils"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, hostID string, in auction.CreateAuctionInput) (*model.Auction, error)
	PlaceBid(ctx context.Context, auctionID, userID string, amount float64) (*model.Bid, error)
	EndAuction(ctx context.Context, auctionID, callerID string) (*repository.EndAuctionResult, error)
	GetAuctionDetails(ctx context.Context, auctionID string) (*model.Auction, []model.Bid, error)
	ListAuctions(ctx context.Context, status string, page, limit int) ([]*model.Auction, int, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /api/auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	created, err := h.service.CreateAuction(c.Request.Context(), userID, auction.CreateAuctionInput{
		Title:         req.Title,
		Description:   req.Description,
		StartingPrice: req.StartingPrice,
		Duration:      req.Duration,
		Category:      req.Category,
		Images:        req.Images,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.CreateAuctionResponse{AuctionID: created.AuctionID}, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": created.AuctionID,
		"host_id":    userID,
		"ends_at":    created.EndTime.Format(time.RFC3339),
	})
}

// PlaceBidHandler handles POST /api/auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	userID := c.GetString("userID")
	auctionID := c.Param("auction_id")

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	bid, err := h.service.PlaceBid(c.Request.Context(), auctionID, userID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
		})
		return
	}

	resp := helpers.BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		UserID:    bid.UserID,
		Amount:    bid.Amount,
		Timestamp: bid.Timestamp.UTC().Format(time.RFC3339),
	}

	utils.JSONResponse(c, http.StatusCreated, resp, "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"user_id":    userID,
		"amount":     bid.Amount,
	})
}

// EndAuctionHandler handles POST /api/auctions/:auction_id/end
func (h *AuctionHandler) EndAuctionHandler(c *gin.Context) {
	userID := c.GetString("userID")
	auctionID := c.Param("auction_id")

	result, err := h.service.EndAuction(c.Request.Context(), auctionID, userID)
	if err != nil {
		helpers.HandleServiceError(c, "EndAuctionHandler", err, map[string]any{
			"auction_id": auctionID,
			"user_id":    userID,
		})
		return
	}

	message := "auction ended with winner"
	if result.WinnerID == nil {
		message = "auction ended with no bids"
	}
	if result.AlreadyEnded {
		message = "auction already ended"
	}

	utils.JSONResponse(c, http.StatusOK, helpers.EndAuctionResponse{
		WinnerID:   result.WinnerID,
		WinningBid: result.WinningBid,
	}, message)
	helpers.LogSuccess("EndAuctionHandler", message, map[string]any{
		"auction_id":  auctionID,
		"winning_bid": result.WinningBid,
	})
}

// GetAuctionDetailsHandler handles GET /api/auctions/:auction_id
func (h *AuctionHandler) GetAuctionDetailsHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	found, bids, err := h.service.GetAuctionDetails(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionDetailsHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"auction":   found,
		"bids":      bids,
		"totalBids": len(bids),
	}, "auction retrieved successfully")
}

// ListAuctionsHandler handles GET /api/auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	auctions, total, err := h.service.ListAuctions(c.Request.Context(), status, page, limit)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{"status": status})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"auctions": auctions,
		"total":    total,
	}, "auctions retrieved successfully")
}
