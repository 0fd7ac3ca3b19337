package auction

import (
	"context"
	"fmt"
	"time"

	"live-auction-api/internal/auctionerrors"
	"live-auction-api/internal/models"
	"live-auction-api/internal/repository"
	"live-auction-api/utils"
)

// DefaultListLimit caps auction listing pages when the caller does not ask
// for a size.
const DefaultListLimit = 20

// CreateAuctionInput carries the host-supplied auction fields
type CreateAuctionInput struct {
	Title         string
	Description   string
	StartingPrice float64
	Duration      int // hours
	Category      string
	Images        []string
}

// AuctionService defines the business logic for auction lifecycle and bidding
type AuctionService struct {
	store           repository.Store
	bidHistoryLimit int
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(store repository.Store, bidHistoryLimit int) *AuctionService {
	if bidHistoryLimit <= 0 {
		bidHistoryLimit = 50
	}
	return &AuctionService{
		store:           store,
		bidHistoryLimit: bidHistoryLimit,
	}
}

// CreateAuction validates host eligibility and creates an active auction
func (s *AuctionService) CreateAuction(ctx context.Context, hostID string, in CreateAuctionInput) (*models.Auction, error) {
	if hostID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if in.Title == "" {
		return nil, fmt.Errorf("service: %w - missing title", auctionerrors.ErrInvalidInput)
	}
	if in.StartingPrice <= 0 {
		return nil, fmt.Errorf("service: %w - non-positive starting price", auctionerrors.ErrInvalidInput)
	}
	if in.Duration <= 0 {
		return nil, fmt.Errorf("service: %w - non-positive duration", auctionerrors.ErrInvalidInput)
	}

	host, err := s.store.GetUser(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load host %s: %w", hostID, err)
	}
	if !host.CanHost {
		return nil, fmt.Errorf("service: %w - user cannot host auctions", auctionerrors.ErrPermissionDenied)
	}

	now := time.Now().UTC()
	images := in.Images
	if images == nil {
		images = []string{}
	}

	auction := &models.Auction{
		AuctionID:     utils.GenerateID(),
		Title:         in.Title,
		Description:   in.Description,
		StartingPrice: in.StartingPrice,
		CurrentPrice:  in.StartingPrice,
		Duration:      in.Duration,
		Category:      in.Category,
		Images:        images,
		HostID:        hostID,
		HostName:      host.DisplayName,
		Status:        models.AuctionStatusActive,
		StartTime:     now,
		EndTime:       now.Add(time.Duration(in.Duration) * time.Hour),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateAuction(ctx, auction); err != nil {
		return nil, fmt.Errorf("service: failed to create auction for host %s: %w", hostID, err)
	}

	return auction, nil
}

// PlaceBid validates input and records a user's bid. Precondition checks
// against the live auction and wallet state run atomically in the store.
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, userID string, amount float64) (*models.Bid, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - missing auction ID", auctionerrors.ErrInvalidInput)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidInput)
	}

	bid := &models.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
		Status:    models.BidStatusActive,
	}

	if err := s.store.PlaceBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("service: failed to place bid on %s by user %s: %w", auctionID, userID, err)
	}

	return bid, nil
}

// EndAuction closes an auction and determines the winner. Only the host may
// end it; repeated calls return the recorded outcome.
func (s *AuctionService) EndAuction(ctx context.Context, auctionID, callerID string) (*repository.EndAuctionResult, error) {
	if callerID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if auctionID == "" {
		return nil, fmt.Errorf("service: %w - missing auction ID", auctionerrors.ErrInvalidInput)
	}

	result, err := s.store.EndAuction(ctx, auctionID, callerID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("service: failed to end auction %s: %w", auctionID, err)
	}

	return result, nil
}

// GetAuctionDetails returns an auction with its recent bids, newest first
func (s *AuctionService) GetAuctionDetails(ctx context.Context, auctionID string) (*models.Auction, []models.Bid, error) {
	if auctionID == "" {
		return nil, nil, fmt.Errorf("service: %w - missing auction ID", auctionerrors.ErrInvalidInput)
	}

	auction, err := s.store.GetAuction(ctx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to get auction %s: %w", auctionID, err)
	}

	bids, err := s.store.GetBids(ctx, auctionID, s.bidHistoryLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("service: failed to get bids for auction %s: %w", auctionID, err)
	}
	if bids == nil {
		bids = []models.Bid{}
	}

	return auction, bids, nil
}

// ListAuctions returns a page of auctions with the total match count
func (s *AuctionService) ListAuctions(ctx context.Context, status string, page, limit int) ([]*models.Auction, int, error) {
	if status != "" && status != models.AuctionStatusActive && status != models.AuctionStatusEnded {
		return nil, 0, fmt.Errorf("service: %w - unknown status %q", auctionerrors.ErrInvalidInput, status)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultListLimit
	}

	auctions, total, err := s.store.ListAuctions(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	if auctions == nil {
		auctions = []*models.Auction{}
	}

	return auctions, total, nil
}
