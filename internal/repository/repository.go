package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"live-auction-api/internal/auctionerrors"
	model "live-auction-api/internal/models"
)

// UserStore defines user document storage for the auction system
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateFCMToken(ctx context.Context, userID, token string) error
}

// AuctionStore defines auction and bid storage. PlaceBid and EndAuction are
// atomic: precondition checks and writes happen under one lock or one
// store transaction, so concurrent callers cannot both pass the same check.
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction *model.Auction) error
	GetAuction(ctx context.Context, auctionID string) (*model.Auction, error)
	ListAuctions(ctx context.Context, status string, page, limit int) ([]*model.Auction, int, error)
	PlaceBid(ctx context.Context, bid *model.Bid) error
	EndAuction(ctx context.Context, auctionID, callerID string, endedAt time.Time) (*EndAuctionResult, error)
	GetBids(ctx context.Context, auctionID string, limit int) ([]model.Bid, error)
	GetParticipants(ctx context.Context, auctionID string) ([]*model.User, error)
}

// PaymentStore defines payment record storage
type PaymentStore interface {
	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPayment(ctx context.Context, paymentIntentID string) (*model.Payment, error)
	SetPaymentStatus(ctx context.Context, paymentIntentID, status string) error
	MarkBidPaid(ctx context.Context, auctionID, bidID string, paidAt time.Time) error
	CreditWallet(ctx context.Context, userID string, amount float64) error
}

// NotificationStore records push dispatch attempts
type NotificationStore interface {
	SaveNotification(ctx context.Context, notification *model.Notification) error
}

// Store aggregates every store interface. Both implementations satisfy it.
type Store interface {
	UserStore
	AuctionStore
	PaymentStore
	NotificationStore
}

// EndAuctionResult is the outcome of ending an auction. AlreadyEnded is set
// when the auction was ended by an earlier call; repeated calls return the
// recorded outcome without re-applying side effects.
type EndAuctionResult struct {
	WinnerID     *string
	WinningBid   float64
	AlreadyEnded bool
}

// MemoryRepo is a concurrency-safe in-memory implementation of Store
type MemoryRepo struct {
	mu            sync.RWMutex
	users         map[string]*model.User             // key: userID
	emails        map[string]string                  // key: lowercase email -> userID
	auctions      map[string]*model.Auction          // key: auctionID
	bids          map[string][]model.Bid             // key: auctionID -> ordered list of bids
	participants  map[string]map[string]bool         // key: auctionID -> set of userIDs
	payments      map[string]*model.Payment          // key: paymentIntentID
	notifications []model.Notification
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:        make(map[string]*model.User),
		emails:       make(map[string]string),
		auctions:     make(map[string]*model.Auction),
		bids:         make(map[string][]model.Bid),
		participants: make(map[string]map[string]bool),
		payments:     make(map[string]*model.Payment),
	}
}

// CreateUser stores a new user document
func (r *MemoryRepo) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.emails[user.Email]; taken {
		return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}

	u := *user
	r.users[user.UserID] = &u
	r.emails[user.Email] = user.UserID
	return nil
}

// GetUser returns a copy of the user document
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getUserLocked(userID)
}

func (r *MemoryRepo) getUserLocked(userID string) (*model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	u := *user
	return &u, nil
}

// GetUserByEmail looks a user up by email address
func (r *MemoryRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.emails[email]
	if !ok {
		return nil, fmt.Errorf("get user by email: %w", auctionerrors.ErrUserNotFound)
	}
	return r.getUserLocked(userID)
}

// UpdateFCMToken stores the user's push token
func (r *MemoryRepo) UpdateFCMToken(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("update fcm token for %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	user.FCMToken = token
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// CreateAuction stores a new auction document
func (r *MemoryRepo) CreateAuction(_ context.Context, auction *model.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := *auction
	r.auctions[auction.AuctionID] = &a
	return nil
}

// GetAuction returns a copy of the auction document
func (r *MemoryRepo) GetAuction(_ context.Context, auctionID string) (*model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	a := *auction
	return &a, nil
}

// ListAuctions returns a page of auctions, newest first, optionally filtered
// by status. The second return value is the total match count.
func (r *MemoryRepo) ListAuctions(_ context.Context, status string, page, limit int) ([]*model.Auction, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Auction, 0, len(r.auctions))
	for _, auction := range r.auctions {
		if status != "" && auction.Status != status {
			continue
		}
		a := *auction
		matched = append(matched, &a)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []*model.Auction{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// PlaceBid validates and applies a bid in one critical section: the bid is
// appended, the auction price and counters are updated, and the bidder's
// aggregate counter is incremented, or nothing happens at all.
func (r *MemoryRepo) PlaceBid(_ context.Context, bid *model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[bid.AuctionID]
	if !ok {
		return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if auction.Status != model.AuctionStatusActive {
		return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotActive)
	}
	if !bid.Timestamp.Before(auction.EndTime) {
		return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrAuctionEnded)
	}
	if !auction.Outbids(bid.Amount) {
		return fmt.Errorf("place bid on %s: %w - current price is %.2f", bid.AuctionID, auctionerrors.ErrBidTooLow, auction.CurrentPrice)
	}

	bidder, ok := r.users[bid.UserID]
	if !ok {
		return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrUserNotFound)
	}
	if !bidder.CanAfford(bid.Amount) {
		return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrInsufficientBalance)
	}

	b := *bid
	b.UserName = bidder.DisplayName
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], b)

	auction.CurrentPrice = bid.Amount
	auction.BidCount++
	ts := bid.Timestamp
	auction.LastBidAt = &ts
	auction.UpdatedAt = ts

	if r.participants[bid.AuctionID] == nil {
		r.participants[bid.AuctionID] = make(map[string]bool)
	}
	if !r.participants[bid.AuctionID][bid.UserID] {
		r.participants[bid.AuctionID][bid.UserID] = true
		auction.ParticipantCount++
	}

	bidder.TotalBids++
	bidder.UpdatedAt = ts

	return nil
}

// EndAuction transitions an auction to ended exactly once. The host check,
// winner selection, and all writes share the critical section, so a repeated
// call observes the ended status and returns the recorded outcome.
func (r *MemoryRepo) EndAuction(_ context.Context, auctionID, callerID string, endedAt time.Time) (*EndAuctionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[auctionID]
	if !ok {
		return nil, fmt.Errorf("end auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if auction.HostID != callerID {
		return nil, fmt.Errorf("end auction %s: %w - only the host can end the auction", auctionID, auctionerrors.ErrPermissionDenied)
	}
	if auction.Status == model.AuctionStatusEnded {
		return &EndAuctionResult{
			WinnerID:     auction.WinnerID,
			WinningBid:   auction.WinningBid,
			AlreadyEnded: true,
		}, nil
	}

	result := &EndAuctionResult{WinningBid: auction.StartingPrice}
	if winning, ok := highestBid(r.bids[auctionID]); ok {
		winnerID := winning.UserID
		result.WinnerID = &winnerID
		result.WinningBid = winning.Amount

		if winner, exists := r.users[winnerID]; exists {
			winner.TotalAuctions++
			winner.UpdatedAt = endedAt
		}
	}

	auction.Status = model.AuctionStatusEnded
	auction.WinnerID = result.WinnerID
	auction.WinningBid = result.WinningBid
	ts := endedAt
	auction.EndedAt = &ts
	auction.UpdatedAt = endedAt

	return result, nil
}

// highestBid returns the winning bid: highest amount, earliest timestamp on
// equal amounts.
func highestBid(bids []model.Bid) (model.Bid, bool) {
	if len(bids) == 0 {
		return model.Bid{}, false
	}
	winning := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > winning.Amount || (b.Amount == winning.Amount && b.Timestamp.Before(winning.Timestamp)) {
			winning = b
		}
	}
	return winning, true
}

// GetBids returns up to limit bids for an auction, newest first. A limit of
// zero or less means no limit.
func (r *MemoryRepo) GetBids(_ context.Context, auctionID string, limit int) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get bids for %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	bids := append([]model.Bid(nil), r.bids[auctionID]...)
	sort.Slice(bids, func(i, j int) bool {
		return bids[i].Timestamp.After(bids[j].Timestamp)
	})
	if limit > 0 && len(bids) > limit {
		bids = bids[:limit]
	}
	return bids, nil
}

// GetParticipants returns every user who has bid on the auction
func (r *MemoryRepo) GetParticipants(_ context.Context, auctionID string) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.auctions[auctionID]; !ok {
		return nil, fmt.Errorf("get participants for %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}

	users := make([]*model.User, 0, len(r.participants[auctionID]))
	for userID := range r.participants[auctionID] {
		if user, exists := r.users[userID]; exists {
			u := *user
			users = append(users, &u)
		}
	}
	return users, nil
}

// CreatePayment stores a local payment record keyed by intent ID
func (r *MemoryRepo) CreatePayment(_ context.Context, payment *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *payment
	r.payments[payment.PaymentIntentID] = &p
	return nil
}

// GetPayment returns a copy of the payment record
func (r *MemoryRepo) GetPayment(_ context.Context, paymentIntentID string) (*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[paymentIntentID]
	if !ok {
		return nil, fmt.Errorf("get payment %s: %w", paymentIntentID, auctionerrors.ErrPaymentNotFound)
	}
	p := *payment
	return &p, nil
}

// SetPaymentStatus updates the local mirror of the intent lifecycle
func (r *MemoryRepo) SetPaymentStatus(_ context.Context, paymentIntentID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payment, ok := r.payments[paymentIntentID]
	if !ok {
		return fmt.Errorf("set payment status %s: %w", paymentIntentID, auctionerrors.ErrPaymentNotFound)
	}
	payment.Status = status
	payment.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkBidPaid flags a bid as paid after payment confirmation
func (r *MemoryRepo) MarkBidPaid(_ context.Context, auctionID, bidID string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bids, ok := r.bids[auctionID]
	if !ok {
		return fmt.Errorf("mark bid paid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	for i := range bids {
		if bids[i].BidID == bidID {
			bids[i].PaymentStatus = model.BidPaymentStatusPaid
			ts := paidAt
			bids[i].PaidAt = &ts
			return nil
		}
	}
	return fmt.Errorf("mark bid paid %s: %w", bidID, auctionerrors.ErrBidNotFound)
}

// CreditWallet adds amount to the user's wallet balance
func (r *MemoryRepo) CreditWallet(_ context.Context, userID string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("credit wallet for %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	user.WalletBalance += amount
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// SaveNotification appends a notification record
func (r *MemoryRepo) SaveNotification(_ context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.notifications = append(r.notifications, *notification)
	return nil
}

// Notifications returns stored notification records. This method is intended for tests only.
func (r *MemoryRepo) Notifications() []model.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Notification(nil), r.notifications...)
}
