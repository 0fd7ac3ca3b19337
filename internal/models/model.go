package models

import "time"

// Auction status values. An auction is created active and transitions to
// ended exactly once.
const (
	AuctionStatusActive = "active"
	AuctionStatusEnded  = "ended"
)

// Bid status values.
const (
	BidStatusActive = "active"
)

// Payment status values mirror the gateway's payment intent lifecycle.
const (
	PaymentStatusRequiresMethod = "requires_payment_method"
	PaymentStatusSucceeded      = "succeeded"

	BidPaymentStatusPaid = "paid"
)

// Notification delivery outcomes.
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// User represents a participant in the auction platform
type User struct {
	UserID           string    `firestore:"userId" json:"userId"`
	Email            string    `firestore:"email" json:"email"`
	DisplayName      string    `firestore:"displayName" json:"displayName"`
	PasswordHash     string    `firestore:"passwordHash" json:"-"` // Don't expose in JSON
	Role             string    `firestore:"role" json:"role"`
	CanHost          bool      `firestore:"canHost" json:"canHost"`
	WalletBalance    float64   `firestore:"walletBalance" json:"walletBalance"`
	TotalBids        int64     `firestore:"totalBids" json:"totalBids"`
	TotalAuctions    int64     `firestore:"totalAuctions" json:"totalAuctions"`
	FCMToken         string    `firestore:"fcmToken" json:"fcmToken,omitempty"`
	StripeCustomerID string    `firestore:"stripeCustomerId" json:"-"`
	CreatedAt        time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Auction represents a timed bidding session for one item
type Auction struct {
	AuctionID        string     `firestore:"id" json:"id"`
	Title            string     `firestore:"title" json:"title"`
	Description      string     `firestore:"description" json:"description"`
	StartingPrice    float64    `firestore:"startingPrice" json:"startingPrice"`
	CurrentPrice     float64    `firestore:"currentPrice" json:"currentPrice"`
	Duration         int        `firestore:"duration" json:"duration"` // hours
	Category         string     `firestore:"category" json:"category"`
	Images           []string   `firestore:"images" json:"images"`
	HostID           string     `firestore:"hostId" json:"hostId"`
	HostName         string     `firestore:"hostName" json:"hostName"`
	Status           string     `firestore:"status" json:"status"`
	StartTime        time.Time  `firestore:"startTime" json:"startTime"`
	EndTime          time.Time  `firestore:"endTime" json:"endTime"`
	LastBidAt        *time.Time `firestore:"lastBidAt" json:"lastBidAt,omitempty"`
	EndedAt          *time.Time `firestore:"endedAt" json:"endedAt,omitempty"`
	BidCount         int64      `firestore:"bidCount" json:"bidCount"`
	ParticipantCount int64      `firestore:"participantCount" json:"participantCount"`
	WinnerID         *string    `firestore:"winnerId" json:"winnerId"`
	WinningBid       float64    `firestore:"winningBid" json:"winningBid,omitempty"`
	CreatedAt        time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `firestore:"updatedAt" json:"updatedAt"`
}

// Bid represents a user's offer on an auction. Bids are immutable once
// written, except for the payment fields set on confirmation.
type Bid struct {
	BidID         string     `firestore:"id" json:"id"`
	AuctionID     string     `firestore:"auctionId" json:"auctionId"`
	UserID        string     `firestore:"userId" json:"userId"`
	UserName      string     `firestore:"userName" json:"userName"`
	Amount        float64    `firestore:"amount" json:"amount"`
	Timestamp     time.Time  `firestore:"timestamp" json:"timestamp"`
	Status        string     `firestore:"status" json:"status"`
	PaymentStatus string     `firestore:"paymentStatus" json:"paymentStatus,omitempty"`
	PaidAt        *time.Time `firestore:"paidAt" json:"paidAt,omitempty"`
}

// Payment mirrors a gateway payment intent. The document ID equals the
// gateway's intent ID.
type Payment struct {
	PaymentIntentID string    `firestore:"stripePaymentIntentId" json:"stripePaymentIntentId"`
	UserID          string    `firestore:"userId" json:"userId"`
	AuctionID       string    `firestore:"auctionId" json:"auctionId"`
	BidID           string    `firestore:"bidId" json:"bidId"`
	Amount          float64   `firestore:"amount" json:"amount"`
	Currency        string    `firestore:"currency" json:"currency"`
	Status          string    `firestore:"status" json:"status"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Notification is the stored record of a push dispatch attempt
type Notification struct {
	NotificationID string            `firestore:"id" json:"id"`
	UserID         string            `firestore:"userId" json:"userId"`
	Title          string            `firestore:"title" json:"title"`
	Body           string            `firestore:"body" json:"body"`
	Data           map[string]string `firestore:"data" json:"data,omitempty"`
	Status         string            `firestore:"status" json:"status"`
	MessageID      string            `firestore:"messageId" json:"messageId,omitempty"`
	CreatedAt      time.Time         `firestore:"createdAt" json:"createdAt"`
}

// IsActive reports whether the auction can still accept bids at now.
func (a *Auction) IsActive(now time.Time) bool {
	return a.Status == AuctionStatusActive && now.Before(a.EndTime)
}

// Outbids reports whether amount beats the auction's current price.
// Equal amounts do not outbid.
func (a *Auction) Outbids(amount float64) bool {
	return amount > a.CurrentPrice
}

// CanAfford reports whether the user's wallet covers amount.
func (u *User) CanAfford(amount float64) bool {
	return u.WalletBalance >= amount
}
