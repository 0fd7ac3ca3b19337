package helpers

// Request/Response DTOs for the callable operations

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"displayName" binding:"required,min=2,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Token       string `json:"token"`
}

type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

type CreateAuctionRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	StartingPrice float64  `json:"startingPrice" binding:"required,gt=0"`
	Duration      int      `json:"duration" binding:"required,gt=0"` // hours
	Category      string   `json:"category"`
	Images        []string `json:"images"`
}

type CreateAuctionResponse struct {
	AuctionID string `json:"auctionId"`
}

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string  `json:"bidId"`
	AuctionID string  `json:"auctionId"`
	UserID    string  `json:"userId"`
	Amount    float64 `json:"amount"`
	Timestamp string  `json:"timestamp"`
}

type EndAuctionResponse struct {
	WinnerID   *string `json:"winnerId"`
	WinningBid float64 `json:"winningBid"`
}

type CreatePaymentIntentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Currency  string  `json:"currency"`
	AuctionID string  `json:"auctionId"`
	BidID     string  `json:"bidId"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	AuctionID       string `json:"auctionId"`
	BidID           string `json:"bidId"`
}

type ConfirmPaymentResponse struct {
	Status string `json:"status"`
}

type SendNotificationRequest struct {
	UserID string            `json:"userId" binding:"required"`
	Title  string            `json:"title" binding:"required"`
	Body   string            `json:"body" binding:"required"`
	Data   map[string]string `json:"data"`
}

type SendNotificationResponse struct {
	MessageID string `json:"messageId"`
}

type AuctionUpdateRequest struct {
	AuctionID string `json:"auctionId" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
