package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"live-auction-api/internal/auctionerrors"
	model "live-auction-api/internal/models"
)

const (
	usersCollection         = "users"
	auctionsCollection      = "auctions"
	bidsCollection          = "bids"
	participantsCollection  = "participants"
	paymentsCollection      = "payments"
	notificationsCollection = "notifications"
)

// FirestoreRepo is a Firestore-backed implementation of Store. The client is
// injected at construction; PlaceBid and EndAuction run inside native
// Firestore transactions.
type FirestoreRepo struct {
	client *firestore.Client
}

// NewFirestoreRepo creates a Firestore repository around an existing client
func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{client: client}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// CreateUser stores a new user document. Email uniqueness is enforced with a
// pre-check query; Firestore has no unique constraint.
func (r *FirestoreRepo) CreateUser(ctx context.Context, user *model.User) error {
	iter := r.client.Collection(usersCollection).Where("email", "==", user.Email).Limit(1).Documents(ctx)
	_, err := iter.Next()
	if err == nil {
		return fmt.Errorf("create user %s: %w", user.Email, auctionerrors.ErrEmailTaken)
	}
	if err != iterator.Done {
		return fmt.Errorf("create user: %w", err)
	}

	_, err = r.client.Collection(usersCollection).Doc(user.UserID).Set(ctx, user)
	return err
}

// GetUser retrieves a user by ID
func (r *FirestoreRepo) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("get user %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *FirestoreRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	iter := r.client.Collection(usersCollection).Where("email", "==", email).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("get user by email: %w", auctionerrors.ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFCMToken updates the user's FCM token
func (r *FirestoreRepo) UpdateFCMToken(ctx context.Context, userID, token string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmToken", Value: token},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if isNotFound(err) {
		return fmt.Errorf("update fcm token for %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return err
}

// CreateAuction stores a new auction document
func (r *FirestoreRepo) CreateAuction(ctx context.Context, auction *model.Auction) error {
	_, err := r.client.Collection(auctionsCollection).Doc(auction.AuctionID).Set(ctx, auction)
	return err
}

// GetAuction retrieves an auction by ID
func (r *FirestoreRepo) GetAuction(ctx context.Context, auctionID string) (*model.Auction, error) {
	doc, err := r.client.Collection(auctionsCollection).Doc(auctionID).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return nil, err
	}

	var auction model.Auction
	if err := doc.DataTo(&auction); err != nil {
		return nil, err
	}
	return &auction, nil
}

// ListAuctions returns a page of auctions ordered by creation time
// descending, optionally filtered by status
func (r *FirestoreRepo) ListAuctions(ctx context.Context, status string, page, limit int) ([]*model.Auction, int, error) {
	query := r.client.Collection(auctionsCollection).Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	// Keys-only scan for the total match count.
	total := 0
	countIter := query.Select().Documents(ctx)
	for {
		_, err := countIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		total++
	}

	iter := query.OrderBy("createdAt", firestore.Desc).
		Offset((page - 1) * limit).
		Limit(limit).
		Documents(ctx)

	auctions := make([]*model.Auction, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		var auction model.Auction
		if err := doc.DataTo(&auction); err != nil {
			continue
		}
		auctions = append(auctions, &auction)
	}
	return auctions, total, nil
}

// PlaceBid appends a bid and updates auction and bidder documents inside one
// Firestore transaction. All precondition checks run against the
// transactional snapshot, so two concurrent bids cannot both pass the
// price check.
func (r *FirestoreRepo) PlaceBid(ctx context.Context, bid *model.Bid) error {
	auctionRef := r.client.Collection(auctionsCollection).Doc(bid.AuctionID)
	userRef := r.client.Collection(usersCollection).Doc(bid.UserID)
	participantRef := auctionRef.Collection(participantsCollection).Doc(bid.UserID)
	bidRef := auctionRef.Collection(bidsCollection).Doc(bid.BidID)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		auctionDoc, err := tx.Get(auctionRef)
		if isNotFound(err) {
			return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return err
		}
		var auction model.Auction
		if err := auctionDoc.DataTo(&auction); err != nil {
			return err
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

		userDoc, err := tx.Get(userRef)
		if isNotFound(err) {
			return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrUserNotFound)
		}
		if err != nil {
			return err
		}
		var bidder model.User
		if err := userDoc.DataTo(&bidder); err != nil {
			return err
		}
		if !bidder.CanAfford(bid.Amount) {
			return fmt.Errorf("place bid on %s: %w", bid.AuctionID, auctionerrors.ErrInsufficientBalance)
		}

		// Reads must all precede writes within a Firestore transaction.
		_, participantErr := tx.Get(participantRef)
		newParticipant := isNotFound(participantErr)
		if participantErr != nil && !newParticipant {
			return participantErr
		}

		b := *bid
		b.UserName = bidder.DisplayName
		if err := tx.Set(bidRef, b); err != nil {
			return err
		}

		auctionUpdates := []firestore.Update{
			{Path: "currentPrice", Value: bid.Amount},
			{Path: "bidCount", Value: firestore.Increment(1)},
			{Path: "lastBidAt", Value: bid.Timestamp},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		}
		if newParticipant {
			auctionUpdates = append(auctionUpdates, firestore.Update{Path: "participantCount", Value: firestore.Increment(1)})
			if err := tx.Set(participantRef, map[string]interface{}{
				"userId":   bid.UserID,
				"userName": bidder.DisplayName,
				"fcmToken": bidder.FCMToken,
				"joinedAt": bid.Timestamp,
			}); err != nil {
				return err
			}
		}
		if err := tx.Update(auctionRef, auctionUpdates); err != nil {
			return err
		}

		return tx.Update(userRef, []firestore.Update{
			{Path: "totalBids", Value: firestore.Increment(1)},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
	})
}

// EndAuction transitions an auction to ended inside one transaction. The
// winner query, status write, and counter increment share the snapshot, so
// a retried call finds the auction already ended and applies nothing.
func (r *FirestoreRepo) EndAuction(ctx context.Context, auctionID, callerID string, endedAt time.Time) (*EndAuctionResult, error) {
	auctionRef := r.client.Collection(auctionsCollection).Doc(auctionID)

	var result *EndAuctionResult
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		auctionDoc, err := tx.Get(auctionRef)
		if isNotFound(err) {
			return fmt.Errorf("end auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
		}
		if err != nil {
			return err
		}
		var auction model.Auction
		if err := auctionDoc.DataTo(&auction); err != nil {
			return err
		}

		if auction.HostID != callerID {
			return fmt.Errorf("end auction %s: %w - only the host can end the auction", auctionID, auctionerrors.ErrPermissionDenied)
		}
		if auction.Status == model.AuctionStatusEnded {
			result = &EndAuctionResult{
				WinnerID:     auction.WinnerID,
				WinningBid:   auction.WinningBid,
				AlreadyEnded: true,
			}
			return nil
		}

		// Highest amount wins; earliest timestamp breaks ties.
		winnerQuery := auctionRef.Collection(bidsCollection).
			OrderBy("amount", firestore.Desc).
			OrderBy("timestamp", firestore.Asc).
			Limit(1)
		winnerIter := tx.Documents(winnerQuery)

		result = &EndAuctionResult{WinningBid: auction.StartingPrice}
		winnerDoc, err := winnerIter.Next()
		if err != nil && err != iterator.Done {
			return err
		}
		if err == nil {
			var winning model.Bid
			if err := winnerDoc.DataTo(&winning); err != nil {
				return err
			}
			winnerID := winning.UserID
			result.WinnerID = &winnerID
			result.WinningBid = winning.Amount
		}

		updates := []firestore.Update{
			{Path: "status", Value: model.AuctionStatusEnded},
			{Path: "winnerId", Value: result.WinnerID},
			{Path: "winningBid", Value: result.WinningBid},
			{Path: "endedAt", Value: endedAt},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		}
		if err := tx.Update(auctionRef, updates); err != nil {
			return err
		}

		if result.WinnerID != nil {
			winnerRef := r.client.Collection(usersCollection).Doc(*result.WinnerID)
			return tx.Update(winnerRef, []firestore.Update{
				{Path: "totalAuctions", Value: firestore.Increment(1)},
				{Path: "updatedAt", Value: firestore.ServerTimestamp},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetBids returns up to limit bids for an auction, newest first
func (r *FirestoreRepo) GetBids(ctx context.Context, auctionID string, limit int) ([]model.Bid, error) {
	if _, err := r.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}

	query := r.client.Collection(auctionsCollection).Doc(auctionID).
		Collection(bidsCollection).
		OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var bids []model.Bid
	iter := query.Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var bid model.Bid
		if err := doc.DataTo(&bid); err != nil {
			continue
		}
		bids = append(bids, bid)
	}
	return bids, nil
}

// GetParticipants returns every user recorded under the auction's
// participants subcollection
func (r *FirestoreRepo) GetParticipants(ctx context.Context, auctionID string) ([]*model.User, error) {
	if _, err := r.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}

	iter := r.client.Collection(auctionsCollection).Doc(auctionID).
		Collection(participantsCollection).
		Documents(ctx)

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		data := doc.Data()
		user := &model.User{UserID: doc.Ref.ID}
		if name, ok := data["userName"].(string); ok {
			user.DisplayName = name
		}
		if token, ok := data["fcmToken"].(string); ok {
			user.FCMToken = token
		}
		users = append(users, user)
	}
	return users, nil
}

// CreatePayment stores a local payment record keyed by intent ID
func (r *FirestoreRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	_, err := r.client.Collection(paymentsCollection).Doc(payment.PaymentIntentID).Set(ctx, payment)
	return err
}

// GetPayment retrieves a payment record by intent ID
func (r *FirestoreRepo) GetPayment(ctx context.Context, paymentIntentID string) (*model.Payment, error) {
	doc, err := r.client.Collection(paymentsCollection).Doc(paymentIntentID).Get(ctx)
	if isNotFound(err) {
		return nil, fmt.Errorf("get payment %s: %w", paymentIntentID, auctionerrors.ErrPaymentNotFound)
	}
	if err != nil {
		return nil, err
	}

	var payment model.Payment
	if err := doc.DataTo(&payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// SetPaymentStatus updates the local mirror of the intent lifecycle
func (r *FirestoreRepo) SetPaymentStatus(ctx context.Context, paymentIntentID, status string) error {
	_, err := r.client.Collection(paymentsCollection).Doc(paymentIntentID).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if isNotFound(err) {
		return fmt.Errorf("set payment status %s: %w", paymentIntentID, auctionerrors.ErrPaymentNotFound)
	}
	return err
}

// MarkBidPaid flags a bid as paid after payment confirmation
func (r *FirestoreRepo) MarkBidPaid(ctx context.Context, auctionID, bidID string, paidAt time.Time) error {
	_, err := r.client.Collection(auctionsCollection).Doc(auctionID).
		Collection(bidsCollection).Doc(bidID).
		Update(ctx, []firestore.Update{
			{Path: "paymentStatus", Value: model.BidPaymentStatusPaid},
			{Path: "paidAt", Value: paidAt},
		})
	if isNotFound(err) {
		return fmt.Errorf("mark bid paid %s: %w", bidID, auctionerrors.ErrBidNotFound)
	}
	return err
}

// CreditWallet atomically adds amount to the user's wallet balance
func (r *FirestoreRepo) CreditWallet(ctx context.Context, userID string, amount float64) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "walletBalance", Value: firestore.Increment(amount)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if isNotFound(err) {
		return fmt.Errorf("credit wallet for %s: %w", userID, auctionerrors.ErrUserNotFound)
	}
	return err
}

// SaveNotification appends a notification record
func (r *FirestoreRepo) SaveNotification(ctx context.Context, notification *model.Notification) error {
	_, err := r.client.Collection(notificationsCollection).Doc(notification.NotificationID).Set(ctx, notification)
	return err
}
