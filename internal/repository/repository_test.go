package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"live-auction-api/internal/auctionerrors"
	model "live-auction-api/internal/models"
)

// Helper to create a new User with a funded wallet
func newUser(userID string, balance float64) *model.User {
	return &model.User{
		UserID:        userID,
		Email:         fmt.Sprintf("%s@example.com", userID),
		DisplayName:   fmt.Sprintf("%s display", userID),
		Role:          "user",
		WalletBalance: balance,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

// Helper to create an active auction hosted by hostID
func newAuction(auctionID, hostID string, startingPrice float64, endTime time.Time) *model.Auction {
	now := time.Now().UTC()
	return &model.Auction{
		AuctionID:     auctionID,
		Title:         fmt.Sprintf("%s title", auctionID),
		Description:   fmt.Sprintf("%s description", auctionID),
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		Duration:      24,
		HostID:        hostID,
		Status:        model.AuctionStatusActive,
		StartTime:     now,
		EndTime:       endTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Helper to create a new Bid
func newBid(bidID, auctionID, userID string, amount float64, ts time.Time) *model.Bid {
	return &model.Bid{
		BidID:     bidID,
		AuctionID: auctionID,
		UserID:    userID,
		Amount:    amount,
		Timestamp: ts,
		Status:    model.BidStatusActive,
	}
}

func seedRepo(t *testing.T) *MemoryRepo {
	t.Helper()
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.CreateUser(ctx, newUser("host1", 0)))
	require.NoError(t, repo.CreateUser(ctx, newUser("user1", 1000)))
	require.NoError(t, repo.CreateUser(ctx, newUser("user2", 1000)))
	require.NoError(t, repo.CreateUser(ctx, newUser("poor_user", 10)))
	return repo
}

// Test PlaceBid preconditions and state changes
func TestMemoryRepo_PlaceBid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	tests := []struct {
		name       string
		auction    *model.Auction
		seedBids   []*model.Bid
		bid        *model.Bid
		wantErr    error
		wantPrice  float64 // checked on success
		wantBidLen int
	}{
		{
			name:       "first_bid_above_starting_price",
			auction:    newAuction("a1", "host1", 100, now.Add(time.Hour)),
			bid:        newBid("b1", "a1", "user1", 150, now),
			wantPrice:  150,
			wantBidLen: 1,
		},
		{
			name:    "bid_equal_to_current_price_rejected",
			auction: newAuction("a2", "host1", 100, now.Add(time.Hour)),
			bid:     newBid("b1", "a2", "user1", 100, now),
			wantErr: auctionerrors.ErrBidTooLow,
		},
		{
			name:    "bid_below_current_price_rejected",
			auction: newAuction("a3", "host1", 100, now.Add(time.Hour)),
			bid:     newBid("b1", "a3", "user1", 90, now),
			wantErr: auctionerrors.ErrBidTooLow,
		},
		{
			name:     "bid_below_highest_bid_rejected",
			auction:  newAuction("a4", "host1", 50, now.Add(time.Hour)),
			seedBids: []*model.Bid{newBid("b0", "a4", "user2", 200, now)},
			bid:      newBid("b1", "a4", "user1", 150, now),
			wantErr:  auctionerrors.ErrBidTooLow,
		},
		{
			name:    "auction_not_found",
			auction: newAuction("a5", "host1", 100, now.Add(time.Hour)),
			bid:     newBid("b1", "missing", "user1", 150, now),
			wantErr: auctionerrors.ErrAuctionNotFound,
		},
		{
			name:    "bid_after_end_time_rejected",
			auction: newAuction("a6", "host1", 100, now.Add(-time.Minute)),
			bid:     newBid("b1", "a6", "user1", 150, now),
			wantErr: auctionerrors.ErrAuctionEnded,
		},
		{
			name:    "insufficient_wallet_balance",
			auction: newAuction("a7", "host1", 100, now.Add(time.Hour)),
			bid:     newBid("b1", "a7", "poor_user", 150, now),
			wantErr: auctionerrors.ErrInsufficientBalance,
		},
		{
			name:    "unknown_bidder",
			auction: newAuction("a8", "host1", 100, now.Add(time.Hour)),
			bid:     newBid("b1", "a8", "ghost", 150, now),
			wantErr: auctionerrors.ErrUserNotFound,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			repo := seedRepo(t)
			require.NoError(t, repo.CreateAuction(ctx, tc.auction))
			for _, b := range tc.seedBids {
				require.NoError(t, repo.PlaceBid(ctx, b))
			}

			before, err := repo.GetAuction(ctx, tc.auction.AuctionID)
			require.NoError(t, err)

			err = repo.PlaceBid(ctx, tc.bid)
			if tc.wantErr != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.wantErr)

				// A rejected bid must leave the auction untouched
				after, getErr := repo.GetAuction(ctx, tc.auction.AuctionID)
				require.NoError(t, getErr)
				require.Equal(t, before.CurrentPrice, after.CurrentPrice)
				require.Equal(t, before.BidCount, after.BidCount)
				return
			}

			require.NoError(t, err)
			after, err := repo.GetAuction(ctx, tc.auction.AuctionID)
			require.NoError(t, err)
			require.Equal(t, tc.wantPrice, after.CurrentPrice)
			require.Equal(t, int64(tc.wantBidLen), after.BidCount)
			require.NotNil(t, after.LastBidAt)

			bids, err := repo.GetBids(ctx, tc.auction.AuctionID, 0)
			require.NoError(t, err)
			require.Len(t, bids, tc.wantBidLen)
		})
	}

	t.Run("bid_on_ended_auction_rejected", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		auction := newAuction("a_ended", "host1", 100, now.Add(time.Hour))
		require.NoError(t, repo.CreateAuction(ctx, auction))
		_, err := repo.EndAuction(ctx, "a_ended", "host1", now)
		require.NoError(t, err)

		err = repo.PlaceBid(ctx, newBid("b1", "a_ended", "user1", 150, now))
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotActive)
	})

	t.Run("participant_counted_once_per_user", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a_part", "host1", 10, now.Add(time.Hour))))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b1", "a_part", "user1", 20, now)))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b2", "a_part", "user2", 30, now)))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b3", "a_part", "user1", 40, now)))

		auction, err := repo.GetAuction(ctx, "a_part")
		require.NoError(t, err)
		require.Equal(t, int64(3), auction.BidCount)
		require.Equal(t, int64(2), auction.ParticipantCount)

		participants, err := repo.GetParticipants(ctx, "a_part")
		require.NoError(t, err)
		require.Len(t, participants, 2)

		bidder, err := repo.GetUser(ctx, "user1")
		require.NoError(t, err)
		require.Equal(t, int64(2), bidder.TotalBids)
	})

	// concurrency test: every accepted bid must beat the price of the
	// previous one, so the final price equals the highest accepted amount
	t.Run("concurrent_bids_single_auction", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		require.NoError(t, repo.CreateAuction(ctx, newAuction("hot", "host1", 0, now.Add(time.Hour))))

		concurrentCount := 50
		for i := 0; i < concurrentCount; i++ {
			require.NoError(t, repo.CreateUser(ctx, newUser(fmt.Sprintf("cu-%d", i), 10000)))
		}

		var wg sync.WaitGroup
		for i := 0; i < concurrentCount; i++ {
			wg.Add(1)
			i := i
			go func() {
				defer wg.Done()
				b := newBid(fmt.Sprintf("cb-%d", i), "hot", fmt.Sprintf("cu-%d", i), float64(1+i), now)
				// Rejections are expected under contention
				_ = repo.PlaceBid(ctx, b)
			}()
		}
		wg.Wait()

		auction, err := repo.GetAuction(ctx, "hot")
		require.NoError(t, err)

		bids, err := repo.GetBids(ctx, "hot", 0)
		require.NoError(t, err)
		require.NotEmpty(t, bids)
		require.Equal(t, int64(len(bids)), auction.BidCount)

		var highest float64
		for _, b := range bids {
			if b.Amount > highest {
				highest = b.Amount
			}
		}
		require.Equal(t, highest, auction.CurrentPrice)
	})
}

// Test EndAuction
func TestMemoryRepo_EndAuction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("winner_is_highest_bid", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", "host1", 50, now.Add(time.Hour))))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b1", "a1", "user1", 100, now)))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b2", "a1", "user2", 150, now.Add(time.Second))))

		result, err := repo.EndAuction(ctx, "a1", "host1", now.Add(time.Minute))
		require.NoError(t, err)
		require.False(t, result.AlreadyEnded)
		require.NotNil(t, result.WinnerID)
		require.Equal(t, "user2", *result.WinnerID)
		require.Equal(t, 150.0, result.WinningBid)

		auction, err := repo.GetAuction(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, model.AuctionStatusEnded, auction.Status)
		require.NotNil(t, auction.EndedAt)

		winner, err := repo.GetUser(ctx, "user2")
		require.NoError(t, err)
		require.Equal(t, int64(1), winner.TotalAuctions)
	})

	t.Run("no_bids_means_no_winner", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a2", "host1", 75, now.Add(time.Hour))))

		result, err := repo.EndAuction(ctx, "a2", "host1", now)
		require.NoError(t, err)
		require.Nil(t, result.WinnerID)
		require.Equal(t, 75.0, result.WinningBid)
	})

	t.Run("equal_amounts_earliest_wins", func(t *testing.T) {
		t.Parallel()

		repo := NewMemoryRepo()
		require.NoError(t, repo.CreateUser(ctx, newUser("early", 1000)))
		require.NoError(t, repo.CreateUser(ctx, newUser("late", 1000)))

		// Seed the bid lists directly: equal amounts cannot both pass the
		// outbid check through PlaceBid
		auction := newAuction("a3", "host1", 50, now.Add(time.Hour))
		repo.auctions["a3"] = auction
		repo.bids["a3"] = []model.Bid{
			*newBid("b_late", "a3", "late", 200, now.Add(time.Second)),
			*newBid("b_early", "a3", "early", 200, now),
		}

		result, err := repo.EndAuction(ctx, "a3", "host1", now.Add(time.Minute))
		require.NoError(t, err)
		require.NotNil(t, result.WinnerID)
		require.Equal(t, "early", *result.WinnerID)
	})

	t.Run("non_host_cannot_end", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a4", "host1", 50, now.Add(time.Hour))))

		_, err := repo.EndAuction(ctx, "a4", "user1", now)
		require.ErrorIs(t, err, auctionerrors.ErrPermissionDenied)

		auction, err := repo.GetAuction(ctx, "a4")
		require.NoError(t, err)
		require.Equal(t, model.AuctionStatusActive, auction.Status)
	})

	t.Run("auction_not_found", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		_, err := repo.EndAuction(ctx, "missing", "host1", now)
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})

	t.Run("repeated_end_returns_recorded_outcome", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a5", "host1", 50, now.Add(time.Hour))))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b1", "a5", "user1", 100, now)))

		first, err := repo.EndAuction(ctx, "a5", "host1", now)
		require.NoError(t, err)
		require.False(t, first.AlreadyEnded)

		second, err := repo.EndAuction(ctx, "a5", "host1", now.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, second.AlreadyEnded)
		require.Equal(t, first.WinnerID, second.WinnerID)
		require.Equal(t, first.WinningBid, second.WinningBid)

		// The second call must not bump the winner's aggregate again
		winner, err := repo.GetUser(ctx, "user1")
		require.NoError(t, err)
		require.Equal(t, int64(1), winner.TotalAuctions)
	})

	t.Run("concurrent_end_applies_once", func(t *testing.T) {
		t.Parallel()

		repo := seedRepo(t)
		require.NoError(t, repo.CreateAuction(ctx, newAuction("a6", "host1", 50, now.Add(time.Hour))))
		require.NoError(t, repo.PlaceBid(ctx, newBid("b1", "a6", "user1", 100, now)))

		var wg sync.WaitGroup
		var mu sync.Mutex
		alreadyEnded := 0

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := repo.EndAuction(ctx, "a6", "host1", time.Now().UTC())
				require.NoError(t, err)
				if result.AlreadyEnded {
					mu.Lock()
					alreadyEnded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 9, alreadyEnded)

		winner, err := repo.GetUser(ctx, "user1")
		require.NoError(t, err)
		require.Equal(t, int64(1), winner.TotalAuctions)
	})
}

// Test GetBids ordering and limit
func TestMemoryRepo_GetBids(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()

	repo := seedRepo(t)
	require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", "host1", 0, now.Add(time.Hour))))
	for i := 1; i <= 5; i++ {
		bid := newBid(fmt.Sprintf("b%d", i), "a1", "user1", float64(i*10), now.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.PlaceBid(ctx, bid))
	}

	t.Run("newest_first", func(t *testing.T) {
		bids, err := repo.GetBids(ctx, "a1", 0)
		require.NoError(t, err)
		require.Len(t, bids, 5)
		for i := 1; i < len(bids); i++ {
			require.False(t, bids[i].Timestamp.After(bids[i-1].Timestamp))
		}
		require.Equal(t, "b5", bids[0].BidID)
	})

	t.Run("limit_applied", func(t *testing.T) {
		bids, err := repo.GetBids(ctx, "a1", 2)
		require.NoError(t, err)
		require.Len(t, bids, 2)
		require.Equal(t, "b5", bids[0].BidID)
		require.Equal(t, "b4", bids[1].BidID)
	})

	t.Run("auction_not_found", func(t *testing.T) {
		_, err := repo.GetBids(ctx, "missing", 0)
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})
}

// Test ListAuctions filtering and paging
func TestMemoryRepo_ListAuctions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()
	repo := seedRepo(t)

	for i := 0; i < 5; i++ {
		a := newAuction(fmt.Sprintf("a%d", i), "host1", 10, now.Add(time.Hour))
		a.CreatedAt = now.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.CreateAuction(ctx, a))
	}
	_, err := repo.EndAuction(ctx, "a0", "host1", now)
	require.NoError(t, err)

	tests := []struct {
		name      string
		status    string
		page      int
		limit     int
		wantIDs   []string
		wantTotal int
	}{
		{name: "all_newest_first", status: "", page: 1, limit: 10, wantIDs: []string{"a4", "a3", "a2", "a1", "a0"}, wantTotal: 5},
		{name: "active_only", status: model.AuctionStatusActive, page: 1, limit: 10, wantIDs: []string{"a4", "a3", "a2", "a1"}, wantTotal: 4},
		{name: "ended_only", status: model.AuctionStatusEnded, page: 1, limit: 10, wantIDs: []string{"a0"}, wantTotal: 1},
		{name: "second_page", status: "", page: 2, limit: 2, wantIDs: []string{"a2", "a1"}, wantTotal: 5},
		{name: "page_past_end", status: "", page: 4, limit: 2, wantIDs: []string{}, wantTotal: 5},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			auctions, total, err := repo.ListAuctions(ctx, tc.status, tc.page, tc.limit)
			require.NoError(t, err)
			require.Equal(t, tc.wantTotal, total)

			ids := make([]string, 0, len(auctions))
			for _, a := range auctions {
				ids = append(ids, a.AuctionID)
			}
			require.Equal(t, tc.wantIDs, ids)
		})
	}
}

// Test user storage
func TestMemoryRepo_Users(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()

	require.NoError(t, repo.CreateUser(ctx, newUser("u1", 500)))

	t.Run("duplicate_email_rejected", func(t *testing.T) {
		dup := newUser("u2", 0)
		dup.Email = "u1@example.com"
		err := repo.CreateUser(ctx, dup)
		require.ErrorIs(t, err, auctionerrors.ErrEmailTaken)
	})

	t.Run("lookup_by_email", func(t *testing.T) {
		user, err := repo.GetUserByEmail(ctx, "u1@example.com")
		require.NoError(t, err)
		require.Equal(t, "u1", user.UserID)
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("update_fcm_token", func(t *testing.T) {
		require.NoError(t, repo.UpdateFCMToken(ctx, "u1", "token-abc"))
		user, err := repo.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "token-abc", user.FCMToken)

		err = repo.UpdateFCMToken(ctx, "missing", "token")
		require.ErrorIs(t, err, auctionerrors.ErrUserNotFound)
	})

	t.Run("returned_user_is_a_copy", func(t *testing.T) {
		user, err := repo.GetUser(ctx, "u1")
		require.NoError(t, err)
		user.WalletBalance = 9999

		fresh, err := repo.GetUser(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, 500.0, fresh.WalletBalance)
	})
}

// Test payment records
func TestMemoryRepo_Payments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now().UTC()
	repo := seedRepo(t)

	require.NoError(t, repo.CreateAuction(ctx, newAuction("a1", "host1", 50, now.Add(time.Hour))))
	require.NoError(t, repo.PlaceBid(ctx, newBid("b1", "a1", "user1", 100, now)))

	payment := &model.Payment{
		PaymentIntentID: "pi_1",
		UserID:          "user1",
		AuctionID:       "a1",
		BidID:           "b1",
		Amount:          100,
		Currency:        "usd",
		Status:          model.PaymentStatusRequiresMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, repo.CreatePayment(ctx, payment))

	t.Run("status_transition", func(t *testing.T) {
		require.NoError(t, repo.SetPaymentStatus(ctx, "pi_1", model.PaymentStatusSucceeded))
		stored, err := repo.GetPayment(ctx, "pi_1")
		require.NoError(t, err)
		require.Equal(t, model.PaymentStatusSucceeded, stored.Status)
	})

	t.Run("unknown_intent", func(t *testing.T) {
		_, err := repo.GetPayment(ctx, "pi_missing")
		require.ErrorIs(t, err, auctionerrors.ErrPaymentNotFound)

		err = repo.SetPaymentStatus(ctx, "pi_missing", model.PaymentStatusSucceeded)
		require.ErrorIs(t, err, auctionerrors.ErrPaymentNotFound)
	})

	t.Run("mark_bid_paid", func(t *testing.T) {
		require.NoError(t, repo.MarkBidPaid(ctx, "a1", "b1", now))
		bids, err := repo.GetBids(ctx, "a1", 0)
		require.NoError(t, err)
		require.Equal(t, model.BidPaymentStatusPaid, bids[0].PaymentStatus)
		require.NotNil(t, bids[0].PaidAt)

		err = repo.MarkBidPaid(ctx, "a1", "b_missing", now)
		require.ErrorIs(t, err, auctionerrors.ErrBidNotFound)
	})

	t.Run("credit_wallet", func(t *testing.T) {
		require.NoError(t, repo.CreditWallet(ctx, "user1", 250))
		user, err := repo.GetUser(ctx, "user1")
		require.NoError(t, err)
		require.Equal(t, 1250.0, user.WalletBalance)
	})
}

// Test notification records
func TestMemoryRepo_SaveNotification(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewMemoryRepo()

	record := &model.Notification{
		NotificationID: "n1",
		UserID:         "u1",
		Title:          "Outbid",
		Body:           "Someone outbid you",
		Status:         model.NotificationStatusSent,
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, repo.SaveNotification(ctx, record))

	stored := repo.Notifications()
	require.Len(t, stored, 1)
	require.Equal(t, "n1", stored[0].NotificationID)
}

// Categorize must map storage errors to stable categories even through wrapping
func TestErrorCategories(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", auctionerrors.ErrBidTooLow))
	require.Equal(t, auctionerrors.CategoryFailedPrecondition, auctionerrors.Categorize(wrapped))
	require.True(t, errors.Is(wrapped, auctionerrors.ErrBidTooLow))
}
