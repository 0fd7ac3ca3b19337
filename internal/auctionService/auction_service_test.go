package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"live-auction-api/internal/auctionerrors"
	model "live-auction-api/internal/models"
	"live-auction-api/internal/repository"
)

func host(canHost bool) *model.User {
	return &model.User{
		UserID:      "host1",
		Email:       "host1@example.com",
		DisplayName: "Host One",
		CanHost:     canHost,
	}
}

// Tests CreateAuction
func TestAuctionService_CreateAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore, 50)
	ctx := context.Background()

	validInput := CreateAuctionInput{
		Title:         "Vintage watch",
		Description:   "1960s chronograph",
		StartingPrice: 250,
		Duration:      24,
		Category:      "watches",
	}

	tests := []struct {
		name        string
		hostID      string
		input       CreateAuctionInput
		mockSetup   func()
		expectError error
	}{
		{
			name:   "valid_auction",
			hostID: "host1",
			input:  validInput,
			mockSetup: func() {
				mockStore.EXPECT().GetUser(ctx, "host1").Return(host(true), nil)
				mockStore.EXPECT().CreateAuction(ctx, gomock.Any()).Return(nil)
			},
		},
		{
			name:        "missing_host_id",
			hostID:      "",
			input:       validInput,
			mockSetup:   func() {},
			expectError: auctionerrors.ErrUnauthenticated,
		},
		{
			name:        "missing_title",
			hostID:      "host1",
			input:       CreateAuctionInput{StartingPrice: 100, Duration: 24},
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "zero_starting_price",
			hostID:      "host1",
			input:       CreateAuctionInput{Title: "t", StartingPrice: 0, Duration: 24},
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "negative_starting_price",
			hostID:      "host1",
			input:       CreateAuctionInput{Title: "t", StartingPrice: -5, Duration: 24},
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "zero_duration",
			hostID:      "host1",
			input:       CreateAuctionInput{Title: "t", StartingPrice: 100, Duration: 0},
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:   "host_not_allowed",
			hostID: "host1",
			input:  validInput,
			mockSetup: func() {
				mockStore.EXPECT().GetUser(ctx, "host1").Return(host(false), nil)
			},
			expectError: auctionerrors.ErrPermissionDenied,
		},
		{
			name:   "host_not_found",
			hostID: "ghost",
			input:  validInput,
			mockSetup: func() {
				mockStore.EXPECT().GetUser(ctx, "ghost").Return(nil, auctionerrors.ErrUserNotFound)
			},
			expectError: auctionerrors.ErrUserNotFound,
		},
		{
			name:   "store_write_failure",
			hostID: "host1",
			input:  validInput,
			mockSetup: func() {
				mockStore.EXPECT().GetUser(ctx, "host1").Return(host(true), nil)
				mockStore.EXPECT().CreateAuction(ctx, gomock.Any()).Return(errors.New("store down"))
			},
			expectError: errors.New("store down"),
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			auction, err := service.CreateAuction(ctx, tc.hostID, tc.input)
			if tc.expectError != nil {
				require.Error(t, err)
				require.ErrorContains(t, err, tc.expectError.Error())
				require.Nil(t, auction)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, auction.AuctionID)
			require.Equal(t, tc.input.Title, auction.Title)
			require.Equal(t, tc.input.StartingPrice, auction.CurrentPrice)
			require.Equal(t, "Host One", auction.HostName)
			require.Equal(t, model.AuctionStatusActive, auction.Status)
			require.Equal(t, auction.StartTime.Add(time.Duration(tc.input.Duration)*time.Hour), auction.EndTime)
			require.NotNil(t, auction.Images)
		})
	}
}

// Tests PlaceBid
func TestAuctionService_PlaceBid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore, 50)
	ctx := context.Background()

	tests := []struct {
		name        string
		auctionID   string
		userID      string
		amount      float64
		mockSetup   func()
		expectError error
	}{
		{
			name:      "valid_bid",
			auctionID: "a1",
			userID:    "user1",
			amount:    150,
			mockSetup: func() {
				mockStore.EXPECT().PlaceBid(ctx, gomock.Any()).DoAndReturn(
					func(_ context.Context, bid *model.Bid) error {
						require.Equal(t, "a1", bid.AuctionID)
						require.Equal(t, "user1", bid.UserID)
						require.Equal(t, 150.0, bid.Amount)
						require.NotEmpty(t, bid.BidID)
						require.False(t, bid.Timestamp.IsZero())
						return nil
					})
			},
		},
		{
			name:        "missing_user",
			auctionID:   "a1",
			userID:      "",
			amount:      150,
			mockSetup:   func() {},
			expectError: auctionerrors.ErrUnauthenticated,
		},
		{
			name:        "missing_auction_id",
			auctionID:   "",
			userID:      "user1",
			amount:      150,
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "zero_amount",
			auctionID:   "a1",
			userID:      "user1",
			amount:      0,
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:        "negative_amount",
			auctionID:   "a1",
			userID:      "user1",
			amount:      -20,
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:      "store_rejects_low_bid",
			auctionID: "a1",
			userID:    "user1",
			amount:    90,
			mockSetup: func() {
				mockStore.EXPECT().PlaceBid(ctx, gomock.Any()).Return(auctionerrors.ErrBidTooLow)
			},
			expectError: auctionerrors.ErrBidTooLow,
		},
		{
			name:      "store_rejects_ended_auction",
			auctionID: "a1",
			userID:    "user1",
			amount:    150,
			mockSetup: func() {
				mockStore.EXPECT().PlaceBid(ctx, gomock.Any()).Return(auctionerrors.ErrAuctionEnded)
			},
			expectError: auctionerrors.ErrAuctionEnded,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			bid, err := service.PlaceBid(ctx, tc.auctionID, tc.userID, tc.amount)
			if tc.expectError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectError)
				require.Nil(t, bid)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.amount, bid.Amount)
			require.Equal(t, model.BidStatusActive, bid.Status)
		})
	}
}

// Tests EndAuction
func TestAuctionService_EndAuction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore, 50)
	ctx := context.Background()

	winnerID := "user2"

	tests := []struct {
		name        string
		auctionID   string
		callerID    string
		mockSetup   func()
		expectError error
		wantResult  *repository.EndAuctionResult
	}{
		{
			name:      "ended_with_winner",
			auctionID: "a1",
			callerID:  "host1",
			mockSetup: func() {
				mockStore.EXPECT().EndAuction(ctx, "a1", "host1", gomock.Any()).
					Return(&repository.EndAuctionResult{WinnerID: &winnerID, WinningBid: 150}, nil)
			},
			wantResult: &repository.EndAuctionResult{WinnerID: &winnerID, WinningBid: 150},
		},
		{
			name:      "already_ended",
			auctionID: "a1",
			callerID:  "host1",
			mockSetup: func() {
				mockStore.EXPECT().EndAuction(ctx, "a1", "host1", gomock.Any()).
					Return(&repository.EndAuctionResult{WinningBid: 50, AlreadyEnded: true}, nil)
			},
			wantResult: &repository.EndAuctionResult{WinningBid: 50, AlreadyEnded: true},
		},
		{
			name:        "missing_caller",
			auctionID:   "a1",
			callerID:    "",
			mockSetup:   func() {},
			expectError: auctionerrors.ErrUnauthenticated,
		},
		{
			name:        "missing_auction_id",
			auctionID:   "",
			callerID:    "host1",
			mockSetup:   func() {},
			expectError: auctionerrors.ErrInvalidInput,
		},
		{
			name:      "caller_is_not_host",
			auctionID: "a1",
			callerID:  "user1",
			mockSetup: func() {
				mockStore.EXPECT().EndAuction(ctx, "a1", "user1", gomock.Any()).
					Return(nil, auctionerrors.ErrPermissionDenied)
			},
			expectError: auctionerrors.ErrPermissionDenied,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			result, err := service.EndAuction(ctx, tc.auctionID, tc.callerID)
			if tc.expectError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectError)
				require.Nil(t, result)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantResult, result)
		})
	}
}

// Tests GetAuctionDetails
func TestAuctionService_GetAuctionDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore, 10)
	ctx := context.Background()

	t.Run("auction_with_bids", func(t *testing.T) {
		auction := &model.Auction{AuctionID: "a1", Title: "t", Status: model.AuctionStatusActive}
		bids := []model.Bid{{BidID: "b1", Amount: 100}}

		mockStore.EXPECT().GetAuction(ctx, "a1").Return(auction, nil)
		mockStore.EXPECT().GetBids(ctx, "a1", 10).Return(bids, nil)

		gotAuction, gotBids, err := service.GetAuctionDetails(ctx, "a1")
		require.NoError(t, err)
		require.Equal(t, auction, gotAuction)
		require.Equal(t, bids, gotBids)
	})

	t.Run("nil_bids_become_empty_slice", func(t *testing.T) {
		mockStore.EXPECT().GetAuction(ctx, "a2").Return(&model.Auction{AuctionID: "a2"}, nil)
		mockStore.EXPECT().GetBids(ctx, "a2", 10).Return(nil, nil)

		_, gotBids, err := service.GetAuctionDetails(ctx, "a2")
		require.NoError(t, err)
		require.NotNil(t, gotBids)
		require.Empty(t, gotBids)
	})

	t.Run("missing_auction_id", func(t *testing.T) {
		_, _, err := service.GetAuctionDetails(ctx, "")
		require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
	})

	t.Run("auction_not_found", func(t *testing.T) {
		mockStore.EXPECT().GetAuction(ctx, "missing").Return(nil, auctionerrors.ErrAuctionNotFound)

		_, _, err := service.GetAuctionDetails(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})
}

// Tests ListAuctions
func TestAuctionService_ListAuctions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := repository.NewMockStore(ctrl)
	service := NewAuctionService(mockStore, 50)
	ctx := context.Background()

	t.Run("defaults_applied", func(t *testing.T) {
		mockStore.EXPECT().ListAuctions(ctx, "", 1, DefaultListLimit).
			Return([]*model.Auction{{AuctionID: "a1"}}, 1, nil)

		auctions, total, err := service.ListAuctions(ctx, "", 0, 0)
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Len(t, auctions, 1)
	})

	t.Run("status_filter_passed_through", func(t *testing.T) {
		mockStore.EXPECT().ListAuctions(ctx, model.AuctionStatusEnded, 2, 5).
			Return(nil, 0, nil)

		auctions, total, err := service.ListAuctions(ctx, model.AuctionStatusEnded, 2, 5)
		require.NoError(t, err)
		require.Zero(t, total)
		require.NotNil(t, auctions)
	})

	t.Run("unknown_status_rejected", func(t *testing.T) {
		_, _, err := service.ListAuctions(ctx, "archived", 1, 10)
		require.ErrorIs(t, err, auctionerrors.ErrInvalidInput)
	})
}
