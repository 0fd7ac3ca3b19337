package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNoBids          = errors.New("no bids found for auction")
)

// business logic errors
var (
	ErrUnauthenticated     = errors.New("user must be authenticated")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidInput        = errors.New("invalid input")
	ErrAuctionNotActive    = errors.New("auction is not active")
	ErrAuctionEnded        = errors.New("auction has ended")
	ErrBidTooLow           = errors.New("bid must be higher than current price")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrNoFCMToken          = errors.New("user has no FCM token")
	ErrEmailTaken          = errors.New("email already registered")
	ErrBadCredentials      = errors.New("invalid email or password")
)

// Category is the machine-readable failure class surfaced to callers.
type Category string

const (
	CategoryUnauthenticated    Category = "unauthenticated"
	CategoryNotFound           Category = "not-found"
	CategoryPermissionDenied   Category = "permission-denied"
	CategoryFailedPrecondition Category = "failed-precondition"
	CategoryInvalidArgument    Category = "invalid-argument"
	CategoryInternal           Category = "internal"
)

// Categorize maps an error chain to its failure category. Unknown errors
// fall through to internal.
func Categorize(err error) Category {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrBadCredentials):
		return CategoryUnauthenticated
	case errors.Is(err, ErrAuctionNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrBidNotFound),
		errors.Is(err, ErrPaymentNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrPermissionDenied):
		return CategoryPermissionDenied
	case errors.Is(err, ErrAuctionNotActive),
		errors.Is(err, ErrAuctionEnded),
		errors.Is(err, ErrBidTooLow),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrNoFCMToken),
		errors.Is(err, ErrEmailTaken):
		return CategoryFailedPrecondition
	case errors.Is(err, ErrInvalidInput):
		return CategoryInvalidArgument
	default:
		return CategoryInternal
	}
}
