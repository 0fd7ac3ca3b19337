package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"live-auction-api/internal/auctionerrors"
	"live-auction-api/utils"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, string(auctionerrors.CategoryInvalidArgument), wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status, machine-readable
// category, and human-readable message
func MapErrorToHTTP(err error) (int, string, string) {
	category := auctionerrors.Categorize(err)
	status := http.StatusInternalServerError

	switch category {
	case auctionerrors.CategoryUnauthenticated:
		status = http.StatusUnauthorized
	case auctionerrors.CategoryNotFound:
		status = http.StatusNotFound
	case auctionerrors.CategoryPermissionDenied:
		status = http.StatusForbidden
	case auctionerrors.CategoryFailedPrecondition:
		status = http.StatusConflict
	case auctionerrors.CategoryInvalidArgument:
		status = http.StatusBadRequest
	}

	return status, string(category), messageFor(err)
}

// HandleServiceError logs a failed operation and writes the mapped response
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, category, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, category, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, fields)
	} else {
		utils.Warn(handlerName+": "+message, fields)
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return "auction not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return "bid not found"
	case errors.Is(err, auctionerrors.ErrPaymentNotFound):
		return "payment not found"
	case errors.Is(err, auctionerrors.ErrUnauthenticated):
		return "user must be authenticated"
	case errors.Is(err, auctionerrors.ErrBadCredentials):
		return "invalid email or password"
	case errors.Is(err, auctionerrors.ErrPermissionDenied):
		return "permission denied"
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		return "auction is not active"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return "auction has ended"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return "bid must be higher than current price"
	case errors.Is(err, auctionerrors.ErrInsufficientBalance):
		return "insufficient wallet balance"
	case errors.Is(err, auctionerrors.ErrNoFCMToken):
		return "user has no FCM token"
	case errors.Is(err, auctionerrors.ErrEmailTaken):
		return "email already registered"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return "invalid request details"
	default:
		return "internal server error"
	}
}
