package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sekrobank/sekro_bank_api/internal/apperrors"
)

// ErrorResponse is the error body returned by every handler.
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// respondWithError maps service errors onto HTTP statuses and a stable
// machine-readable code. Unrecognized errors become an opaque 500.
func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "VALIDATION", Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Code: "DUPLICATE", Error: err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Code: "STATE_CONFLICT", Error: err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Code: "INSUFFICIENT_FUNDS", Error: err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Code: "FORBIDDEN", Error: err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "INTERNAL", Error: "Internal server error"})
	}
}

// idempotencyKey extracts the client-supplied key for mutating requests.
func idempotencyKey(c *gin.Context) string {
	return c.GetHeader("X-Idempotency-Key")
}
