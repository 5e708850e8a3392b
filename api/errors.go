package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/journeyverse/backend/internal/domain"
)

// writeError maps service errors onto HTTP statuses. Unknown errors become a
// 500 with a generic body so internals never leak to the client.
func writeError(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPaymentExists), errors.Is(err, domain.ErrPaymentInFlight),
		errors.Is(err, domain.ErrBookingNotPending), errors.Is(err, domain.ErrPaymentConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var gErr *domain.GatewayError
		var pErr *domain.ProviderError
		if errors.As(err, &gErr) || errors.As(err, &pErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
