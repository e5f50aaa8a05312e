package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/internal/store"
	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

const (
	messageInvalidBody   = "invalid request body"
	messageInvalidID     = "invalid id"
	messageStoreFailure  = "document store unavailable"
	messageEmailRequired = "email is required"
	messageBodyTooLarge  = "request body too large"
)

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
}

// bindJSON decodes the body into obj, answering 413 when limitBody cut the
// body short and 400 for anything else that does not decode.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": messageBodyTooLarge})
		return false
	}
	badRequest(c, messageInvalidBody)
	return false
}

func notFound(c *gin.Context, what string) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}

// storeError maps a store failure onto a response. Anything that is not a
// known sentinel is an upstream failure: 502, logged, counted.
func (h *handlers) storeError(c *gin.Context, collection, operation, what string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		badRequest(c, messageInvalidID)
	case errors.Is(err, store.ErrNotFound):
		notFound(c, what)
	default:
		requestID, _ := jwtauth.GetRequestID(c.Request.Context())
		h.logger.ErrorContext(c.Request.Context(), "document store call failed",
			slog.Group("store",
				slog.String("collection", collection),
				slog.String("operation", operation),
			),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		h.metrics.IncrementStoreFailures(collection, operation)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"message": messageStoreFailure})
	}
}
