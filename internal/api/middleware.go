package api

import (
	"errors"
	"net/http"
	"strconv"

	"planfit/planfit-app/internal/telemetry/metrics"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Constants for context keys
const (
	ContextUserIDKey = "userID"
)

// Header carrying the caller's identity, set by the fronting auth proxy.
// The proxy has already authenticated the user; this layer only parses the
// id into the store's native identity type, once, at the boundary.
const userIDHeader = "X-User-ID"

// IdentityMiddleware extracts the proxy-validated user id and stores it in
// the request context as a primitive.ObjectID. Requests without a valid id
// never reach a handler.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.GetHeader(userIDHeader)
		if idStr == "" {
			abortWithError(c, http.StatusUnauthorized, "Missing user identity")
			return
		}
		userID, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid user ID format")
			return
		}

		c.Set(ContextUserIDKey, userID)
		c.Next()
	}
}

// MetricsMiddleware counts requests and tracks in-flight requests.
func MetricsMiddleware(manager *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		manager.GaugeRequests.Inc()
		defer manager.GaugeRequests.Dec()

		c.Next()

		manager.CounterRequests.
			WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// Helper function to get User ID from context (used by handlers)
func getUserIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	userID, ok := idRaw.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return userID, nil
}
