package api

import (
	"errors"
	"net/http"

	"planfit/planfit-app/internal/domain"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// pathObjectID parses a hex id from a path parameter. Identifier strings are
// converted to ObjectID here, at the boundary, and nowhere else.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// respondServiceError maps the error taxonomy onto HTTP statuses. Storage
// detail never leaks to the client.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrConflict):
		abortWithError(c, http.StatusConflict, "Conflict")
	default:
		abortWithError(c, http.StatusBadGateway, "Storage failure, please retry")
	}
}
