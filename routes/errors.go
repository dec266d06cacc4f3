package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventapi/images"
	"eventapi/models"
	"eventapi/services"
)

// abortWithError maps a service error onto a status and message. Anything
// unrecognised is a 500 with a generic message; the service already logged it.
func abortWithError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, models.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Event not found"})
	case errors.Is(err, models.ErrCapacityExceeded):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Event is full"})
	case errors.Is(err, images.ErrNoFile):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "No file uploaded"})
	case errors.Is(err, images.ErrNotImage):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Only image files are allowed!"})
	case errors.Is(err, images.ErrTooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "File is too large"})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
