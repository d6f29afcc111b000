package server

import (
	"errors"
	"net/http"

	"civicfix/backend/auth"
	"civicfix/backend/db"
	"civicfix/backend/geofence"

	"github.com/gin-gonic/gin"
)

// renderError maps db and auth sentinel errors to HTTP statuses and
// emits the `{"message": ...}` payload every endpoint uses.
func renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, db.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, db.ErrInvalidState):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, db.ErrValidation),
		errors.Is(err, db.ErrAlreadyReported),
		errors.Is(err, geofence.ErrOutOfBounds):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	}

	c.JSON(status, gin.H{"message": message})
}
