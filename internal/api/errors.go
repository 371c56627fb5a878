package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// errBadRequest marks request-shape problems found by the handlers.
var errBadRequest = errors.New("bad request")

// statusFor maps store errors to HTTP status codes. Duplicate IDs are a
// client error like any other invalid value.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrDuplicateID),
		errors.Is(err, db.ErrInvalid),
		errors.Is(err, model.ErrNoOwner),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes {"detail": ...}. Internal errors are logged and hidden.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err, requestIDKey, c.GetString(requestIDKey))
		detail = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
