package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"rideshare/internal/auth"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// Error kinds reported in ErrorResponse.Error.
const (
	KindValidation   = "VALIDATION_ERROR"
	KindBadRequest   = "BAD_REQUEST"
	KindConflict     = "CONFLICT"
	KindNotFound     = "NOT_FOUND"
	KindUnauthorized = "UNAUTHORIZED"
	KindForbidden    = "FORBIDDEN"
	KindInternal     = "INTERNAL_SERVER_ERROR"
)

// ErrMalformedBody is returned when the request body is not valid JSON for the endpoint.
var ErrMalformedBody = errors.New("malformed request body")

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code, kind := mapError(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("request failed")
		message = "An unexpected error occurred"
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		Error:     kind,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    code,
	})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// ErrorRenderer writes the uniform error body for errors that middleware
// recorded with c.Error and aborted on. It must run inside any middleware
// that inspects the written response.
func ErrorRenderer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		respondError(c, c.Errors.Last().Err)
	}
}

// mapError maps service/repository errors to an HTTP status code and error kind.
func mapError(err error) (int, string) {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, KindNotFound

	// Validation errors - Bad Request
	case errors.Is(err, ErrMalformedBody),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidRideID),
		errors.Is(err, service.ErrInvalidRequesterID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropLocation):
		return http.StatusBadRequest, KindValidation

	// Illegal state transitions
	case errors.Is(err, service.ErrRideNotAcceptable),
		errors.Is(err, service.ErrRideNotCompletable):
		return http.StatusBadRequest, KindBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict, KindConflict

	// Authentication errors
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, KindUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotRideParticipant):
		return http.StatusForbidden, KindForbidden

	// Default to internal server error
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

// NotFound renders unknown routes with the uniform error body.
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
		Error:     KindNotFound,
		Message:   "no route for " + c.Request.Method + " " + c.Request.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    http.StatusNotFound,
	})
}
