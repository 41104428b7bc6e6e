package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/auth"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const userClaimsKey = "userClaims"

// RequestID attaches an X-Request-ID header to every response, generating
// one when the caller did not supply it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// Authenticated rejects requests without a valid bearer token and stores
// the verified claims on the context.
func Authenticated(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("authorization token required"))
			return
		}
		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("invalid or expired token"))
			return
		}
		c.Set(userClaimsKey, claims)
		c.Next()
	}
}

func currentUser(c *gin.Context) *auth.Claims {
	claims, _ := c.MustGet(userClaimsKey).(*auth.Claims)
	return claims
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func okBody(message string, data any) response {
	return response{Success: true, Message: message, Data: data}
}

func listBody(message string, data any, count int) response {
	return response{Success: true, Message: message, Data: data, Count: &count}
}

func errorBody(message string) response {
	return response{Success: false, Message: message}
}

// statusForError maps the service error taxonomy onto HTTP codes:
// validation 400, not-found 404, conflicts 409, lock timeout 503,
// anything unrecognized 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoSeatsAvailable),
		errors.Is(err, domain.ErrSeatAlreadyBooked),
		errors.Is(err, domain.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSeatLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), errorBody(err.Error()))
}
