package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"rideshare/internal/auth"
	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// callerKey is the gin context key holding the authenticated service.Caller.
const callerKey = "caller"

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate verifies the bearer token and resolves the caller's user
// record from the username claim. Failures are recorded on the context with
// c.Error and the chain is aborted; the error renderer writes the response.
func Authenticate(tokens TokenVerifier, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, fmt.Errorf("%w: missing or malformed Authorization header", service.ErrUnauthenticated))
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		user, err := users.GetByUsername(c.Request.Context(), claims.Username())
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWithError(c, fmt.Errorf("%w: unknown user %s", service.ErrUnauthenticated, claims.Username()))
				return
			}
			abortWithError(c, err)
			return
		}

		c.Set(callerKey, service.Caller{
			UserID:   user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		c.Next()
	}
}

// RequireRole ensures the authenticated caller has the given role.
// Must be used after Authenticate in the chain.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			abortWithError(c, service.ErrUnauthenticated)
			return
		}
		if caller.Role != role {
			abortWithError(c, fmt.Errorf("%w: %s role required", service.ErrForbidden, role))
			return
		}
		c.Next()
	}
}

// CallerFrom returns the caller stored by Authenticate.
func CallerFrom(c *gin.Context) (service.Caller, bool) {
	value, exists := c.Get(callerKey)
	if !exists {
		return service.Caller{}, false
	}
	caller, ok := value.(service.Caller)
	return caller, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
