package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/service"
)

// Context keys set by Authenticate.
const (
	UserIDKey  = "user_id"
	SessionKey = "session"
)

// Authenticator validates a raw bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (service.Session, error)
}

// Authenticate returns an Echo middleware that requires a valid Bearer
// access token whose session has not been revoked.  The caller's id
// (uint64) and session are stored under UserIDKey and SessionKey.
func Authenticate(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthenticated"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

			sess, err := auth.Authenticate(c.Request().Context(), raw)
			if err != nil {
				status := apperr.Status(apperr.KindOf(err))
				return c.JSON(status, echo.Map{"message": apperr.Message(err)})
			}
			c.Set(UserIDKey, sess.UserID)
			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}
