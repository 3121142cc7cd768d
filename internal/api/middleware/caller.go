package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/core/domain"
)

// UserLookup resolves the user bound to an external identity.
type UserLookup interface {
	Lookup(ctx context.Context, identity string) (*domain.User, error)
}

// ResolveCaller binds the authenticated caller to its user record, filling in
// UserID and Role. Callers without a user record pass through unregistered so
// they can still reach the registration endpoint.
func ResolveCaller(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller, ok := CallerFrom(c)
			if !ok {
				return next(c)
			}
			u, err := users.Lookup(c.Request().Context(), caller.Subject)
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				// not registered yet
			case err != nil:
				return err
			default:
				caller.UserID = u.ID
				caller.Role = u.Role
			}
			SetCaller(c, caller)
			return next(c)
		}
	}
}
