package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/api/middleware"
	"github.com/lawdesk/crm/internal/core/domain"
)

// ctxCaller returns the caller injected by the Authenticate middleware. A
// missing subject means the route was mounted without authentication.
func ctxCaller(c echo.Context) (domain.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || caller.Subject == "" {
		return domain.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return caller, nil
}
