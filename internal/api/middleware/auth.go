package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/core/domain"
)

const callerKey = "caller"

// TokenVerifier turns a raw bearer token into the caller it identifies.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (domain.Caller, error)
}

// Authenticate verifies the bearer token and stores the caller in the context.
func Authenticate(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			caller, err := verifier.Verify(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil || caller.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			SetCaller(c, caller)
			return next(c)
		}
	}
}

// SetCaller stores caller in the request context.
func SetCaller(c echo.Context, caller domain.Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the caller stored by Authenticate.
func CallerFrom(c echo.Context) (domain.Caller, bool) {
	caller, ok := c.Get(callerKey).(domain.Caller)
	return caller, ok
}

// HS256Verifier accepts tokens signed with a shared secret. It is used when no
// OIDC issuer is configured.
type HS256Verifier struct {
	secret []byte
}

func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret)}
}

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *HS256Verifier) Verify(_ context.Context, raw string) (domain.Caller, error) {
	if len(v.secret) == 0 {
		return domain.Caller{}, errors.New("jwt secret not configured")
	}
	claims := &identityClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return domain.Caller{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return domain.Caller{}, errors.New("token has no subject")
	}
	return domain.Caller{Subject: claims.Subject, Email: claims.Email}, nil
}
