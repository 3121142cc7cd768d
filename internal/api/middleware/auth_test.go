package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/core/domain"
)

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, verifier TokenVerifier, header string) (*httptest.ResponseRecorder, *domain.Caller) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *domain.Caller
	handler := Authenticate(verifier)(func(c echo.Context) error {
		caller, ok := CallerFrom(c)
		if !ok {
			t.Fatalf("caller not set")
		}
		seen = &caller
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, seen
}

func TestAuthenticate_ValidToken(t *testing.T) {
	token := signHS256(t, "secret", jwt.MapClaims{
		"sub":   "uid-alice",
		"email": "alice@lawdesk.test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec, caller := runAuth(t, NewHS256Verifier("secret"), "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if caller == nil || caller.Subject != "uid-alice" || caller.Email != "alice@lawdesk.test" {
		t.Fatalf("unexpected caller: %+v", caller)
	}
	if caller.Registered() {
		t.Fatalf("caller must not be registered before resolution")
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	valid := signHS256(t, "secret", jwt.MapClaims{"sub": "uid-alice"})
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-token"},
		{"wrong secret", "Bearer " + signHS256(t, "other", jwt.MapClaims{"sub": "uid-alice"})},
		{"no subject", "Bearer " + signHS256(t, "secret", jwt.MapClaims{"email": "x@lawdesk.test"})},
		{"expired", "Bearer " + signHS256(t, "secret", jwt.MapClaims{"sub": "uid-alice", "exp": time.Now().Add(-time.Minute).Unix()})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, caller := runAuth(t, NewHS256Verifier("secret"), tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if caller != nil {
				t.Fatalf("next must not run")
			}
		})
	}

	rec, _ := runAuth(t, NewHS256Verifier("secret"), "bearer "+valid)
	if rec.Code != http.StatusOK {
		t.Fatalf("scheme must be case-insensitive, got %d", rec.Code)
	}
}

func TestHS256Verifier_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "uid-alice"})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := NewHS256Verifier("secret").Verify(context.Background(), signed); err == nil {
		t.Fatalf("expected HS512 token to be rejected")
	}
}

func TestHS256Verifier_NoSecret(t *testing.T) {
	token := signHS256(t, "", jwt.MapClaims{"sub": "uid-alice"})
	if _, err := NewHS256Verifier("").Verify(context.Background(), token); err == nil {
		t.Fatalf("expected error without a configured secret")
	}
}

type verifierFunc func(ctx context.Context, raw string) (domain.Caller, error)

func (f verifierFunc) Verify(ctx context.Context, raw string) (domain.Caller, error) {
	return f(ctx, raw)
}

func TestAuthenticate_VerifierError(t *testing.T) {
	v := verifierFunc(func(ctx context.Context, raw string) (domain.Caller, error) {
		return domain.Caller{}, errors.New("provider unreachable")
	})
	rec, _ := runAuth(t, v, "Bearer abc")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
