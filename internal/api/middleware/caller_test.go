package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/core/domain"
)

type stubLookup struct {
	users map[string]*domain.User
	err   error
}

func (s *stubLookup) Lookup(_ context.Context, identity string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[identity]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func resolve(t *testing.T, lookup UserLookup, caller *domain.Caller) (domain.Caller, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if caller != nil {
		SetCaller(c, *caller)
	}

	var seen domain.Caller
	err := ResolveCaller(lookup)(func(c echo.Context) error {
		seen, _ = CallerFrom(c)
		return nil
	})(c)
	return seen, err
}

func TestResolveCaller_Registered(t *testing.T) {
	lookup := &stubLookup{users: map[string]*domain.User{
		"uid-alice": {ID: "user_001", Identity: "uid-alice", Role: domain.RoleAdmin},
	}}

	got, err := resolve(t, lookup, &domain.Caller{Subject: "uid-alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "user_001" || got.Role != domain.RoleAdmin {
		t.Fatalf("caller not bound: %+v", got)
	}
}

func TestResolveCaller_Unregistered(t *testing.T) {
	got, err := resolve(t, &stubLookup{}, &domain.Caller{Subject: "uid-new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Registered() || got.Subject != "uid-new" {
		t.Fatalf("unexpected caller: %+v", got)
	}
}

func TestResolveCaller_LookupFailure(t *testing.T) {
	lookup := &stubLookup{err: errors.New("mongo down")}
	if _, err := resolve(t, lookup, &domain.Caller{Subject: "uid-alice"}); err == nil {
		t.Fatalf("expected lookup failure to propagate")
	}
}

func TestResolveCaller_NoCaller(t *testing.T) {
	lookup := &stubLookup{err: errors.New("must not be called")}
	if _, err := resolve(t, lookup, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
