package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

func TestUserHandler_Register_Success(t *testing.T) {
	caller := domain.Caller{Subject: "uid-new", Email: "new@lawdesk.test"}
	stub := &stubUserService{
		registerFn: func(ctx context.Context, got domain.Caller, in ports.RegisterUserInput) (*domain.User, error) {
			if got.Subject != "uid-new" || in.Role != domain.RoleAssociate || in.Email != "ana@lawdesk.test" {
				t.Fatalf("unexpected args: %+v %+v", got, in)
			}
			return &domain.User{ID: "user_009", Identity: got.Subject, Name: in.Name, Email: in.Email, Role: in.Role}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/users/register",
		`{"name":"Ana","email":"ana@lawdesk.test","role":"associate"}`, &caller)

	if err := NewUserHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "user_009" || resp["identity"] != "uid-new" || resp["role"] != "associate" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_Register_InvalidRole(t *testing.T) {
	caller := domain.Caller{Subject: "uid-new"}
	stub := &stubUserService{
		registerFn: func(ctx context.Context, caller domain.Caller, in ports.RegisterUserInput) (*domain.User, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/users/register",
		`{"name":"Ana","email":"not-an-email","role":"partner"}`, &caller)

	err := NewUserHandler(stub).Register(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	if !fields["email"] || !fields["role"] || len(fields) != 2 {
		t.Fatalf("unexpected fields: %+v", ve.Fields)
	}
}

func TestUserHandler_Register_BadPayload(t *testing.T) {
	caller := domain.Caller{Subject: "uid-new"}
	c, _ := newTestContext(http.MethodPost, "/api/users/register", `{"name":`, &caller)

	err := NewUserHandler(&stubUserService{}).Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUserHandler_Register_Unauthenticated(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/users/register", `{}`, nil)

	err := NewUserHandler(&stubUserService{}).Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestUserHandler_Register_Conflict(t *testing.T) {
	caller := domain.Caller{Subject: "uid-new"}
	stub := &stubUserService{
		registerFn: func(ctx context.Context, caller domain.Caller, in ports.RegisterUserInput) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/users/register",
		`{"name":"Ana","email":"ana@lawdesk.test","role":"admin"}`, &caller)

	if err := NewUserHandler(stub).Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserHandler_UpdateProfile_PartialFields(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, caller domain.Caller, in ports.UpdateProfileInput) (*domain.User, error) {
			if in.Name == nil || *in.Name != "Ana Ruiz" {
				t.Fatalf("name not forwarded: %+v", in)
			}
			if in.Email != nil || in.Role != nil {
				t.Fatalf("absent fields must stay nil: %+v", in)
			}
			return &domain.User{ID: caller.UserID, Name: *in.Name}, nil
		},
	}
	c, rec := newTestContext(http.MethodPut, "/api/users/profile", `{"name":"Ana Ruiz"}`, &associateCaller)

	if err := NewUserHandler(stub).UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Profile_NotFound(t *testing.T) {
	stub := &stubUserService{
		profileFn: func(ctx context.Context, caller domain.Caller) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	c, _ := newTestContext(http.MethodGet, "/api/users/profile", "", &domain.Caller{Subject: "uid-x"})

	if err := NewUserHandler(stub).Profile(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
