package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

func TestCaseHandler_Create_Linked(t *testing.T) {
	stub := &stubCaseService{
		createFn: func(ctx context.Context, caller domain.Caller, in ports.CreateCaseInput) (*domain.Case, error) {
			if caller.UserID != associateCaller.UserID || in.ClientID != "client_001" {
				t.Fatalf("unexpected args: %+v %+v", caller, in)
			}
			return &domain.Case{ID: "case_001", ClientID: in.ClientID, AssociateID: caller.UserID, Title: in.Title,
				Status: domain.CaseOpen, LinkState: domain.LinkLinked}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/cases",
		`{"client_id":"client_001","title":"Acme v. Beta"}`, &associateCaller)

	if err := NewCaseHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestCaseHandler_Create_LinkPending(t *testing.T) {
	stub := &stubCaseService{
		createFn: func(ctx context.Context, caller domain.Caller, in ports.CreateCaseInput) (*domain.Case, error) {
			kase := &domain.Case{ID: "case_002", ClientID: in.ClientID, Title: in.Title, LinkState: domain.LinkPending}
			return kase, fmt.Errorf("%w: case %s: %v", domain.ErrCaseLinkPending, kase.ID, errors.New("write conflict"))
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/cases",
		`{"client_id":"client_001","title":"Acme v. Beta"}`, &associateCaller)

	if err := NewCaseHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp struct {
		Case    domain.Case `json:"case"`
		Warning string      `json:"warning"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Case.ID != "case_002" || resp.Case.LinkState != domain.LinkPending || resp.Warning == "" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestCaseHandler_Create_Unregistered(t *testing.T) {
	stub := &stubCaseService{
		createFn: func(ctx context.Context, caller domain.Caller, in ports.CreateCaseInput) (*domain.Case, error) {
			return nil, domain.ErrNotRegistered
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/cases",
		`{"client_id":"client_001","title":"Acme v. Beta"}`, &domain.Caller{Subject: "uid-new"})

	if err := NewCaseHandler(stub).Create(c); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestCaseHandler_Update_InvalidStatus(t *testing.T) {
	c, _ := newTestContext(http.MethodPut, "/api/cases/case_001", `{"status":"archived"}`, &associateCaller)

	err := NewCaseHandler(&stubCaseService{}).Update(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "status" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestCaseHandler_Update_ForwardsStatus(t *testing.T) {
	closed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	stub := &stubCaseService{
		updateFn: func(ctx context.Context, id string, in ports.UpdateCaseInput) (*domain.Case, error) {
			if in.Status == nil || *in.Status != domain.CaseClosed || in.Title != nil {
				t.Fatalf("unexpected patch: %+v", in)
			}
			return &domain.Case{ID: id, Status: domain.CaseClosed, ClosedAt: &closed}, nil
		},
	}
	c, rec := newTestContext(http.MethodPut, "/api/cases/case_001", `{"status":"closed"}`, &associateCaller)
	c.SetParamNames("id")
	c.SetParamValues("case_001")

	if err := NewCaseHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCaseHandler_Get_ExpandsReferences(t *testing.T) {
	stub := &stubCaseService{
		getFn: func(ctx context.Context, id string) (*ports.CaseView, error) {
			return &ports.CaseView{
				Case:      &domain.Case{ID: id, ClientID: "client_001", AssociateID: "user_002", Title: "Acme v. Beta"},
				Client:    &domain.Client{ID: "client_001", Name: "Acme"},
				Associate: &domain.User{ID: "user_002", Name: "Bo"},
			}, nil
		},
	}
	c, rec := newTestContext(http.MethodGet, "/api/cases/case_001", "", &associateCaller)
	c.SetParamNames("id")
	c.SetParamValues("case_001")

	if err := NewCaseHandler(stub).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	client, _ := resp["client"].(map[string]any)
	associate, _ := resp["associate"].(map[string]any)
	if resp["client_id"] != "client_001" || client["name"] != "Acme" || associate["name"] != "Bo" {
		t.Fatalf("unexpected payload: %s", rec.Body.String())
	}
}

func TestCaseHandler_AddUpdate_RequiresContent(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/cases/case_001/updates", `{"content":""}`, &associateCaller)

	err := NewCaseHandler(&stubCaseService{}).AddUpdate(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "content" {
		t.Fatalf("expected content validation error, got %v", err)
	}
}
