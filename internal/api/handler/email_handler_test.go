package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/lawdesk/crm/internal/core/domain"
)

func TestEmailHandler_SendTest(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "/api/email/test", "", nil)

	if err := NewEmailHandler(&stubEmailService{}).SendTest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestEmailHandler_SendTest_Unconfigured(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/api/email/test", "", nil)

	err := NewEmailHandler(&stubEmailService{err: domain.ErrMailUnavailable}).SendTest(c)
	if !errors.Is(err, domain.ErrMailUnavailable) {
		t.Fatalf("expected ErrMailUnavailable, got %v", err)
	}
}
