package handler

import (
	"errors"
	"testing"

	"github.com/lawdesk/crm/internal/core/domain"
)

type nestedConfig struct {
	Format string `json:"format" validate:"required,oneof=pdf excel csv"`
}

type nestedRequest struct {
	Name   string       `json:"name"   validate:"required"`
	Email  string       `json:"email"  validate:"omitempty,email"`
	Config nestedConfig `json:"config"`
}

func TestValidator_FieldPaths(t *testing.T) {
	err := NewValidator().Validate(&nestedRequest{Email: "not-an-email", Config: nestedConfig{Format: "docx"}})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *domain.ValidationError, got %T", err)
	}
	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Reason
	}
	want := map[string]string{
		"name":          "is required",
		"email":         "must be a valid email",
		"config.format": "must be one of: pdf excel csv",
	}
	for field, reason := range want {
		if got[field] != reason {
			t.Errorf("%s: want %q, got %q", field, reason, got[field])
		}
	}
}

func TestValidator_Valid(t *testing.T) {
	req := &nestedRequest{Name: "Ana", Config: nestedConfig{Format: "pdf"}}
	if err := NewValidator().Validate(req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
