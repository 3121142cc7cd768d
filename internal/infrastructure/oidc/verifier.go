// Package oidc verifies ID tokens issued by an OpenID Connect provider
// (Firebase, Keycloak, ...) and turns them into request callers.
package oidc

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/lawdesk/crm/internal/core/domain"
)

// Verifier checks token signature, issuer, audience and expiry against the
// provider's published keys.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier discovers the provider at issuer and builds a verifier bound to
// clientID.
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return &Verifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

type identityClaims struct {
	Email string `json:"email"`
}

// Verify validates raw and returns the caller it identifies. The caller is not
// yet bound to a user record.
func (v *Verifier) Verify(ctx context.Context, raw string) (domain.Caller, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return domain.Caller{}, fmt.Errorf("verify id token: %w", err)
	}
	var claims identityClaims
	if err := tok.Claims(&claims); err != nil {
		return domain.Caller{}, fmt.Errorf("decode id token claims: %w", err)
	}
	return domain.Caller{Subject: tok.Subject, Email: claims.Email}, nil
}
