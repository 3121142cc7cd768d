package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

// CaseLinkReconciler finishes case creations whose client link step failed.
type CaseLinkReconciler struct {
	cases   ports.CaseRepository
	clients ports.ClientRepository
	grace   time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewCaseLinkReconciler only touches cases that have been pending for longer
// than grace, leaving in-flight creations alone.
func NewCaseLinkReconciler(cases ports.CaseRepository, clients ports.ClientRepository, grace time.Duration, logger zerolog.Logger) *CaseLinkReconciler {
	return &CaseLinkReconciler{cases: cases, clients: clients, grace: grace, logger: logger, now: time.Now}
}

// ReconcileOnce links every stale pending case and returns how many were
// repaired. Cases whose client no longer resolves are skipped and logged.
func (r *CaseLinkReconciler) ReconcileOnce(ctx context.Context) (int, error) {
	pending, err := r.cases.FindPendingLinks(ctx, r.now().UTC().Add(-r.grace))
	if err != nil {
		return 0, fmt.Errorf("find pending case links: %w", err)
	}

	repaired := 0
	var errs []error
	for _, c := range pending {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		if err := linkCase(ctx, r.clients, r.cases, c); err != nil {
			if errors.Is(err, domain.ErrClientNotFound) {
				r.logger.Warn().Str("case_id", c.ID).Str("client_id", c.ClientID).Msg("pending case references a missing client")
				continue
			}
			errs = append(errs, fmt.Errorf("case %s: %w", c.ID, err))
			continue
		}
		repaired++
		r.logger.Info().Str("case_id", c.ID).Str("client_id", c.ClientID).Msg("case link repaired")
	}
	return repaired, errors.Join(errs...)
}
