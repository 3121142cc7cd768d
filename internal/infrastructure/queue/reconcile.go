package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/api/metrics"
)

// Reconciler repairs one batch of pending work and reports how many items it fixed.
type Reconciler interface {
	ReconcileOnce(ctx context.Context) (int, error)
}

// RunReconciler calls r every interval until ctx is cancelled.
func RunReconciler(ctx context.Context, interval time.Duration, r Reconciler, log zerolog.Logger) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.ReconcileOnce(ctx)
			if n > 0 {
				metrics.CaseLinksReconciledTotal.WithLabelValues("repaired").Add(float64(n))
				log.Info().Int("repaired", n).Msg("pending case links repaired")
			}
			if err != nil && ctx.Err() == nil {
				metrics.CaseLinksReconciledTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Msg("case link reconciliation failed")
			}
		}
	}
}
