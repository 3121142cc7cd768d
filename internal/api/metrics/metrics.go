// Package metrics defines and registers the custom Prometheus metrics of the
// CRM API. It is the single source of truth for metric names, labels, and
// help strings. Every metric is registered with the default registry on
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crm"

// ── Entity metrics ────────────────────────────────────────────────────────────

// EntitiesCreatedTotal counts records created through the API.
// Label:
//   - kind: "user", "client", "case", "invoice", "attendance", "document"
var EntitiesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entities_created_total",
		Help:      "Total number of records created, by kind.",
	},
	[]string{"kind"},
)

// CaseLinksPendingTotal counts case creations whose client link was deferred.
var CaseLinksPendingTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "case_links_pending_total",
		Help:      "Total number of cases created without a client link.",
	},
)

// CaseLinksReconciledTotal counts reconciler outcomes.
// Label:
//   - result: "repaired" or "error"
var CaseLinksReconciledTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "case_links_reconciled_total",
		Help:      "Total number of pending case links handled by the reconciler.",
	},
	[]string{"result"},
)

// ── Report metrics ────────────────────────────────────────────────────────────

// ReportsGeneratedTotal counts generated report artifacts.
// Labels:
//   - type: "financial", "cases", "clients", "custom"
//   - format: "pdf", "excel", "csv"
var ReportsGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "Total number of reports generated, by type and format.",
	},
	[]string{"type", "format"},
)

// ReportGenerationDuration measures aggregation plus rendering time.
var ReportGenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_generation_duration_seconds",
		Help:      "Duration of report generation from request to rendered artifact.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts outbound email notifications.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full or closed)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of email notifications, by outcome.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks messages waiting in each dispatcher worker channel.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Rate limiting ─────────────────────────────────────────────────────────────

// RateLimitDecisionsTotal counts limiter verdicts.
// Labels:
//   - backend: "redis" or "memory"
//   - result: "allowed", "rejected" or "error"
var RateLimitDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_decisions_total",
		Help:      "Total number of rate limit decisions, by backend and result.",
	},
	[]string{"backend", "result"},
)
