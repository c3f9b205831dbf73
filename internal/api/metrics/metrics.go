// Package metrics defines and registers all custom Prometheus metrics for the
// banking core. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at init; the
// /metrics endpoint exposes them via the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "banking"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts authentication attempts.
// Label:
//   - result: "success", "invalid" or "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// PermissionDenialsTotal counts denied permission checks.
// Label:
//   - reason: "denied", "unknown_role" or "unknown_action"
var PermissionDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denials_total",
		Help:      "Total number of denied permission checks, by reason.",
	},
	[]string{"reason"},
)

// ── Transfer metrics ──────────────────────────────────────────────────────────

// TransfersTotal counts transfer executions.
// Labels:
//   - type: "internal_transfer" or "external_transfer"
//   - status: "completed" or "failed"
var TransfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Total number of transfer executions, by type and status.",
	},
	[]string{"type", "status"},
)

// SuspiciousTransfersTotal counts transfers flagged by the fraud heuristic.
// The flag is advisory; flagged transfers still complete.
var SuspiciousTransfersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "suspicious_transfers_total",
		Help:      "Total number of transfers flagged as suspicious, by type.",
	},
	[]string{"type"},
)

// TransferDuration measures the atomic debit/credit/insert unit end-to-end.
var TransferDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transfer_duration_seconds",
		Help:      "Duration of transfer execution from precondition check to commit.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts recorded audit ledger entries by severity.
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events recorded, by severity.",
	},
	[]string{"severity"},
)

// AuditEventsDroppedTotal counts events dropped because a dispatcher shard
// was full. Emission is best-effort; drops degrade the trail, not the caller.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped due to full queues.",
	},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
