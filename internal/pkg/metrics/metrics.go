// Package metrics defines and registers all custom Prometheus metrics for
// roomhub. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roomhub"

// ── Purchase metrics ──────────────────────────────────────────────────────────

// PurchasesTotal counts finished buy requests.
// Label:
//   - outcome: "success", "rejected", "rolled_back", "needs_reconciliation", "replayed"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase requests, by outcome.",
	},
	[]string{"outcome"},
)

// CompensationFailuresTotal counts purchases where the refund after a failed
// grant did not go through. Any increase needs operator attention.
var CompensationFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_compensation_failures_total",
		Help:      "Total number of purchases left in needs_reconciliation.",
	},
)

// LedgerMovementsTotal counts balance changes.
// Label:
//   - direction: "debit" or "credit"
var LedgerMovementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_movements_total",
		Help:      "Total number of applied balance changes, by direction.",
	},
	[]string{"direction"},
)

// ── Room metrics ──────────────────────────────────────────────────────────────

// RoomsCreatedTotal counts hosted rooms.
var RoomsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rooms_created_total",
		Help:      "Total number of rooms created.",
	},
)

// RoomJoinsTotal counts join attempts.
// Label:
//   - result: "joined", "revived", "rejoined", "full", "closed", "other_room", "error"
var RoomJoinsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "room_joins_total",
		Help:      "Total number of room join attempts, by result.",
	},
	[]string{"result"},
)

// RoomLeavesTotal counts leave requests.
// Label:
//   - result: "left", "closed", "noop", "error"
var RoomLeavesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "room_leaves_total",
		Help:      "Total number of room leave requests, by result.",
	},
	[]string{"result"},
)

// ── Lock metrics ──────────────────────────────────────────────────────────────

// LockWaitDuration measures how long callers waited for a per-key lock.
// Label:
//   - backend: "memory" or "redis"
var LockWaitDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lock_wait_duration_seconds",
		Help:      "Time spent waiting to acquire a per-key lock.",
		Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	},
	[]string{"backend"},
)

// LockTimeoutsTotal counts lock waits abandoned with ErrBusy.
var LockTimeoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lock_timeouts_total",
		Help:      "Total number of lock acquisitions that timed out.",
	},
	[]string{"backend"},
)

// ── Realtime metrics ──────────────────────────────────────────────────────────

// RealtimeConnections tracks open websocket subscriptions.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Current number of open room event websocket connections.",
	},
)

// RealtimeDroppedTotal counts events dropped for slow subscribers.
var RealtimeDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_dropped_events_total",
		Help:      "Total number of room events dropped because a subscriber buffer was full.",
	},
)
