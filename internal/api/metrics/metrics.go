// Package metrics defines the custom Prometheus metrics of the support desk
// API. It is the single source of truth for metric names, labels, and help
// strings. Collectors register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "supportdesk"

// ── Entity metrics ────────────────────────────────────────────────────────────

// TicketsCreatedTotal counts newly created tickets.
// Label:
//   - role: role of the creator ("agent" or "demandeur")
var TicketsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_created_total",
		Help:      "Total number of tickets created, by creator role.",
	},
	[]string{"role"},
)

// PortabilitesCreatedTotal counts newly created portabilite requests.
// Label:
//   - role: role of the creator
var PortabilitesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "portabilites_created_total",
		Help:      "Total number of portabilite requests created, by creator role.",
	},
	[]string{"role"},
)

// EchangesCreatedTotal counts comments appended to a thread.
// Label:
//   - thread: "ticket" or "portabilite"
var EchangesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "echanges_created_total",
		Help:      "Total number of comments created, by thread.",
	},
	[]string{"thread"},
)

// NumberingCollisionsTotal counts numero_portabilite candidates that were
// already taken.
// Label:
//   - stage: "probe" (existence check hit) or "insert" (unique index rejected the claim)
var NumberingCollisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "numbering_collisions_total",
		Help:      "Total number of numero_portabilite collisions, by stage.",
	},
	[]string{"stage"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Labels:
//   - kind: the lifecycle event (e.g. "ticket_created")
//   - result: "sent", "skipped" (no recipient), "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications, by event kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks the notifications waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDeliveryDuration measures a single delivery, render to send.
// Label:
//   - result: "sent", "skipped" or "failed"
var NotificationDeliveryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_delivery_duration_seconds",
		Help:      "Duration of notification delivery from dequeue to send.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
