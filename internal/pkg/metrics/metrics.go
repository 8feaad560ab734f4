// Package metrics defines and registers the custom Prometheus metrics of the
// catalog API. It is the single source of truth for metric names, labels and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts successful registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered users.",
	},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogMutationsTotal counts committed catalog mutations.
// Label:
//   - event: the catalog event type (e.g. "product.created")
var CatalogMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutations_total",
		Help:      "Total number of committed catalog mutations, by event type.",
	},
	[]string{"event"},
)

// ProductCacheTotal counts product cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var ProductCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_cache_total",
		Help:      "Total number of product cache lookups, by result.",
	},
	[]string{"result"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsPublishedTotal counts catalog events handed to the broker.
// Labels:
//   - event: the catalog event type
//   - result: "ok", "error" or "dropped"
var EventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Total number of catalog events published, by type and result.",
	},
	[]string{"event", "result"},
)

// EventsQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventPublishDuration measures broker publish latency.
var EventPublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "event_publish_duration_seconds",
		Help:      "Duration of a single catalog event publish.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"event"},
)
