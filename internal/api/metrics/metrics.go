// Package metrics defines and registers the custom Prometheus metrics of the
// campus issue tracker. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "campus_issues"

// ── Issue lifecycle ───────────────────────────────────────────────────────────

// IssuesCreatedTotal counts newly reported issues.
// Label:
//   - category: the issue category (e.g. "network")
var IssuesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_created_total",
		Help:      "Total number of issues reported, by category.",
	},
	[]string{"category"},
)

// IssueStatusChangesTotal counts admin status transitions.
// Label:
//   - status: the status the issue was moved to
var IssueStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issue_status_changes_total",
		Help:      "Total number of issue status changes, by target status.",
	},
	[]string{"status"},
)

// IssuesDeletedTotal counts deleted issues.
var IssuesDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_deleted_total",
		Help:      "Total number of issues deleted.",
	},
)

// ── Comments ──────────────────────────────────────────────────────────────────

// CommentsCreatedTotal counts comments.
// Label:
//   - kind: "user" for comments posted by people, "status" for system notes
var CommentsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_created_total",
		Help:      "Total number of comments created, by kind.",
	},
	[]string{"kind"},
)

// ── Image relay ───────────────────────────────────────────────────────────────

// ImageRelayTotal counts client-initiated calls to the external image host.
// Labels:
//   - op: "upload" or "delete"
//   - result: "ok" or "error"
var ImageRelayTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "image_relay_total",
		Help:      "Total number of image host calls, by operation and result.",
	},
	[]string{"op", "result"},
)

// ImageUploadBytes observes the size of relayed images.
var ImageUploadBytes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "image_upload_bytes",
		Help:      "Size of images relayed to the image host.",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 9), // 16KiB .. 4MiB
	},
)
