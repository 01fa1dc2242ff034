package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// imageCleanupTotal counts background image removals.
// Label:
//   - result: "ok" or "error"
var imageCleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "campus_issues",
		Name:      "image_cleanup_total",
		Help:      "Total number of images removed after their issue was deleted, by result.",
	},
	[]string{"result"},
)
