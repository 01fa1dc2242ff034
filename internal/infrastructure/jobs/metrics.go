package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// orphanCommentsSweptTotal counts comments removed by the orphan sweep job.
var orphanCommentsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "campus_issues",
		Name:      "orphan_comments_swept_total",
		Help:      "Total number of comments removed because their issue no longer exists.",
	},
)
