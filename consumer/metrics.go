package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docschema_validations_total",
			Help: "Documents validated by outcome",
		},
		[]string{"kind"},
	)

	reportPaths = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docschema_report_paths",
		Help:    "Number of failing paths per rejected document",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})

	deleteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docschema_delete_errors_total",
		Help: "Failed DeleteMessage calls",
	})

	publishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docschema_report_publish_errors_total",
		Help: "Failed error report publications",
	})
)
