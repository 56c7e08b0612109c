package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportsConverted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xcallure_reports_converted_total",
		Help: "The number of test cases converted since the service was started",
	}, []string{"status"})

	ConversionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xcallure_conversion_failures_total",
		Help: "The number of test cases that could not be converted",
	})

	ReportsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "xcallure_reports_deleted_total",
		Help: "The number of reports deleted by retention cleanup",
	})
)
