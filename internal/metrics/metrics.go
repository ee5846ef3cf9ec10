package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	CycleCount          prometheus.Counter
	CyclesSkipped       prometheus.Counter
	EmailsSent          prometheus.Counter
	EmailsFailed        prometheus.Counter
	FetchFailures       prometheus.Counter
	DeliveredUnrecorded prometheus.Counter
	CycleDuration       prometheus.Histogram
	QueueDepth          prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		CycleCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_mail_dispatch_cycles_total",
			Help: "Total number of dispatch cycles executed",
		}),
		CyclesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_mail_dispatch_cycles_skipped_total",
			Help: "Total number of ticks skipped because a cycle was still running",
		}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_mail_dispatch_emails_sent_total",
			Help: "Total number of emails delivered",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_mail_dispatch_emails_failed_total",
			Help: "Total number of emails that failed delivery",
		}),
		FetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_mail_dispatch_fetch_failures_total",
			Help: "Total number of cycles aborted because the batch claim failed",
		}),
		DeliveredUnrecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tutor_mail_dispatch_delivered_unrecorded_total",
			Help: "Emails delivered whose status update failed afterwards",
		}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tutor_mail_dispatch_cycle_duration_seconds",
			Help:    "Time spent per dispatch cycle",
			Buckets: prometheus.DefBuckets,
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tutor_mail_dispatch_pending_emails",
			Help: "Number of emails currently pending dispatch",
		}),
	}
}
