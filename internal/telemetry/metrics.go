package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tollgate_queue_messages_published_total",
		Help: "Total number of messages placed on a topic.",
	}, []string{"topic"})

	MessagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tollgate_queue_messages_handled_total",
		Help: "Total number of delivery attempts, labelled by outcome (ok, retry, dead_letter).",
	}, []string{"topic", "outcome"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tollgate_queue_depth",
		Help: "Messages currently buffered on a topic.",
	}, []string{"topic"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tollgate_operation_duration_seconds",
		Help:    "Latency of ingestion and report operations.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation", "status"})
)
