// Package telemetry exposes chaninspectord's runtime counters as
// Prometheus gauges/counters: promauto-registered package-level vectors
// plus a small promhttp server wrapper.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueueDepth tracks each MQ's current length.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaninspectord_mq_depth",
			Help: "Current number of messages queued",
		},
		[]string{"queue"},
	)

	// InspectorsByState tracks how many table entries sit in each
	// lifecycle stage.
	InspectorsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaninspectord_inspectors",
			Help: "Number of inspectors currently in each lifecycle state",
		},
		[]string{"state"},
	)

	// EstimatorBaud reports each inspector's latest baud-rate estimates.
	EstimatorBaud = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chaninspectord_estimator_baud",
			Help: "Latest baud-rate estimate per inspector and detector mode",
		},
		[]string{"inspector_id", "detector"},
	)

	// SweepReapedTotal counts Halted entries reclaimed by the periodic
	// sweep.
	SweepReapedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chaninspectord_sweep_reaped_total",
			Help: "Total number of Halted inspector table entries reclaimed by the sweep",
		},
	)

	// MqWriteFailuresTotal counts outbound write failures by queue.
	MqWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chaninspectord_mq_write_failures_total",
			Help: "Total number of failed writes to an output queue",
		},
		[]string{"queue"},
	)
)
