package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the substrate-level metrics. All Record methods are safe on a
// nil *Metrics, so components can run without metrics wired in.
type Metrics struct {
	EnvelopesPublished *prometheus.CounterVec
	EnvelopesReceived  *prometheus.CounterVec
	DecodeFailures     *prometheus.CounterVec
	UnwrapMismatches   *prometheus.CounterVec
	Deliveries         *prometheus.CounterVec
	Drops              *prometheus.CounterVec
	CodecDuration      *prometheus.HistogramVec
	EnvelopeLatency    *prometheus.HistogramVec

	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		EnvelopesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "envelopes",
				Name:      "published_total",
				Help:      "Total number of envelopes published",
			},
			[]string{"type"},
		),

		EnvelopesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "envelopes",
				Name:      "received_total",
				Help:      "Total number of envelopes received and decoded",
			},
			[]string{"type"},
		),

		DecodeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "codec",
				Name:      "decode_failures_total",
				Help:      "Total number of payloads that failed to decode",
			},
			[]string{"type", "reason"},
		),

		UnwrapMismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "envelopes",
				Name:      "unwrap_mismatches_total",
				Help:      "Total number of unwraps rejected because of a type mismatch",
			},
			[]string{"type"},
		),

		Deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "delivery",
				Name:      "stored_total",
				Help:      "Total number of records stored into latest-value cells",
			},
			[]string{"surface", "type"},
		),

		Drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "delivery",
				Name:      "dropped_total",
				Help:      "Total number of envelopes dropped by a delivery surface",
			},
			[]string{"surface", "type"},
		),

		CodecDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "recordbus",
				Subsystem: "codec",
				Name:      "duration_seconds",
				Help:      "Encode and decode duration in seconds",
				Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3},
			},
			[]string{"operation"},
		),

		EnvelopeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "recordbus",
				Subsystem: "envelopes",
				Name:      "latency_seconds",
				Help:      "Time between send and receive stamps",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "recordbus",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "recordbus",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

func (c *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.EnvelopesPublished,
		c.EnvelopesReceived,
		c.DecodeFailures,
		c.UnwrapMismatches,
		c.Deliveries,
		c.Drops,
		c.CodecDuration,
		c.EnvelopeLatency,
		c.NATSConnected,
		c.NATSReconnects,
	}
}

// RecordPublished increments the published counter for a record type
func (c *Metrics) RecordPublished(recordType string) {
	if c == nil {
		return
	}
	c.EnvelopesPublished.WithLabelValues(recordType).Inc()
}

// RecordReceived increments the received counter for a record type
func (c *Metrics) RecordReceived(recordType string) {
	if c == nil {
		return
	}
	c.EnvelopesReceived.WithLabelValues(recordType).Inc()
}

// RecordDecodeFailure increments the decode failure counter
func (c *Metrics) RecordDecodeFailure(recordType, reason string) {
	if c == nil {
		return
	}
	c.DecodeFailures.WithLabelValues(recordType, reason).Inc()
}

// RecordUnwrapMismatch increments the unwrap mismatch counter
func (c *Metrics) RecordUnwrapMismatch(recordType string) {
	if c == nil {
		return
	}
	c.UnwrapMismatches.WithLabelValues(recordType).Inc()
}

// RecordDelivery increments the stored counter of a delivery surface
func (c *Metrics) RecordDelivery(surface, recordType string) {
	if c == nil {
		return
	}
	c.Deliveries.WithLabelValues(surface, recordType).Inc()
}

// RecordDrop increments the dropped counter of a delivery surface
func (c *Metrics) RecordDrop(surface, recordType string) {
	if c == nil {
		return
	}
	c.Drops.WithLabelValues(surface, recordType).Inc()
}

// RecordCodecDuration records encode or decode time
func (c *Metrics) RecordCodecDuration(operation string, d time.Duration) {
	if c == nil {
		return
	}
	c.CodecDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordLatency records the send to receive latency of an envelope
func (c *Metrics) RecordLatency(recordType string, d time.Duration) {
	if c == nil || d <= 0 {
		return
	}
	c.EnvelopeLatency.WithLabelValues(recordType).Observe(d.Seconds())
}

// RecordNATSStatus updates NATS connection status
func (c *Metrics) RecordNATSStatus(connected bool) {
	if c == nil {
		return
	}
	value := 0.0
	if connected {
		value = 1.0
	}
	c.NATSConnected.Set(value)
}

// RecordNATSReconnect increments reconnection counter
func (c *Metrics) RecordNATSReconnect() {
	if c == nil {
		return
	}
	c.NATSReconnects.Inc()
}
