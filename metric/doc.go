// Package metric provides Prometheus metrics for the record substrate and an
// HTTP server that exposes them.
//
// NewMetricsRegistry registers the core metrics (envelopes published and
// received, decode failures, unwrap mismatches, delivery stores and drops, codec
// timing, NATS status) on a private Prometheus registry together with the Go
// and process collectors. Components may add their own collectors with Register.
//
// Every Record method is a no-op on a nil *Metrics:
//
//	var m *metric.Metrics
//	m.RecordPublished("telemetry.Beacon") // safe
//
// Serving:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//	go func() {
//	    if err := server.Start(); err != nil {
//	        logger.Error("metrics server failed", "error", err)
//	    }
//	}()
//	defer server.Stop(context.Background())
package metric
