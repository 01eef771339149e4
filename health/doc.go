// Package health tracks the health of a recordbus process and serves it
// over HTTP.
//
// # Health States
//
//   - healthy: operating normally
//   - degraded: operating, but something upstream is wrong (a reconnecting
//     NATS client, a surface that drops everything it receives)
//   - unhealthy: not functioning
//
// # Monitor
//
// A Monitor holds one Status per component. Statuses are pushed with
// Update or pulled from probes registered with Register; Check polls the
// probes and returns the aggregate. Aggregation is worst-wins: any
// unhealthy component makes the aggregate unhealthy, otherwise any
// degraded one makes it degraded.
//
//	mon := health.NewMonitor("recordbus")
//	mon.Register("surface", func() health.Status {
//	    return health.FromSurface("surface", s.Delivered(), s.Dropped())
//	})
//	mon.Register("nats", func() health.Status {
//	    return health.FromConnection("nats", client.GetStatus(), nil)
//	})
//	mux.Handle("/health", mon)
//
// Monitor implements http.Handler. It answers 200 for healthy and degraded
// aggregates and 503 for unhealthy ones, with the aggregate as JSON.
//
// # Sanitization
//
// Error text put into a status by FromConnection has URLs, file paths,
// IP addresses, ports and credentials replaced with placeholders.
package health
