// Package natsclient wraps a core NATS connection with circuit breaker
// protection, status tracking and context-aware publish and subscribe.
//
// The transport package uses a Client as its MsgPublisher and MsgSubscriber;
// nothing above it talks to nats.go directly.
//
// # Basic Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("recordbus"),
//	    natsclient.WithLogger(logger),
//	    natsclient.WithMetrics(registry.CoreMetrics()),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	sub, err := client.Subscribe(ctx, "records.>", func(msgCtx context.Context, msg *nats.Msg) {
//	    // msgCtx carries a 30 second deadline derived from ctx
//	})
//
// # Circuit Breaker
//
// Every failed Connect counts against the breaker. After the threshold
// (default 5) the circuit opens, Connect fails fast with ErrCircuitOpen, and
// after the current backoff the circuit moves to half-open so the next Connect
// may try again. Each full round of failures doubles the backoff, capped by
// WithMaxBackoff. A successful connect or reconnect resets the breaker.
//
//	err := client.Connect(ctx)
//	if errors.Is(err, natsclient.ErrCircuitOpen) {
//	    time.Sleep(client.Backoff())
//	}
//
// # Connection Status
//
// The client moves through Disconnected, Connecting, Connected and
// Reconnecting, plus CircuitOpen while the breaker is open. Status and
// GetStatus report it; WaitForConnection blocks until Connected. When metrics
// are wired, the connected gauge and reconnect counter follow the status.
//
// # Errors
//
// ErrNotConnected and ErrCircuitOpen both match errors.ErrNoConnection.
// Connection failures are wrapped as transient, use of a closed client as
// invalid. Close unsubscribes, drains within the drain timeout or the context
// deadline, and joins any errors it met along the way.
package natsclient
