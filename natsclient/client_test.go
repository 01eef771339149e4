package natsclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameersohail0/OpenDaVINCI/config"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/metric"
	"github.com/ameersohail0/OpenDaVINCI/pkg/tlsutil"
	"github.com/ameersohail0/OpenDaVINCI/testutil"
)

// Test basic client creation
func TestNewClient(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	assert.NotNil(t, client)
	assert.Equal(t, "nats://localhost:4222", client.URL())
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.False(t, client.IsHealthy())
}

// Test circuit breaker opens after failures
func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	client, err := NewClient("nats://invalid:4222")
	assert.NoError(t, err)

	// Record 4 failures - should not open
	for i := 0; i < 4; i++ {
		client.recordFailure()
	}
	assert.NotEqual(t, StatusCircuitOpen, client.Status())

	// 5th failure should open circuit
	client.recordFailure()
	assert.Equal(t, StatusCircuitOpen, client.Status())
	assert.Equal(t, int32(5), client.Failures())
}

// Test circuit breaker reset
func TestCircuitBreaker_Reset(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	// Record failures to open circuit
	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, StatusCircuitOpen, client.Status())

	// Reset circuit
	client.resetCircuit()
	assert.Equal(t, int32(0), client.Failures())
	assert.NotEqual(t, StatusCircuitOpen, client.Status())
}

// Test exponential backoff
func TestCircuitBreaker_ExponentialBackoff(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	// Initial backoff should be 1 second
	assert.Equal(t, time.Second, client.Backoff())

	// Record failures and check backoff increases
	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, 2*time.Second, client.Backoff())

	// Another round of failures
	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, 4*time.Second, client.Backoff())

	// Backoff should cap at max (1 minute)
	for i := 0; i < 20; i++ {
		for j := 0; j < 5; j++ {
			client.recordFailure()
		}
	}
	assert.LessOrEqual(t, client.Backoff(), time.Minute)
}

// Test status transitions
func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		name           string
		initialStatus  ConnectionStatus
		action         func(*Client)
		expectedStatus ConnectionStatus
	}{
		{
			name:          "disconnected to connecting",
			initialStatus: StatusDisconnected,
			action: func(m *Client) {
				m.setStatus(StatusConnecting)
			},
			expectedStatus: StatusConnecting,
		},
		{
			name:          "connecting to connected",
			initialStatus: StatusConnecting,
			action: func(m *Client) {
				m.setStatus(StatusConnected)
			},
			expectedStatus: StatusConnected,
		},
		{
			name:          "connected to reconnecting",
			initialStatus: StatusConnected,
			action: func(m *Client) {
				m.setStatus(StatusReconnecting)
			},
			expectedStatus: StatusReconnecting,
		},
		{
			name:          "any to circuit open",
			initialStatus: StatusConnected,
			action: func(m *Client) {
				for i := 0; i < 5; i++ {
					m.recordFailure()
				}
			},
			expectedStatus: StatusCircuitOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient("nats://localhost:4222")
			assert.NoError(t, err)
			client.setStatus(tt.initialStatus)

			tt.action(client)

			assert.Equal(t, tt.expectedStatus, client.Status())
		})
	}
}

// Test concurrent safety
func TestConcurrentSafety(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	assert.NoError(t, err)

	var wg sync.WaitGroup
	iterations := 100

	// Concurrent status updates
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			client.setStatus(StatusConnecting)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			client.setStatus(StatusConnected)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			_ = client.Status()
		}
	}()

	// Concurrent failure recording
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			client.recordFailure()
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			client.resetCircuit()
		}
	}()

	wg.Wait()

	// Should not panic and should have valid state
	status := client.Status()
	assert.Contains(t, []ConnectionStatus{
		StatusDisconnected,
		StatusConnecting,
		StatusConnected,
		StatusReconnecting,
		StatusCircuitOpen,
	}, status)
}

// Test IsHealthy logic
func TestIsHealthy(t *testing.T) {
	tests := []struct {
		name     string
		status   ConnectionStatus
		expected bool
	}{
		{"connected is healthy", StatusConnected, true},
		{"disconnected is not healthy", StatusDisconnected, false},
		{"connecting is not healthy", StatusConnecting, false},
		{"reconnecting is not healthy", StatusReconnecting, false},
		{"circuit open is not healthy", StatusCircuitOpen, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient("nats://localhost:4222")
			assert.NoError(t, err)
			client.setStatus(tt.status)
			assert.Equal(t, tt.expected, client.IsHealthy())
		})
	}
}

// Test WaitForConnection with timeout
func TestWaitForConnection(t *testing.T) {
	t.Run("times out when not connected", func(t *testing.T) {
		client, err := NewClient("nats://localhost:4222")
		assert.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err = client.WaitForConnection(ctx)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
		assert.True(t, errors.IsTransient(err))
	})

	t.Run("returns immediately when connected", func(t *testing.T) {
		client, err := NewClient("nats://localhost:4222")
		assert.NoError(t, err)
		client.setStatus(StatusConnected)

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		start := time.Now()
		err = client.WaitForConnection(ctx)
		elapsed := time.Since(start)

		assert.NoError(t, err)
		assert.Less(t, elapsed, 100*time.Millisecond)
	})

	t.Run("returns when becomes connected", func(t *testing.T) {
		client, err := NewClient("nats://localhost:4222")
		assert.NoError(t, err)

		// Simulate connection after delay
		go func() {
			time.Sleep(50 * time.Millisecond)
			client.setStatus(StatusConnected)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		err = client.WaitForConnection(ctx)
		assert.NoError(t, err)
		assert.Equal(t, StatusConnected, client.Status())
	})
}


// Test option validation and defaults
func TestClientOptions(t *testing.T) {
	client, err := NewClient("nats://localhost:4222",
		WithMaxReconnects(10),
		WithReconnectWait(5*time.Second),
		WithPingInterval(20*time.Second),
		WithTimeout(time.Second),
		WithDrainTimeout(3*time.Second),
		WithName("recordbus-test"),
		WithMaxBackoff(10*time.Second),
		WithCircuitBreakerThreshold(2),
	)
	require.NoError(t, err)

	assert.Equal(t, 10, client.maxReconnects)
	assert.Equal(t, 5*time.Second, client.reconnectWait)
	assert.Equal(t, 20*time.Second, client.pingInterval)
	assert.Equal(t, time.Second, client.timeout)
	assert.Equal(t, 3*time.Second, client.drainTimeout)
	assert.Equal(t, "recordbus-test", client.clientName)
	assert.Equal(t, 10*time.Second, client.maxBackoff)
	assert.Equal(t, int32(2), client.circuitThreshold)
	assert.Len(t, client.buildConnectionOptions(), 10)

	_, err = NewClient("nats://localhost:4222", WithCircuitBreakerThreshold(0))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	short, err := NewClient("nats://localhost:4222", WithMaxBackoff(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, short.maxBackoff)
}

// Test backoff cap
func TestCircuitBreaker_BackoffCap(t *testing.T) {
	client, err := NewClient("nats://localhost:4222",
		WithCircuitBreakerThreshold(1),
		WithMaxBackoff(3*time.Second))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		client.recordFailure()
	}
	assert.Equal(t, 3*time.Second, client.Backoff())
}

// Test half-open transition
func TestCircuitBreaker_HalfOpen(t *testing.T) {
	client, err := NewClient("nats://localhost:4222", WithCircuitBreakerThreshold(1))
	require.NoError(t, err)

	client.recordFailure()
	require.Equal(t, StatusCircuitOpen, client.Status())

	err = client.Connect(context.Background())
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.True(t, errors.Is(err, errors.ErrNoConnection))

	client.testCircuit()
	assert.Equal(t, StatusDisconnected, client.Status())
}

// Test operations without a connection
func TestNotConnected(t *testing.T) {
	client, err := NewClient("nats://localhost:4222")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.Subscribe(ctx, "records.>", func(context.Context, *nats.Msg) {})
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, client.Publish(ctx, "records.x", nil), ErrNotConnected)
	assert.ErrorIs(t, client.PublishMsg(ctx, nats.NewMsg("records.x")), ErrNotConnected)
	assert.ErrorIs(t, client.Flush(ctx), ErrNotConnected)

	_, err = client.RTT()
	assert.ErrorIs(t, err, ErrNotConnected)

	status := client.GetStatus()
	assert.Equal(t, StatusDisconnected, status.Status)
	assert.Zero(t, status.RTT)
}

// Test status metrics
func TestStatusMetrics(t *testing.T) {
	m := metric.NewMetrics()
	client, err := NewClient("nats://localhost:4222", WithMetrics(m))
	require.NoError(t, err)

	client.setStatus(StatusConnected)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.NATSConnected))

	client.setStatus(StatusReconnecting)
	assert.Equal(t, 0.0, promtestutil.ToFloat64(m.NATSConnected))

	client.handleReconnect(nil)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.NATSReconnects))
	assert.Equal(t, int32(1), client.GetStatus().Reconnects)
}

// Test disconnect and reconnect callbacks
func TestCallbacks(t *testing.T) {
	disconnected := make(chan error, 1)
	var reconnected atomic.Bool

	client, err := NewClient("nats://localhost:4222",
		WithDisconnectCallback(func(err error) { disconnected <- err }),
		WithReconnectCallback(func() { reconnected.Store(true) }),
	)
	require.NoError(t, err)

	client.handleDisconnect(nil, nats.ErrConnectionClosed)
	assert.Equal(t, StatusReconnecting, client.Status())
	select {
	case err := <-disconnected:
		assert.ErrorIs(t, err, nats.ErrConnectionClosed)
	case <-time.After(time.Second):
		t.Fatal("disconnect callback not called")
	}

	client.handleReconnect(nil)
	assert.Equal(t, StatusConnected, client.Status())
	assert.Eventually(t, reconnected.Load, time.Second, 5*time.Millisecond)
}

// Test a failed connection attempt
func TestConnect_Unreachable(t *testing.T) {
	client, err := NewClient("nats://127.0.0.1:1",
		WithMaxReconnects(0),
		WithTimeout(200*time.Millisecond),
		WithCircuitBreakerThreshold(2))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = client.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.Equal(t, int32(1), client.Failures())

	err = client.Connect(ctx)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, StatusCircuitOpen, client.Status())
}

// A connection that completes after Connect gave up is closed without
// reaching the client's handlers.
func TestDiscardLateConnection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	url := testutil.StartNATSServer(t)
	var handlerCalls atomic.Int32
	conn, err := nats.Connect(url,
		nats.ClosedHandler(func(*nats.Conn) { handlerCalls.Add(1) }),
		nats.DisconnectErrHandler(func(*nats.Conn, error) { handlerCalls.Add(1) }))
	require.NoError(t, err)

	done := make(chan dialResult, 1)
	done <- dialResult{conn: conn}
	discardLateConnection(done)

	assert.True(t, conn.IsClosed())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), handlerCalls.Load())

	failed := make(chan dialResult, 1)
	failed <- dialResult{err: nats.ErrNoServers}
	discardLateConnection(failed)
}

func TestConnect_CancelledLeavesNoConnection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	client, err := NewClient(testutil.StartNATSServer(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Both select cases may be ready; a cancelled attempt must never leave a
	// stored connection behind, and a successful one must be usable.
	err = client.Connect(ctx)
	if err != nil {
		assert.True(t, errors.IsTransient(err))
		assert.Equal(t, StatusDisconnected, client.Status())
		_, connErr := client.connection()
		assert.Error(t, connErr)
		return
	}
	assert.Equal(t, StatusConnected, client.Status())
	require.NoError(t, client.Close(context.Background()))
}

// Test against an embedded server
func TestEmbeddedServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	url := testutil.StartNATSServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(url, WithName("natsclient-test"), WithDrainTimeout(2*time.Second))
	require.NoError(t, err)
	require.NoError(t, client.Connect(ctx))
	require.NoError(t, client.WaitForConnection(ctx))
	assert.True(t, client.IsHealthy())

	var mu sync.Mutex
	var got []*nats.Msg
	_, err = client.Subscribe(ctx, "records.>", func(_ context.Context, msg *nats.Msg) {
		mu.Lock()
		got = append(got, msg)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.NoError(t, client.Flush(ctx))

	msg := nats.NewMsg("records.telemetry.Beacon")
	msg.Header.Set("Record-Id", "6")
	msg.Data = []byte{1, 2, 3}
	require.NoError(t, client.PublishMsg(ctx, msg))
	require.NoError(t, client.Publish(ctx, "records.raw", []byte("raw")))
	require.NoError(t, client.Publish(ctx, "other.subject", []byte("ignored")))
	require.NoError(t, client.Flush(ctx))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "6", got[0].Header.Get("Record-Id"))
	assert.Equal(t, []byte("raw"), got[1].Data)
	mu.Unlock()

	rtt, err := client.RTT()
	require.NoError(t, err)
	assert.Greater(t, rtt, time.Duration(0))

	require.NoError(t, client.Close(ctx))
	assert.Equal(t, StatusDisconnected, client.Status())
	assert.NoError(t, client.Close(ctx), "second close is a no-op")

	err = client.Connect(ctx)
	assert.True(t, errors.IsInvalid(err))
}

// Test mutual TLS against an embedded server
func TestEmbeddedServer_MutualTLS(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	dir := t.TempDir()
	serverCert, serverKey := testutil.WriteSelfSignedCert(t, dir, "server")
	clientCert, clientKey := testutil.WriteSelfSignedCert(t, dir, "client")

	serverTLS, err := tlsutil.LoadServerTLSConfig(config.TLSConfig{
		Enabled:  true,
		CertFile: serverCert,
		KeyFile:  serverKey,
		CAFiles:  []string{clientCert},
	})
	require.NoError(t, err)
	url := testutil.StartTLSNATSServer(t, serverTLS)

	clientTLS, err := tlsutil.LoadClientTLSConfig(config.TLSConfig{
		Enabled:  true,
		CAFiles:  []string{serverCert},
		CertFile: clientCert,
		KeyFile:  clientKey,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := NewClient(url, WithTLSConfig(clientTLS), WithMaxReconnects(0))
	require.NoError(t, err)
	assert.Len(t, client.buildConnectionOptions(), 10)
	require.NoError(t, client.Connect(ctx))
	assert.True(t, client.IsHealthy())
	require.NoError(t, client.Close(ctx))

	plain, err := NewClient(url, WithMaxReconnects(0), WithTimeout(time.Second))
	require.NoError(t, err)
	err = plain.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestConnectionStatusString(t *testing.T) {
	assert.Equal(t, "circuit_open", StatusCircuitOpen.String())
	assert.Equal(t, "unknown", ConnectionStatus(42).String())
}
