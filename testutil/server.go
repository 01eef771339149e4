package testutil

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// ReadyForConnectionsTimeout bounds how long StartNATSServer waits.
const ReadyForConnectionsTimeout = 5 * time.Second

// StartNATSServer runs an in-process NATS server on a random loopback port
// and returns its client URL. The server shuts down when the test ends.
func StartNATSServer(t testing.TB) string {
	t.Helper()
	return startServer(t, &server.Options{})
}

// StartTLSNATSServer is StartNATSServer with clients required to speak TLS.
// A tlsConfig with ClientCAs set also requires client certificates.
func StartTLSNATSServer(t testing.TB, tlsConfig *tls.Config) string {
	t.Helper()
	return startServer(t, &server.Options{
		TLSConfig:  tlsConfig,
		TLSTimeout: 2,
		TLSVerify:  tlsConfig.ClientAuth == tls.RequireAndVerifyClientCert,
	})
}

func startServer(t testing.TB, opts *server.Options) string {
	t.Helper()

	opts.Host = "127.0.0.1"
	opts.Port = server.RANDOM_PORT
	opts.NoLog = true
	opts.NoSigs = true

	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("create NATS server: %v", err)
	}
	go ns.Start()

	if !ns.ReadyForConnections(ReadyForConnectionsTimeout) {
		ns.Shutdown()
		t.Fatalf("NATS server not ready for connections within %s", ReadyForConnectionsTimeout)
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns.ClientURL()
}
