package health

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ameersohail0/OpenDaVINCI/natsclient"
)

// Status values
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

// Pre-compiled regexes for error message sanitization
var (
	urlRegex         = regexp.MustCompile(`(?:https?|nats|tls|wss?)://[^\s]+`)
	unixPathRegex    = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	windowsPathRegex = regexp.MustCompile(`[A-Z]:\\[^:\s]+`)
	ipAddrRegex      = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex        = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex  = regexp.MustCompile(`(?i)(password|token|key|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status represents the health state of a component or of the whole process
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics carries the counters behind a status
type Metrics struct {
	Delivered   uint64        `json:"delivered,omitempty"`
	Dropped     uint64        `json:"dropped,omitempty"`
	Failures    int32         `json:"failures,omitempty"`
	Reconnects  int32         `json:"reconnects,omitempty"`
	RTT         time.Duration `json:"rtt,omitempty"`
	LastFailure time.Time     `json:"last_failure,omitempty"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StateHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StateDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StateUnhealthy
}

// WithMetrics returns a copy of the status with metrics attached
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// WithSubStatus returns a copy with sub appended
func (s Status) WithSubStatus(sub Status) Status {
	subs := make([]Status, len(s.SubStatuses), len(s.SubStatuses)+1)
	copy(subs, s.SubStatuses)
	s.SubStatuses = append(subs, sub)
	return s
}

// sanitizeErrorMessage strips URLs, paths, addresses, ports and credentials
// from err so it can be served on an unauthenticated endpoint.
func sanitizeErrorMessage(err string) string {
	if err == "" {
		return ""
	}

	// URLs before paths, since URLs contain paths
	sanitized := urlRegex.ReplaceAllString(err, "[URL]")
	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = windowsPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	for _, word := range []string{"password", "token", "key", "secret", "credential"} {
		if strings.Contains(lower, word) {
			sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
			break
		}
	}
	return sanitized
}

// FromConnection reports a NATS client status. Connected and reconnecting
// clients are healthy and degraded; everything else is unhealthy. lastErr,
// when non-nil, becomes the sanitized message.
func FromConnection(name string, cs *natsclient.Status, lastErr error) Status {
	if cs == nil {
		return NewUnhealthy(name, "no connection status")
	}

	var st Status
	switch cs.Status {
	case natsclient.StatusConnected:
		st = NewHealthy(name, "connected")
	case natsclient.StatusReconnecting:
		st = NewDegraded(name, "reconnecting")
	default:
		st = NewUnhealthy(name, cs.Status.String())
	}
	if lastErr != nil && !st.IsHealthy() {
		st.Message = st.Message + ": " + sanitizeErrorMessage(lastErr.Error())
	}

	return st.WithMetrics(&Metrics{
		Failures:    cs.FailureCount,
		Reconnects:  cs.Reconnects,
		RTT:         cs.RTT,
		LastFailure: cs.LastFailureTime,
	})
}

// FromSurface reports a delivery surface's counters. A surface that has
// dropped envelopes without delivering any is degraded: nothing it receives
// is bound.
func FromSurface(name string, delivered, dropped uint64) Status {
	msg := fmt.Sprintf("delivered=%d dropped=%d", delivered, dropped)
	st := NewHealthy(name, msg)
	if delivered == 0 && dropped > 0 {
		st = NewDegraded(name, msg)
	}
	return st.WithMetrics(&Metrics{Delivered: delivered, Dropped: dropped})
}
