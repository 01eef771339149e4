package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentProbes = 4

// Probe reports the current status of one component
type Probe func() Status

// Monitor tracks the health of named components. Statuses arrive either
// pushed through Update or pulled from registered probes on Check.
type Monitor struct {
	name string

	mu       sync.RWMutex
	statuses map[string]Status
	probes   map[string]Probe
}

// NewMonitor creates a monitor whose aggregate is reported under name
func NewMonitor(name string) *Monitor {
	return &Monitor{
		name:     name,
		statuses: make(map[string]Status),
		probes:   make(map[string]Probe),
	}
}

// Update stores status under name, stamping it if unstamped
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[name] = stamp(name, status)
}

func stamp(name string, status Status) Status {
	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	return status
}

// Register adds a probe polled by Check. A later registration under the
// same name replaces the earlier one.
func (m *Monitor) Register(name string, probe Probe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probes[name] = probe
}

// Get retrieves the last status stored for name
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// Remove drops name and its probe
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.statuses, name)
	delete(m.probes, name)
}

// Count returns the number of components with a stored status
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.statuses)
}

// Check polls every probe concurrently, stores the results and returns the
// aggregate. Probes run outside the lock.
func (m *Monitor) Check() Status {
	m.mu.RLock()
	probes := make(map[string]Probe, len(m.probes))
	for name, p := range m.probes {
		probes[name] = p
	}
	m.mu.RUnlock()

	var g errgroup.Group
	g.SetLimit(maxConcurrentProbes)
	for name, p := range probes {
		name, p := name, p
		g.Go(func() error {
			m.Update(name, p())
			return nil
		})
	}
	_ = g.Wait()
	return m.Aggregate()
}

// Aggregate folds the stored statuses, ordered by component name
func (m *Monitor) Aggregate() Status {
	m.mu.RLock()
	subs := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subs = append(subs, status)
	}
	m.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].Component < subs[j].Component })
	return Aggregate(m.name, subs)
}

// ServeHTTP runs Check and writes the aggregate as JSON: 200 unless the
// aggregate is unhealthy, 503 otherwise.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	status := m.Check()
	code := http.StatusOK
	if status.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(status)
}
