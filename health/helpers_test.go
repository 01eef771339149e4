package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatuses(t *testing.T) {
	tests := []struct {
		name    string
		build   func(string, string) Status
		state   string
		healthy bool
	}{
		{"healthy", NewHealthy, StateHealthy, true},
		{"degraded", NewDegraded, StateDegraded, false},
		{"unhealthy", NewUnhealthy, StateUnhealthy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.build("nats", "msg")
			assert.Equal(t, "nats", st.Component)
			assert.Equal(t, "msg", st.Message)
			assert.Equal(t, tt.state, st.Status)
			assert.Equal(t, tt.healthy, st.Healthy)
			assert.False(t, st.Timestamp.IsZero())
			assert.Equal(t, tt.state == StateHealthy, st.IsHealthy())
			assert.Equal(t, tt.state == StateDegraded, st.IsDegraded())
			assert.Equal(t, tt.state == StateUnhealthy, st.IsUnhealthy())
		})
	}
}

func TestAggregate(t *testing.T) {
	h := NewHealthy("a", "")
	d := NewDegraded("b", "")
	u := NewUnhealthy("c", "")

	tests := []struct {
		name string
		subs []Status
		want string
	}{
		{"empty", nil, StateHealthy},
		{"all healthy", []Status{h, h}, StateHealthy},
		{"one degraded", []Status{h, d}, StateDegraded},
		{"unhealthy wins", []Status{d, u, h}, StateUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate("recordbus", tt.subs)
			assert.Equal(t, "recordbus", agg.Component)
			assert.Equal(t, tt.want, agg.Status)
			assert.Len(t, agg.SubStatuses, len(tt.subs))
		})
	}
}

func TestAggregate_CopiesSubs(t *testing.T) {
	subs := []Status{NewHealthy("a", "")}
	agg := Aggregate("recordbus", subs)

	subs[0].Status = StateUnhealthy
	require.Len(t, agg.SubStatuses, 1)
	assert.Equal(t, StateHealthy, agg.SubStatuses[0].Status)
}
