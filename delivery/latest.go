// Package delivery hands envelopes from a receiving goroutine to readers that
// only care about the most recent value of each record type.
//
// A Surface dispatches envelopes by type ID into typed Latest cells. Writers
// replace the cell's value under the cell's own lock; readers take a full copy
// under the same lock, so a reader sees either the previous value or the new
// one and never a mix of both.
package delivery

import (
	"sync"

	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
)

// Snapshot is a copy of a Latest cell. Seq is zero until the first Store.
type Snapshot[T any] struct {
	Value    T
	Seq      uint64
	StoredAt timestamp.TimeStamp
}

// Latest holds the most recent value of one record type.
type Latest[T any] struct {
	mu    sync.Mutex
	clock timestamp.Clock
	snap  Snapshot[T]
}

// NewLatest returns an empty cell. A nil clock uses the system clock.
func NewLatest[T any](clock timestamp.Clock) *Latest[T] {
	if clock == nil {
		clock = timestamp.SystemClock()
	}
	return &Latest[T]{clock: clock}
}

// Store replaces the held value and returns its sequence number.
func (l *Latest[T]) Store(v T) uint64 {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap.Value = v
	l.snap.Seq++
	l.snap.StoredAt = now
	return l.snap.Seq
}

// Load returns a copy of the held value and whether anything was stored yet.
func (l *Latest[T]) Load() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.Value, l.snap.Seq > 0
}

// Snapshot returns the value together with its sequence number and store time.
func (l *Latest[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Seq returns the number of values stored so far.
func (l *Latest[T]) Seq() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap.Seq
}

func (l *Latest[T]) now() timestamp.TimeStamp {
	if l.clock == nil {
		return timestamp.Now()
	}
	return l.clock.Now()
}
