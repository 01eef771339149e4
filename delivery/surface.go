package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/envelope"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/metric"
	"github.com/ameersohail0/OpenDaVINCI/pkg/timestamp"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// View is a type-erased rendering of one bound cell.
type View struct {
	TypeID   uint32 `json:"type_id"`
	Name     string `json:"name"`
	Seq      uint64 `json:"seq"`
	StoredAt string `json:"stored_at,omitempty"`
	Text     string `json:"text,omitempty"`
}

type binding interface {
	identity() record.Identity
	deliver(e *envelope.Envelope) error
	view() View
}

type typedBinding[T any, PT record.Pointer[T]] struct {
	latest *Latest[T]
}

func (b *typedBinding[T, PT]) identity() record.Identity {
	var zero T
	return PT(&zero)
}

func (b *typedBinding[T, PT]) deliver(e *envelope.Envelope) error {
	v, err := envelope.Unwrap[T, PT](e)
	if err != nil {
		return err
	}
	b.latest.Store(v)
	return nil
}

func (b *typedBinding[T, PT]) view() View {
	snap := b.latest.Snapshot()
	id := PT(&snap.Value)

	v := View{
		TypeID: id.ID(),
		Name:   id.LongName(),
		Seq:    snap.Seq,
	}
	if snap.Seq > 0 {
		v.StoredAt = snap.StoredAt.String()
		v.Text = codec.Text(id)
	}
	return v
}

// Surface routes envelopes to the Latest cell bound for their type.
type Surface struct {
	name    string
	logger  *slog.Logger
	metrics *metric.Metrics
	clock   timestamp.Clock

	mu       sync.RWMutex
	bindings map[uint32]binding

	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Surface) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics reports deliveries and drops into m.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Surface) {
		s.metrics = m
	}
}

// WithClock sets the clock used for received and stored stamps.
func WithClock(c timestamp.Clock) Option {
	return func(s *Surface) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewSurface returns a surface with no bindings.
func NewSurface(name string, opts ...Option) *Surface {
	s := &Surface{
		name:     name,
		logger:   slog.Default(),
		clock:    timestamp.SystemClock(),
		bindings: make(map[uint32]binding),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "delivery", "surface", name)
	return s
}

// Name returns the surface name.
func (s *Surface) Name() string {
	return s.name
}

// Bind registers a Latest cell for shape T. Binding the same type twice fails
// with errors.ErrDuplicateType.
func Bind[T any, PT record.Pointer[T]](s *Surface) (*Latest[T], error) {
	b := &typedBinding[T, PT]{latest: NewLatest[T](s.clock)}
	id := b.identity()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.bindings[id.ID()]; ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s(%d) already bound as %s", errors.ErrDuplicateType,
				id.LongName(), id.ID(), existing.identity().LongName()),
			"Surface", "Bind", "bind record type")
	}
	s.bindings[id.ID()] = b
	return b.latest, nil
}

// Handle delivers e to the cell bound for its type ID. Envelopes of unbound
// types are dropped and counted; that is not an error.
func (s *Surface) Handle(e *envelope.Envelope) error {
	if e == nil {
		return errors.WrapInvalid(errors.ErrNilEnvelope, "Surface", "Handle", "check envelope")
	}

	s.mu.RLock()
	b, ok := s.bindings[e.TypeID()]
	s.mu.RUnlock()

	if !ok {
		s.dropped.Add(1)
		s.metrics.RecordDrop(s.name, e.LongName())
		s.logger.Debug("dropped envelope of unbound type", "type_id", e.TypeID(), "type", e.LongName())
		return nil
	}

	if e.Received().IsZero() {
		e.StampReceived(s.clock.Now())
	}

	if err := b.deliver(e); err != nil {
		s.dropped.Add(1)
		s.metrics.RecordUnwrapMismatch(e.LongName())
		return errors.WrapInvalid(err, "Surface", "Handle", "unwrap envelope")
	}

	s.delivered.Add(1)
	s.metrics.RecordDelivery(s.name, e.LongName())
	s.metrics.RecordLatency(e.LongName(), e.Latency())
	return nil
}

// Run handles envelopes from in until in is closed or ctx is done. It returns
// nil when in is closed and ctx.Err() on cancellation.
func (s *Surface) Run(ctx context.Context, in <-chan *envelope.Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.Handle(e); err != nil {
				s.logger.Warn("delivery failed", "error", err)
			}
		}
	}
}

// Views renders every bound cell, ordered by type ID. Rendering happens on
// snapshot copies after all locks are released.
func (s *Surface) Views() []View {
	s.mu.RLock()
	bs := make([]binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		bs = append(bs, b)
	}
	s.mu.RUnlock()

	views := make([]View, 0, len(bs))
	for _, b := range bs {
		views = append(views, b.view())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].TypeID < views[j].TypeID })
	return views
}

// Delivered returns the number of envelopes stored into cells.
func (s *Surface) Delivered() uint64 {
	return s.delivered.Load()
}

// Dropped returns the number of envelopes that were not stored.
func (s *Surface) Dropped() uint64 {
	return s.dropped.Load()
}
