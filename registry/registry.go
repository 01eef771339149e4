// Package registry maps numeric record identities to shapes so that a receiver
// can pick the right decode shape for a typeId before touching the payload.
//
// A registry is built once at process start. Registration checks every shape
// for consistency and rejects numeric ID or long name collisions immediately,
// so lookups on the hot path never have to.
//
//	reg, err := registry.Build(
//	    registry.ShapeOf[schema.Pose]("pose of a tracked object"),
//	    registry.ShapeOf[schema.VehicleControl]("actuator command"),
//	)
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/errors"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Factory creates a zero-valued record of one shape.
type Factory func() record.Record

// Shape holds the identity and factory of one record shape.
type Shape struct {
	ID          uint32  `json:"id"`
	ShortName   string  `json:"short_name"`
	LongName    string  `json:"long_name"`
	Description string  `json:"description,omitempty"`
	Factory     Factory `json:"-"`
}

// ShapeOf derives a Shape from the record type T.
func ShapeOf[T any, PT record.Pointer[T]](description string) Shape {
	zero := PT(new(T))
	return Shape{
		ID:          zero.ID(),
		ShortName:   zero.ShortName(),
		LongName:    zero.LongName(),
		Description: description,
		Factory:     func() record.Record { return PT(new(T)) },
	}
}

func (s Shape) String() string {
	return fmt.Sprintf("%s(%d)", s.LongName, s.ID)
}

// Registry is a thread-safe set of shapes keyed by ID.
type Registry struct {
	byID   map[uint32]Shape
	byName map[string]uint32
	sealed bool
	mu     sync.RWMutex
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byID:   make(map[uint32]Shape),
		byName: make(map[string]uint32),
	}
}

// Build registers all shapes and seals the registry.
func Build(shapes ...Shape) (*Registry, error) {
	r := New()
	for _, s := range shapes {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	r.Seal()
	return r, nil
}

// Register validates s and adds it. It fails on a sealed registry and on any
// ID or long name that is already taken.
func (r *Registry) Register(s Shape) error {
	if s.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "factory validation")
	}
	if s.ShortName == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "short name validation")
	}
	if s.LongName == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "long name validation")
	}

	sample := s.Factory()
	if record.IsNil(sample) {
		return errors.WrapInvalid(errors.ErrNilRecord, "Registry", "Register", "factory result validation")
	}
	if sample.ID() != s.ID || sample.ShortName() != s.ShortName || sample.LongName() != s.LongName {
		return errors.WrapInvalid(
			fmt.Errorf("%w: shape %s declares %s(%d)", errors.ErrTypeMismatch, s, sample.LongName(), sample.ID()),
			"Registry", "Register", "identity validation")
	}
	if _, err := record.Describe(sample); err != nil {
		return errors.WrapInvalid(err, "Registry", "Register", "field validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return errors.WrapInvalid(errors.ErrRegistrySealed, "Registry", "Register", "sealed check")
	}
	if existing, ok := r.byID[s.ID]; ok {
		return errors.WrapInvalid(
			fmt.Errorf("%w: id %d is already registered as %s", errors.ErrDuplicateType, s.ID, existing.LongName),
			"Registry", "Register", "duplicate id check")
	}
	if id, ok := r.byName[s.LongName]; ok {
		return errors.WrapInvalid(
			fmt.Errorf("%w: name %s is already registered with id %d", errors.ErrDuplicateType, s.LongName, id),
			"Registry", "Register", "duplicate name check")
	}

	r.byID[s.ID] = s
	r.byName[s.LongName] = s.ID
	return nil
}

// Seal stops further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the shape registered under id.
func (r *Registry) Lookup(id uint32) (Shape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// LookupName returns the shape registered under a long name.
func (r *Registry) LookupName(longName string) (Shape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[longName]
	if !ok {
		return Shape{}, false
	}
	return r.byID[id], true
}

// New creates a zero-valued record of the shape registered under id.
func (r *Registry) New(id uint32) (record.Record, error) {
	s, ok := r.Lookup(id)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %d", errors.ErrUnknownType, id), "Registry", "New", "shape lookup")
	}
	return s.Factory(), nil
}

// Decode decodes data as the shape registered under id.
func (r *Registry) Decode(c *codec.Codec, id uint32, data []byte) (record.Record, error) {
	s, ok := r.Lookup(id)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %d", errors.ErrUnknownType, id), "Registry", "Decode", "shape lookup")
	}
	return c.Decode(data, s.Factory)
}

// List returns all shapes ordered by ID.
func (r *Registry) List() []Shape {
	r.mu.RLock()
	out := make([]Shape, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered shapes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
