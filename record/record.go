package record

import (
	"fmt"
	"reflect"

	"github.com/ameersohail0/OpenDaVINCI/errors"
)

// Identity is the compile-time identity of a record shape.
type Identity interface {
	// ID returns the shape's numeric identity. It is part of the wire format.
	ID() uint32
	// ShortName returns the unqualified shape name, e.g. "Pose".
	ShortName() string
	// LongName returns the package-qualified shape name, e.g. "geometry.Pose".
	LongName() string
}

// Record is a typed data record.
type Record interface {
	Identity
	// VisitFields hands every field to v in declaration order.
	VisitFields(v FieldVisitor) error
}

// Pointer constrains a type parameter to the pointer type of a record struct,
// letting generic code create zero values of a shape.
type Pointer[T any] interface {
	*T
	Record
}

// Field identifies one slot of a record.
type Field struct {
	ID   uint32
	Name string
}

func (f Field) String() string {
	return fmt.Sprintf("%s(%d)", f.Name, f.ID)
}

// Kind is the primitive kind of a field.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt8
	KindInt32
	KindUint32
	KindFloat32
	KindFloat64
	KindText
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt32:
		return "int32"
	case KindUint32:
		return "uint32"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindText:
		return "text"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

// FieldVisitor receives each field of a record. Values are passed by pointer so
// the same walk can read (encode, render) or write (decode) the record.
// Nested receives the nested record itself, which is also addressable.
type FieldVisitor interface {
	Bool(f Field, v *bool) error
	Int8(f Field, v *int8) error
	Int32(f Field, v *int32) error
	Uint32(f Field, v *uint32) error
	Float32(f Field, v *float32) error
	Float64(f Field, v *float64) error
	Text(f Field, v *string) error
	Nested(f Field, r Record) error
}

// SameIdentity reports whether a and b describe the same shape.
func SameIdentity(a, b Identity) bool {
	return a.ID() == b.ID() && a.ShortName() == b.ShortName() && a.LongName() == b.LongName()
}

// IsNil reports whether r is nil or a nil pointer held in a non-nil
// interface, such as (*schema.Beacon)(nil).
func IsNil(r Record) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// FieldSpec describes one declared field.
type FieldSpec struct {
	Field  Field
	Kind   Kind
	Nested []FieldSpec // set for KindNested
	Shape  string      // long name of the nested shape
}

// Describe returns the declared field list of r, nested shapes included.
// Field IDs must be unique within one shape.
func Describe(r Record) ([]FieldSpec, error) {
	if IsNil(r) {
		return nil, errors.ErrNilRecord
	}
	d := &describer{seen: make(map[uint32]string)}
	if err := r.VisitFields(d); err != nil {
		return nil, errors.WrapInvalid(err, "Record", "Describe", "describe "+r.LongName())
	}
	return d.specs, nil
}

type describer struct {
	specs []FieldSpec
	seen  map[uint32]string
}

func (d *describer) add(f Field, k Kind) error {
	if prev, ok := d.seen[f.ID]; ok {
		return fmt.Errorf("%w: field id %d used by %q and %q", errors.ErrInvalidData, f.ID, prev, f.Name)
	}
	d.seen[f.ID] = f.Name
	d.specs = append(d.specs, FieldSpec{Field: f, Kind: k})
	return nil
}

func (d *describer) Bool(f Field, _ *bool) error       { return d.add(f, KindBool) }
func (d *describer) Int8(f Field, _ *int8) error       { return d.add(f, KindInt8) }
func (d *describer) Int32(f Field, _ *int32) error     { return d.add(f, KindInt32) }
func (d *describer) Uint32(f Field, _ *uint32) error   { return d.add(f, KindUint32) }
func (d *describer) Float32(f Field, _ *float32) error { return d.add(f, KindFloat32) }
func (d *describer) Float64(f Field, _ *float64) error { return d.add(f, KindFloat64) }
func (d *describer) Text(f Field, _ *string) error     { return d.add(f, KindText) }

func (d *describer) Nested(f Field, r Record) error {
	if err := d.add(f, KindNested); err != nil {
		return err
	}
	nested, err := Describe(r)
	if err != nil {
		return err
	}
	last := &d.specs[len(d.specs)-1]
	last.Nested = nested
	last.Shape = r.LongName()
	return nil
}
