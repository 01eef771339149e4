package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Identity of Vector3.
const (
	Vector3ID        uint32 = 51
	Vector3ShortName        = "Vector3"
	Vector3LongName         = "geometry.Vector3"
)

// Vector3 is a point or direction in three dimensions.
type Vector3 struct {
	x float64
	y float64
	z float64
}

// NewVector3 creates a Vector3 from its field values in declaration order.
func NewVector3(x float64, y float64, z float64) *Vector3 {
	return &Vector3{
		x: x,
		y: y,
		z: z,
	}
}

// ID returns Vector3ID.
func (Vector3) ID() uint32 {
	return Vector3ID
}

// ShortName returns Vector3ShortName.
func (Vector3) ShortName() string {
	return Vector3ShortName
}

// LongName returns Vector3LongName.
func (Vector3) LongName() string {
	return Vector3LongName
}

// X returns x.
func (vec Vector3) X() float64 {
	return vec.x
}

// SetX sets x.
func (vec *Vector3) SetX(v float64) {
	vec.x = v
}

// Y returns y.
func (vec Vector3) Y() float64 {
	return vec.y
}

// SetY sets y.
func (vec *Vector3) SetY(v float64) {
	vec.y = v
}

// Z returns z.
func (vec Vector3) Z() float64 {
	return vec.z
}

// SetZ sets z.
func (vec *Vector3) SetZ(v float64) {
	vec.z = v
}

// VisitFields hands every field to v in declaration order.
func (vec *Vector3) VisitFields(v record.FieldVisitor) error {
	if err := v.Float64(record.Field{ID: 1, Name: "x"}, &vec.x); err != nil {
		return err
	}
	if err := v.Float64(record.Field{ID: 2, Name: "y"}, &vec.y); err != nil {
		return err
	}
	return v.Float64(record.Field{ID: 3, Name: "z"}, &vec.z)
}

// Accept runs v over this record and its nested records.
func (vec *Vector3) Accept(v record.Visitor) error {
	return record.Accept(vec, v)
}

func (vec Vector3) String() string {
	return codec.Text(&vec)
}
