package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Identity of Pose.
const (
	PoseID        uint32 = 52
	PoseShortName        = "Pose"
	PoseLongName         = "geometry.Pose"
)

// Pose places an object by position and rotation within a named frame.
type Pose struct {
	position Vector3
	rotation Vector3
	frame    string
}

// NewPose creates a Pose from its field values in declaration order.
func NewPose(position Vector3, rotation Vector3, frame string) *Pose {
	return &Pose{
		position: position,
		rotation: rotation,
		frame:    frame,
	}
}

// ID returns PoseID.
func (Pose) ID() uint32 {
	return PoseID
}

// ShortName returns PoseShortName.
func (Pose) ShortName() string {
	return PoseShortName
}

// LongName returns PoseLongName.
func (Pose) LongName() string {
	return PoseLongName
}

// Position returns position.
func (p Pose) Position() Vector3 {
	return p.position
}

// SetPosition sets position.
func (p *Pose) SetPosition(v Vector3) {
	p.position = v
}

// Rotation returns rotation.
func (p Pose) Rotation() Vector3 {
	return p.rotation
}

// SetRotation sets rotation.
func (p *Pose) SetRotation(v Vector3) {
	p.rotation = v
}

// Frame returns frame.
func (p Pose) Frame() string {
	return p.frame
}

// SetFrame sets frame.
func (p *Pose) SetFrame(v string) {
	p.frame = v
}

// VisitFields hands every field to v in declaration order.
func (p *Pose) VisitFields(v record.FieldVisitor) error {
	if err := v.Nested(record.Field{ID: 1, Name: "position"}, &p.position); err != nil {
		return err
	}
	if err := v.Nested(record.Field{ID: 2, Name: "rotation"}, &p.rotation); err != nil {
		return err
	}
	return v.Text(record.Field{ID: 3, Name: "frame"}, &p.frame)
}

// Accept runs v over this record and its nested records.
func (p *Pose) Accept(v record.Visitor) error {
	return record.Accept(p, v)
}

func (p Pose) String() string {
	return codec.Text(&p)
}
