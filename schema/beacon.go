package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Identity of Beacon.
const (
	BeaconID        uint32 = 6
	BeaconShortName        = "Beacon"
	BeaconLongName         = "telemetry.Beacon"
)

// Beacon is a minimal status announcement.
type Beacon struct {
	active bool
	code   int32
	label  string
}

// NewBeacon creates a Beacon from its field values in declaration order.
func NewBeacon(active bool, code int32, label string) *Beacon {
	return &Beacon{
		active: active,
		code:   code,
		label:  label,
	}
}

// ID returns BeaconID.
func (Beacon) ID() uint32 {
	return BeaconID
}

// ShortName returns BeaconShortName.
func (Beacon) ShortName() string {
	return BeaconShortName
}

// LongName returns BeaconLongName.
func (Beacon) LongName() string {
	return BeaconLongName
}

// Active returns active.
func (b Beacon) Active() bool {
	return b.active
}

// SetActive sets active.
func (b *Beacon) SetActive(v bool) {
	b.active = v
}

// Code returns code.
func (b Beacon) Code() int32 {
	return b.code
}

// SetCode sets code.
func (b *Beacon) SetCode(v int32) {
	b.code = v
}

// Label returns label.
func (b Beacon) Label() string {
	return b.label
}

// SetLabel sets label.
func (b *Beacon) SetLabel(v string) {
	b.label = v
}

// VisitFields hands every field to v in declaration order.
func (b *Beacon) VisitFields(v record.FieldVisitor) error {
	if err := v.Bool(record.Field{ID: 1, Name: "active"}, &b.active); err != nil {
		return err
	}
	if err := v.Int32(record.Field{ID: 2, Name: "code"}, &b.code); err != nil {
		return err
	}
	return v.Text(record.Field{ID: 3, Name: "label"}, &b.label)
}

// Accept runs v over this record and its nested records.
func (b *Beacon) Accept(v record.Visitor) error {
	return record.Accept(b, v)
}

func (b Beacon) String() string {
	return codec.Text(&b)
}
