package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Identity of Sample.
const (
	SampleID        uint32 = 5
	SampleShortName        = "Sample"
	SampleLongName         = "testdata.Sample"
)

// Sample carries one field of every primitive kind.
type Sample struct {
	attribute1 bool
	attribute2 int8
	attribute3 int32
	attribute4 uint32
	attribute5 float32
	attribute6 float64
	attribute7 string
}

// NewSample creates a Sample from its field values in declaration order.
func NewSample(attribute1 bool, attribute2 int8, attribute3 int32, attribute4 uint32, attribute5 float32, attribute6 float64, attribute7 string) *Sample {
	return &Sample{
		attribute1: attribute1,
		attribute2: attribute2,
		attribute3: attribute3,
		attribute4: attribute4,
		attribute5: attribute5,
		attribute6: attribute6,
		attribute7: attribute7,
	}
}

// ID returns SampleID.
func (Sample) ID() uint32 {
	return SampleID
}

// ShortName returns SampleShortName.
func (Sample) ShortName() string {
	return SampleShortName
}

// LongName returns SampleLongName.
func (Sample) LongName() string {
	return SampleLongName
}

// Attribute1 returns attribute1.
func (s Sample) Attribute1() bool {
	return s.attribute1
}

// SetAttribute1 sets attribute1.
func (s *Sample) SetAttribute1(v bool) {
	s.attribute1 = v
}

// Attribute2 returns attribute2.
func (s Sample) Attribute2() int8 {
	return s.attribute2
}

// SetAttribute2 sets attribute2.
func (s *Sample) SetAttribute2(v int8) {
	s.attribute2 = v
}

// Attribute3 returns attribute3.
func (s Sample) Attribute3() int32 {
	return s.attribute3
}

// SetAttribute3 sets attribute3.
func (s *Sample) SetAttribute3(v int32) {
	s.attribute3 = v
}

// Attribute4 returns attribute4.
func (s Sample) Attribute4() uint32 {
	return s.attribute4
}

// SetAttribute4 sets attribute4.
func (s *Sample) SetAttribute4(v uint32) {
	s.attribute4 = v
}

// Attribute5 returns attribute5.
func (s Sample) Attribute5() float32 {
	return s.attribute5
}

// SetAttribute5 sets attribute5.
func (s *Sample) SetAttribute5(v float32) {
	s.attribute5 = v
}

// Attribute6 returns attribute6.
func (s Sample) Attribute6() float64 {
	return s.attribute6
}

// SetAttribute6 sets attribute6.
func (s *Sample) SetAttribute6(v float64) {
	s.attribute6 = v
}

// Attribute7 returns attribute7.
func (s Sample) Attribute7() string {
	return s.attribute7
}

// SetAttribute7 sets attribute7.
func (s *Sample) SetAttribute7(v string) {
	s.attribute7 = v
}

// VisitFields hands every field to v in declaration order.
func (s *Sample) VisitFields(v record.FieldVisitor) error {
	if err := v.Bool(record.Field{ID: 1, Name: "attribute1"}, &s.attribute1); err != nil {
		return err
	}
	if err := v.Int8(record.Field{ID: 2, Name: "attribute2"}, &s.attribute2); err != nil {
		return err
	}
	if err := v.Int32(record.Field{ID: 3, Name: "attribute3"}, &s.attribute3); err != nil {
		return err
	}
	if err := v.Uint32(record.Field{ID: 4, Name: "attribute4"}, &s.attribute4); err != nil {
		return err
	}
	if err := v.Float32(record.Field{ID: 5, Name: "attribute5"}, &s.attribute5); err != nil {
		return err
	}
	if err := v.Float64(record.Field{ID: 6, Name: "attribute6"}, &s.attribute6); err != nil {
		return err
	}
	return v.Text(record.Field{ID: 7, Name: "attribute7"}, &s.attribute7)
}

// Accept runs v over this record and its nested records.
func (s *Sample) Accept(v record.Visitor) error {
	return record.Accept(s, v)
}

func (s Sample) String() string {
	return codec.Text(&s)
}
