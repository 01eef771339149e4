package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Identity of SensorBoardData.
const (
	SensorBoardDataID        uint32 = 81
	SensorBoardDataShortName        = "SensorBoardData"
	SensorBoardDataLongName         = "automotive.miniature.SensorBoardData"
)

// SensorBoardData holds the latest distance readings of a miniature vehicle's sensor board.
type SensorBoardData struct {
	numberOfSensors       uint32
	ultrasonicFrontCenter float32
	ultrasonicFrontRight  float32
	infraredFrontRight    float32
	infraredRearRight     float32
	infraredRear          float32
}

// NewSensorBoardData creates a SensorBoardData from its field values in declaration order.
func NewSensorBoardData(numberOfSensors uint32, ultrasonicFrontCenter float32, ultrasonicFrontRight float32, infraredFrontRight float32, infraredRearRight float32, infraredRear float32) *SensorBoardData {
	return &SensorBoardData{
		numberOfSensors:       numberOfSensors,
		ultrasonicFrontCenter: ultrasonicFrontCenter,
		ultrasonicFrontRight:  ultrasonicFrontRight,
		infraredFrontRight:    infraredFrontRight,
		infraredRearRight:     infraredRearRight,
		infraredRear:          infraredRear,
	}
}

// ID returns SensorBoardDataID.
func (SensorBoardData) ID() uint32 {
	return SensorBoardDataID
}

// ShortName returns SensorBoardDataShortName.
func (SensorBoardData) ShortName() string {
	return SensorBoardDataShortName
}

// LongName returns SensorBoardDataLongName.
func (SensorBoardData) LongName() string {
	return SensorBoardDataLongName
}

// NumberOfSensors returns numberOfSensors.
func (s SensorBoardData) NumberOfSensors() uint32 {
	return s.numberOfSensors
}

// SetNumberOfSensors sets numberOfSensors.
func (s *SensorBoardData) SetNumberOfSensors(v uint32) {
	s.numberOfSensors = v
}

// UltrasonicFrontCenter returns ultrasonicFrontCenter.
func (s SensorBoardData) UltrasonicFrontCenter() float32 {
	return s.ultrasonicFrontCenter
}

// SetUltrasonicFrontCenter sets ultrasonicFrontCenter.
func (s *SensorBoardData) SetUltrasonicFrontCenter(v float32) {
	s.ultrasonicFrontCenter = v
}

// UltrasonicFrontRight returns ultrasonicFrontRight.
func (s SensorBoardData) UltrasonicFrontRight() float32 {
	return s.ultrasonicFrontRight
}

// SetUltrasonicFrontRight sets ultrasonicFrontRight.
func (s *SensorBoardData) SetUltrasonicFrontRight(v float32) {
	s.ultrasonicFrontRight = v
}

// InfraredFrontRight returns infraredFrontRight.
func (s SensorBoardData) InfraredFrontRight() float32 {
	return s.infraredFrontRight
}

// SetInfraredFrontRight sets infraredFrontRight.
func (s *SensorBoardData) SetInfraredFrontRight(v float32) {
	s.infraredFrontRight = v
}

// InfraredRearRight returns infraredRearRight.
func (s SensorBoardData) InfraredRearRight() float32 {
	return s.infraredRearRight
}

// SetInfraredRearRight sets infraredRearRight.
func (s *SensorBoardData) SetInfraredRearRight(v float32) {
	s.infraredRearRight = v
}

// InfraredRear returns infraredRear.
func (s SensorBoardData) InfraredRear() float32 {
	return s.infraredRear
}

// SetInfraredRear sets infraredRear.
func (s *SensorBoardData) SetInfraredRear(v float32) {
	s.infraredRear = v
}

// VisitFields hands every field to v in declaration order.
func (s *SensorBoardData) VisitFields(v record.FieldVisitor) error {
	if err := v.Uint32(record.Field{ID: 1, Name: "numberOfSensors"}, &s.numberOfSensors); err != nil {
		return err
	}
	if err := v.Float32(record.Field{ID: 2, Name: "ultrasonicFrontCenter"}, &s.ultrasonicFrontCenter); err != nil {
		return err
	}
	if err := v.Float32(record.Field{ID: 3, Name: "ultrasonicFrontRight"}, &s.ultrasonicFrontRight); err != nil {
		return err
	}
	if err := v.Float32(record.Field{ID: 4, Name: "infraredFrontRight"}, &s.infraredFrontRight); err != nil {
		return err
	}
	if err := v.Float32(record.Field{ID: 5, Name: "infraredRearRight"}, &s.infraredRearRight); err != nil {
		return err
	}
	return v.Float32(record.Field{ID: 6, Name: "infraredRear"}, &s.infraredRear)
}

// Accept runs v over this record and its nested records.
func (s *SensorBoardData) Accept(v record.Visitor) error {
	return record.Accept(s, v)
}

func (s SensorBoardData) String() string {
	return codec.Text(&s)
}
