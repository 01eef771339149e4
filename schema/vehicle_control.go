package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/codec"
	"github.com/ameersohail0/OpenDaVINCI/record"
)

// Identity of VehicleControl.
const (
	VehicleControlID        uint32 = 41
	VehicleControlShortName        = "VehicleControl"
	VehicleControlLongName         = "automotive.VehicleControl"
)

// VehicleControl is the actuator command sent to a vehicle.
type VehicleControl struct {
	speed               float64
	acceleration        float64
	steeringWheelAngle  float64
	brakeLights         bool
	flashingLightsLeft  bool
	flashingLightsRight bool
}

// NewVehicleControl creates a VehicleControl from its field values in declaration order.
func NewVehicleControl(speed float64, acceleration float64, steeringWheelAngle float64, brakeLights bool, flashingLightsLeft bool, flashingLightsRight bool) *VehicleControl {
	return &VehicleControl{
		speed:               speed,
		acceleration:        acceleration,
		steeringWheelAngle:  steeringWheelAngle,
		brakeLights:         brakeLights,
		flashingLightsLeft:  flashingLightsLeft,
		flashingLightsRight: flashingLightsRight,
	}
}

// ID returns VehicleControlID.
func (VehicleControl) ID() uint32 {
	return VehicleControlID
}

// ShortName returns VehicleControlShortName.
func (VehicleControl) ShortName() string {
	return VehicleControlShortName
}

// LongName returns VehicleControlLongName.
func (VehicleControl) LongName() string {
	return VehicleControlLongName
}

// Speed returns speed.
func (c VehicleControl) Speed() float64 {
	return c.speed
}

// SetSpeed sets speed.
func (c *VehicleControl) SetSpeed(v float64) {
	c.speed = v
}

// Acceleration returns acceleration.
func (c VehicleControl) Acceleration() float64 {
	return c.acceleration
}

// SetAcceleration sets acceleration.
func (c *VehicleControl) SetAcceleration(v float64) {
	c.acceleration = v
}

// SteeringWheelAngle returns steeringWheelAngle.
func (c VehicleControl) SteeringWheelAngle() float64 {
	return c.steeringWheelAngle
}

// SetSteeringWheelAngle sets steeringWheelAngle.
func (c *VehicleControl) SetSteeringWheelAngle(v float64) {
	c.steeringWheelAngle = v
}

// BrakeLights returns brakeLights.
func (c VehicleControl) BrakeLights() bool {
	return c.brakeLights
}

// SetBrakeLights sets brakeLights.
func (c *VehicleControl) SetBrakeLights(v bool) {
	c.brakeLights = v
}

// FlashingLightsLeft returns flashingLightsLeft.
func (c VehicleControl) FlashingLightsLeft() bool {
	return c.flashingLightsLeft
}

// SetFlashingLightsLeft sets flashingLightsLeft.
func (c *VehicleControl) SetFlashingLightsLeft(v bool) {
	c.flashingLightsLeft = v
}

// FlashingLightsRight returns flashingLightsRight.
func (c VehicleControl) FlashingLightsRight() bool {
	return c.flashingLightsRight
}

// SetFlashingLightsRight sets flashingLightsRight.
func (c *VehicleControl) SetFlashingLightsRight(v bool) {
	c.flashingLightsRight = v
}

// VisitFields hands every field to v in declaration order.
func (c *VehicleControl) VisitFields(v record.FieldVisitor) error {
	if err := v.Float64(record.Field{ID: 1, Name: "speed"}, &c.speed); err != nil {
		return err
	}
	if err := v.Float64(record.Field{ID: 2, Name: "acceleration"}, &c.acceleration); err != nil {
		return err
	}
	if err := v.Float64(record.Field{ID: 3, Name: "steeringWheelAngle"}, &c.steeringWheelAngle); err != nil {
		return err
	}
	if err := v.Bool(record.Field{ID: 4, Name: "brakeLights"}, &c.brakeLights); err != nil {
		return err
	}
	if err := v.Bool(record.Field{ID: 5, Name: "flashingLightsLeft"}, &c.flashingLightsLeft); err != nil {
		return err
	}
	return v.Bool(record.Field{ID: 6, Name: "flashingLightsRight"}, &c.flashingLightsRight)
}

// Accept runs v over this record and its nested records.
func (c *VehicleControl) Accept(v record.Visitor) error {
	return record.Accept(c, v)
}

func (c VehicleControl) String() string {
	return codec.Text(&c)
}
