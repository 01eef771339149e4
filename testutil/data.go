package testutil

import (
	"testing"

	"github.com/ameersohail0/OpenDaVINCI/registry"
	"github.com/ameersohail0/OpenDaVINCI/schema"
)

// BeaconExample is the Beacon used in wire format examples.
func BeaconExample() *schema.Beacon {
	return schema.NewBeacon(true, -7, "abc")
}

// BeaconExampleBytes is the encoded form of BeaconExample.
var BeaconExampleBytes = []byte{
	0x01,                   // active
	0xFF, 0xFF, 0xFF, 0xF9, // code = -7
	0x00, 0x00, 0x00, 0x03, // label length
	'a', 'b', 'c',
}

// SampleExample fills every primitive kind with a non-zero value.
func SampleExample() *schema.Sample {
	return schema.NewSample(true, -12, -123456, 4000000000, 3.5, -2.25, "hello, world")
}

// PoseExample is a record with two nested records.
func PoseExample() *schema.Pose {
	return schema.NewPose(*schema.NewVector3(1, 2, 3), *schema.NewVector3(0, 0, 1.5707963267948966), "map")
}

// VehicleControlExample returns a VehicleControl with the given speed.
func VehicleControlExample(speed float64) *schema.VehicleControl {
	return schema.NewVehicleControl(speed, 0.5, -0.1, false, true, false)
}

// SensorBoardDataExample returns a SensorBoardData with all five sensors set.
func SensorBoardDataExample() *schema.SensorBoardData {
	return schema.NewSensorBoardData(5, 0.8, 1.25, 0.3, 0.45, 2.0)
}

// CorruptPayloads are Beacon payloads that must fail to decode.
var CorruptPayloads = map[string][]byte{
	"empty":          {},
	"bad bool":       {0x02, 0, 0, 0, 0, 0, 0, 0, 0},
	"short int":      {0x01, 0xFF, 0xFF},
	"missing text":   {0x01, 0, 0, 0, 1},
	"text too long":  {0x01, 0, 0, 0, 1, 0, 0, 0, 9, 'a'},
	"invalid utf8":   {0x01, 0, 0, 0, 1, 0, 0, 0, 2, 0xC3, 0x28},
	"trailing bytes": append(append([]byte{}, BeaconExampleBytes...), 0x00),
}

// Registry returns the schema registry or fails the test.
func Registry(t testing.TB) *registry.Registry {
	t.Helper()
	reg, err := schema.NewRegistry()
	if err != nil {
		t.Fatalf("build schema registry: %v", err)
	}
	return reg
}
