// Package schema declares the record shapes exchanged by the components of a
// deployment. Every shape implements record.Record with a fixed, globally unique ID.
package schema

import (
	"github.com/ameersohail0/OpenDaVINCI/registry"
)

// Shapes returns every shape declared in this package.
func Shapes() []registry.Shape {
	return []registry.Shape{
		registry.ShapeOf[Sample]("one field of every primitive kind"),
		registry.ShapeOf[Beacon]("status announcement"),
		registry.ShapeOf[VehicleControl]("vehicle actuator command"),
		registry.ShapeOf[Vector3]("three-dimensional vector"),
		registry.ShapeOf[Pose]("position and rotation in a frame"),
		registry.ShapeOf[SensorBoardData]("sensor board distance readings"),
	}
}

// NewRegistry builds a sealed registry of Shapes.
func NewRegistry() (*registry.Registry, error) {
	return registry.Build(Shapes()...)
}
