package integrator

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray from world.
	// sampler must not be shared with other goroutines.
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3
}

// Sky colors for the background gradient
var (
	SkyBottom = core.NewVec3(1.0, 1.0, 1.0) // white at the horizon and below
	SkyTop    = core.NewVec3(0.5, 0.7, 1.0) // sky blue straight up
)

// BackgroundGradient returns the sky color seen along a ray that escapes the scene
func BackgroundGradient(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	a := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-a)*bottom + a*top
	return SkyBottom.Multiply(1.0 - a).Add(SkyTop.Multiply(a))
}
