package integrator

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// NormalIntegrator shades the first surface hit by its normal mapped from
// [-1, 1] to [0, 1]. It is a debugging view that ignores materials and
// never bounces.
type NormalIntegrator struct{}

// NewNormalIntegrator creates a normal visualization integrator
func NewNormalIntegrator() *NormalIntegrator {
	return &NormalIntegrator{}
}

// RayColor returns the shaded normal on a hit and the sky otherwise
func (ni *NormalIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3 {
	var hit material.HitRecord
	if !world.Hit(ray, core.NewInterval(ShadowAcneEpsilon, math.Inf(1)), &hit) {
		return BackgroundGradient(ray)
	}
	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
