package integrator

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// ShadowAcneEpsilon is the minimum hit distance accepted after a bounce.
// Scattered rays start on the surface, and rounding can make them re-hit it at t ~ 0.
const ShadowAcneEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing with a fixed bounce budget
type PathTracingIntegrator struct {
	maxDepth int
}

// NewPathTracingIntegrator creates a new path tracing integrator.
// maxDepth is the number of ray segments traced before a path returns black.
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// MaxDepth returns the bounce budget
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor computes the color for a single ray.
// The recursion ray_color(ray, depth) = attenuation * ray_color(scattered, depth-1)
// is unrolled into a loop carrying the accumulated attenuation.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)
	rayT := core.NewInterval(ShadowAcneEpsilon, math.Inf(1))

	for depth := pt.maxDepth; depth > 0; depth-- {
		var hit material.HitRecord
		if !world.Hit(ray, rayT, &hit) {
			return throughput.MultiplyVec(BackgroundGradient(ray))
		}

		if hit.Material == nil {
			panic(fmt.Sprintf("integrator: hit at t=%g has no material", hit.T))
		}

		scatter, didScatter := hit.Material.Scatter(ray, &hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Bounce budget exhausted, no more light is gathered
	return core.Vec3{}
}
