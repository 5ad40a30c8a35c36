package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

const (
	gridExtent        = 20  // Small spheres are placed for a, b in [-gridExtent, gridExtent)
	smallSphereRadius = 0.2 // Radius of every grid sphere
	clearance         = 0.9 // Grid spheres closer than this to the metal hero sphere are skipped
)

// NewRandomSpheresScene creates the cover scene: a large ground sphere covered
// in a jittered grid of small random spheres around three big ones. The same
// seed always produces the same scene.
func NewRandomSpheresScene(seed int64) *Scene {
	s := NewScene("random-spheres")
	s.CameraConfig = renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         1200,
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0,
		DefocusAngle:  0.6,
		FocusDistance: 10.0,
	}
	s.SamplingConfig.SamplesPerPixel = 500

	sampler := core.NewSeededSampler(seed)

	groundMaterial := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, groundMaterial))

	// Shared by every glass sphere
	glass := material.NewDielectric(1.5)
	hero := core.NewVec3(4, smallSphereRadius, 0)

	for a := -gridExtent; a < gridExtent; a++ {
		for b := -gridExtent; b < gridExtent; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(
				float64(a)+clearance*sampler.Get1D(),
				smallSphereRadius,
				float64(b)+clearance*sampler.Get1D(),
			)

			if center.Subtract(hero).Length() <= clearance {
				continue
			}

			var sphereMaterial *material.Material
			switch {
			case chooseMat < 0.8:
				// Diffuse
				albedo := core.RandomVec3(sampler).MultiplyVec(core.RandomVec3(sampler))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.9:
				// Metal
				albedo := core.RandomVec3Range(sampler, 0.5, 1)
				fuzz := core.RandomRange(sampler, 0, 0.5)
				sphereMaterial = material.NewMetal(albedo, fuzz)
			default:
				sphereMaterial = glass
			}
			s.Add(geometry.NewSphere(center, smallSphereRadius, sphereMaterial))
		}
	}

	s.Add(
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, glass),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)

	return s
}
