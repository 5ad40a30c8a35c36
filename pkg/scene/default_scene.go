package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene() *Scene {
	s := NewScene("default")
	s.CameraConfig = renderer.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          20.0,
		DefocusAngle:  10.0,
		FocusDistance: 3.4,
	}

	// Create materials
	groundMaterial := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	centerMaterial := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	bubble := material.NewDielectric(1.0 / 1.5) // air inside glass
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, groundMaterial),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.5, centerMaterial),
		// Hollow glass sphere: an air bubble inside a solid glass shell
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.4, bubble),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, gold),
	)

	return s
}

// NewSingleSphereScene creates the minimal scene: one diffuse sphere in front
// of a pinhole camera at the origin
func NewSingleSphereScene() *Scene {
	s := NewScene("single-sphere")
	s.CameraConfig = renderer.DefaultCameraConfig()
	s.SamplingConfig.SamplesPerPixel = 10
	s.SamplingConfig.MaxDepth = 10

	s.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))))

	return s
}
