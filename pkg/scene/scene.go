package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	World          *geometry.HittableList // Objects in the scene
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
}

// NewScene creates an empty scene with default camera and sampling settings
func NewScene(name string) *Scene {
	return &Scene{
		Name:           name,
		World:          geometry.NewHittableList(),
		CameraConfig:   renderer.DefaultCameraConfig(),
		SamplingConfig: renderer.DefaultSamplingConfig(),
	}
}

// Add appends shapes to the scene's world
func (s *Scene) Add(shapes ...geometry.Shape) {
	for _, shape := range shapes {
		s.World.Add(shape)
	}
}

// Camera builds the scene camera
func (s *Scene) Camera() *renderer.Camera {
	return renderer.NewCamera(s.CameraConfig)
}

// Validate checks the scene's camera and sampling configuration
func (s *Scene) Validate() error {
	if err := s.CameraConfig.Validate(); err != nil {
		return fmt.Errorf("scene %q camera: %w", s.Name, err)
	}
	if err := s.SamplingConfig.Validate(); err != nil {
		return fmt.Errorf("scene %q sampling: %w", s.Name, err)
	}
	return nil
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// Factory builds a scene; seed drives any procedural placement
type Factory func(seed int64) *Scene

var builtins = map[string]Factory{
	"default":        func(int64) *Scene { return NewDefaultScene() },
	"random-spheres": NewRandomSpheresScene,
	"single-sphere":  func(int64) *Scene { return NewSingleSphereScene() },
}

// Lookup returns the built-in scene factory registered under name
func Lookup(name string) (Factory, error) {
	factory, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, Names())
	}
	return factory, nil
}

// Names lists the built-in scenes in sorted order
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
