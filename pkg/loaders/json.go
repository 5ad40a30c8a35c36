package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Vec3JSON is a vector written as a three element array
type Vec3JSON [3]float64

func (v Vec3JSON) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// SceneFile is the on-disk layout of a scene description
type SceneFile struct {
	Name      string                  `json:"name"`
	Camera    CameraFile              `json:"camera"`
	Sampling  SamplingFile            `json:"sampling"`
	Materials map[string]MaterialFile `json:"materials"`
	Spheres   []SphereFile            `json:"spheres"`
}

// CameraFile overrides the default camera; omitted fields keep their defaults
type CameraFile struct {
	LookFrom      *Vec3JSON `json:"lookFrom,omitempty"`
	LookAt        *Vec3JSON `json:"lookAt,omitempty"`
	Up            *Vec3JSON `json:"up,omitempty"`
	Width         int       `json:"width,omitempty"`
	AspectRatio   float64   `json:"aspectRatio,omitempty"`
	VFov          float64   `json:"vfov,omitempty"`
	DefocusAngle  float64   `json:"defocusAngle,omitempty"`
	FocusDistance float64   `json:"focusDistance,omitempty"`
}

// SamplingFile overrides the scene's sampling settings. Pointers tell an
// explicit zero apart from an omitted field.
type SamplingFile struct {
	SamplesPerPixel *int   `json:"samplesPerPixel,omitempty"`
	MaxDepth        *int   `json:"maxDepth,omitempty"`
	Seed            *int64 `json:"seed,omitempty"`
	NumWorkers      *int   `json:"numWorkers,omitempty"`
}

// MaterialFile describes one named material
type MaterialFile struct {
	Type            string   `json:"type"` // lambertian, metal or dielectric
	Albedo          Vec3JSON `json:"albedo"`
	Fuzz            float64  `json:"fuzz,omitempty"`
	RefractiveIndex float64  `json:"refractiveIndex,omitempty"`
	RejectBelow     bool     `json:"rejectBelowSurface,omitempty"` // metal only
}

// SphereFile places a sphere using a material name
type SphereFile struct {
	Center   Vec3JSON `json:"center"`
	Radius   float64  `json:"radius"`
	Material string   `json:"material"`
}

// LoadSceneFile reads and builds a scene from a JSON file
func LoadSceneFile(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := ParseScene(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScene decodes a scene description and builds it
func ParseScene(r io.Reader) (*scene.Scene, error) {
	var file SceneFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return BuildScene(&file)
}

// BuildScene turns a decoded description into a renderable scene. Each named
// material is created once and shared by every sphere that references it.
func BuildScene(file *SceneFile) (*scene.Scene, error) {
	name := file.Name
	if name == "" {
		name = "custom"
	}
	s := scene.NewScene(name)

	// Sorted so the first reported error is stable
	names := make([]string, 0, len(file.Materials))
	for matName := range file.Materials {
		names = append(names, matName)
	}
	sort.Strings(names)

	materials := make(map[string]*material.Material, len(file.Materials))
	for _, matName := range names {
		m, err := buildMaterial(file.Materials[matName])
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", matName, err)
		}
		materials[matName] = m
	}

	for i, sf := range file.Spheres {
		if !(sf.Radius > 0) || math.IsInf(sf.Radius, 0) {
			return nil, fmt.Errorf("sphere %d: radius must be positive, got %g", i, sf.Radius)
		}
		m, ok := materials[sf.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: unknown material %q", i, sf.Material)
		}
		s.Add(geometry.NewSphere(sf.Center.vec(), sf.Radius, m))
	}

	s.CameraConfig = file.Camera.apply(s.CameraConfig)
	s.SamplingConfig = file.Sampling.apply(s.SamplingConfig)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// apply overrides base with the fields present in the file. Vectors are set
// whenever given, so an explicit origin is honoured.
func (c CameraFile) apply(base renderer.CameraConfig) renderer.CameraConfig {
	config := renderer.MergeCameraConfig(base, renderer.CameraConfig{
		Width:         c.Width,
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		DefocusAngle:  c.DefocusAngle,
		FocusDistance: c.FocusDistance,
	})
	if c.LookFrom != nil {
		config.LookFrom = c.LookFrom.vec()
	}
	if c.LookAt != nil {
		config.LookAt = c.LookAt.vec()
	}
	if c.Up != nil {
		config.Up = c.Up.vec()
	}
	return config
}

// apply overrides base with every field present in the file
func (f SamplingFile) apply(base renderer.SamplingConfig) renderer.SamplingConfig {
	config := base
	if f.SamplesPerPixel != nil {
		config.SamplesPerPixel = *f.SamplesPerPixel
	}
	if f.MaxDepth != nil {
		config.MaxDepth = *f.MaxDepth
	}
	if f.Seed != nil {
		config.Seed = *f.Seed
	}
	if f.NumWorkers != nil {
		config.NumWorkers = *f.NumWorkers
	}
	return config
}

func buildMaterial(mf MaterialFile) (*material.Material, error) {
	switch mf.Type {
	case "lambertian":
		return material.NewLambertian(mf.Albedo.vec()), nil
	case "metal":
		policy := material.MetalAlwaysScatter
		if mf.RejectBelow {
			policy = material.MetalRejectBelowSurface
		}
		return material.NewMetalWithPolicy(mf.Albedo.vec(), mf.Fuzz, policy), nil
	case "dielectric":
		if !(mf.RefractiveIndex > 0) {
			return nil, fmt.Errorf("refractive index must be positive, got %g", mf.RefractiveIndex)
		}
		return material.NewDielectric(mf.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", mf.Type)
	}
}
