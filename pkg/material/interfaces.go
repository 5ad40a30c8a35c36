package material

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Kind identifies which scattering model a Material uses
type Kind uint8

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// MetalPolicy controls whether a fuzzed metal reflection that points into the
// surface is still reported as a scatter
type MetalPolicy uint8

const (
	// MetalAlwaysScatter reports every metal scatter, even below the surface
	MetalAlwaysScatter MetalPolicy = iota
	// MetalRejectBelowSurface absorbs reflections with dot(scattered, normal) <= 0
	MetalRejectBelowSurface
)

// Material is a closed set of scattering models. Only the fields relevant to
// Kind are meaningful. Materials are immutable after construction and are
// shared by pointer between every sphere and every bounce that uses them.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3   // Lambertian and Metal reflectance
	Fuzz            float64     // Metal roughness in [0, 1]
	RefractiveIndex float64     // Dielectric index of refraction
	Policy          MetalPolicy // Metal below-surface handling
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation core.Vec3 // Color attenuation
	Scattered   core.Ray  // Continuation ray
}

// Scatter computes the continuation of rayIn at hit. It returns false when the
// material absorbs the ray.
func (m *Material) Scatter(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(hit, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, hit, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		panic(fmt.Sprintf("material: unknown kind %d", m.Kind))
	}
}

// String describes the material for logs and error messages
func (m *Material) String() string {
	switch m.Kind {
	case KindMetal:
		return fmt.Sprintf("metal{albedo: %v, fuzz: %g}", m.Albedo, m.Fuzz)
	case KindDielectric:
		return fmt.Sprintf("dielectric{ior: %g}", m.RefractiveIndex)
	default:
		return fmt.Sprintf("%s{albedo: %v}", m.Kind, m.Albedo)
	}
}
