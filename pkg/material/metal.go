package material

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// NewMetal creates a metal that reports every scatter
func NewMetal(albedo core.Vec3, fuzz float64) *Material {
	return NewMetalWithPolicy(albedo, fuzz, MetalAlwaysScatter)
}

// NewMetalWithPolicy creates a metal with an explicit below-surface policy
func NewMetalWithPolicy(albedo core.Vec3, fuzz float64, policy MetalPolicy) *Material {
	// Clamp fuzz to valid range
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0.0 {
		fuzz = 0.0
	}
	return &Material{Kind: KindMetal, Albedo: albedo, Fuzz: fuzz, Policy: policy}
}

// scatterMetal reflects the incoming direction and perturbs it by Fuzz
func (m *Material) scatterMetal(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := core.Reflect(rayIn.Direction.Normalize(), hit.Normal)
	reflected = reflected.Add(core.RandomUnitVector(sampler).Multiply(m.Fuzz))

	result := ScatterResult{
		Attenuation: m.Albedo,
		Scattered:   core.NewRay(hit.Point, reflected),
	}

	if m.Policy == MetalRejectBelowSurface && reflected.Dot(hit.Normal) <= 0 {
		return result, false
	}
	return result, true
}
