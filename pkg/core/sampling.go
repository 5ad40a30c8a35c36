package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; give every worker its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// RandomRange returns a random float64 in [min, max)
func RandomRange(sampler Sampler, min, max float64) float64 {
	return min + (max-min)*sampler.Get1D()
}

// RandomVec3 returns a vector with each component in [0, 1)
func RandomVec3(sampler Sampler) Vec3 {
	return NewVec3(sampler.Get1D(), sampler.Get1D(), sampler.Get1D())
}

// RandomVec3Range returns a vector with each component in [min, max)
func RandomVec3Range(sampler Sampler, min, max float64) Vec3 {
	return NewVec3(
		RandomRange(sampler, min, max),
		RandomRange(sampler, min, max),
		RandomRange(sampler, min, max),
	)
}

// RandomInUnitSphere rejection-samples a point strictly inside the unit sphere.
// The cube-to-sphere acceptance rate is pi/6, so about 1.9 draws are expected.
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		p := RandomVec3Range(sampler, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomInUnitDisk rejection-samples a point inside the unit disk in the z=0 plane.
// The acceptance rate is pi/4, so about 1.3 draws are expected.
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		p := NewVec3(RandomRange(sampler, -1, 1), RandomRange(sampler, -1, 1), 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomUnitVector returns a random direction on the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}

// RandomOnHemisphere returns a random unit vector in the hemisphere around normal
func RandomOnHemisphere(sampler Sampler, normal Vec3) Vec3 {
	onUnitSphere := RandomUnitVector(sampler)
	if onUnitSphere.Dot(normal) > 0.0 {
		return onUnitSphere
	}
	return onUnitSphere.Negate()
}
