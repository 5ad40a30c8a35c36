package material

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// NewDielectric creates a clear refractive material such as glass (1.5) or water (1.33)
func NewDielectric(refractiveIndex float64) *Material {
	return &Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex}
}

// scatterDielectric either reflects or refracts, choosing reflection on total
// internal reflection or with the Schlick probability
func (m *Material) scatterDielectric(rayIn core.Ray, hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass does not absorb
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	// Entering the material (air to glass) or exiting it (glass to air)
	refractionRatio := m.RefractiveIndex
	if hit.FrontFace {
		refractionRatio = 1.0 / m.RefractiveIndex
	}

	unitDirection := rayIn.Direction.Normalize()
	cosTheta := math.Min(unitDirection.Negate().Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = core.Reflect(unitDirection, hit.Normal)
	} else {
		direction = core.Refract(unitDirection, hit.Normal, refractionRatio)
	}

	return ScatterResult{
		Attenuation: attenuation,
		Scattered:   core.NewRay(hit.Point, direction),
	}, true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
