package material

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// NewLambertian creates a perfectly diffuse material
func NewLambertian(albedo core.Vec3) *Material {
	return &Material{Kind: KindLambertian, Albedo: albedo}
}

// scatterLambertian bounces around the normal with a unit-sphere offset,
// which yields a cosine-weighted direction. Lambertian surfaces never absorb.
func (m *Material) scatterLambertian(hit *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.RandomUnitVector(sampler))

	// The random vector can cancel the normal almost exactly
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Attenuation: m.Albedo,
		Scattered:   core.NewRay(hit.Point, scatterDirection),
	}, true
}
