package material

import "github.com/df07/go-weekend-raytracer/pkg/core"

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit normal, always facing against the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the ray origin is outside the surface
	Material  *Material // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal must be unit length.
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
