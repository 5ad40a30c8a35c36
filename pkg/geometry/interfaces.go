package geometry

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays.
// Hit fills rec and returns true only for an intersection with t strictly
// inside rayT; on a miss rec is left untouched.
type Shape interface {
	Hit(ray core.Ray, rayT core.Interval, rec *material.HitRecord) bool
}
