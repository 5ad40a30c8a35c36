package geometry

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// HittableList is an insertion-ordered collection of shapes searched linearly
// for the nearest hit
type HittableList struct {
	shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	return &HittableList{shapes: append([]Shape(nil), shapes...)}
}

// Add appends a shape to the list
func (l *HittableList) Add(shape Shape) {
	l.shapes = append(l.shapes, shape)
}

// Clear removes every shape
func (l *HittableList) Clear() {
	l.shapes = nil
}

// Len returns the number of shapes
func (l *HittableList) Len() int {
	return len(l.shapes)
}

// Shapes returns the shapes in insertion order
func (l *HittableList) Shapes() []Shape {
	return l.shapes
}

// Hit finds the closest intersection among all shapes within rayT
func (l *HittableList) Hit(ray core.Ray, rayT core.Interval, rec *material.HitRecord) bool {
	var tempRec material.HitRecord
	hitAnything := false
	closestSoFar := rayT.Max

	for _, shape := range l.shapes {
		if shape.Hit(ray, core.NewInterval(rayT.Min, closestSoFar), &tempRec) {
			hitAnything = true
			closestSoFar = tempRec.T
			*rec = tempRec
		}
	}

	return hitAnything
}
