// Package geometry computes volumes and projected areas of collider shapes.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/units"
)

var (
	ErrZeroDirection = errors.New("geometry: zero direction")
	ErrInvalidShape  = errors.New("geometry: invalid shape")
)

type InvalidShapeError struct {
	Shape  string
	Reason string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("geometry: invalid %s: %s", e.Shape, e.Reason)
}

func (e *InvalidShapeError) Unwrap() error {
	return ErrInvalidShape
}

// Up is the world up axis. Altitude is measured along it.
var Up = r3.Vector{X: 0, Y: 1, Z: 0}

// Shape is the closed set of collider shapes. Only types in this package
// implement it; Volume and ProjectedArea switch over all of them.
type Shape interface {
	shape()
	Kind() string
}

type Sphere struct {
	Radius units.Length
}

// Cuboid is a box centered on the origin.
type Cuboid struct {
	HalfExtents r3.Vector
}

// Cylinder is aligned with the Y axis.
type Cylinder struct {
	Radius units.Length
	Height units.Length
}

// Capsule is a cylinder of height 2·HalfHeight capped by two hemispheres.
type Capsule struct {
	Radius     units.Length
	HalfHeight units.Length
}

// ConvexHull is a convex polyhedron. Faces index into Points; each face is
// a planar polygon wound counter-clockwise seen from outside. When Faces is
// empty they are derived from the points.
type ConvexHull struct {
	Points []r3.Vector
	Faces  [][]int
}

// Other stands in for any shape without an analytic formula, described by
// its axis-aligned bounding box.
type Other struct {
	Min r3.Vector
	Max r3.Vector
}

func (Sphere) shape()     {}
func (Cuboid) shape()     {}
func (Cylinder) shape()   {}
func (Capsule) shape()    {}
func (ConvexHull) shape() {}
func (Other) shape()      {}

func (Sphere) Kind() string     { return "sphere" }
func (Cuboid) Kind() string     { return "cuboid" }
func (Cylinder) Kind() string   { return "cylinder" }
func (Capsule) Kind() string    { return "capsule" }
func (ConvexHull) Kind() string { return "convex_hull" }
func (Other) Kind() string      { return "other" }

func finiteVector(v r3.Vector) bool {
	return units.Finite(v.X, v.Y, v.Z)
}

func nonNegative(kind, name string, v float64) error {
	if !units.Finite(v) || v < 0 {
		return &InvalidShapeError{Shape: kind, Reason: fmt.Sprintf("%s must be finite and non-negative, got %g", name, v)}
	}
	return nil
}

// Validate reports whether the shape's dimensions are usable.
func Validate(s Shape) error {
	switch s := s.(type) {
	case Sphere:
		return nonNegative(s.Kind(), "radius", s.Radius.Meters())
	case Cuboid:
		h := s.HalfExtents
		for _, c := range []struct {
			name string
			v    float64
		}{{"half extent x", h.X}, {"half extent y", h.Y}, {"half extent z", h.Z}} {
			if err := nonNegative(s.Kind(), c.name, c.v); err != nil {
				return err
			}
		}
		return nil
	case Cylinder:
		if err := nonNegative(s.Kind(), "radius", s.Radius.Meters()); err != nil {
			return err
		}
		return nonNegative(s.Kind(), "height", s.Height.Meters())
	case Capsule:
		if err := nonNegative(s.Kind(), "radius", s.Radius.Meters()); err != nil {
			return err
		}
		return nonNegative(s.Kind(), "half height", s.HalfHeight.Meters())
	case ConvexHull:
		for i, p := range s.Points {
			if !finiteVector(p) {
				return &InvalidShapeError{Shape: s.Kind(), Reason: fmt.Sprintf("point %d is not finite", i)}
			}
		}
		for i, f := range s.Faces {
			if len(f) < 3 {
				return &InvalidShapeError{Shape: s.Kind(), Reason: fmt.Sprintf("face %d has %d vertices", i, len(f))}
			}
			for _, idx := range f {
				if idx < 0 || idx >= len(s.Points) {
					return &InvalidShapeError{Shape: s.Kind(), Reason: fmt.Sprintf("face %d references point %d", i, idx)}
				}
			}
		}
		return nil
	case Other:
		if !finiteVector(s.Min) || !finiteVector(s.Max) {
			return &InvalidShapeError{Shape: s.Kind(), Reason: "bounds are not finite"}
		}
		if s.Min.X > s.Max.X || s.Min.Y > s.Max.Y || s.Min.Z > s.Max.Z {
			return &InvalidShapeError{Shape: s.Kind(), Reason: "min exceeds max"}
		}
		return nil
	case nil:
		return &InvalidShapeError{Shape: "nil", Reason: "no shape"}
	default:
		panic(fmt.Sprintf("geometry: unhandled shape %T", s))
	}
}

// AABB returns the axis-aligned bounding box of s in its local frame.
func AABB(s Shape) (min, max r3.Vector) {
	switch s := s.(type) {
	case Sphere:
		r := s.Radius.Meters()
		return r3.Vector{X: -r, Y: -r, Z: -r}, r3.Vector{X: r, Y: r, Z: r}
	case Cuboid:
		return s.HalfExtents.Mul(-1), s.HalfExtents
	case Cylinder:
		r, h := s.Radius.Meters(), s.Height.Meters()/2
		return r3.Vector{X: -r, Y: -h, Z: -r}, r3.Vector{X: r, Y: h, Z: r}
	case Capsule:
		r := s.Radius.Meters()
		h := s.HalfHeight.Meters() + r
		return r3.Vector{X: -r, Y: -h, Z: -r}, r3.Vector{X: r, Y: h, Z: r}
	case ConvexHull:
		if len(s.Points) == 0 {
			return r3.Vector{}, r3.Vector{}
		}
		min, max = s.Points[0], s.Points[0]
		for _, p := range s.Points[1:] {
			min = r3.Vector{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
			max = r3.Vector{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
		}
		return min, max
	case Other:
		return s.Min, s.Max
	default:
		panic(fmt.Sprintf("geometry: unhandled shape %T", s))
	}
}

func corners(min, max r3.Vector) []r3.Vector {
	pts := make([]r3.Vector, 0, 8)
	for _, x := range []float64{min.X, max.X} {
		for _, y := range []float64{min.Y, max.Y} {
			for _, z := range []float64{min.Z, max.Z} {
				pts = append(pts, r3.Vector{X: x, Y: y, Z: z})
			}
		}
	}
	return pts
}
