package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/units"
)

func SphereVolume(r units.Length) units.Volume {
	m := r.Meters()
	return units.CubicMeters(4.0 / 3.0 * math.Pi * m * m * m)
}

// SphereRadiusFromVolume inverts SphereVolume. Non-positive volumes yield 0.
func SphereRadiusFromVolume(v units.Volume) units.Length {
	if v <= 0 {
		return 0
	}
	return units.Meters(math.Cbrt(3 * v.CubicMeters() / (4 * math.Pi)))
}

func SphereSurfaceArea(r units.Length) units.Area {
	m := r.Meters()
	return units.SquareMeters(4 * math.Pi * m * m)
}

// ShellVolume is the material volume of a spherical shell of outer radius
// r and wall thickness t.
func ShellVolume(r, t units.Length) units.Volume {
	inner := r - t
	if inner < 0 {
		inner = 0
	}
	return SphereVolume(r) - SphereVolume(inner)
}

// Volume of s. Other uses half its bounding box volume.
func Volume(s Shape) units.Volume {
	switch s := s.(type) {
	case Sphere:
		return SphereVolume(s.Radius)
	case Cuboid:
		h := s.HalfExtents
		return units.CubicMeters(8 * math.Abs(h.X*h.Y*h.Z))
	case Cylinder:
		r := s.Radius.Meters()
		return units.CubicMeters(math.Pi * r * r * s.Height.Meters())
	case Capsule:
		r := s.Radius.Meters()
		return units.CubicMeters(math.Pi*r*r*2*s.HalfHeight.Meters()) + SphereVolume(s.Radius)
	case ConvexHull:
		return hullVolume(s)
	case Other:
		d := s.Max.Sub(s.Min)
		return units.CubicMeters(0.5 * math.Abs(d.X*d.Y*d.Z))
	default:
		panic(fmt.Sprintf("geometry: unhandled shape %T", s))
	}
}

// hullVolume applies the divergence theorem: V = 1/3·Σ A_f·(n_f·p_f).
func hullVolume(h ConvexHull) units.Volume {
	faces := h.Faces
	if len(faces) == 0 {
		faces = hullFaces(h.Points)
	}
	var sum float64
	for _, f := range faces {
		p0 := h.Points[f[0]]
		sum += faceVectorArea(h.Points, f).Dot(p0)
	}
	return units.CubicMeters(math.Abs(sum) / 3)
}

// faceVectorArea is the face normal scaled by the face area (Newell's method).
func faceVectorArea(pts []r3.Vector, face []int) r3.Vector {
	var n r3.Vector
	for i := range face {
		a := pts[face[i]]
		b := pts[face[(i+1)%len(face)]]
		n = n.Add(a.Cross(b))
	}
	return n.Mul(0.5)
}
