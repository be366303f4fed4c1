package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/san-kum/buoy/internal/units"
)

// ProjectedArea is the area s presents to a flow along dir. dir need not be
// normalized but must be finite and non-zero.
func ProjectedArea(s Shape, dir r3.Vector) (units.Area, error) {
	if !finiteVector(dir) || dir.Norm() == 0 {
		return 0, ErrZeroDirection
	}
	n := dir.Normalize()
	nx, ny, nz := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)

	switch s := s.(type) {
	case Sphere:
		r := s.Radius.Meters()
		return units.SquareMeters(math.Pi * r * r), nil
	case Cuboid:
		a, b, c := s.HalfExtents.X, s.HalfExtents.Y, s.HalfExtents.Z
		return units.SquareMeters(2 * (a*b*nz + b*c*nx + a*c*ny)), nil
	case Cylinder:
		return units.SquareMeters(roundArea(s.Radius.Meters(), s.Height.Meters(), nx, ny, nz)), nil
	case Capsule:
		return units.SquareMeters(roundArea(s.Radius.Meters(), s.HalfHeight.Meters(), nx, ny, nz)), nil
	case ConvexHull:
		return units.SquareMeters(silhouetteArea(s.Points, n)), nil
	case Other:
		return units.SquareMeters(silhouetteArea(corners(s.Min, s.Max), n)), nil
	default:
		panic(fmt.Sprintf("geometry: unhandled shape %T", s))
	}
}

// roundArea covers cylinders and capsules: 2rh|n_z| + πr²(|n_x|+|n_y|).
func roundArea(r, h, nx, ny, nz float64) float64 {
	return 2*r*h*nz + math.Pi*r*r*(nx+ny)
}

// ProjectedAreaOrDefault is ProjectedArea with a zero direction replaced by Up.
func ProjectedAreaOrDefault(s Shape, dir r3.Vector) units.Area {
	a, err := ProjectedArea(s, dir)
	if errors.Is(err, ErrZeroDirection) {
		a, _ = ProjectedArea(s, Up)
	}
	return a
}
