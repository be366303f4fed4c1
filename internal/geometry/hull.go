package geometry

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type planePoint struct {
	orb.Point
	idx int
}

// planeBasis returns two unit vectors spanning the plane orthogonal to the
// unit vector n, with (u, w, n) right-handed.
func planeBasis(n r3.Vector) (u, w r3.Vector) {
	u = n.Ortho()
	w = n.Cross(u)
	return u, w
}

func project(points []r3.Vector, indices []int, n r3.Vector) []planePoint {
	u, w := planeBasis(n)
	out := make([]planePoint, len(indices))
	for i, idx := range indices {
		p := points[idx]
		out[i] = planePoint{Point: orb.Point{p.Dot(u), p.Dot(w)}, idx: idx}
	}
	return out
}

// convexHull2D is Andrew's monotone chain. The result is counter-clockwise
// without collinear points. The input is not modified.
func convexHull2D(pts []planePoint) []planePoint {
	n := len(pts)
	if n <= 1 {
		return append([]planePoint{}, pts...)
	}

	sorted := append([]planePoint{}, pts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X() == sorted[j].X() {
			return sorted[i].Y() < sorted[j].Y()
		}
		return sorted[i].X() < sorted[j].X()
	})

	cross := func(o, a, b planePoint) float64 {
		return (a.X()-o.X())*(b.Y()-o.Y()) - (a.Y()-o.Y())*(b.X()-o.X())
	}

	lower := make([]planePoint, 0, n)
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]planePoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// silhouetteArea is the area of the shadow that points cast on the plane
// orthogonal to the unit vector n.
func silhouetteArea(points []r3.Vector, n r3.Vector) float64 {
	indices := make([]int, len(points))
	for i := range indices {
		indices[i] = i
	}
	hull := convexHull2D(project(points, indices, n))
	if len(hull) < 3 {
		return 0
	}
	ring := make(orb.Ring, 0, len(hull)+1)
	for _, p := range hull {
		ring = append(ring, p.Point)
	}
	ring = append(ring, hull[0].Point)
	return math.Abs(planar.Area(ring))
}

type plane struct {
	normal r3.Vector
	offset float64
}

// hullFaces derives the outward-wound faces of the convex hull of points by
// gift wrapping: starting from one supporting face, each unmatched edge is
// pivoted to find its neighbour, O(n) per face. Coplanar points are merged
// into one polygonal face. Fewer than four non-coplanar points yield no
// faces.
func hullFaces(points []r3.Vector) [][]int {
	n := len(points)
	if n < 4 {
		return nil
	}
	min, max := AABB(ConvexHull{Points: points})
	eps := 1e-9 * math.Max(1, max.Sub(min).Norm())

	first, ok := firstSupport(points, eps)
	if !ok {
		return nil
	}

	var (
		planes []plane
		faces  [][]int
		queue  [][2]int
	)
	edges := make(map[[2]int]bool)

	// addFace records the face lying in pl and queues its edges; ok is false
	// when the plane touches the hull in a single edge.
	addFace := func(pl plane) (face []int, ok bool) {
		if seen(planes, pl.normal, pl.offset, eps) {
			return nil, true
		}
		var onPlane []int
		for idx, p := range points {
			if math.Abs(pl.normal.Dot(p)-pl.offset) <= eps {
				onPlane = append(onPlane, idx)
			}
		}
		ring := convexHull2D(project(points, onPlane, pl.normal))
		if len(ring) < 3 {
			face = make([]int, len(ring))
			for i, p := range ring {
				face[i] = p.idx
			}
			return face, false
		}
		planes = append(planes, pl)
		face = make([]int, len(ring))
		for i, p := range ring {
			face[i] = p.idx
		}
		for i := range face {
			e := [2]int{face[i], face[(i+1)%len(face)]}
			edges[e] = true
			queue = append(queue, e)
		}
		faces = append(faces, face)
		return face, true
	}

	flat := true
	for _, p := range points {
		if math.Abs(first.normal.Dot(p)-first.offset) > eps {
			flat = false
			break
		}
	}
	if flat {
		return nil
	}

	face, isFace := addFace(first)
	if !isFace {
		// The supporting plane only grazes an edge; wrap around it once.
		if len(face) < 2 {
			return nil
		}
		pl, ok := pivot(points, face[0], face[1], eps)
		if !ok {
			return nil
		}
		if _, isFace = addFace(pl); !isFace {
			return nil
		}
	}

	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		if edges[[2]int{e[1], e[0]}] {
			continue
		}
		pl, ok := pivot(points, e[0], e[1], eps)
		if !ok {
			continue
		}
		addFace(pl)
	}
	return faces
}

// firstSupport returns a supporting plane through the lexicographically
// smallest point. The plane contains the y axis through that point and is
// rotated about it until every other point lies behind it.
func firstSupport(points []r3.Vector, eps float64) (plane, bool) {
	p0 := points[0]
	for _, p := range points[1:] {
		if p.X < p0.X || p.X == p0.X && (p.Y < p0.Y || p.Y == p0.Y && p.Z < p0.Z) {
			p0 = p
		}
	}

	best, bestAngle := r3.Vector{}, math.Inf(-1)
	for _, p := range points {
		dx, dz := p.X-p0.X, p.Z-p0.Z
		if math.Hypot(dx, dz) <= eps {
			continue
		}
		if a := math.Atan2(dz, dx); a > bestAngle {
			best, bestAngle = r3.Vector{X: dx, Z: dz}, a
		}
	}
	if math.IsInf(bestAngle, -1) {
		return plane{}, false
	}
	normal := r3.Vector{X: -best.Z, Z: best.X}.Normalize()
	return plane{normal: normal, offset: normal.Dot(p0)}, true
}

// pivot finds the hull face that holds the directed edge b→a, given that
// a→b is an edge of the hull. Every point ends up on or behind the plane.
func pivot(points []r3.Vector, a, b int, eps float64) (plane, bool) {
	pa, pb := points[a], points[b]
	axis := pa.Sub(pb)
	if axis.Norm() <= eps {
		return plane{}, false
	}

	c := -1
	var normal r3.Vector
	for idx, p := range points {
		if idx == a || idx == b {
			continue
		}
		cand := axis.Cross(p.Sub(pb))
		if cand.Norm() <= eps*axis.Norm() {
			continue
		}
		if c < 0 || normal.Dot(p.Sub(pb)) > eps*normal.Norm() {
			c, normal = idx, cand
		}
	}
	if c < 0 {
		return plane{}, false
	}
	normal = normal.Normalize()
	return plane{normal: normal, offset: normal.Dot(pb)}, true
}

func seen(planes []plane, normal r3.Vector, offset, eps float64) bool {
	for _, p := range planes {
		if p.normal.Dot(normal) > 1-1e-9 && math.Abs(p.offset-offset) <= eps {
			return true
		}
	}
	return false
}
