package surface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Plane is an oriented plane through Origin. The positive side is the one
// Normal points to. Normal need not be unit length.
type Plane struct {
	Origin r3.Vec
	Normal r3.Vec
}

// SignedDistance returns the distance of p to the plane, positive on the
// side Normal points to. A zero normal yields zero for every point.
func (p Plane) SignedDistance(q r3.Vec) float64 {
	n := r3.Norm(p.Normal)
	if n == 0 {
		return 0
	}
	return r3.Dot(p.Normal, r3.Sub(q, p.Origin)) / n
}

// Side returns +1 or -1 for points farther than tol from the plane on the
// positive or negative side and 0 otherwise.
func (p Plane) Side(q r3.Vec, tol float64) int {
	d := p.SignedDistance(q)
	switch {
	case d > tol:
		return 1
	case d < -tol:
		return -1
	}
	return 0
}

// Sides counts the vertices of m lying strictly on each side of p.
// Vertices within SnapTolerance of the plane count as on it.
func (p Plane) Sides(m *Mesh) (negative, positive int) {
	tol := SnapTolerance(m.Diagonal())
	for _, v := range m.Vertices {
		switch p.Side(v, tol) {
		case 1:
			positive++
		case -1:
			negative++
		}
	}
	return negative, positive
}

// Crosses reports whether m has vertices strictly on both sides of p,
// with the tolerance of Sides. It stops at the first vertex that settles it.
func (p Plane) Crosses(m *Mesh) bool {
	tol := SnapTolerance(m.Diagonal())
	var neg, pos bool
	for _, v := range m.Vertices {
		switch p.Side(v, tol) {
		case 1:
			pos = true
		case -1:
			neg = true
		default:
			continue
		}
		if neg && pos {
			return true
		}
	}
	return false
}

// SnapTolerance returns the distance under which points of a working set
// with bounding box diagonal diag are taken to coincide, or to lie on a
// plane.
func SnapTolerance(diag float64) float64 {
	if diag <= 0 || math.IsNaN(diag) || math.IsInf(diag, 0) {
		return 1e-12
	}
	return 1e-10 * diag
}
