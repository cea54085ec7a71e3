package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// R2 predicates used by planar triangulations. Tolerances are absolute and
// chosen by the caller relative to the size of its working set.

// Orient returns twice the signed area of triangle abc. Positive when
// a, b, c are in counter-clockwise order.
func Orient(a, b, c r2.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// InCircle is positive when d lies inside the circumcircle of the
// counter-clockwise triangle abc.
func InCircle(a, b, c, d r2.Vec) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy
	return adx*(bdy*cd-bd*cdy) - ady*(bdx*cd-bd*cdx) + ad*(bdx*cdy-bdy*cdx)
}

// SegmentsCross reports whether the open segments ab and cd cross at a
// single interior point. Touching and collinear overlap return false.
func SegmentsCross(a, b, c, d r2.Vec, tol float64) bool {
	o1 := Orient(a, b, c)
	o2 := Orient(a, b, d)
	o3 := Orient(c, d, a)
	o4 := Orient(c, d, b)
	return ((o1 > tol && o2 < -tol) || (o1 < -tol && o2 > tol)) &&
		((o3 > tol && o4 < -tol) || (o3 < -tol && o4 > tol))
}

// OnSegment reports whether p lies on the open segment ab within tol.
func OnSegment(a, b, p r2.Vec, tol float64) bool {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return false
	}
	if math.Abs(Orient(a, b, p)) > tol*math.Sqrt(l2) {
		return false
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	eps := tol / math.Sqrt(l2)
	return t > eps && t < 1-eps
}

// Triangle is a triangle in the plane.
type Triangle [3]r2.Vec

// Overlap reports whether two planar triangles share interior area or
// cross at their edges.
func (t Triangle) Overlap(u Triangle, tol float64) bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if SegmentsCross(t[i], t[(i+1)%3], u[j], u[(j+1)%3], tol) {
				return true
			}
		}
	}
	return t.Contains(u.Centroid(), tol) || u.Contains(t.Centroid(), tol)
}

// Contains reports whether p is strictly inside the triangle regardless
// of its winding.
func (t Triangle) Contains(p r2.Vec, tol float64) bool {
	o1 := Orient(t[0], t[1], p)
	o2 := Orient(t[1], t[2], p)
	o3 := Orient(t[2], t[0], p)
	return (o1 > tol && o2 > tol && o3 > tol) || (o1 < -tol && o2 < -tol && o3 < -tol)
}

func (t Triangle) Centroid() r2.Vec {
	return r2.Scale(1.0/3, r2.Add(t[0], r2.Add(t[1], t[2])))
}
