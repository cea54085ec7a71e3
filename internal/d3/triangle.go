package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangle in 3D space with vertices in counter-clockwise
// order when seen from the side its normal points to.
type Triangle [3]r3.Vec

// Cross returns (b-a)x(c-a), twice the area-weighted normal.
func (t Triangle) Cross() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Normal returns the unit normal or the zero vector for degenerate triangles.
func (t Triangle) Normal() r3.Vec {
	n := t.Cross()
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return 0.5 * r3.Norm(t.Cross())
}

func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1.0/3, r3.Add(t[0], r3.Add(t[1], t[2])))
}

// EdgeLengths returns the length of edges t0-t1, t1-t2 and t2-t0.
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{Dist(t[0], t[1]), Dist(t[1], t[2]), Dist(t[2], t[0])}
}

// Bounds returns the bounding box of the triangle.
func (t Triangle) Bounds() Box {
	return Box{
		Min: MinElem(t[0], MinElem(t[1], t[2])),
		Max: MaxElem(t[0], MaxElem(t[1], t[2])),
	}
}

// Barycentric returns the barycentric coordinates of the projection of p onto
// the triangle's plane. ok is false for degenerate triangles.
func (t Triangle) Barycentric(p r3.Vec) (b [3]float64, ok bool) {
	v0 := r3.Sub(t[1], t[0])
	v1 := r3.Sub(t[2], t[0])
	v2 := r3.Sub(p, t[0])
	d00 := r3.Dot(v0, v0)
	d01 := r3.Dot(v0, v1)
	d11 := r3.Dot(v1, v1)
	d20 := r3.Dot(v2, v0)
	d21 := r3.Dot(v2, v1)
	den := d00*d11 - d01*d01
	if den <= 1e-300 || den <= 1e-14*d00*d11 {
		return b, false
	}
	v := (d11*d20 - d01*d21) / den
	w := (d00*d21 - d01*d20) / den
	return [3]float64{1 - v - w, v, w}, true
}

// MaxAngleCos returns the cosine of the largest interior angle and
// the index of the vertex where it occurs.
func (t Triangle) MaxAngleCos() (cos float64, vertex int) {
	cos = 2
	for i := 0; i < 3; i++ {
		a := r3.Sub(t[(i+1)%3], t[i])
		b := r3.Sub(t[(i+2)%3], t[i])
		la, lb := r3.Norm(a), r3.Norm(b)
		if la == 0 || lb == 0 {
			continue
		}
		c := r3.Dot(a, b) / (la * lb)
		if c < cos {
			cos, vertex = c, i
		}
	}
	return cos, vertex
}

// SolidAngle returns the signed solid angle subtended by the triangle
// as seen from p, using the Van Oosterom-Strackee formula.
func (t Triangle) SolidAngle(p r3.Vec) float64 {
	a := r3.Sub(t[0], p)
	b := r3.Sub(t[1], p)
	c := r3.Sub(t[2], p)
	la, lb, lc := r3.Norm(a), r3.Norm(b), r3.Norm(c)
	num := r3.Dot(a, r3.Cross(b, c))
	den := la*lb*lc + r3.Dot(a, b)*lc + r3.Dot(a, c)*lb + r3.Dot(b, c)*la
	return 2 * math.Atan2(num, den)
}
