package native

import (
	"math"

	"github.com/soypat/meshclip/internal/d2"
	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

type locKind uint8

const (
	onFace locKind = iota
	onEdge
	onVertex
)

// location places a point on a mesh: inside a face, on an edge or at a vertex.
type location struct {
	kind   locKind
	face   int
	edge   surface.Edge
	vertex int
}

// seamCandidate is a point where a face of one mesh meets a face of the other.
type seamCandidate struct {
	p   r3.Vec
	loc [2]location
}

// pairTest intersects faces of two meshes.
type pairTest struct {
	m   [2]*surface.Mesh
	tol float64
}

func newPairTest(a, b *surface.Mesh) *pairTest {
	diag := a.Bounds().Extend(b.Bounds()).Diagonal()
	return &pairTest{m: [2]*surface.Mesh{a, b}, tol: surface.SnapTolerance(diag)}
}

// candidates appends to dst the points where face fa of the first mesh
// meets face fb of the second: edges of either face crossing the other and
// vertices of either face lying on the other. coplanar reports triangles
// sharing a plane, for which no candidates are produced.
func (pt *pairTest) candidates(fa, fb int, dst []seamCandidate) (_ []seamCandidate, coplanar bool) {
	faces := [2]int{fa, fb}
	tris := [2]d3.Triangle{pt.m[0].Triangle(fa), pt.m[1].Triangle(fb)}
	normals := [2]r3.Vec{tris[0].Normal(), tris[1].Normal()}
	if normals[0] == (r3.Vec{}) || normals[1] == (r3.Vec{}) {
		return dst, false
	}
	var dist [2][3]float64
	for s := 0; s < 2; s++ {
		o := 1 - s
		pos, neg := 0, 0
		for i := 0; i < 3; i++ {
			d := r3.Dot(normals[o], r3.Sub(tris[s][i], tris[o][0]))
			if math.Abs(d) <= pt.tol {
				d = 0
			}
			dist[s][i] = d
			switch {
			case d > 0:
				pos++
			case d < 0:
				neg++
			}
		}
		if pos == 3 || neg == 3 {
			return dst, false
		}
		if pos == 0 && neg == 0 {
			return dst, true
		}
	}
	for s := 0; s < 2; s++ {
		o := 1 - s
		face := pt.m[s].Faces[faces[s]]
		for i := 0; i < 3; i++ {
			if dist[s][i] != 0 {
				continue
			}
			p := tris[s][i]
			if loc, ok := pt.locate(o, faces[o], tris[o], p); ok {
				var c seamCandidate
				c.p = p
				c.loc[s] = location{kind: onVertex, vertex: face[i]}
				c.loc[o] = loc
				dst = append(dst, c)
			}
		}
		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			di, dj := dist[s][i], dist[s][j]
			if !(di < 0 && dj > 0) && !(di > 0 && dj < 0) {
				continue
			}
			vi, vj := face[i], face[j]
			pi, pj := tris[s][i], tris[s][j]
			if vi > vj {
				// Canonical direction so both faces of the edge compute the same point.
				vi, vj, pi, pj, di, dj = vj, vi, pj, pi, dj, di
			}
			p := d3.Lerp(pi, pj, di/(di-dj))
			if loc, ok := pt.locate(o, faces[o], tris[o], p); ok {
				var c seamCandidate
				c.p = p
				c.loc[s] = location{kind: onEdge, edge: surface.MakeEdge(vi, vj)}
				c.loc[o] = loc
				dst = append(dst, c)
			}
		}
	}
	return dst, false
}

// locate classifies p against face f of mesh s with geometry tri.
func (pt *pairTest) locate(s, f int, tri d3.Triangle, p r3.Vec) (location, bool) {
	b, ok := tri.Barycentric(p)
	if !ok {
		return location{}, false
	}
	zeros, zero := 0, -1
	for k, c := range b {
		if c < -baryTol {
			return location{}, false
		}
		if c <= baryTol {
			zeros++
			zero = k
		}
	}
	face := pt.m[s].Faces[f]
	switch zeros {
	case 0:
		return location{kind: onFace, face: f}, true
	case 1:
		return location{kind: onEdge, edge: surface.MakeEdge(face[(zero+1)%3], face[(zero+2)%3])}, true
	}
	best := 0
	for k := range b {
		if b[k] > b[best] {
			best = k
		}
	}
	return location{kind: onVertex, vertex: face[best]}, true
}

// coplanarOverlap reports whether two coplanar faces share area.
func (pt *pairTest) coplanarOverlap(fa, fb int) bool {
	ta, tb := pt.m[0].Triangle(fa), pt.m[1].Triangle(fb)
	axis := d3.DominantAxis(ta.Cross())
	var a, b d2.Triangle
	for i := 0; i < 3; i++ {
		a[i] = dropAxis(ta[i], axis)
		b[i] = dropAxis(tb[i], axis)
	}
	return a.Overlap(b, pt.tol*pt.tol)
}

func dropAxis(v r3.Vec, axis int) r2.Vec {
	switch axis {
	case 0:
		return r2.Vec{X: v.Y, Y: v.Z}
	case 1:
		return r2.Vec{X: v.Z, Y: v.X}
	}
	return r2.Vec{X: v.X, Y: v.Y}
}

// DoIntersect reports whether the surfaces of a and b touch or cross.
func (k *Kernel) DoIntersect(a, b *surface.Mesh) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	pt := newPairTest(a, b)
	if !a.Bounds().Enlarge(pt.tol).Overlaps(b.Bounds()) {
		return false
	}
	var buf []seamCandidate
	for _, pair := range overlappingPairs(faceBoxes(a, pt.tol), faceBoxes(b, pt.tol)) {
		var coplanar bool
		buf, coplanar = pt.candidates(pair[0], pair[1], buf[:0])
		if len(buf) > 0 || (coplanar && pt.coplanarOverlap(pair[0], pair[1])) {
			return true
		}
	}
	return false
}
