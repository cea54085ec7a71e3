package native

import (
	"math"
	"sort"

	"github.com/soypat/meshclip/internal/d2"
	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// faceTriangulation retriangulates a single mesh face in its own plane so
// that inserted points become vertices and constraint segments become edges.
// Vertices are global mesh indices; triangles keep the face orientation.
type faceTriangulation struct {
	origin r3.Vec
	u, v   r3.Vec
	pts    map[int]r2.Vec
	tris   [][3]int
	fixed  surface.EdgeSet
	// tol is a distance in the face plane.
	tol float64
}

func newFaceTriangulation(tri d3.Triangle, face [3]int, tol float64) (*faceTriangulation, bool) {
	n := tri.Normal()
	e := r3.Sub(tri[1], tri[0])
	if n == (r3.Vec{}) || r3.Norm(e) == 0 {
		return nil, false
	}
	u := r3.Unit(e)
	ft := &faceTriangulation{
		origin: tri[0],
		u:      u,
		v:      r3.Cross(n, u),
		pts:    make(map[int]r2.Vec, 8),
		tris:   [][3]int{face},
		fixed:  make(surface.EdgeSet),
		tol:    tol,
	}
	for i, id := range face {
		ft.pts[id] = ft.project(tri[i])
	}
	return ft, true
}

func (ft *faceTriangulation) project(p r3.Vec) r2.Vec {
	d := r3.Sub(p, ft.origin)
	return r2.Vec{X: r3.Dot(d, ft.u), Y: r3.Dot(d, ft.v)}
}

// insertOnBoundary inserts id on the boundary segment prev->next, which
// must be an edge of a current triangle in face orientation.
func (ft *faceTriangulation) insertOnBoundary(prev, next, id int, p r3.Vec) bool {
	for i, t := range ft.tris {
		for j := 0; j < 3; j++ {
			if t[j] == prev && t[(j+1)%3] == next {
				c := t[(j+2)%3]
				ft.pts[id] = ft.project(p)
				ft.tris[i] = [3]int{prev, id, c}
				ft.tris = append(ft.tris, [3]int{id, next, c})
				return true
			}
		}
	}
	return false
}

// orient returns the signed distances of p to the three edges of triangle t.
func (ft *faceTriangulation) orient(t [3]int, p r2.Vec) (o [3]float64) {
	for k := 0; k < 3; k++ {
		a, b := ft.pts[t[k]], ft.pts[t[(k+1)%3]]
		l := r2.Norm(r2.Sub(b, a))
		if l == 0 {
			o[k] = math.Inf(-1)
			continue
		}
		o[k] = d2.Orient(a, b, p) / l
	}
	return o
}

// insertInterior inserts an interior point, splitting the triangle that
// contains it or the interior edge it lies on.
func (ft *faceTriangulation) insertInterior(id int, p r3.Vec) bool {
	if _, ok := ft.pts[id]; ok {
		return true
	}
	q := ft.project(p)
	best, bestScore := -1, math.Inf(-1)
	for i, t := range ft.tris {
		o := ft.orient(t, q)
		score := math.Min(o[0], math.Min(o[1], o[2]))
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return false
	}
	t := ft.tris[best]
	o := ft.orient(t, q)
	near, edge := 0, -1
	for k := range o {
		if o[k] <= ft.tol {
			near++
			edge = k
		}
	}
	switch {
	case near == 1 && !ft.isBoundary(t[edge], t[(edge+1)%3]):
		ft.pts[id] = q
		ft.splitEdge(t[edge], t[(edge+1)%3], id)
		return true
	case near <= 1 && bestScore > 0:
		ft.pts[id] = q
		ft.tris[best] = [3]int{t[0], t[1], id}
		ft.tris = append(ft.tris, [3]int{t[1], t[2], id}, [3]int{t[2], t[0], id})
		return true
	}
	return false
}

// isBoundary reports whether edge ab belongs to a single triangle.
func (ft *faceTriangulation) isBoundary(a, b int) bool {
	n := 0
	for _, t := range ft.tris {
		if hasEdge(t, a, b) {
			n++
		}
	}
	return n == 1
}

func hasEdge(t [3]int, a, b int) bool {
	for j := 0; j < 3; j++ {
		x, y := t[j], t[(j+1)%3]
		if (x == a && y == b) || (x == b && y == a) {
			return true
		}
	}
	return false
}

func (ft *faceTriangulation) splitEdge(a, b, id int) {
	n := len(ft.tris)
	for i := 0; i < n; i++ {
		t := ft.tris[i]
		for j := 0; j < 3; j++ {
			x, y := t[j], t[(j+1)%3]
			if (x == a && y == b) || (x == b && y == a) {
				z := t[(j+2)%3]
				ft.tris[i] = [3]int{x, id, z}
				ft.tris = append(ft.tris, [3]int{id, y, z})
				break
			}
		}
	}
	if ft.fixed.HasPair(a, b) {
		ft.fixed.Remove(surface.MakeEdge(a, b))
		ft.fixed.Add(surface.MakeEdge(a, id))
		ft.fixed.Add(surface.MakeEdge(id, b))
	}
}

func (ft *faceTriangulation) hasEdge(a, b int) bool {
	for _, t := range ft.tris {
		if hasEdge(t, a, b) {
			return true
		}
	}
	return false
}

// enforce makes segment ab a chain of edges, flipping the edges it crosses.
// It returns the edges making up the segment.
func (ft *faceTriangulation) enforce(a, b int) ([]surface.Edge, bool) {
	if a == b {
		return nil, true
	}
	pa, okA := ft.pts[a]
	pb, okB := ft.pts[b]
	if !okA || !okB {
		return nil, false
	}
	// Vertices lying on the segment split it.
	type onSeg struct {
		id int
		t  float64
	}
	var between []onSeg
	ab := r2.Sub(pb, pa)
	l2 := r2.Norm2(ab)
	for id, p := range ft.pts {
		if id != a && id != b && d2.OnSegment(pa, pb, p, ft.tol) {
			between = append(between, onSeg{id: id, t: r2.Dot(r2.Sub(p, pa), ab) / l2})
		}
	}
	if len(between) > 0 {
		sort.Slice(between, func(i, j int) bool { return between[i].t < between[j].t })
		var edges []surface.Edge
		prev := a
		for _, s := range between {
			sub, ok := ft.enforce(prev, s.id)
			if !ok {
				return nil, false
			}
			edges = append(edges, sub...)
			prev = s.id
		}
		sub, ok := ft.enforce(prev, b)
		if !ok {
			return nil, false
		}
		return append(edges, sub...), true
	}
	limit := 8*len(ft.tris)*len(ft.tris) + 16
	for iter := 0; !ft.hasEdge(a, b); iter++ {
		if iter > limit {
			return nil, false
		}
		crossing := ft.crossingEdges(pa, pb)
		if len(crossing) == 0 {
			return nil, false
		}
		flipped := false
		// Prefer flips that resolve the crossing.
		for pass := 0; pass < 2 && !flipped; pass++ {
			for _, e := range crossing {
				if ft.fixed.Has(e) {
					return nil, false
				}
				c, d, ok := ft.flipTargets(e)
				if !ok {
					continue
				}
				if pass == 0 && c != a && c != b && d != a && d != b &&
					d2.SegmentsCross(pa, pb, ft.pts[c], ft.pts[d], 0) {
					continue
				}
				if ft.flip(e) {
					flipped = true
					break
				}
			}
		}
		if !flipped {
			return nil, false
		}
	}
	e := surface.MakeEdge(a, b)
	ft.fixed.Add(e)
	return []surface.Edge{e}, true
}

// crossingEdges returns the interior edges properly crossed by segment pq.
func (ft *faceTriangulation) crossingEdges(p, q r2.Vec) []surface.Edge {
	seen := make(surface.EdgeSet)
	var out []surface.Edge
	for _, t := range ft.tris {
		for j := 0; j < 3; j++ {
			e := surface.MakeEdge(t[j], t[(j+1)%3])
			if seen.Has(e) {
				continue
			}
			seen.Add(e)
			if d2.SegmentsCross(p, q, ft.pts[e[0]], ft.pts[e[1]], 0) {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// flipTargets returns the two triangles sharing e and the vertices
// opposite to it, c in the triangle holding e[0]->e[1].
func (ft *faceTriangulation) flipTargets(e surface.Edge) (c, d int, ok bool) {
	t1, t2 := ft.edgeTriangles(e)
	if t1 < 0 || t2 < 0 {
		return 0, 0, false
	}
	return surface.Opposite(ft.tris[t1], e), surface.Opposite(ft.tris[t2], e), true
}

// edgeTriangles returns the triangle holding directed e[0]->e[1] and the one
// holding e[1]->e[0], -1 when absent.
func (ft *faceTriangulation) edgeTriangles(e surface.Edge) (t1, t2 int) {
	t1, t2 = -1, -1
	for i, t := range ft.tris {
		for j := 0; j < 3; j++ {
			x, y := t[j], t[(j+1)%3]
			switch {
			case x == e[0] && y == e[1]:
				t1 = i
			case x == e[1] && y == e[0]:
				t2 = i
			}
		}
	}
	return t1, t2
}

// flip replaces the diagonal e of the quad formed by its two triangles with
// the other diagonal when the quad is strictly convex.
func (ft *faceTriangulation) flip(e surface.Edge) bool {
	t1, t2 := ft.edgeTriangles(e)
	if t1 < 0 || t2 < 0 {
		return false
	}
	x, y := e[0], e[1]
	c := surface.Opposite(ft.tris[t1], e) // t1 = (x, y, c)
	d := surface.Opposite(ft.tris[t2], e) // t2 = (y, x, d)
	px, py, pc, pd := ft.pts[x], ft.pts[y], ft.pts[c], ft.pts[d]
	eps := ft.tol * ft.tol
	if d2.Orient(pc, px, pd) <= eps || d2.Orient(pd, py, pc) <= eps {
		return false
	}
	ft.tris[t1] = [3]int{c, x, d}
	ft.tris[t2] = [3]int{d, y, c}
	return true
}

// delaunay flips unconstrained interior edges that fail the empty circle test.
func (ft *faceTriangulation) delaunay() {
	limit := 4*len(ft.tris)*len(ft.tris) + 16
	for iter := 0; iter < limit; iter++ {
		flipped := false
		for _, t := range ft.tris {
			for j := 0; j < 3; j++ {
				e := surface.MakeEdge(t[j], t[(j+1)%3])
				if ft.fixed.Has(e) {
					continue
				}
				t1, t2 := ft.edgeTriangles(e)
				if t1 < 0 || t2 < 0 {
					continue
				}
				tri := ft.tris[t1]
				d := surface.Opposite(ft.tris[t2], e)
				scale := r2.Norm2(r2.Sub(ft.pts[e[0]], ft.pts[e[1]]))
				if d2.InCircle(ft.pts[tri[0]], ft.pts[tri[1]], ft.pts[tri[2]], ft.pts[d]) > 1e-9*scale*scale && ft.flip(e) {
					flipped = true
					break
				}
			}
			if flipped {
				break
			}
		}
		if !flipped {
			return
		}
	}
}
