package meshclip

import (
	"math"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Corefine inserts the intersection curve of a and b into both meshes and
// remeshes each while keeping that seam and its own border. Empty input
// fails both results with ErrEmptyMesh before any processing.
func (p *Pipeline) Corefine(a, b meshio.Arrays, cfg Config) (Result, Result) {
	l := cfg.logger("corefine")
	if a.IsEmpty() || b.IsEmpty() {
		l.Error("corefine on empty mesh", "a", a.TriangleCount(), "b", b.TriangleCount())
		return failed(ErrEmptyMesh, nil), failed(ErrEmptyMesh, nil)
	}
	ma, skippedA, err := load(a, l)
	if err != nil {
		return failed(err, nil), failed(err, nil)
	}
	mb, skippedB, err := load(b, l)
	if err != nil {
		return failed(err, skippedA), failed(err, nil)
	}
	if ma.IsEmpty() || mb.IsEmpty() {
		l.Error("no valid triangles to corefine")
		return failed(ErrEmptyMesh, skippedA), failed(ErrEmptyMesh, skippedB)
	}
	p.k.SplitLongEdges(ma, cfg.TargetEdgeLength, nil)
	p.k.SplitLongEdges(mb, cfg.TargetEdgeLength, nil)
	if !p.k.Corefine(ma, mb) {
		l.Error("corefinement failed")
		return failed(ErrCorefineFailed, skippedA), failed(ErrCorefineFailed, skippedB)
	}
	sharedA, sharedB := SharedEdges(ma, mb, cfg.SharedEdgeTolerance)
	l.Debug("shared edges", "count", len(sharedA))
	sharedA.Union(surface.BorderEdges(ma))
	sharedB.Union(surface.BorderEdges(mb))
	p.k.IsotropicRemesh(ma, cfg.TargetEdgeLength, cfg.Iterations, sharedA, cfg.ProtectConstraints, cfg.RelaxConstraints)
	p.k.IsotropicRemesh(mb, cfg.TargetEdgeLength, cfg.Iterations, sharedB, cfg.ProtectConstraints, cfg.RelaxConstraints)
	return export(ma, Modified, skippedA, cfg), export(mb, Modified, skippedB, cfg)
}

// SharedEdges returns the edges of a and of b whose endpoints coincide
// with those of an edge of the other mesh, in either orientation. With a
// positive tol, coordinates are compared after rounding to multiples of
// tol; otherwise they must be equal. Edges with a non-finite endpoint are
// ignored.
func SharedEdges(a, b *surface.Mesh, tol float64) (sa, sb surface.EdgeSet) {
	sa, sb = make(surface.EdgeSet), make(surface.EdgeSet)
	byPos := make(map[[2]posKey][]surface.Edge)
	for _, e := range meshEdges(b) {
		if k, ok := edgeKey(b, e, tol); ok {
			byPos[k] = append(byPos[k], e)
		}
	}
	for _, e := range meshEdges(a) {
		k, ok := edgeKey(a, e, tol)
		if !ok {
			continue
		}
		matches := byPos[k]
		if len(matches) == 0 {
			continue
		}
		sa.Add(e)
		for _, eb := range matches {
			sb.Add(eb)
		}
	}
	return sa, sb
}

type posKey [3]int64

// vertexKey returns the hash key of v. Zero is normalized so that -0 and
// +0 share a key.
func vertexKey(v r3.Vec, tol float64) (posKey, bool) {
	if !d3.IsFinite(v) {
		return posKey{}, false
	}
	c := [3]float64{v.X, v.Y, v.Z}
	var k posKey
	for i, x := range c {
		if tol > 0 {
			q := math.Round(x / tol)
			if math.Abs(q) > 1<<62 {
				return posKey{}, false
			}
			k[i] = int64(q)
			continue
		}
		if x == 0 {
			x = 0
		}
		k[i] = int64(math.Float64bits(x))
	}
	return k, true
}

// edgeKey returns the orientation independent position key of e.
func edgeKey(m *surface.Mesh, e surface.Edge, tol float64) ([2]posKey, bool) {
	if e[0] < 0 || e[1] >= len(m.Vertices) {
		return [2]posKey{}, false
	}
	k0, ok0 := vertexKey(m.Vertices[e[0]], tol)
	k1, ok1 := vertexKey(m.Vertices[e[1]], tol)
	if !ok0 || !ok1 || k0 == k1 {
		return [2]posKey{}, false
	}
	if lessKey(k1, k0) {
		k0, k1 = k1, k0
	}
	return [2]posKey{k0, k1}, true
}

func lessKey(a, b posKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// meshEdges returns the undirected edges of m in face order.
func meshEdges(m *surface.Mesh) []surface.Edge {
	seen := make(surface.EdgeSet, 3*len(m.Faces)/2)
	edges := make([]surface.Edge, 0, 3*len(m.Faces)/2)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			e := surface.MakeEdge(f[j], f[(j+1)%3])
			if seen.Has(e) {
				continue
			}
			seen.Add(e)
			edges = append(edges, e)
		}
	}
	return edges
}
