package native

import (
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// StitchBorders merges border edges u->v and x->y whose endpoints coincide
// in reverse order, pos(u)=pos(y) and pos(v)=pos(x). Edges with more than
// one candidate partner are left alone.
func (k *Kernel) StitchBorders(m *surface.Mesh) {
	border := surface.BorderHalfedges(m)
	if len(border) == 0 {
		return
	}
	type key [2]r3.Vec
	byPos := make(map[key][]int, len(border))
	for i, h := range border {
		kk := key{m.Vertices[h[0]], m.Vertices[h[1]]}
		byPos[kk] = append(byPos[kk], i)
	}
	uf := newUnionFind(len(m.Vertices))
	merged := false
	for i, h := range border {
		same := byPos[key{m.Vertices[h[0]], m.Vertices[h[1]]}]
		opp := byPos[key{m.Vertices[h[1]], m.Vertices[h[0]]}]
		if len(same) != 1 || len(opp) != 1 || opp[0] <= i {
			continue
		}
		g := border[opp[0]]
		uf.union(h[0], g[1])
		uf.union(h[1], g[0])
		merged = true
	}
	if merged {
		m.MergeVertices(uf.roots())
	}
}

// MergeDuplicatedBoundaryVertices merges vertices of a boundary cycle that
// share a position with an earlier vertex of the same cycle.
func (k *Kernel) MergeDuplicatedBoundaryVertices(m *surface.Mesh) {
	border := surface.BorderHalfedges(m)
	if len(border) == 0 {
		return
	}
	next := make(map[int]int, len(border))
	for _, h := range border {
		if _, ok := next[h[0]]; !ok {
			next[h[0]] = h[1]
		}
	}
	target := make([]int, len(m.Vertices))
	for i := range target {
		target[i] = -1
	}
	visited := make(map[int]bool, len(border))
	merged := false
	for _, h := range border {
		start := h[0]
		if visited[start] {
			continue
		}
		first := make(map[r3.Vec]int)
		for v, ok := start, true; ok && !visited[v]; v, ok = next[v] {
			visited[v] = true
			if w, dup := first[m.Vertices[v]]; dup {
				target[v] = w
				merged = true
				continue
			}
			first[m.Vertices[v]] = v
		}
	}
	if merged {
		m.MergeVertices(target)
	}
}
