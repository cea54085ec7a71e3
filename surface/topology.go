package surface

import "sort"

// Topology is an adjacency snapshot of a mesh. It is not updated when the
// mesh changes; rebuild it after topological edits.
type Topology struct {
	// EdgeFaces lists the faces incident to each undirected edge.
	EdgeFaces map[Edge][]int
	// VertexFaces lists the faces incident to each vertex.
	VertexFaces [][]int
}

// NewTopology builds adjacency for m. Faces must reference valid vertices.
func NewTopology(m *Mesh) *Topology {
	t := &Topology{
		EdgeFaces:   make(map[Edge][]int, 3*len(m.Faces)/2+1),
		VertexFaces: make([][]int, len(m.Vertices)),
	}
	for i, f := range m.Faces {
		for j := 0; j < 3; j++ {
			e := MakeEdge(f[j], f[(j+1)%3])
			t.EdgeFaces[e] = append(t.EdgeFaces[e], i)
			t.VertexFaces[f[j]] = append(t.VertexFaces[f[j]], i)
		}
	}
	return t
}

// IsBorder reports whether e has exactly one incident face.
func (t *Topology) IsBorder(e Edge) bool {
	return len(t.EdgeFaces[MakeEdge(e[0], e[1])]) == 1
}

// HasEdge reports whether a and b are joined by an edge.
func (t *Topology) HasEdge(a, b int) bool {
	return len(t.EdgeFaces[MakeEdge(a, b)]) > 0
}

// Neighbors returns the sorted vertices adjacent to v.
func (t *Topology) Neighbors(m *Mesh, v int) []int {
	var nb []int
	for _, f := range t.VertexFaces[v] {
		for _, w := range m.Faces[f] {
			if w != v {
				nb = append(nb, w)
			}
		}
	}
	sort.Ints(nb)
	out := nb[:0]
	for i, w := range nb {
		if i == 0 || w != nb[i-1] {
			out = append(out, w)
		}
	}
	return out
}

// IsBorderVertex reports whether v is an endpoint of a border edge.
func (t *Topology) IsBorderVertex(m *Mesh, v int) bool {
	for _, w := range t.Neighbors(m, v) {
		if t.IsBorder(MakeEdge(v, w)) {
			return true
		}
	}
	return false
}

// Opposite returns the vertex of face f that is not on edge e.
func Opposite(face [3]int, e Edge) int {
	for _, v := range face {
		if !e.Has(v) {
			return v
		}
	}
	return -1
}

// BorderEdges returns the edges of m that have exactly one incident face.
func BorderEdges(m *Mesh) EdgeSet {
	count := make(map[Edge]int, 3*len(m.Faces)/2+1)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			count[MakeEdge(f[j], f[(j+1)%3])]++
		}
	}
	border := make(EdgeSet)
	for e, n := range count {
		if n == 1 {
			border[e] = struct{}{}
		}
	}
	return border
}

// IsClosed reports whether m has faces and no border edges.
func IsClosed(m *Mesh) bool {
	return len(m.Faces) > 0 && len(BorderEdges(m)) == 0
}

// BorderHalfedges returns the directed edges u->v of m whose opposite
// v->u is not present, in face order.
func BorderHalfedges(m *Mesh) [][2]int {
	directed := make(map[[2]int]struct{}, 3*len(m.Faces))
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			directed[[2]int{f[j], f[(j+1)%3]}] = struct{}{}
		}
	}
	var out [][2]int
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			h := [2]int{f[j], f[(j+1)%3]}
			if _, ok := directed[[2]int{h[1], h[0]}]; !ok {
				out = append(out, h)
			}
		}
	}
	return out
}
