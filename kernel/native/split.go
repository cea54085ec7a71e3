package native

import (
	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
)

// SplitLongEdges splits every edge longer than maxLength, halving edges
// until none is left or the round limit is reached.
func (k *Kernel) SplitLongEdges(m *surface.Mesh, maxLength float64, constrained surface.EdgeSet) {
	if !(maxLength > 0) || m.IsEmpty() {
		return
	}
	if constrained == nil {
		constrained = make(surface.EdgeSet)
	}
	for round := 0; round < k.rounds; round++ {
		if splitEdges(m, maxLength, constrained, false) == 0 {
			return
		}
	}
}

// splitEdges splits once every edge longer than maxLen at its midpoint,
// skipping constrained edges when protect is set. Faces are subdivided
// according to how many of their edges were split so the mesh stays
// conforming. Constrained edges pass their constraint to both halves.
func splitEdges(m *surface.Mesh, maxLen float64, constrained surface.EdgeSet, protect bool) int {
	long := make(surface.EdgeSet)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			e := surface.MakeEdge(f[j], f[(j+1)%3])
			if protect && constrained.Has(e) {
				continue
			}
			if d3.Dist(m.Vertices[e[0]], m.Vertices[e[1]]) > maxLen {
				long.Add(e)
			}
		}
	}
	if len(long) == 0 {
		return 0
	}
	mid := make(map[surface.Edge]int, len(long))
	for _, e := range long.Sorted() {
		v := m.AddVertex(d3.Midpoint(m.Vertices[e[0]], m.Vertices[e[1]]))
		mid[e] = v
		if constrained.Has(e) {
			constrained.Remove(e)
			constrained.Add(surface.MakeEdge(e[0], v))
			constrained.Add(surface.MakeEdge(v, e[1]))
		}
	}
	faces := make([][3]int, 0, 2*len(m.Faces))
	for _, f := range m.Faces {
		var ms [3]int
		n := 0
		for j := 0; j < 3; j++ {
			v, ok := mid[surface.MakeEdge(f[j], f[(j+1)%3])]
			if !ok {
				v = -1
			} else {
				n++
			}
			ms[j] = v
		}
		switch n {
		case 0:
			faces = append(faces, f)
		case 1:
			j := 0
			for ms[j] < 0 {
				j++
			}
			a, b, c, x := f[j], f[(j+1)%3], f[(j+2)%3], ms[j]
			faces = append(faces, [3]int{a, x, c}, [3]int{x, b, c})
		case 2:
			j := 0
			for ms[j] >= 0 {
				j++
			}
			// Edge j is whole: a->b and b->c are split at x and y.
			a, b, c := f[(j+1)%3], f[(j+2)%3], f[j]
			x, y := ms[(j+1)%3], ms[(j+2)%3]
			faces = append(faces, [3]int{x, b, y})
			if d3.Dist(m.Vertices[a], m.Vertices[y]) <= d3.Dist(m.Vertices[x], m.Vertices[c]) {
				faces = append(faces, [3]int{a, x, y}, [3]int{a, y, c})
			} else {
				faces = append(faces, [3]int{a, x, c}, [3]int{x, y, c})
			}
		case 3:
			a, b, c := f[0], f[1], f[2]
			x, y, z := ms[0], ms[1], ms[2]
			faces = append(faces, [3]int{a, x, z}, [3]int{x, b, y}, [3]int{z, y, c}, [3]int{x, y, z})
		}
	}
	m.Faces = faces
	return len(long)
}
