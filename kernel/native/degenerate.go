package native

import (
	"math"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
)

const (
	// needleRatio is the shortest to longest edge ratio below which a face
	// is a needle.
	needleRatio = 1e-3
	// capCos is the cosine of the largest angle below which a face is a cap.
	capCos = -0.9998
)

type degeneracy int

const (
	notDegenerate degeneracy = iota
	needle
	capFace
)

// classify reports whether face f of m is a needle or a cap and the local
// index of the edge that should be removed: the shortest edge of a needle
// or the edge opposite the obtuse corner of a cap.
func classify(m *surface.Mesh, f int) (degeneracy, int) {
	face := m.Faces[f]
	if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
		return needle, 0
	}
	tri := m.Triangle(f)
	l := tri.EdgeLengths()
	short, long := 0, 0
	for j := 1; j < 3; j++ {
		if l[j] < l[short] {
			short = j
		}
		if l[j] > l[long] {
			long = j
		}
	}
	if l[long] == 0 || l[short]/l[long] < needleRatio {
		return needle, short
	}
	if cos, v := tri.MaxAngleCos(); cos < capCos {
		// Edge j joins corners j and j+1; the one opposite v starts at v+1.
		return capFace, (v + 1) % 3
	}
	return notDegenerate, 0
}

// RemoveDegenerateFaces removes needles by collapsing their shortest edge
// and caps by flipping their longest edge. Faces with repeated vertices are
// dropped. Constrained edges are neither collapsed nor flipped, and
// vertices on them do not move. It reports whether no degenerate face is
// left.
func (k *Kernel) RemoveDegenerateFaces(m *surface.Mesh, constrained surface.EdgeSet) bool {
	if constrained == nil {
		constrained = make(surface.EdgeSet)
	}
	r := remesher{m: m, constrained: constrained, rounds: k.rounds}
	for round := 0; round < k.rounds; round++ {
		m.RemoveFaces(func(f int) bool {
			face := m.Faces[f]
			return face[0] == face[1] || face[1] == face[2] || face[2] == face[0]
		})
		if r.collapseNeedles() > 0 {
			continue
		}
		if r.flipCaps() == 0 {
			break
		}
	}
	for f := range m.Faces {
		if kind, _ := classify(m, f); kind != notDegenerate {
			return false
		}
	}
	return true
}

func (r *remesher) collapseNeedles() int {
	m := r.m
	topo := surface.NewTopology(m)
	c := newCollapser(m, topo, r.lineEdges(topo), func(f int) bool {
		kind, _ := classify(m, f)
		return kind != notDegenerate
	})
	count := 0
	for f := range m.Faces {
		if c.removed[f] {
			continue
		}
		kind, j := classify(m, f)
		if kind != needle {
			continue
		}
		face := m.Faces[f]
		e := surface.MakeEdge(face[j], face[(j+1)%3])
		if r.constrained.Has(e) {
			continue
		}
		if c.tryCollapse(e, math.Inf(1), 0) {
			count++
		}
	}
	if count > 0 {
		c.finish(r.constrained)
	}
	return count
}

func (r *remesher) flipCaps() int {
	m := r.m
	topo := surface.NewTopology(m)
	locked := make([]bool, len(m.Faces))
	count := 0
	for f := range m.Faces {
		if locked[f] {
			continue
		}
		kind, j := classify(m, f)
		if kind != capFace {
			continue
		}
		face := m.Faces[f]
		a, b, c := face[j], face[(j+1)%3], face[(j+2)%3]
		e := surface.MakeEdge(a, b)
		fs := topo.EdgeFaces[e]
		if len(fs) != 2 || r.constrained.Has(e) {
			continue
		}
		g := fs[0]
		if g == f {
			g = fs[1]
		}
		if locked[g] || !directedIn(m.Faces[g], b, a) {
			continue
		}
		d := surface.Opposite(m.Faces[g], e)
		if c == d || topo.HasEdge(c, d) {
			continue
		}
		p := m.Vertices
		ref := m.Triangle(g).Cross()
		n1 := d3.Triangle{p[a], p[d], p[c]}.Cross()
		n2 := d3.Triangle{p[d], p[b], p[c]}.Cross()
		if !normalsAgree(ref, n1, 0) || !normalsAgree(ref, n2, 0) {
			continue
		}
		m.Faces[f] = [3]int{a, d, c}
		m.Faces[g] = [3]int{d, b, c}
		locked[f], locked[g] = true, true
		count++
	}
	return count
}
