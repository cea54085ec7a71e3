package surface

import "fmt"

// Constraints tracks the user-declared fixed edges of a mesh. The edges
// protected during remeshing are always the current border edges united
// with the fixed ones, so protection is never overwritten by a border
// recomputation.
type Constraints struct {
	fixed EdgeSet
}

// NewConstraints returns a tracker with no fixed edges.
func NewConstraints() *Constraints {
	return &Constraints{fixed: make(EdgeSet)}
}

// AddFixedEdges adds each vertex pair of pairs as a fixed edge of m. Pairs
// with an out of range or repeated index, and pairs whose vertices are not
// joined by an edge of m, are skipped and reported.
func (c *Constraints) AddFixedEdges(m *Mesh, pairs [][2]int) []Diagnostic {
	if len(pairs) == 0 {
		return nil
	}
	edges := make(EdgeSet, 3*len(m.Faces)/2)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			edges.Add(Edge{f[j], f[(j+1)%3]})
		}
	}
	var diags []Diagnostic
	for i, p := range pairs {
		a, b := p[0], p[1]
		switch {
		case a < 0 || b < 0 || a >= len(m.Vertices) || b >= len(m.Vertices) || a == b:
			diags = append(diags, Diagnostic{Kind: BadFixedEdge, Index: i, Detail: fmt.Sprintf("(%d, %d) with %d vertices", a, b, len(m.Vertices))})
		case !edges.HasPair(a, b):
			diags = append(diags, Diagnostic{Kind: NonAdjacentFixedEdge, Index: i, Detail: fmt.Sprintf("(%d, %d)", a, b)})
		default:
			c.fixed.Add(MakeEdge(a, b))
		}
	}
	return diags
}

// Fixed returns a copy of the fixed edges.
func (c *Constraints) Fixed() EdgeSet { return c.fixed.Clone() }

// Len returns the number of fixed edges.
func (c *Constraints) Len() int { return len(c.fixed) }

// Protected returns a fresh set holding the border edges of m and the
// fixed edges.
func (c *Constraints) Protected(m *Mesh) EdgeSet {
	p := BorderEdges(m)
	p.Union(c.fixed)
	return p
}

// Sync replaces the fixed edges with the members of protected that are not
// border edges of m. It is called after an operation that kept protected
// consistent with a topology change, so fixed edges follow splits and
// renumbering. Fixed edges lying on the border are folded into the
// border rule.
func (c *Constraints) Sync(m *Mesh, protected EdgeSet) {
	border := BorderEdges(m)
	fixed := make(EdgeSet, len(c.fixed))
	for e := range protected {
		if _, ok := border[e]; !ok {
			fixed[e] = struct{}{}
		}
	}
	c.fixed = fixed
}

// Remap follows a vertex renumbering such as the one returned by
// Mesh.RemoveIsolatedVertices.
func (c *Constraints) Remap(remap []int) {
	c.fixed.Remap(remap)
}
