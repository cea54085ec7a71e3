package surface

import "sort"

// Edge is an undirected mesh edge stored with the lower vertex index first.
type Edge [2]int

// MakeEdge returns the canonical edge joining a and b.
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Other returns the endpoint of e that is not v.
func (e Edge) Other(v int) int {
	if e[0] == v {
		return e[1]
	}
	return e[0]
}

// Has reports whether v is an endpoint of e.
func (e Edge) Has(v int) bool { return e[0] == v || e[1] == v }

// EdgeSet is a set of canonical edges.
type EdgeSet map[Edge]struct{}

// NewEdgeSet returns a set holding edges.
func NewEdgeSet(edges ...Edge) EdgeSet {
	s := make(EdgeSet, len(edges))
	for _, e := range edges {
		s.Add(e)
	}
	return s
}

func (s EdgeSet) Add(e Edge)    { s[MakeEdge(e[0], e[1])] = struct{}{} }
func (s EdgeSet) Remove(e Edge) { delete(s, MakeEdge(e[0], e[1])) }

// Has reports whether e, in either orientation, is in s.
func (s EdgeSet) Has(e Edge) bool {
	_, ok := s[MakeEdge(e[0], e[1])]
	return ok
}

// HasPair reports whether the edge joining a and b is in s.
func (s EdgeSet) HasPair(a, b int) bool {
	_, ok := s[MakeEdge(a, b)]
	return ok
}

// Union adds every edge of o to s.
func (s EdgeSet) Union(o EdgeSet) {
	for e := range o {
		s[e] = struct{}{}
	}
}

// Clone returns a copy of s. A nil set clones to an empty one.
func (s EdgeSet) Clone() EdgeSet {
	c := make(EdgeSet, len(s))
	c.Union(s)
	return c
}

// Sorted returns the edges of s in lexicographic order.
func (s EdgeSet) Sorted() []Edge {
	edges := make([]Edge, 0, len(s))
	for e := range s {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// Remap renumbers the endpoints of every edge in place following remap.
// Edges with a removed endpoint (-1), an out of range endpoint or whose
// endpoints merge are dropped.
func (s EdgeSet) Remap(remap []int) {
	edges := make([]Edge, 0, len(s))
	for e := range s {
		edges = append(edges, e)
		delete(s, e)
	}
	for _, e := range edges {
		if e[0] >= len(remap) || e[1] >= len(remap) {
			continue
		}
		a, b := remap[e[0]], remap[e[1]]
		if a < 0 || b < 0 || a == b {
			continue
		}
		s[MakeEdge(a, b)] = struct{}{}
	}
}
