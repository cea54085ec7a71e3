package native

import (
	"math"
	"sort"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// minNormalCos bounds the rotation of a face normal caused by a collapse,
	// flip or relaxation step.
	minNormalCos = 0.5
	// flatCos is the minimum cosine between a face normal and the vertex
	// normal for the vertex to be relaxed, and between the two faces of an
	// edge for it to be flipped. Sharper regions keep their shape.
	flatCos = 0.9
)

// IsotropicRemesh runs iterations of split, collapse, valence flip and
// tangential relaxation towards edge length target.
func (k *Kernel) IsotropicRemesh(m *surface.Mesh, target float64, iterations int, constrained surface.EdgeSet, protect, relax bool) {
	if !(target > 0) || m.IsEmpty() {
		return
	}
	if constrained == nil {
		constrained = make(surface.EdgeSet)
	}
	r := remesher{m: m, constrained: constrained, rounds: k.rounds}
	low, high := 4.0/5*target, 4.0/3*target
	for it := 0; it < iterations; it++ {
		for round := 0; round < k.rounds; round++ {
			if splitEdges(m, high, constrained, protect) == 0 {
				break
			}
		}
		for round := 0; round < k.rounds; round++ {
			if r.collapseShort(low, high) == 0 {
				break
			}
		}
		r.equalizeValences()
		r.relax(relax)
	}
}

// remesher holds the mesh being remeshed and its constrained edges, which
// it keeps consistent with every topology change.
type remesher struct {
	m           *surface.Mesh
	constrained surface.EdgeSet
	rounds      int
}

// lineEdges returns, per vertex, the neighbors joined by a border or
// constrained edge.
func (r *remesher) lineEdges(topo *surface.Topology) [][]int {
	lines := make([][]int, len(r.m.Vertices))
	for e, fs := range topo.EdgeFaces {
		if len(fs) == 1 || r.constrained.Has(e) {
			lines[e[0]] = append(lines[e[0]], e[1])
			lines[e[1]] = append(lines[e[1]], e[0])
		}
	}
	return lines
}

// collapseShort collapses edges shorter than low once per vertex
// neighborhood and returns the number of collapses.
func (r *remesher) collapseShort(low, high float64) int {
	m := r.m
	topo := surface.NewTopology(m)
	lines := r.lineEdges(topo)
	type cand struct {
		e surface.Edge
		l float64
	}
	var cands []cand
	for e, fs := range topo.EdgeFaces {
		if len(fs) != 2 || r.constrained.Has(e) {
			continue
		}
		if l := d3.Dist(m.Vertices[e[0]], m.Vertices[e[1]]); l < low {
			cands = append(cands, cand{e: e, l: l})
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].l != cands[j].l {
			return cands[i].l < cands[j].l
		}
		if cands[i].e[0] != cands[j].e[0] {
			return cands[i].e[0] < cands[j].e[0]
		}
		return cands[i].e[1] < cands[j].e[1]
	})
	c := newCollapser(m, topo, lines, nil)
	count := 0
	for _, cd := range cands {
		if c.tryCollapse(cd.e, high, minNormalCos) {
			count++
		}
	}
	if count > 0 {
		c.finish(r.constrained)
	}
	return count
}

// collapser applies edge collapses against a topology snapshot. Vertices
// around a collapse are locked so the snapshot stays valid for the rest.
// Pinned vertices never move.
type collapser struct {
	m       *surface.Mesh
	topo    *surface.Topology
	pinned  []bool
	locked  []bool
	removed []bool
}

// newCollapser pins the vertices on line edges and the sharp vertices of
// m. Faces for which skip returns true do not count towards sharpness.
func newCollapser(m *surface.Mesh, topo *surface.Topology, lines [][]int, skip func(f int) bool) *collapser {
	pinned := sharpVertices(m, topo, skip)
	for v, l := range lines {
		if len(l) > 0 {
			pinned[v] = true
		}
	}
	return &collapser{
		m:       m,
		topo:    topo,
		pinned:  pinned,
		locked:  make([]bool, len(m.Vertices)),
		removed: make([]bool, len(m.Faces)),
	}
}

// sharpVertices marks the vertices lying on a crease or corner of m.
func sharpVertices(m *surface.Mesh, topo *surface.Topology, skip func(f int) bool) []bool {
	sharp := make([]bool, len(m.Vertices))
	for v := range m.Vertices {
		_, sharp[v] = vertexNormal(m, topo.VertexFaces[v], skip)
	}
	return sharp
}

// vertexNormal returns the area weighted unit normal of faces and whether
// any of them turns away from it by more than flatCos allows. Zero area
// faces are ignored; a zero normal is sharp.
func vertexNormal(m *surface.Mesh, faces []int, skip func(f int) bool) (normal r3.Vec, sharp bool) {
	for _, f := range faces {
		if skip == nil || !skip(f) {
			normal = r3.Add(normal, m.Triangle(f).Cross())
		}
	}
	if r3.Norm(normal) == 0 {
		return normal, true
	}
	normal = r3.Unit(normal)
	for _, f := range faces {
		if skip != nil && skip(f) {
			continue
		}
		n := m.Triangle(f).Cross()
		if r3.Norm(n) != 0 && !normalsAgree(normal, n, flatCos) {
			return normal, true
		}
	}
	return normal, false
}

// tryCollapse merges the endpoints of interior edge e when the link
// condition holds, no vertex drops below degree 3, no resulting edge is
// longer than maxLen and no face normal turns by more than allowed.
// Pinned vertices are never moved.
func (c *collapser) tryCollapse(e surface.Edge, maxLen, normalCos float64) bool {
	m, topo := c.m, c.topo
	u, v := e[0], e[1]
	fs := topo.EdgeFaces[e]
	if len(fs) != 2 || c.locked[u] || c.locked[v] || c.removed[fs[0]] || c.removed[fs[1]] {
		return false
	}
	pinU, pinV := c.pinned[u], c.pinned[v]
	keep, drop := u, v
	var pos r3.Vec
	switch {
	case pinU && pinV:
		return false
	case pinV:
		keep, drop = v, u
		pos = m.Vertices[v]
	case pinU:
		pos = m.Vertices[u]
	default:
		pos = d3.Midpoint(m.Vertices[u], m.Vertices[v])
	}
	opp := [2]int{surface.Opposite(m.Faces[fs[0]], e), surface.Opposite(m.Faces[fs[1]], e)}
	nbKeep, nbDrop := topo.Neighbors(m, keep), topo.Neighbors(m, drop)
	common := 0
	for _, w := range nbDrop {
		if w == keep {
			continue
		}
		if containsInt(nbKeep, w) {
			if w != opp[0] && w != opp[1] {
				return false
			}
			common++
		}
	}
	if common != 2 || len(nbKeep)+len(nbDrop)-4 < 3 {
		return false
	}
	for _, w := range opp {
		if c.locked[w] || len(topo.Neighbors(m, w)) <= 3 {
			return false
		}
	}
	if !(maxLen > 0) {
		maxLen = math.Inf(1)
	}
	for _, nb := range [2][]int{nbKeep, nbDrop} {
		for _, w := range nb {
			if w != keep && w != drop && d3.Dist(pos, m.Vertices[w]) > maxLen {
				return false
			}
		}
	}
	moved := func(x int) r3.Vec {
		if x == keep || x == drop {
			return pos
		}
		return m.Vertices[x]
	}
	for _, vf := range [2][]int{topo.VertexFaces[keep], topo.VertexFaces[drop]} {
		for _, f := range vf {
			if f == fs[0] || f == fs[1] {
				continue
			}
			face := m.Faces[f]
			before := m.Triangle(f).Cross()
			if r3.Norm(before) == 0 {
				continue
			}
			after := d3.Triangle{moved(face[0]), moved(face[1]), moved(face[2])}.Cross()
			if !normalsAgree(before, after, normalCos) {
				return false
			}
		}
	}
	c.removed[fs[0]], c.removed[fs[1]] = true, true
	for _, f := range topo.VertexFaces[drop] {
		if c.removed[f] {
			continue
		}
		for j := range m.Faces[f] {
			if m.Faces[f][j] == drop {
				m.Faces[f][j] = keep
			}
		}
	}
	m.Vertices[keep] = pos
	c.locked[keep], c.locked[drop] = true, true
	for _, w := range nbKeep {
		c.locked[w] = true
	}
	for _, w := range nbDrop {
		c.locked[w] = true
	}
	return true
}

// finish drops collapsed faces and isolated vertices, renumbering constrained.
func (c *collapser) finish(constrained surface.EdgeSet) {
	c.m.RemoveFaces(func(f int) bool { return c.removed[f] })
	remap, removed := c.m.RemoveIsolatedVertices()
	if removed > 0 {
		constrained.Remap(remap)
	}
}

// equalizeValences flips interior edges when doing so brings the four
// vertices involved closer to valence 6, or 4 on the border.
func (r *remesher) equalizeValences() int {
	m := r.m
	topo := surface.NewTopology(m)
	n := len(m.Vertices)
	valence := make([]int, n)
	targetVal := make([]int, n)
	for v := 0; v < n; v++ {
		valence[v] = len(topo.Neighbors(m, v))
		targetVal[v] = 6
	}
	for e, fs := range topo.EdgeFaces {
		if len(fs) == 1 {
			targetVal[e[0]], targetVal[e[1]] = 4, 4
		}
	}
	edges := make([]surface.Edge, 0, len(topo.EdgeFaces))
	for e, fs := range topo.EdgeFaces {
		if len(fs) == 2 && !r.constrained.Has(e) {
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	dev := func(v, delta int) int {
		d := valence[v] + delta - targetVal[v]
		if d < 0 {
			return -d
		}
		return d
	}
	lockedFace := make([]bool, len(m.Faces))
	added := make(surface.EdgeSet)
	flips := 0
	for _, e := range edges {
		fs := topo.EdgeFaces[e]
		f1, f2 := fs[0], fs[1]
		if lockedFace[f1] || lockedFace[f2] {
			continue
		}
		a, b := orientedEdge(m.Faces[f1], e)
		if !directedIn(m.Faces[f2], b, a) {
			continue
		}
		c := surface.Opposite(m.Faces[f1], e)
		d := surface.Opposite(m.Faces[f2], e)
		if c == d || topo.HasEdge(c, d) || added.HasPair(c, d) || valence[a] <= 3 || valence[b] <= 3 {
			continue
		}
		before := dev(a, 0) + dev(b, 0) + dev(c, 0) + dev(d, 0)
		after := dev(a, -1) + dev(b, -1) + dev(c, 1) + dev(d, 1)
		if after >= before || !flipKeepsShape(m, a, b, c, d) {
			continue
		}
		m.Faces[f1] = [3]int{a, d, c}
		m.Faces[f2] = [3]int{d, b, c}
		valence[a]--
		valence[b]--
		valence[c]++
		valence[d]++
		lockedFace[f1], lockedFace[f2] = true, true
		added.Add(surface.MakeEdge(c, d))
		flips++
	}
	return flips
}

// flipKeepsShape reports whether replacing faces (a,b,c) and (b,a,d) by
// (a,d,c) and (d,b,c) keeps a nearly flat, non degenerate surface patch.
func flipKeepsShape(m *surface.Mesh, a, b, c, d int) bool {
	p := m.Vertices
	n1 := d3.Triangle{p[a], p[b], p[c]}.Cross()
	n2 := d3.Triangle{p[b], p[a], p[d]}.Cross()
	if !normalsAgree(n1, n2, flatCos) {
		return false
	}
	avg := r3.Add(r3.Unit(n1), r3.Unit(n2))
	n3 := d3.Triangle{p[a], p[d], p[c]}.Cross()
	n4 := d3.Triangle{p[d], p[b], p[c]}.Cross()
	return normalsAgree(avg, n3, minNormalCos) && normalsAgree(avg, n4, minNormalCos)
}

// relax moves every free vertex towards the centroid of its neighbors
// within its tangent plane. Vertices on border or constrained edges stay,
// except that with slide set a vertex between two collinear such edges
// moves along them.
func (r *remesher) relax(slide bool) {
	m := r.m
	topo := surface.NewTopology(m)
	lines := r.lineEdges(topo)
	for v := range m.Vertices {
		faces := topo.VertexFaces[v]
		if len(faces) == 0 {
			continue
		}
		p := m.Vertices[v]
		var target r3.Vec
		switch {
		case len(lines[v]) == 0:
			normal, sharp := vertexNormal(m, faces, nil)
			if sharp {
				continue
			}
			nb := topo.Neighbors(m, v)
			pts := make(d3.Set, len(nb))
			for i, w := range nb {
				pts[i] = m.Vertices[w]
			}
			d := r3.Sub(pts.Mean(), p)
			d = r3.Sub(d, r3.Scale(r3.Dot(d, normal), normal))
			target = r3.Add(p, d)
		case slide && len(lines[v]) == 2:
			p1, p2 := m.Vertices[lines[v][0]], m.Vertices[lines[v][1]]
			d1, d2 := r3.Sub(p1, p), r3.Sub(p2, p)
			if r3.Norm(d1) == 0 || r3.Norm(d2) == 0 || r3.Dot(r3.Unit(d1), r3.Unit(d2)) > -0.9999 {
				continue
			}
			target = d3.Midpoint(p1, p2)
		default:
			continue
		}
		before := make([]r3.Vec, len(faces))
		for i, f := range faces {
			before[i] = m.Triangle(f).Cross()
		}
		m.Vertices[v] = target
		for i, f := range faces {
			if !normalsAgree(before[i], m.Triangle(f).Cross(), minNormalCos) {
				m.Vertices[v] = p
				break
			}
		}
	}
}

// normalsAgree reports whether the angle between a and b has cosine of at
// least minCos. Zero vectors never agree.
func normalsAgree(a, b r3.Vec, minCos float64) bool {
	la, lb := r3.Norm(a), r3.Norm(b)
	if la == 0 || lb == 0 {
		return false
	}
	return r3.Dot(a, b)/(la*lb) >= minCos
}

// orientedEdge returns the endpoints of e in the order they appear in face.
func orientedEdge(face [3]int, e surface.Edge) (a, b int) {
	if directedIn(face, e[0], e[1]) {
		return e[0], e[1]
	}
	return e[1], e[0]
}

func directedIn(face [3]int, a, b int) bool {
	for j := 0; j < 3; j++ {
		if face[j] == a && face[(j+1)%3] == b {
			return true
		}
	}
	return false
}

func containsInt(s []int, v int) bool {
	i := sort.SearchInts(s, v)
	return i < len(s) && s[i] == v
}
