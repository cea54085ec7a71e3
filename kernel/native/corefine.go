package native

import (
	"sort"

	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Corefine inserts the intersection curve of a and b into both meshes.
func (k *Kernel) Corefine(a, b *surface.Mesh) bool {
	_, ok := corefine(a, b)
	return ok
}

// seamPoint is a point of the intersection curve with its place on each mesh.
type seamPoint struct {
	p    r3.Vec
	loc  [2]location
	vert [2]int
}

// pairSegment is a piece of intersection curve between two seam points
// and the faces of each mesh containing it.
type pairSegment struct {
	faces [2]int
	ends  [2]int
}

// corefine splits the faces of a and b along their intersection. The seam
// edges of each mesh, that is the edges lying on the intersection curve, are
// returned. Coplanar face pairs are ignored.
func corefine(a, b *surface.Mesh) (seams [2]surface.EdgeSet, ok bool) {
	seams = [2]surface.EdgeSet{make(surface.EdgeSet), make(surface.EdgeSet)}
	if a.IsEmpty() || b.IsEmpty() {
		return seams, true
	}
	pt := newPairTest(a, b)
	if !a.Bounds().Enlarge(pt.tol).Overlaps(b.Bounds()) {
		return seams, true
	}
	type hit struct {
		faces       [2]int
		first, last int
		dir         r3.Vec
	}
	var cands []seamCandidate
	var hits []hit
	for _, pair := range overlappingPairs(faceBoxes(a, pt.tol), faceBoxes(b, pt.tol)) {
		first := len(cands)
		cands, _ = pt.candidates(pair[0], pair[1], cands)
		if len(cands) > first {
			dir := r3.Cross(a.Triangle(pair[0]).Normal(), b.Triangle(pair[1]).Normal())
			hits = append(hits, hit{faces: pair, first: first, last: len(cands), dir: dir})
		}
	}
	if len(cands) == 0 {
		return seams, true
	}

	// Merge candidates describing the same point.
	pts := make([]r3.Vec, len(cands))
	for i := range cands {
		pts[i] = cands[i].p
	}
	rep := clusterPoints(pts, 10*pt.tol)
	seamOf := make([]int, len(cands))
	idOf := make(map[int]int)
	var seam []seamPoint
	for i, c := range cands {
		id, found := idOf[rep[i]]
		if !found {
			id = len(seam)
			idOf[rep[i]] = id
			seam = append(seam, seamPoint{p: c.p, loc: c.loc})
		} else {
			for s := 0; s < 2; s++ {
				seam[id].loc[s] = mergeLocation(pt.m[s], seam[id].loc[s], c.loc[s])
			}
		}
		seamOf[i] = id
	}
	// Seam points on a vertex take its exact coordinates so both meshes
	// share them bit for bit.
	for i := range seam {
		sp := &seam[i]
		switch {
		case sp.loc[0].kind == onVertex:
			sp.p = a.Vertices[sp.loc[0].vertex]
		case sp.loc[1].kind == onVertex:
			sp.p = b.Vertices[sp.loc[1].vertex]
		}
	}

	var segs []pairSegment
	for _, h := range hits {
		ids := make([]int, 0, h.last-h.first)
		for i := h.first; i < h.last; i++ {
			ids = appendUnique(ids, seamOf[i])
		}
		if len(ids) < 2 {
			continue
		}
		sort.SliceStable(ids, func(i, j int) bool {
			return r3.Dot(seam[ids[i]].p, h.dir) < r3.Dot(seam[ids[j]].p, h.dir)
		})
		for i := 1; i < len(ids); i++ {
			segs = append(segs, pairSegment{faces: h.faces, ends: [2]int{ids[i-1], ids[i]}})
		}
	}

	ok = true
	for s := 0; s < 2; s++ {
		if !retriangulate(pt.m[s], s, seam, segs, pt.tol, seams[s]) {
			ok = false
		}
	}
	return seams, ok
}

// retriangulate inserts the seam points and segments into mesh m, side s
// of the corefinement, and records the seam edges.
func retriangulate(m *surface.Mesh, s int, seam []seamPoint, segs []pairSegment, tol float64, seams surface.EdgeSet) bool {
	topo := surface.NewTopology(m)
	edgePts := make(map[surface.Edge][]int)
	facePts := make(map[int][]int)
	affected := make(map[int]bool)
	for id := range seam {
		sp := &seam[id]
		loc := sp.loc[s]
		switch loc.kind {
		case onVertex:
			sp.vert[s] = loc.vertex
			m.Vertices[loc.vertex] = sp.p
		case onEdge:
			sp.vert[s] = m.AddVertex(sp.p)
			edgePts[loc.edge] = append(edgePts[loc.edge], id)
			for _, f := range topo.EdgeFaces[loc.edge] {
				affected[f] = true
			}
		case onFace:
			sp.vert[s] = m.AddVertex(sp.p)
			facePts[loc.face] = append(facePts[loc.face], id)
			affected[loc.face] = true
		}
	}
	faceSegs := make(map[int][][2]int)
	for _, sg := range segs {
		f := sg.faces[s]
		u, v := seam[sg.ends[0]].vert[s], seam[sg.ends[1]].vert[s]
		if u == v {
			continue
		}
		faceSegs[f] = append(faceSegs[f], [2]int{u, v})
		affected[f] = true
	}
	faces := make([]int, 0, len(affected))
	for f := range affected {
		faces = append(faces, f)
	}
	sort.Ints(faces)

	ok := true
	for _, f := range faces {
		face := m.Faces[f]
		ft, valid := newFaceTriangulation(m.Triangle(f), face, tol)
		if !valid {
			ok = false
			continue
		}
		for j := 0; j < 3; j++ {
			from, to := face[j], face[(j+1)%3]
			ids := edgePts[surface.MakeEdge(from, to)]
			if len(ids) == 0 {
				continue
			}
			pf, pd := m.Vertices[from], r3.Sub(m.Vertices[to], m.Vertices[from])
			sorted := append([]int(nil), ids...)
			sort.SliceStable(sorted, func(i, j int) bool {
				return r3.Dot(r3.Sub(seam[sorted[i]].p, pf), pd) < r3.Dot(r3.Sub(seam[sorted[j]].p, pf), pd)
			})
			prev := from
			for _, id := range sorted {
				v := seam[id].vert[s]
				if !ft.insertOnBoundary(prev, to, v, seam[id].p) {
					ok = false
					break
				}
				prev = v
			}
		}
		for _, id := range facePts[f] {
			if !ft.insertInterior(seam[id].vert[s], seam[id].p) {
				ok = false
			}
		}
		for _, sg := range faceSegs[f] {
			edges, enforced := ft.enforce(sg[0], sg[1])
			if !enforced {
				ok = false
				continue
			}
			for _, e := range edges {
				seams.Add(e)
			}
		}
		ft.delaunay()
		m.Faces[f] = ft.tris[0]
		m.Faces = append(m.Faces, ft.tris[1:]...)
	}
	return ok
}

// mergeLocation returns the most specific of two locations of the same
// point on mesh m: vertices beat edges which beat faces. Conflicting
// locations of equal rank collapse to the element they share.
func mergeLocation(m *surface.Mesh, cur, next location) location {
	switch {
	case next.kind > cur.kind:
		return next
	case next.kind < cur.kind || next == cur:
		return cur
	}
	switch cur.kind {
	case onEdge:
		for _, v := range cur.edge {
			if next.edge.Has(v) {
				return location{kind: onVertex, vertex: v}
			}
		}
	case onFace:
		fa, fb := m.Faces[cur.face], m.Faces[next.face]
		var shared []int
		for _, v := range fa {
			for _, w := range fb {
				if v == w {
					shared = append(shared, v)
				}
			}
		}
		switch len(shared) {
		case 2:
			return location{kind: onEdge, edge: surface.MakeEdge(shared[0], shared[1])}
		case 1:
			return location{kind: onVertex, vertex: shared[0]}
		}
	}
	return cur
}

func appendUnique(s []int, v int) []int {
	for _, w := range s {
		if w == v {
			return s
		}
	}
	return append(s, v)
}
