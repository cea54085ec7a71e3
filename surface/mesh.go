// Package surface holds the triangle mesh model shared by the clipping,
// corefinement and remeshing packages: the mesh itself, canonical edges,
// topology queries, planes and the constrained edge tracker.
package surface

import (
	"github.com/soypat/meshclip/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an oriented triangle mesh. Faces index into Vertices and are
// wound counter-clockwise when seen from outside.
//
// A Mesh has a single owner. Operations that change topology invalidate
// vertex indices and edges held by the caller unless stated otherwise.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
}

// NumVertices returns the number of vertices, including isolated ones.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumFaces returns the number of triangles.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// IsEmpty reports whether the mesh lacks vertices or faces.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 || len(m.Faces) == 0 }

// AddVertex appends v and returns its index.
func (m *Mesh) AddVertex(v r3.Vec) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddFace appends triangle abc and returns its index. It does not validate.
func (m *Mesh) AddFace(a, b, c int) int {
	m.Faces = append(m.Faces, [3]int{a, b, c})
	return len(m.Faces) - 1
}

// Clone returns a deep copy of m.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]r3.Vec(nil), m.Vertices...),
		Faces:    append([][3]int(nil), m.Faces...),
	}
}

// Triangle returns the geometry of face f.
func (m *Mesh) Triangle(f int) d3.Triangle {
	face := m.Faces[f]
	return d3.Triangle{m.Vertices[face[0]], m.Vertices[face[1]], m.Vertices[face[2]]}
}

// Bounds returns the bounding box of the referenced and isolated vertices.
func (m *Mesh) Bounds() d3.Box {
	return d3.BoxOf(m.Vertices...)
}

// Diagonal returns the length of the bounding box diagonal.
func (m *Mesh) Diagonal() float64 { return m.Bounds().Diagonal() }

// Append adds all of o's vertices and faces to m and returns the index
// offset applied to o's vertices.
func (m *Mesh) Append(o *Mesh) (offset int) {
	offset = len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + offset, f[1] + offset, f[2] + offset})
	}
	return offset
}

// ReverseOrientation flips the winding of every face.
func (m *Mesh) ReverseOrientation() {
	for i := range m.Faces {
		m.Faces[i][1], m.Faces[i][2] = m.Faces[i][2], m.Faces[i][1]
	}
}

// RemoveIsolatedVertices drops vertices not referenced by any face and
// renumbers the remaining ones keeping their relative order. remap maps an
// old index to its new index or -1 when the vertex was removed.
func (m *Mesh) RemoveIsolatedVertices() (remap []int, removed int) {
	used := make([]bool, len(m.Vertices))
	for _, f := range m.Faces {
		for _, v := range f {
			if v >= 0 && v < len(used) {
				used[v] = true
			}
		}
	}
	return m.compact(used)
}

// RemoveFaces drops the faces for which drop returns true. Vertices are not touched.
func (m *Mesh) RemoveFaces(drop func(f int) bool) (removed int) {
	kept := m.Faces[:0]
	for i, f := range m.Faces {
		if drop(i) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	m.Faces = kept
	return removed
}

// MergeVertices redirects every vertex to target[v] (or keeps it when
// target[v] is negative), drops faces that collapse and then removes
// isolated vertices. The returned remap goes from the original indices to
// the final ones.
func (m *Mesh) MergeVertices(target []int) (remap []int) {
	resolve := func(v int) int {
		for target[v] >= 0 && target[v] != v {
			v = target[v]
		}
		return v
	}
	kept := m.Faces[:0]
	for _, f := range m.Faces {
		f = [3]int{resolve(f[0]), resolve(f[1]), resolve(f[2])}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			continue
		}
		kept = append(kept, f)
	}
	m.Faces = kept
	compaction, _ := m.RemoveIsolatedVertices()
	remap = make([]int, len(target))
	for v := range remap {
		remap[v] = compaction[resolve(v)]
	}
	return remap
}

func (m *Mesh) compact(used []bool) (remap []int, removed int) {
	remap = make([]int, len(m.Vertices))
	n := 0
	for i, v := range m.Vertices {
		if !used[i] {
			remap[i] = -1
			removed++
			continue
		}
		remap[i] = n
		m.Vertices[n] = v
		n++
	}
	if removed == 0 {
		return remap, 0
	}
	m.Vertices = m.Vertices[:n]
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
	}
	return remap, removed
}
