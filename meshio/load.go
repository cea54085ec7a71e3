package meshio

import (
	"fmt"

	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Load builds a mesh from a. Every vertex row is added in order. Triangle
// rows with an index out of range, a repeated index or a directed edge
// already used by an earlier triangle are skipped and reported; only shape
// errors are returned as error.
func Load(a Arrays) (*surface.Mesh, []surface.Diagnostic, error) {
	if err := a.CheckShape(); err != nil {
		return nil, nil, err
	}
	n := a.VertexCount()
	m := &surface.Mesh{
		Vertices: make([]r3.Vec, n),
		Faces:    make([][3]int, 0, a.TriangleCount()),
	}
	for i := range m.Vertices {
		m.Vertices[i] = r3.Vec{X: a.Vertices[3*i], Y: a.Vertices[3*i+1], Z: a.Vertices[3*i+2]}
	}
	var diags []surface.Diagnostic
	directed := make(map[[2]int]struct{}, len(a.Triangles))
	for i := 0; i < a.TriangleCount(); i++ {
		t := a.Triangle(i)
		switch {
		case t[0] < 0 || t[1] < 0 || t[2] < 0 || t[0] >= n || t[1] >= n || t[2] >= n:
			diags = append(diags, surface.Diagnostic{Kind: surface.BadIndex, Index: i, Detail: fmt.Sprint(t)})
			continue
		case t[0] == t[1] || t[1] == t[2] || t[2] == t[0]:
			diags = append(diags, surface.Diagnostic{Kind: surface.DegenerateTriangle, Index: i, Detail: fmt.Sprint(t)})
			continue
		}
		conflict := false
		for j := 0; j < 3; j++ {
			if _, ok := directed[[2]int{t[j], t[(j+1)%3]}]; ok {
				conflict = true
				break
			}
		}
		if conflict {
			diags = append(diags, surface.Diagnostic{Kind: surface.NonManifoldTriangle, Index: i, Detail: fmt.Sprint(t)})
			continue
		}
		for j := 0; j < 3; j++ {
			directed[[2]int{t[j], t[(j+1)%3]}] = struct{}{}
		}
		m.Faces = append(m.Faces, t)
	}
	return m, diags, nil
}

// LoadPlane builds a plane from its normal and a point on it. The normal is
// not validated.
func LoadPlane(normal, origin []float64) (surface.Plane, error) {
	if len(normal) != 3 || len(origin) != 3 {
		return surface.Plane{}, fmt.Errorf("plane needs 3 components, got normal %d origin %d: %w", len(normal), len(origin), ErrShape)
	}
	return surface.Plane{
		Normal: r3.Vec{X: normal[0], Y: normal[1], Z: normal[2]},
		Origin: r3.Vec{X: origin[0], Y: origin[1], Z: origin[2]},
	}, nil
}

// FromMesh returns the arrays of m without deduplication or filtering.
func FromMesh(m *surface.Mesh) Arrays {
	a := Arrays{
		Vertices:  make([]float64, 0, 3*len(m.Vertices)),
		Triangles: make([]int, 0, 3*len(m.Faces)),
	}
	for _, v := range m.Vertices {
		a.Vertices = append(a.Vertices, v.X, v.Y, v.Z)
	}
	for _, f := range m.Faces {
		a.Triangles = append(a.Triangles, f[0], f[1], f[2])
	}
	return a
}
