// Package meshtest provides meshes for tests.
package meshtest

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cube returns the closed axis aligned cube [min, min+size]^3 with 8
// vertices and 12 outward facing triangles.
func Cube(min r3.Vec, size float64) *surface.Mesh {
	m := &surface.Mesh{}
	for i := 0; i < 8; i++ {
		v := min
		if i&1 != 0 {
			v.X += size
		}
		if i&2 != 0 {
			v.Y += size
		}
		if i&4 != 0 {
			v.Z += size
		}
		m.AddVertex(v)
	}
	m.Faces = [][3]int{
		{0, 2, 1}, {1, 2, 3}, // z = min
		{4, 5, 6}, {5, 7, 6}, // z = max
		{0, 1, 4}, {1, 5, 4}, // y = min
		{2, 6, 3}, {3, 6, 7}, // y = max
		{0, 4, 2}, {2, 4, 6}, // x = min
		{1, 3, 5}, {3, 7, 5}, // x = max
	}
	return m
}

// UnitCube returns Cube(r3.Vec{}, 1).
func UnitCube() *surface.Mesh { return Cube(r3.Vec{}, 1) }

// Grid returns an open planar patch at height z made of nx by ny cells of
// size step starting at (x0, y0). Each cell is split along its diagonal
// and faces point towards +Z.
func Grid(x0, y0, z, step float64, nx, ny int) *surface.Mesh {
	m := &surface.Mesh{}
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.AddVertex(r3.Vec{X: x0 + float64(i)*step, Y: y0 + float64(j)*step, Z: z})
		}
	}
	at := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := at(i, j), at(i+1, j), at(i+1, j+1), at(i, j+1)
			m.AddFace(a, b, c)
			m.AddFace(a, c, d)
		}
	}
	return m
}

// PerpendicularPatches returns two crossing open patches. The first is the
// unit square in z=0, the second lies in the plane x=0.3, spans y in
// [0.2, 0.7] and z in [-1, 1]. Their intersection is the segment from
// (0.3, 0.2, 0) to (0.3, 0.7, 0), which crosses the diagonal of the first.
func PerpendicularPatches() (a, b *surface.Mesh) {
	a = &surface.Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Faces:    [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	b = &surface.Mesh{
		Vertices: []r3.Vec{
			{X: 0.3, Y: 0.2, Z: -1},
			{X: 0.3, Y: 0.7, Z: -1},
			{X: 0.3, Y: 0.7, Z: 1},
			{X: 0.3, Y: 0.2, Z: 1},
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
	return a, b
}

// Sphere returns a closed isosurface mesh of a sphere of the given radius
// centered at the origin, extracted with marching cubes on a uniform grid
// of cells cells along the longest side.
func Sphere(radius float64, cells int) (*surface.Mesh, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, err
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	vertices := make([]float32, 0, 9*len(tris))
	indices := make([]uint32, 0, 3*len(tris))
	for i, tri := range tris {
		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			indices = append(indices, uint32(3*i+j))
		}
	}
	soup, diags, err := meshio.FromFloat32(vertices, indices)
	if err != nil {
		return nil, err
	}
	if len(diags) > 0 {
		return nil, fmt.Errorf("sphere: %d invalid vertices", len(diags))
	}
	m, _, err := meshio.Load(soup)
	if err != nil {
		return nil, err
	}
	welded, _ := meshio.Export(m, 1e-12, 0)
	m, _, err = meshio.Load(welded)
	return m, err
}

// MustSphere is like Sphere but panics on error.
func MustSphere(radius float64, cells int) *surface.Mesh {
	m, err := Sphere(radius, cells)
	if err != nil {
		panic(err)
	}
	return m
}

// Arrays returns the arrays of m.
func Arrays(m *surface.Mesh) meshio.Arrays { return meshio.FromMesh(m) }
