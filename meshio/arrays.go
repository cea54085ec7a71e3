// Package meshio converts between flat vertex/triangle arrays and
// surface meshes. Loading skips malformed triangles and reports them;
// exporting deduplicates vertices by quantization and drops degenerate
// triangles so the output always satisfies the array invariants.
package meshio

import (
	"errors"
	"fmt"
)

var (
	// ErrShape is returned when an array length is not a multiple of its row width.
	ErrShape = errors.New("meshio: array length not a multiple of row width")
)

// Arrays is the flat exchange form of a triangle mesh. Vertices holds N rows
// of x, y, z and Triangles holds M rows of vertex indices, both row-major.
type Arrays struct {
	Vertices  []float64 `json:"vertices"`
	Triangles []int     `json:"triangles"`
}

// Empty returns arrays with zero rows and non-nil backing slices.
func Empty() Arrays {
	return Arrays{Vertices: []float64{}, Triangles: []int{}}
}

// VertexCount returns the number of vertex rows.
func (a Arrays) VertexCount() int { return len(a.Vertices) / 3 }

// TriangleCount returns the number of triangle rows.
func (a Arrays) TriangleCount() int { return len(a.Triangles) / 3 }

// IsEmpty reports whether there are no vertices or no triangles.
func (a Arrays) IsEmpty() bool { return a.VertexCount() == 0 || a.TriangleCount() == 0 }

// Vertex returns row i of the vertex array.
func (a Arrays) Vertex(i int) [3]float64 {
	return [3]float64{a.Vertices[3*i], a.Vertices[3*i+1], a.Vertices[3*i+2]}
}

// Triangle returns row i of the triangle array.
func (a Arrays) Triangle(i int) [3]int {
	return [3]int{a.Triangles[3*i], a.Triangles[3*i+1], a.Triangles[3*i+2]}
}

// CheckShape returns ErrShape if either array is not made of full rows.
func (a Arrays) CheckShape() error {
	if len(a.Vertices)%3 != 0 {
		return fmt.Errorf("vertices has %d values: %w", len(a.Vertices), ErrShape)
	}
	if len(a.Triangles)%3 != 0 {
		return fmt.Errorf("triangles has %d values: %w", len(a.Triangles), ErrShape)
	}
	return nil
}

// FixedEdges reshapes a flat K×2 array of vertex index pairs.
func FixedEdges(pairs []int) ([][2]int, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("fixed edges has %d values: %w", len(pairs), ErrShape)
	}
	out := make([][2]int, len(pairs)/2)
	for i := range out {
		out[i] = [2]int{pairs[2*i], pairs[2*i+1]}
	}
	return out, nil
}
