package meshio

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/meshclip/surface"
)

// FromFloat32 converts renderer-style buffers (float32 positions and
// uint32 indices) to Arrays. Non-finite positions are carried as NaN so
// Export rejects them, and are reported as diagnostics.
func FromFloat32(vertices []float32, indices []uint32) (Arrays, []surface.Diagnostic, error) {
	if len(vertices)%3 != 0 || len(indices)%3 != 0 {
		return Arrays{}, nil, fmt.Errorf("float32 buffers of %d positions and %d indices: %w", len(vertices), len(indices), ErrShape)
	}
	a := Arrays{
		Vertices:  make([]float64, len(vertices)),
		Triangles: make([]int, len(indices)),
	}
	var diags []surface.Diagnostic
	for i := 0; i < len(vertices); i += 3 {
		bad := false
		for j := i; j < i+3; j++ {
			v := vertices[j]
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				bad = true
			}
			a.Vertices[j] = float64(v)
		}
		if bad {
			a.Vertices[i], a.Vertices[i+1], a.Vertices[i+2] = math.NaN(), math.NaN(), math.NaN()
			diags = append(diags, surface.Diagnostic{Kind: surface.NonFiniteVertex, Index: i / 3})
		}
	}
	for i, idx := range indices {
		a.Triangles[i] = int(idx)
	}
	return a, diags, nil
}
