package meshio

import (
	"math"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxKey bounds quantized coordinates so keys never overflow int64.
const maxKey = 1 << 62

// ExportStats describes what Export merged and dropped.
type ExportStats struct {
	// Canonical is the number of distinct quantization cells seen.
	Canonical int
	// Aliased is the number of vertices merged into an earlier vertex.
	Aliased int
	// Rejected is the number of vertices with a non-finite or out of range coordinate.
	Rejected int
	// DroppedFaces is the number of faces removed for repeated vertices,
	// rejected vertices or area below threshold.
	DroppedFaces int
}

// Export converts m to arrays. Vertices falling in the same cell of a grid
// of spacing dupThreshold are merged into the first one seen; faces that
// end up with a repeated or rejected vertex, or whose area is below
// areaThreshold, are dropped. Only vertices used by a kept face are
// written, renumbered from zero in order of first appearance. A
// non-positive dupThreshold merges only bit-identical coordinates.
func Export(m *surface.Mesh, areaThreshold, dupThreshold float64) (Arrays, ExportStats) {
	var st ExportStats
	alias := make([]int, len(m.Vertices))
	cache := make(map[[3]int64]int, len(m.Vertices))
	exact := make(map[r3.Vec]int)
	for i, v := range m.Vertices {
		if !d3.IsFinite(v) {
			alias[i] = -1
			st.Rejected++
			continue
		}
		if !(dupThreshold > 0) {
			if j, ok := exact[v]; ok {
				alias[i] = j
				st.Aliased++
				continue
			}
			exact[v] = i
			alias[i] = i
			st.Canonical++
			continue
		}
		key, ok := quantize(v, dupThreshold)
		if !ok {
			alias[i] = -1
			st.Rejected++
			continue
		}
		if j, ok := cache[key]; ok {
			alias[i] = j
			st.Aliased++
			continue
		}
		cache[key] = i
		alias[i] = i
		st.Canonical++
	}

	out := Empty()
	index := make([]int, len(m.Vertices))
	for i := range index {
		index[i] = -1
	}
	for _, f := range m.Faces {
		a, b, c := alias[f[0]], alias[f[1]], alias[f[2]]
		if a < 0 || b < 0 || c < 0 || a == b || b == c || c == a {
			st.DroppedFaces++
			continue
		}
		tri := d3.Triangle{m.Vertices[a], m.Vertices[b], m.Vertices[c]}
		if area := tri.Area(); !(area >= areaThreshold) {
			st.DroppedFaces++
			continue
		}
		for _, v := range [3]int{a, b, c} {
			if index[v] < 0 {
				index[v] = len(out.Vertices) / 3
				p := m.Vertices[v]
				out.Vertices = append(out.Vertices, p.X, p.Y, p.Z)
			}
			out.Triangles = append(out.Triangles, index[v])
		}
	}
	return out, st
}

// quantize returns the grid cell of v for a grid of spacing thr.
func quantize(v r3.Vec, thr float64) ([3]int64, bool) {
	x, y, z := math.Round(v.X/thr), math.Round(v.Y/thr), math.Round(v.Z/thr)
	if math.Abs(x) > maxKey || math.Abs(y) > maxKey || math.Abs(z) > maxKey || math.IsNaN(x+y+z) {
		return [3]int64{}, false
	}
	return [3]int64{int64(x), int64(y), int64(z)}, true
}
