package native

import (
	"math"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// ClipPlane keeps the part of m on the negative side of p. Faces crossing
// the plane are cut along it, sharing the new vertices between neighbors.
// Faces lying on the plane are kept. It fails on a zero normal or an
// invalid mesh.
func (k *Kernel) ClipPlane(m *surface.Mesh, p surface.Plane) bool {
	if r3.Norm(p.Normal) == 0 || surface.Validate(m) != nil {
		return false
	}
	tol := surface.SnapTolerance(m.Diagonal())
	d := make([]float64, len(m.Vertices))
	for i, v := range m.Vertices {
		d[i] = p.SignedDistance(v)
		if math.Abs(d[i]) <= tol {
			d[i] = 0
		}
	}
	cut := make(map[surface.Edge]int)
	crossing := func(a, b int) int {
		e := surface.MakeEdge(a, b)
		if v, ok := cut[e]; ok {
			return v
		}
		i, j := e[0], e[1]
		v := m.AddVertex(d3.Lerp(m.Vertices[i], m.Vertices[j], d3.Clamp(d[i]/(d[i]-d[j]), 0, 1)))
		cut[e] = v
		return v
	}
	faces := make([][3]int, 0, len(m.Faces))
	for _, f := range m.Faces {
		lo := math.Min(d[f[0]], math.Min(d[f[1]], d[f[2]]))
		hi := math.Max(d[f[0]], math.Max(d[f[1]], d[f[2]]))
		switch {
		case hi <= 0:
			faces = append(faces, f)
			continue
		case lo >= 0:
			continue
		}
		var poly [4]int
		n := 0
		for j := 0; j < 3; j++ {
			a, b := f[j], f[(j+1)%3]
			if d[a] <= 0 {
				poly[n] = a
				n++
			}
			if (d[a] < 0 && d[b] > 0) || (d[a] > 0 && d[b] < 0) {
				poly[n] = crossing(a, b)
				n++
			}
		}
		faces = append(faces, [3]int{poly[0], poly[1], poly[2]})
		if n == 4 {
			faces = append(faces, [3]int{poly[0], poly[2], poly[3]})
		}
	}
	m.Faces = faces
	m.RemoveIsolatedVertices()
	return true
}
