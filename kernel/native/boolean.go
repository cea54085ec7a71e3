package native

import (
	"math"

	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// windingNumber returns the generalized winding number of m at p: 1 inside
// and 0 outside a closed outward oriented mesh, about ±0.5 next to an open one.
func windingNumber(m *surface.Mesh, p r3.Vec) float64 {
	var sum float64
	for f := range m.Faces {
		sum += m.Triangle(f).SolidAngle(p)
	}
	return sum / (4 * math.Pi)
}

// components labels the faces of m connected through edges not in barrier.
func components(m *surface.Mesh, barrier surface.EdgeSet) (label []int, n int) {
	topo := surface.NewTopology(m)
	label = make([]int, len(m.Faces))
	for i := range label {
		label[i] = -1
	}
	var stack []int
	for seed := range m.Faces {
		if label[seed] >= 0 {
			continue
		}
		label[seed] = n
		stack = append(stack[:0], seed)
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			face := m.Faces[f]
			for j := 0; j < 3; j++ {
				e := surface.MakeEdge(face[j], face[(j+1)%3])
				if barrier.Has(e) {
					continue
				}
				for _, g := range topo.EdgeFaces[e] {
					if label[g] < 0 {
						label[g] = n
						stack = append(stack, g)
					}
				}
			}
		}
		n++
	}
	return label, n
}

// insideFaces reports for every face of m whether it lies inside other.
// Faces are grouped by the components barrier separates and each group is
// classified by the winding number of other at the centroid of its
// largest face.
func insideFaces(m, other *surface.Mesh, barrier surface.EdgeSet, threshold float64) []bool {
	label, n := components(m, barrier)
	best := make([]int, n)
	bestArea := make([]float64, n)
	for i := range best {
		best[i] = -1
		bestArea[i] = -1
	}
	for f, c := range label {
		if a := m.Triangle(f).Area(); a > bestArea[c] {
			best[c], bestArea[c] = f, a
		}
	}
	compInside := make([]bool, n)
	for c, f := range best {
		compInside[c] = windingNumber(other, m.Triangle(f).Centroid()) > threshold
	}
	inside := make([]bool, len(m.Faces))
	for f, c := range label {
		inside[f] = compInside[c]
	}
	return inside
}

// ClipMesh keeps the part of m inside clipper. For an open clipper the
// part behind it, opposite its normals, is kept.
func (k *Kernel) ClipMesh(m, clipper *surface.Mesh) bool {
	if m.IsEmpty() || clipper.IsEmpty() {
		return false
	}
	seams, ok := corefine(m, clipper)
	if !ok {
		return false
	}
	threshold := 0.0
	if surface.IsClosed(clipper) {
		threshold = 0.5
	}
	inside := insideFaces(m, clipper, seams[0], threshold)
	m.RemoveFaces(func(f int) bool { return !inside[f] })
	m.RemoveIsolatedVertices()
	return true
}

// CorefineAndUnion returns the union of the volumes bounded by a and b.
// Both must be closed. It fails when the result is not a valid closed mesh.
func (k *Kernel) CorefineAndUnion(a, b *surface.Mesh) (*surface.Mesh, bool) {
	if !surface.IsClosed(a) || !surface.IsClosed(b) {
		return nil, false
	}
	seams, ok := corefine(a, b)
	if !ok {
		return nil, false
	}
	insideA := insideFaces(a, b, seams[0], 0.5)
	insideB := insideFaces(b, a, seams[1], 0.5)
	out := &surface.Mesh{}
	out.Append(keepFaces(a, insideA))
	out.Append(keepFaces(b, insideB))
	out.RemoveIsolatedVertices()
	k.StitchBorders(out)
	return out, surface.Validate(out) == nil && surface.IsClosed(out)
}

// keepFaces returns a copy of m without the faces marked in drop.
func keepFaces(m *surface.Mesh, drop []bool) *surface.Mesh {
	out := &surface.Mesh{Vertices: append([]r3.Vec(nil), m.Vertices...)}
	for f, face := range m.Faces {
		if !drop[f] {
			out.Faces = append(out.Faces, face)
		}
	}
	return out
}
