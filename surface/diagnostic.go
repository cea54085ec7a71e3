package surface

import "fmt"

// DiagnosticKind classifies an input element skipped while building or
// constraining a mesh.
type DiagnosticKind uint8

const (
	// BadIndex marks a triangle referencing a vertex out of range.
	BadIndex DiagnosticKind = iota + 1
	// DegenerateTriangle marks a triangle that repeats a vertex index.
	DegenerateTriangle
	// NonManifoldTriangle marks a triangle whose insertion would break
	// orientation or manifoldness.
	NonManifoldTriangle
	// BadFixedEdge marks a fixed edge pair with an invalid vertex index.
	BadFixedEdge
	// NonAdjacentFixedEdge marks a fixed edge pair whose vertices share no edge.
	NonAdjacentFixedEdge
	// NonFiniteVertex marks a vertex with a NaN or infinite coordinate.
	NonFiniteVertex
)

func (k DiagnosticKind) String() string {
	switch k {
	case BadIndex:
		return "bad index"
	case DegenerateTriangle:
		return "degenerate triangle"
	case NonManifoldTriangle:
		return "non-manifold triangle"
	case BadFixedEdge:
		return "bad fixed edge"
	case NonAdjacentFixedEdge:
		return "non-adjacent fixed edge"
	case NonFiniteVertex:
		return "non-finite vertex"
	}
	return fmt.Sprintf("DiagnosticKind(%d)", uint8(k))
}

// Diagnostic records an input element that was skipped. Index is the
// position of the element in its input array (triangle row, edge row or
// vertex row).
type Diagnostic struct {
	Kind   DiagnosticKind
	Index  int
	Detail string
}

func (d Diagnostic) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("%s at %d", d.Kind, d.Index)
	}
	return fmt.Sprintf("%s at %d: %s", d.Kind, d.Index, d.Detail)
}
