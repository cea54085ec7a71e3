// Package kernel defines the geometry kernel the clipping pipeline is
// built on. Implementations provide plane and mesh clipping,
// corefinement, union, isotropic remeshing and repair primitives behind
// this interface so the pipeline never depends on a specific backend.
//
// Every operation mutates the meshes it is given. Vertex indices held
// before a call that changes topology are invalid afterwards, except for
// the constrained edge sets passed to the call, which implementations keep
// consistent with the new numbering.
package kernel

import "github.com/soypat/meshclip/surface"

// Kernel is the geometry kernel interface.
type Kernel interface {
	// ClipPlane keeps the part of m on the negative side of p, opposite
	// the normal. The cut is left open. It reports false on failure.
	ClipPlane(m *surface.Mesh, p surface.Plane) bool
	// ClipMesh keeps the part of m inside clipper. The cut is left open.
	// clipper may be modified. It reports false on failure.
	ClipMesh(m, clipper *surface.Mesh) bool
	// DoIntersect reports whether the surfaces of a and b intersect.
	DoIntersect(a, b *surface.Mesh) bool
	// Corefine inserts the intersection curve of a and b into both meshes
	// so that it is made of edges of each. It reports false on failure.
	Corefine(a, b *surface.Mesh) bool
	// CorefineAndUnion returns the union of the volumes bounded by the
	// closed meshes a and b. Both inputs may be modified.
	CorefineAndUnion(a, b *surface.Mesh) (*surface.Mesh, bool)

	// IsotropicRemesh runs iterations of split, collapse, flip and
	// tangential relaxation towards target edge length. Constrained edges
	// are never flipped; with protect they are not split or collapsed and
	// with relax their vertices may slide along them.
	IsotropicRemesh(m *surface.Mesh, target float64, iterations int, constrained surface.EdgeSet, protect, relax bool)
	// SplitLongEdges splits edges longer than maxLength. Halves of a
	// constrained edge are constrained.
	SplitLongEdges(m *surface.Mesh, maxLength float64, constrained surface.EdgeSet)
	// StitchBorders merges pairs of border edges with coincident endpoints.
	StitchBorders(m *surface.Mesh)
	// MergeDuplicatedBoundaryVertices merges coincident vertices that lie
	// on the same boundary cycle.
	MergeDuplicatedBoundaryVertices(m *surface.Mesh)
	// RemoveDegenerateFaces removes needle and cap triangles without
	// touching constrained edges. It reports whether every degenerate face
	// was removed.
	RemoveDegenerateFaces(m *surface.Mesh, constrained surface.EdgeSet) bool
	// IsValid reports whether m is a valid oriented 2-manifold mesh.
	IsValid(m *surface.Mesh) bool
}
