package meshclip

import (
	"errors"

	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
)

var (
	errInvalidSurface = errors.New("surface is not a valid polygon mesh")
	errNoIntersection = errors.New("surfaces do not intersect")
)

// Surface is a mesh together with its fixed edges, edited in place by a
// sequence of operations. A Surface is not safe for concurrent use.
type Surface struct {
	p    *Pipeline
	mesh *surface.Mesh
	cons *surface.Constraints
}

// NewSurface loads a. Skipped triangles are returned as diagnostics.
func (p *Pipeline) NewSurface(a meshio.Arrays) (*Surface, []surface.Diagnostic, error) {
	m, diags, err := meshio.Load(a)
	if err != nil {
		return nil, nil, err
	}
	return &Surface{p: p, mesh: m, cons: surface.NewConstraints()}, diags, nil
}

// Mesh returns the underlying mesh. It is invalidated by the next edit.
func (s *Surface) Mesh() *surface.Mesh { return s.mesh }

// FixedEdges returns the fixed edges declared so far, following every edit.
func (s *Surface) FixedEdges() surface.EdgeSet { return s.cons.Fixed() }

// AddFixedEdges declares the vertex pairs as edges remeshing must keep.
// Pairs that are out of range or not joined by an edge are skipped.
func (s *Surface) AddFixedEdges(pairs [][2]int) []surface.Diagnostic {
	return s.cons.AddFixedEdges(s.mesh, pairs)
}

// Remesh refines the surface towards cfg.TargetEdgeLength keeping its
// border and fixed edges.
func (s *Surface) Remesh(splitLongEdges bool, cfg Config) RefineOutcome {
	return s.p.Refine(s.mesh, s.cons, splitLongEdges, cfg)
}

// CutWithSurface keeps the part of s inside clipper, or behind it when
// clipper is open. Both surfaces must be valid and non empty and must
// intersect; otherwise s is left unchanged and an error is returned. Fixed
// edges do not survive a cut.
func (s *Surface) CutWithSurface(clipper *Surface, cfg Config) error {
	l := cfg.logger("cut")
	switch {
	case s.mesh.IsEmpty() || clipper.mesh.IsEmpty():
		l.Warn("cannot cut empty surface")
		return ErrEmptyMesh
	case !s.p.k.IsValid(s.mesh) || !s.p.k.IsValid(clipper.mesh):
		l.Warn("cannot cut invalid surface")
		return errInvalidSurface
	case !s.p.k.DoIntersect(s.mesh, clipper.mesh):
		l.Debug("surfaces do not intersect")
		return errNoIntersection
	}
	m, c := s.mesh.Clone(), clipper.mesh.Clone()
	if !s.p.k.ClipMesh(m, c) {
		l.Error("surface clip failed")
		return ErrClipFailed
	}
	s.mesh = m
	s.cons = surface.NewConstraints()
	return nil
}

// ReverseFaceOrientation flips the winding of every face.
func (s *Surface) ReverseFaceOrientation() { s.mesh.ReverseOrientation() }

// Export returns the arrays of the surface with vertices closer than
// dupThreshold merged and faces smaller than areaThreshold dropped.
func (s *Surface) Export(areaThreshold, dupThreshold float64) meshio.Arrays {
	a, _ := meshio.Export(s.mesh, areaThreshold, dupThreshold)
	return a
}

// Remesh loads a, declares its fixed edges, refines it and exports it.
// fixed is a K by 2 row-major array of vertex index pairs.
func (p *Pipeline) Remesh(a meshio.Arrays, fixed []int, cfg Config) Result {
	l := cfg.logger("remesh")
	m, skipped, err := load(a, l)
	if err != nil {
		return failed(err, nil)
	}
	pairs, err := meshio.FixedEdges(fixed)
	if err != nil {
		return failed(err, skipped)
	}
	cons := surface.NewConstraints()
	for _, d := range cons.AddFixedEdges(m, pairs) {
		l.Debug("skipped fixed edge", "diagnostic", d)
		skipped = append(skipped, d)
	}
	if p.refine(m, cons, true, cfg, l) == RefineSkipped {
		return export(m, NoOp, skipped, cfg)
	}
	return export(m, Modified, skipped, cfg)
}
