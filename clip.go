package meshclip

import (
	"github.com/charmbracelet/log"
	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
)

// ClipWithPlane keeps the part of subject on the negative side of the
// plane through origin with the given normal, the side opposite the
// normal. The cut is left open. A plane that does not cross the subject
// yields a NoOp Result holding the subject re-exported.
func (p *Pipeline) ClipWithPlane(subject meshio.Arrays, normal, origin []float64, cfg Config) Result {
	l := cfg.logger("clip-plane")
	m, skipped, err := load(subject, l)
	if err != nil {
		return failed(err, nil)
	}
	plane, err := meshio.LoadPlane(normal, origin)
	if err != nil {
		return failed(err, skipped)
	}
	if cfg.RemeshBefore {
		p.refine(m, nil, true, cfg, l)
	}
	if !plane.Crosses(m) {
		l.Debug("plane does not cross mesh")
		return export(m, NoOp, skipped, cfg)
	}
	if !p.k.ClipPlane(m, plane) {
		l.Error("plane clip failed")
		return failed(ErrClipFailed, skipped)
	}
	return p.finishClip(m, skipped, cfg, l)
}

// ClipWithSurface keeps the part of subject inside clipper, or behind it
// when clipper is open. The cut is left open and clipper is not remeshed.
// A clipper that does not intersect the subject yields a NoOp Result
// holding the subject re-exported.
func (p *Pipeline) ClipWithSurface(subject, clipper meshio.Arrays, cfg Config) Result {
	l := cfg.logger("clip-surface")
	m, skipped, err := load(subject, l)
	if err != nil {
		return failed(err, nil)
	}
	c, cskipped, err := load(clipper, l)
	if err != nil {
		return failed(err, skipped)
	}
	skipped = append(skipped, cskipped...)
	m.RemoveIsolatedVertices()
	c.RemoveIsolatedVertices()
	if cfg.RemeshBefore {
		p.refine(m, nil, true, cfg, l)
	}
	if !p.k.DoIntersect(m, c) {
		l.Debug("clipper does not intersect mesh")
		return export(m, NoOp, skipped, cfg)
	}
	if !p.k.ClipMesh(m, c) {
		l.Error("surface clip failed")
		return failed(ErrClipFailed, skipped)
	}
	return p.finishClip(m, skipped, cfg, l)
}

// finishClip runs the repair stages shared by both clip operations on the
// freshly clipped mesh m and exports it.
func (p *Pipeline) finishClip(m *surface.Mesh, skipped []surface.Diagnostic, cfg Config, l *log.Logger) Result {
	if cfg.RemeshAfter {
		p.k.StitchBorders(m)
		p.k.MergeDuplicatedBoundaryVertices(m)
		p.refine(m, nil, true, cfg, l)
	}
	if cfg.RemoveDegenerateFaces {
		if !p.k.RemoveDegenerateFaces(m, surface.BorderEdges(m)) {
			l.Warn("degenerate faces left after removal")
		}
	}
	if !p.k.IsValid(m) {
		l.Warn("clipped mesh is invalid, repairing")
		m.RemoveIsolatedVertices()
		p.k.RemoveDegenerateFaces(m, surface.BorderEdges(m))
		if !p.k.IsValid(m) {
			l.Error("clipped mesh still invalid after repair")
			return failed(ErrRepairFailed, skipped)
		}
	}
	return export(m, Modified, skipped, cfg)
}

// load converts a to a mesh and logs skipped triangles.
func load(a meshio.Arrays, l *log.Logger) (*surface.Mesh, []surface.Diagnostic, error) {
	m, diags, err := meshio.Load(a)
	if err != nil {
		l.Error("load failed", "err", err)
		return nil, nil, err
	}
	for _, d := range diags {
		l.Debug("skipped input", "diagnostic", d)
	}
	return m, diags, nil
}
