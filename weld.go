package meshclip

import (
	"fmt"

	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
)

// Weld folds meshes into one. Each mesh is remeshed and corefined with the
// accumulated result; two closed meshes are merged by their Boolean union,
// otherwise the next mesh is appended and the coincident borders are
// stitched. A failed union stops the weld and is returned as an error
// wrapping ErrUnionFailed.
func (p *Pipeline) Weld(meshes []meshio.Arrays, cfg Config) (Result, error) {
	l := cfg.logger("weld")
	if len(meshes) == 0 {
		return failed(ErrNoMeshes, nil), ErrNoMeshes
	}
	acc, skipped, err := load(meshes[0], l)
	if err != nil {
		err = fmt.Errorf("weld mesh 0: %w", err)
		return failed(err, nil), err
	}
	acc.RemoveIsolatedVertices()
	for i := 1; i < len(meshes); i++ {
		next, nskipped, err := load(meshes[i], l)
		if err != nil {
			err = fmt.Errorf("weld mesh %d: %w", i, err)
			return failed(err, skipped), err
		}
		skipped = append(skipped, nskipped...)
		next.RemoveIsolatedVertices()
		if next.IsEmpty() {
			l.Warn("skipping empty mesh", "index", i)
			continue
		}
		p.remeshForWeld(acc, cfg)
		p.remeshForWeld(next, cfg)
		if !p.k.Corefine(acc, next) {
			l.Warn("corefinement failed", "index", i)
		}
		if surface.IsClosed(acc) && surface.IsClosed(next) {
			union, ok := p.k.CorefineAndUnion(acc, next)
			if !ok {
				l.Error("union failed", "index", i)
				err := fmt.Errorf("weld mesh %d: %w", i, ErrUnionFailed)
				return failed(err, skipped), err
			}
			acc = union
		} else {
			acc.Append(next)
			p.k.StitchBorders(acc)
			p.k.MergeDuplicatedBoundaryVertices(acc)
		}
		p.k.MergeDuplicatedBoundaryVertices(acc)
		l.Debug("welded", "index", i, "vertices", len(acc.Vertices), "faces", len(acc.Faces))
	}
	p.k.StitchBorders(acc)
	p.k.MergeDuplicatedBoundaryVertices(acc)
	if !p.k.RemoveDegenerateFaces(acc, surface.BorderEdges(acc)) {
		l.Warn("degenerate faces left after weld")
	}
	acc.RemoveIsolatedVertices()
	return export(acc, Modified, skipped, cfg), nil
}

// remeshForWeld remeshes m keeping its border, skipping empty meshes.
func (p *Pipeline) remeshForWeld(m *surface.Mesh, cfg Config) {
	if m.IsEmpty() {
		return
	}
	m.RemoveIsolatedVertices()
	p.k.IsotropicRemesh(m, cfg.TargetEdgeLength, cfg.Iterations, surface.BorderEdges(m), cfg.ProtectConstraints, cfg.RelaxConstraints)
}
