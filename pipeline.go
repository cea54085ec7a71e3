// Package meshclip clips, corefines, remeshes and welds triangle surface
// meshes exchanged as flat vertex and triangle arrays.
//
// Every operation composes primitives of a kernel.Kernel into a sequence
// that keeps the mesh valid and protects declared fixed edges. Failures are
// reported through Result and error values; malformed input elements are
// skipped and listed in Result.Skipped.
package meshclip

import (
	"github.com/charmbracelet/log"
	"github.com/soypat/meshclip/internal/diag"
	"github.com/soypat/meshclip/kernel"
	"github.com/soypat/meshclip/kernel/native"
	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
)

const (
	// minRelativeTarget is the smallest target edge length, relative to the
	// bounding box diagonal, that refinement accepts.
	minRelativeTarget = 1e-4
	// minRemeshFaces is the face count below which refinement only splits.
	minRemeshFaces = 40
)

// Pipeline runs mesh operations on a kernel. It holds no other state and
// may be shared.
type Pipeline struct {
	k kernel.Kernel
}

// New returns a Pipeline using kernel k.
func New(k kernel.Kernel) *Pipeline {
	return &Pipeline{k: k}
}

// Default returns a Pipeline on the pure Go kernel.
func Default() *Pipeline {
	return New(native.New())
}

// Kernel returns the kernel p runs on.
func (p *Pipeline) Kernel() kernel.Kernel { return p.k }

// RefineOutcome tells what Refine did.
type RefineOutcome int

const (
	// RefineSkipped means the target length was too small for the mesh.
	RefineSkipped RefineOutcome = iota
	// RefineSplitOnly means the mesh was too small to remesh and long
	// edges were split at most.
	RefineSplitOnly
	// RefineRemeshed means the mesh was isotropically remeshed.
	RefineRemeshed
)

func (o RefineOutcome) String() string {
	switch o {
	case RefineSkipped:
		return "skipped"
	case RefineSplitOnly:
		return "split-only"
	case RefineRemeshed:
		return "remeshed"
	}
	return "RefineOutcome(?)"
}

// Refine remeshes m in place towards cfg.TargetEdgeLength while keeping
// its border edges and the fixed edges of cons. cons may be nil. With
// splitLongEdges set, edges longer than the target are split before every
// remeshing pass.
func (p *Pipeline) Refine(m *surface.Mesh, cons *surface.Constraints, splitLongEdges bool, cfg Config) RefineOutcome {
	return p.refine(m, cons, splitLongEdges, cfg, cfg.logger("refine"))
}

func (p *Pipeline) refine(m *surface.Mesh, cons *surface.Constraints, splitLongEdges bool, cfg Config, l *log.Logger) RefineOutcome {
	if cons == nil {
		cons = surface.NewConstraints()
	}
	if remap, removed := m.RemoveIsolatedVertices(); removed > 0 {
		cons.Remap(remap)
		l.Debug("purged isolated vertices", "count", removed)
	}
	diagonal := m.Diagonal()
	if cfg.TargetEdgeLength < minRelativeTarget*diagonal {
		l.Warn("target edge length too small, refine skipped", "target", cfg.TargetEdgeLength, "diagonal", diagonal)
		return RefineSkipped
	}
	logEdges(l, "before refine", m)
	target := cfg.TargetEdgeLength
	if len(m.Faces) < minRemeshFaces {
		if splitLongEdges {
			protected := cons.Protected(m)
			p.k.SplitLongEdges(m, target, protected)
			cons.Sync(m, protected)
		}
		l.Debug("tiny mesh, remeshing skipped", "faces", len(m.Faces))
		p.checkValid(m, l)
		return RefineSplitOnly
	}
	for i := 0; i < cfg.Iterations; i++ {
		protected := cons.Protected(m)
		if splitLongEdges {
			p.k.SplitLongEdges(m, target, protected)
		}
		p.k.IsotropicRemesh(m, target, 1, protected, cfg.ProtectConstraints, cfg.RelaxConstraints)
		cons.Sync(m, protected)
	}
	logEdges(l, "after refine", m)
	p.checkValid(m, l)
	return RefineRemeshed
}

func (p *Pipeline) checkValid(m *surface.Mesh, l *log.Logger) {
	if !p.k.IsValid(m) {
		l.Warn("mesh is not a valid polygon mesh", "vertices", len(m.Vertices), "faces", len(m.Faces))
	}
}

func logEdges(l *log.Logger, msg string, m *surface.Mesh) {
	if l.GetLevel() > log.DebugLevel {
		return
	}
	st := diag.EdgeLengths(m)
	l.Debug(msg, "faces", len(m.Faces), "edges", st.Count, "min", st.Min, "max", st.Max, "mean", st.Mean, "std", st.StdDev)
}

// export converts m and reports its outcome.
func export(m *surface.Mesh, outcome Outcome, skipped []surface.Diagnostic, cfg Config) Result {
	a, st := meshio.Export(m, cfg.AreaThreshold, cfg.DuplicateVertexThreshold)
	return Result{Outcome: outcome, Mesh: a, Skipped: skipped, Stats: st}
}
