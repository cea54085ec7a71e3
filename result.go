package meshclip

import (
	"errors"

	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
)

var (
	// ErrClipFailed is the Reason of a Result whose clip primitive failed.
	ErrClipFailed = errors.New("clip failed")
	// ErrRepairFailed is the Reason of a Result whose mesh stayed invalid
	// after the repair pass.
	ErrRepairFailed = errors.New("mesh invalid after repair")
	// ErrEmptyMesh is the Reason of a Result whose input had no vertices
	// or no triangles.
	ErrEmptyMesh = errors.New("empty mesh")
	// ErrCorefineFailed is the Reason of a Result whose corefinement failed.
	ErrCorefineFailed = errors.New("corefinement failed")
	// ErrNoMeshes is returned by Weld when given no meshes.
	ErrNoMeshes = errors.New("no meshes to weld")
	// ErrUnionFailed is returned by Weld when the union of two closed
	// meshes fails.
	ErrUnionFailed = errors.New("union failed")
)

// Outcome tells apart the ways a pipeline call ends.
type Outcome int

const (
	// Modified means the operation ran and its mesh is in Result.Mesh.
	Modified Outcome = iota
	// NoOp means there was nothing to do, for instance a clipper that does
	// not touch the subject. Result.Mesh holds the input re-exported.
	NoOp
	// Failed means the operation could not produce a mesh. Result.Mesh is
	// empty and Result.Reason says why.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Modified:
		return "modified"
	case NoOp:
		return "no-op"
	case Failed:
		return "failed"
	}
	return "Outcome(?)"
}

// Result is the outcome of a pipeline call on one mesh.
type Result struct {
	Outcome Outcome
	// Mesh is the exported mesh. Its slices are never nil.
	Mesh meshio.Arrays
	// Reason is set only when Outcome is Failed.
	Reason error
	// Skipped lists the input elements ignored while loading.
	Skipped []surface.Diagnostic
	// Stats describes the final export.
	Stats meshio.ExportStats
}

// Err returns Reason. It is nil unless the call failed.
func (r Result) Err() error { return r.Reason }

func failed(reason error, skipped []surface.Diagnostic) Result {
	return Result{Outcome: Failed, Mesh: meshio.Empty(), Reason: reason, Skipped: skipped}
}
