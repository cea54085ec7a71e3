// Package native implements kernel.Kernel in pure Go.
//
// Intersections are computed in floating point with tolerances relative to
// the size of the meshes involved. Coplanar overlapping triangles are
// reported by DoIntersect but are not corefined.
package native

import (
	"github.com/soypat/meshclip/kernel"
	"github.com/soypat/meshclip/surface"
)

var _ kernel.Kernel = (*Kernel)(nil)

const (
	// baryTol is the barycentric tolerance below which a point is taken to
	// lie on a triangle edge or vertex.
	baryTol = 1e-9
	// defaultRounds bounds the split and collapse rounds of a single pass.
	defaultRounds = 32
)

// Kernel is a pure Go geometry kernel. The zero value is not usable; call New.
type Kernel struct {
	rounds int
}

// Option configures a Kernel.
type Option func(*Kernel)

// WithRounds sets the maximum number of split or collapse rounds executed
// by a single remeshing pass.
func WithRounds(n int) Option {
	return func(k *Kernel) {
		if n > 0 {
			k.rounds = n
		}
	}
}

// New returns a Kernel ready for use.
func New(opts ...Option) *Kernel {
	k := &Kernel{rounds: defaultRounds}
	for _, o := range opts {
		o(k)
	}
	return k
}

// IsValid reports whether m is an oriented 2-manifold mesh.
func (k *Kernel) IsValid(m *surface.Mesh) bool {
	return surface.Validate(m) == nil
}

// unionFind merges indices; the representative of a set is its smallest member.
type unionFind []int

func newUnionFind(n int) unionFind {
	uf := make(unionFind, n)
	for i := range uf {
		uf[i] = i
	}
	return uf
}

func (uf unionFind) find(i int) int {
	for uf[i] != i {
		uf[i] = uf[uf[i]]
		i = uf[i]
	}
	return i
}

func (uf unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	switch {
	case ra < rb:
		uf[rb] = ra
	case rb < ra:
		uf[ra] = rb
	}
}

// roots returns the representative of every index.
func (uf unionFind) roots() []int {
	r := make([]int, len(uf))
	for i := range r {
		r[i] = uf.find(i)
	}
	return r
}
