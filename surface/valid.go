package surface

import (
	"errors"
	"fmt"

	"github.com/soypat/meshclip/internal/d3"
)

var (
	ErrFaceIndex      = errors.New("face references vertex out of range")
	ErrFaceRepeat     = errors.New("face repeats a vertex")
	ErrNonFinite      = errors.New("vertex has non-finite coordinate")
	ErrHalfedge       = errors.New("directed edge used by more than one face")
	ErrNonManifoldVtx = errors.New("faces around vertex do not form a single fan")
)

// Validate checks that m is an oriented 2-manifold triangle mesh, possibly
// with border: indices in range and distinct per face, finite coordinates on
// referenced vertices, every directed edge used once and the faces around
// every vertex forming one fan. Isolated vertices are allowed.
func Validate(m *Mesh) error {
	n := len(m.Vertices)
	used := make([]bool, n)
	directed := make(map[[2]int]int, 3*len(m.Faces))
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d %v: %w", i, f, ErrFaceIndex)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return fmt.Errorf("face %d %v: %w", i, f, ErrFaceRepeat)
		}
		for j := 0; j < 3; j++ {
			used[f[j]] = true
			h := [2]int{f[j], f[(j+1)%3]}
			if other, ok := directed[h]; ok {
				return fmt.Errorf("edge %v in faces %d and %d: %w", h, other, i, ErrHalfedge)
			}
			directed[h] = i
		}
	}
	for v, p := range m.Vertices {
		if used[v] && !d3.IsFinite(p) {
			return fmt.Errorf("vertex %d: %w", v, ErrNonFinite)
		}
	}
	// The link of a vertex v is the set of directed edges a->b for faces
	// (v, a, b). Directed edge uniqueness makes starts and ends unique, so a
	// single fan is a single chain or cycle.
	next := make([]map[int]int, n)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			v, a, b := f[j], f[(j+1)%3], f[(j+2)%3]
			if next[v] == nil {
				next[v] = make(map[int]int, 6)
			}
			next[v][a] = b
		}
	}
	for v, link := range next {
		if len(link) == 0 {
			continue
		}
		ends := make(map[int]bool, len(link))
		for _, b := range link {
			ends[b] = true
		}
		start := -1
		for a := range link {
			if !ends[a] {
				if start >= 0 {
					return fmt.Errorf("vertex %d: %w", v, ErrNonManifoldVtx)
				}
				start = a
			}
		}
		if start < 0 {
			for a := range link {
				start = a
				break
			}
		}
		visited := 0
		for cur := start; visited <= len(link); {
			nxt, ok := link[cur]
			if !ok {
				break
			}
			visited++
			cur = nxt
			if cur == start {
				break
			}
		}
		if visited != len(link) {
			return fmt.Errorf("vertex %d: %w", v, ErrNonManifoldVtx)
		}
	}
	return nil
}
