package native

import (
	"math"

	"github.com/soypat/meshclip/internal/d3"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdPoints{}
	_ kdtree.Bounder    = kdPoints{}
	_ kdtree.Comparable = kdPoint{}
)

// clusterPoints groups points closer than tol to each other, transitively.
// The returned slice holds for each point the smallest index in its group.
func clusterPoints(pts []r3.Vec, tol float64) []int {
	if len(pts) == 0 {
		return nil
	}
	data := make(kdPoints, len(pts))
	for i, p := range pts {
		data[i] = kdPoint{C: p, Index: i}
	}
	// kdtree.New reorders data, Index keeps the original position.
	tree := kdtree.New(data, true)
	uf := newUnionFind(len(pts))
	for i, p := range pts {
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, kdPoint{C: p, Index: i})
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue // sentinel
			}
			uf.union(i, c.Comparable.(kdPoint).Index)
		}
	}
	return uf.roots()
}

type kdPoint struct {
	C     r3.Vec
	Index int
}

// Compare returns the signed distance of p from the plane passing through
// c and perpendicular to the dimension d.
func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	switch d {
	case 0:
		return p.C.X - q.C.X
	case 1:
		return p.C.Y - q.C.Y
	case 2:
		return p.C.Z - q.C.Z
	}
	panic("unreachable")
}

func (p kdPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance between p and c.
func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.C, c.(kdPoint).C))
}

type kdPoints []kdPoint

func (k kdPoints) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdPoints) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdPoints) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), points: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdPoints) Slice(start, end int) kdtree.Interface { return k[start:end] }

// Bounds implements the kdtree.Bounder interface over the current points,
// which may have been reordered by kdtree.New.
func (k kdPoints) Bounds() *kdtree.Bounding {
	min := kdPoint{C: d3.Elem(math.MaxFloat64)}
	max := kdPoint{C: d3.Elem(-math.MaxFloat64)}
	for _, p := range k {
		min.C = d3.MinElem(min.C, p.C)
		max.C = d3.MaxElem(max.C, p.C)
	}
	return &kdtree.Bounding{Min: min, Max: max}
}

type kdPlane struct {
	dim    int
	points kdPoints
}

func (p kdPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], kdtree.Dim(p.dim)) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p kdPlane) Len() int {
	return len(p.points)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
