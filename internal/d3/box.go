package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d bounding box.
type Box r3.Box

// EmptyBox returns an inverted box that any Include call will reset.
func EmptyBox() Box {
	return Box{Min: Elem(math.MaxFloat64), Max: Elem(-math.MaxFloat64)}
}

// BoxOf returns the bounding box of a set of points. An empty set yields EmptyBox.
func BoxOf(pts ...r3.Vec) Box {
	b := EmptyBox()
	for _, p := range pts {
		b = b.Include(p)
	}
	return b
}

// IsEmpty reports whether the box was never extended.
func (a Box) IsEmpty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

// Extend returns a box enclosing two 3d boxes.
func (a Box) Extend(b Box) Box {
	return Box{
		Min: MinElem(a.Min, b.Min),
		Max: MaxElem(a.Max, b.Max),
	}
}

// Include enlarges a 3d box to include a point.
func (a Box) Include(v r3.Vec) Box {
	return Box{
		Min: MinElem(a.Min, v),
		Max: MaxElem(a.Max, v),
	}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Diagonal returns the length of the box diagonal, zero for empty boxes.
func (a Box) Diagonal() float64 {
	if a.IsEmpty() {
		return 0
	}
	return r3.Norm(a.Size())
}

// Enlarge returns a new 3d box grown by d on every side.
func (a Box) Enlarge(d float64) Box {
	v := Elem(d)
	return Box{
		Min: r3.Sub(a.Min, v),
		Max: r3.Add(a.Max, v),
	}
}

// Overlaps reports whether two boxes share at least one point.
func (a Box) Overlaps(b Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}
