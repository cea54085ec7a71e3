package d3

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/spatial/r3"
)

// R3 vector routines shared by the mesh packages.

func Elem(sides float64) r3.Vec {
	return r3.Vec{
		X: sides,
		Y: sides,
		Z: sides,
	}
}

func EqualWithin(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

func AbsElem(a r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Abs(a.X),
		Y: math.Abs(a.Y),
		Z: math.Abs(a.Z),
	}
}

// IsFinite reports whether no component of a is NaN or infinite.
func IsFinite(a r3.Vec) bool {
	return !math.IsNaN(a.X+a.Y+a.Z) && !math.IsInf(a.X, 0) &&
		!math.IsInf(a.Y, 0) && !math.IsInf(a.Z, 0)
}

// Lerp returns a + t*(b-a).
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// Dist returns the euclidean distance between a and b.
func Dist(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// DominantAxis returns the index of the component of largest magnitude.
func DominantAxis(a r3.Vec) int {
	a = AbsElem(a)
	switch {
	case a.X >= a.Y && a.X >= a.Z:
		return 0
	case a.Y >= a.Z:
		return 1
	}
	return 2
}

// Clamp returns x clamped to the range [lo, hi].
func Clamp[T constraints.Float](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

type Set []r3.Vec

// Mean returns the arithmetic mean of the set. Empty sets return the zero vector.
func (a Set) Mean() r3.Vec {
	var sum r3.Vec
	if len(a) == 0 {
		return sum
	}
	for _, v := range a {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(a)), sum)
}
