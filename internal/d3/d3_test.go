package d3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestTriangle(t *testing.T) {
	tri := Triangle{{}, {X: 1}, {Y: 1}}
	if a := tri.Area(); a != 0.5 {
		t.Errorf("want area 0.5, got %g", a)
	}
	if n := tri.Normal(); n != (r3.Vec{Z: 1}) {
		t.Errorf("want +Z normal, got %v", n)
	}
	b, ok := tri.Barycentric(r3.Vec{X: 0.25, Y: 0.25, Z: 3})
	if !ok || math.Abs(b[0]-0.5) > 1e-15 || math.Abs(b[1]-0.25) > 1e-15 || math.Abs(b[2]-0.25) > 1e-15 {
		t.Errorf("bad barycentric %v %v", b, ok)
	}
	if _, ok := (Triangle{{}, {X: 1}, {X: 2}}).Barycentric(r3.Vec{}); ok {
		t.Error("degenerate triangle must fail")
	}
	cos, v := tri.MaxAngleCos()
	if v != 0 || math.Abs(cos) > 1e-15 {
		t.Errorf("want right angle at 0, got cos %g at %d", cos, v)
	}
}

func TestSolidAngleClosedCube(t *testing.T) {
	// Unit cube faces as outward triangles.
	var pts [8]r3.Vec
	for i := range pts {
		pts[i] = r3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)}
	}
	faces := [][3]int{
		{0, 2, 1}, {1, 2, 3}, {4, 5, 6}, {5, 7, 6},
		{0, 1, 4}, {1, 5, 4}, {2, 6, 3}, {3, 6, 7},
		{0, 4, 2}, {2, 4, 6}, {1, 3, 5}, {3, 7, 5},
	}
	wind := func(p r3.Vec) float64 {
		var sum float64
		for _, f := range faces {
			sum += Triangle{pts[f[0]], pts[f[1]], pts[f[2]]}.SolidAngle(p)
		}
		return sum / (4 * math.Pi)
	}
	if w := wind(r3.Vec{X: 0.3, Y: 0.6, Z: 0.5}); math.Abs(w-1) > 1e-9 {
		t.Errorf("want winding 1 inside, got %g", w)
	}
	if w := wind(r3.Vec{X: 2, Y: 0.5, Z: 0.5}); math.Abs(w) > 1e-9 {
		t.Errorf("want winding 0 outside, got %g", w)
	}
}

func TestBox(t *testing.T) {
	if !EmptyBox().IsEmpty() || BoxOf().Diagonal() != 0 {
		t.Error("empty box")
	}
	b := BoxOf(r3.Vec{X: 1}, r3.Vec{Y: 2, Z: -2})
	if b.Min != (r3.Vec{Z: -2}) || b.Max != (r3.Vec{X: 1, Y: 2}) {
		t.Errorf("bad bounds %+v", b)
	}
	if d := b.Diagonal(); math.Abs(d-3) > 1e-15 {
		t.Errorf("want diagonal 3, got %g", d)
	}
	other := BoxOf(r3.Vec{X: 1.5, Y: 1}, r3.Vec{X: 2, Y: 1})
	if b.Overlaps(other) || !b.Enlarge(0.5).Overlaps(other) {
		t.Error("overlap with enlargement")
	}
}

func TestHelpers(t *testing.T) {
	if Clamp(1.5, 0, 1) != 1 || Clamp(-0.5, 0, 1) != 0 || Clamp(float32(0.25), 0, 1) != 0.25 {
		t.Error("clamp")
	}
	if DominantAxis(r3.Vec{X: 1, Y: -3, Z: 2}) != 1 {
		t.Error("dominant axis")
	}
	if IsFinite(r3.Vec{X: math.Inf(-1)}) || IsFinite(r3.Vec{Z: math.NaN()}) || !IsFinite(r3.Vec{X: 1}) {
		t.Error("finite")
	}
	if m := (Set{{X: 1}, {X: 3, Y: 3}}).Mean(); m != (r3.Vec{X: 2, Y: 1.5}) {
		t.Errorf("mean %v", m)
	}
}
