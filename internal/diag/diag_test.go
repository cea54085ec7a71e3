package diag

import (
	"bytes"
	"math"
	"testing"

	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"
)

func square() *surface.Mesh {
	return &surface.Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Faces:    [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

func TestEdgeLengths(t *testing.T) {
	st := EdgeLengths(square())
	if st.Count != 5 {
		t.Fatalf("want 5 edges, got %d", st.Count)
	}
	if st.Min != 1 || math.Abs(st.Max-math.Sqrt2) > 1e-15 {
		t.Errorf("bad range [%g, %g]", st.Min, st.Max)
	}
	wantMean := (4 + math.Sqrt2) / 5
	if math.Abs(st.Mean-wantMean) > 1e-12 {
		t.Errorf("want mean %g, got %g", wantMean, st.Mean)
	}
	if st.StdDev <= 0 {
		t.Errorf("want positive deviation, got %g", st.StdDev)
	}
}

func TestEdgeLengthsEmpty(t *testing.T) {
	st := EdgeLengths(&surface.Mesh{})
	if st != (Stats{}) {
		t.Errorf("want zero stats, got %v", st)
	}
	one := Summarize([]float64{2})
	if one.StdDev != 0 || one.Mean != 2 {
		t.Errorf("single length: %v", one)
	}
}

func TestLengthsSorted(t *testing.T) {
	l := Lengths(square())
	for i := 1; i < len(l); i++ {
		if l[i] < l[i-1] {
			t.Fatalf("lengths not sorted: %v", l)
		}
	}
}

func TestHistogram(t *testing.T) {
	l := Lengths(square())
	var b1, b2 bytes.Buffer
	if err := Histogram(&b1, "square", l, 4); err != nil {
		t.Fatal(err)
	}
	if err := Histogram(&b2, "square", l, 4); err != nil {
		t.Fatal(err)
	}
	equal, err := cmpimg.EqualApprox("png", b1.Bytes(), b2.Bytes(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("histogram rendering is not deterministic")
	}
	if err := Histogram(&b1, "empty", nil, 4); err == nil {
		t.Error("want error for empty lengths")
	}
}
