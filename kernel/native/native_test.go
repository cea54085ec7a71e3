package native

import (
	"fmt"
	"math"
	"testing"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/internal/meshtest"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestClipPlane(t *testing.T) {
	k := New()
	cube := meshtest.UnitCube()
	if !k.ClipPlane(cube, surface.Plane{Normal: r3.Vec{Z: 1}, Origin: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}}) {
		t.Fatal("clip failed")
	}
	if len(cube.Vertices) != 12 || len(cube.Faces) != 14 {
		t.Fatalf("want 12 vertices and 14 faces, got %d and %d", len(cube.Vertices), len(cube.Faces))
	}
	if err := surface.Validate(cube); err != nil {
		t.Fatal(err)
	}
	border := surface.BorderEdges(cube)
	if len(border) != 8 {
		t.Errorf("want 8 border edges, got %d", len(border))
	}
	for e := range border {
		for _, v := range e {
			if z := cube.Vertices[v].Z; math.Abs(z-0.5) > 1e-12 {
				t.Errorf("border vertex at z=%g", z)
			}
		}
	}
	if a := area(cube); math.Abs(a-3) > 1e-12 {
		t.Errorf("want area 3, got %g", a)
	}

	untouched := meshtest.UnitCube()
	if !k.ClipPlane(untouched, surface.Plane{Normal: r3.Vec{Z: 1}, Origin: r3.Vec{Z: 5}}) || len(untouched.Faces) != 12 {
		t.Errorf("plane above the cube must keep it whole, got %d faces", len(untouched.Faces))
	}
	if k.ClipPlane(meshtest.UnitCube(), surface.Plane{}) {
		t.Error("zero normal must fail")
	}
}

func TestDoIntersect(t *testing.T) {
	k := New()
	pa, pb := meshtest.PerpendicularPatches()
	for _, test := range []struct {
		name string
		a, b *surface.Mesh
		want bool
	}{
		{name: "overlapping cubes", a: meshtest.UnitCube(), b: offsetCube(), want: true},
		{name: "disjoint cubes", a: meshtest.UnitCube(), b: meshtest.Cube(r3.Vec{X: 10}, 1)},
		{name: "nested cubes", a: meshtest.UnitCube(), b: meshtest.Cube(r3.Vec{X: 0.25, Y: 0.25, Z: 0.25}, 0.5)},
		{name: "crossing patches", a: pa, b: pb, want: true},
		{name: "empty", a: meshtest.UnitCube(), b: &surface.Mesh{}},
	} {
		t.Run(test.name, func(t *testing.T) {
			if got := k.DoIntersect(test.a, test.b); got != test.want {
				t.Errorf("want %v, got %v", test.want, got)
			}
		})
	}
}

func TestCorefineSeams(t *testing.T) {
	a, b := meshtest.PerpendicularPatches()
	seams, ok := corefine(a, b)
	if !ok {
		t.Fatal("corefinement failed")
	}
	for s, m := range [2]*surface.Mesh{a, b} {
		if err := surface.Validate(m); err != nil {
			t.Fatalf("mesh %d: %v", s, err)
		}
		// Seam crosses the diagonal of each patch once.
		if len(seams[s]) != 3 {
			t.Errorf("mesh %d: want 3 seam edges, got %d", s, len(seams[s]))
		}
		topo := surface.NewTopology(m)
		var length float64
		for e := range seams[s] {
			if !topo.HasEdge(e[0], e[1]) {
				t.Errorf("mesh %d: seam edge %v not in mesh", s, e)
			}
			p, q := m.Vertices[e[0]], m.Vertices[e[1]]
			for _, v := range [2]r3.Vec{p, q} {
				if math.Abs(v.X-0.3) > 1e-9 || math.Abs(v.Z) > 1e-9 {
					t.Errorf("mesh %d: seam vertex %v off the intersection", s, v)
				}
			}
			length += d3.Dist(p, q)
		}
		if math.Abs(length-0.5) > 1e-9 {
			t.Errorf("mesh %d: want seam length 0.5, got %g", s, length)
		}
	}
	if math.Abs(area(a)-1) > 1e-9 || math.Abs(area(b)-1) > 1e-9 {
		t.Errorf("corefinement changed the area: %g %g", area(a), area(b))
	}
}

func TestClipMesh(t *testing.T) {
	k := New()
	m := meshtest.UnitCube()
	if !k.ClipMesh(m, offsetCube()) {
		t.Fatal("clip failed")
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	const want = 0.7*0.6 + 0.5*0.6 + 0.5*0.7
	if a := area(m); math.Abs(a-want) > 1e-9 {
		t.Errorf("want area %g, got %g", want, a)
	}
	lo := r3.Vec{X: 0.5, Y: 0.3, Z: 0.4}
	for _, v := range m.Vertices {
		if v.X < lo.X-1e-9 || v.Y < lo.Y-1e-9 || v.Z < lo.Z-1e-9 {
			t.Fatalf("vertex %v outside the clipper", v)
		}
	}
	if k.ClipMesh(meshtest.UnitCube(), &surface.Mesh{}) {
		t.Error("empty clipper must fail")
	}
}

func TestCorefineAndUnion(t *testing.T) {
	k := New()
	u, ok := k.CorefineAndUnion(meshtest.UnitCube(), offsetCube())
	if !ok {
		t.Fatal("union failed")
	}
	if !surface.IsClosed(u) {
		t.Error("union is not closed")
	}
	const want = 2 - 0.5*0.7*0.6
	if v := volume(u); math.Abs(v-want) > 1e-9 {
		t.Errorf("want volume %g, got %g", want, v)
	}

	u, ok = k.CorefineAndUnion(meshtest.UnitCube(), meshtest.Cube(r3.Vec{X: 3}, 1))
	if !ok || len(u.Vertices) != 16 || len(u.Faces) != 24 {
		t.Fatalf("disjoint union: ok=%v with %d vertices and %d faces", ok, len(u.Vertices), len(u.Faces))
	}

	open := meshtest.Grid(0, 0, 0.5, 0.5, 2, 2)
	if _, ok := k.CorefineAndUnion(meshtest.UnitCube(), open); ok {
		t.Error("union with an open mesh must fail")
	}
}

func TestSplitLongEdges(t *testing.T) {
	cube := meshtest.UnitCube()
	constrained := surface.NewEdgeSet(surface.MakeEdge(0, 1))
	New().SplitLongEdges(cube, 0.3, constrained)
	if err := surface.Validate(cube); err != nil {
		t.Fatal(err)
	}
	for e := range surface.NewTopology(cube).EdgeFaces {
		if l := d3.Dist(cube.Vertices[e[0]], cube.Vertices[e[1]]); l > 0.3 {
			t.Fatalf("edge of length %g left", l)
		}
	}
	if len(constrained) != 4 {
		t.Errorf("want the constrained edge in 4 pieces, got %d", len(constrained))
	}
	topo := surface.NewTopology(cube)
	var length float64
	for e := range constrained {
		if !topo.HasEdge(e[0], e[1]) {
			t.Errorf("constrained edge %v not in mesh", e)
		}
		length += d3.Dist(cube.Vertices[e[0]], cube.Vertices[e[1]])
	}
	if math.Abs(length-1) > 1e-12 {
		t.Errorf("want constrained length 1, got %g", length)
	}
	if math.Abs(area(cube)-6) > 1e-12 || math.Abs(volume(cube)-1) > 1e-12 {
		t.Errorf("split changed the shape: area %g volume %g", area(cube), volume(cube))
	}
}

func TestIsotropicRemeshGrid(t *testing.T) {
	m := meshtest.Grid(0, 0, 0, 0.1, 10, 10)
	border := surface.BorderEdges(m)
	before := make(map[r3.Vec]bool)
	for e := range border {
		before[m.Vertices[e[0]]] = true
		before[m.Vertices[e[1]]] = true
	}
	New().IsotropicRemesh(m, 0.25, 3, border, true, false)
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	if len(m.Faces) >= 200 {
		t.Errorf("want fewer faces than the input, got %d", len(m.Faces))
	}
	after := surface.BorderEdges(m)
	if len(after) != 40 || len(border) != 40 {
		t.Errorf("border changed: %d edges, constrained %d", len(after), len(border))
	}
	for e := range after {
		for _, v := range e {
			if !before[m.Vertices[v]] {
				t.Errorf("border vertex %v moved", m.Vertices[v])
			}
		}
	}
	if a := area(m); math.Abs(a-1) > 1e-9 {
		t.Errorf("want area 1, got %g", a)
	}
}

func TestIsotropicRemeshSphere(t *testing.T) {
	m := meshtest.MustSphere(1, 16)
	if err := surface.Validate(m); err != nil || !surface.IsClosed(m) {
		t.Fatalf("bad sphere fixture: %v", err)
	}
	const target = 0.25
	New().IsotropicRemesh(m, target, 3, nil, true, false)
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	if !surface.IsClosed(m) {
		t.Error("remeshed sphere is not closed")
	}
	for _, v := range m.Vertices {
		if r := r3.Norm(v); math.Abs(r-1) > 0.1 {
			t.Fatalf("vertex %v left the sphere, radius %g", v, r)
		}
	}
	var sum float64
	topo := surface.NewTopology(m)
	for e := range topo.EdgeFaces {
		sum += d3.Dist(m.Vertices[e[0]], m.Vertices[e[1]])
	}
	if mean := sum / float64(len(topo.EdgeFaces)); mean < 0.6*target || mean > 1.4*target {
		t.Errorf("mean edge length %g far from target %g", mean, target)
	}
}

func TestIsotropicRemeshCube(t *testing.T) {
	for _, test := range []struct {
		target float64
		keep   bool // corners and faces untouched
	}{
		{target: 10, keep: true},
		{target: 3, keep: true},
		{target: 1.5, keep: true},
		{target: 1.2, keep: true},
		{target: 0.3},
	} {
		t.Run(fmt.Sprint(test.target), func(t *testing.T) {
			m := meshtest.UnitCube()
			New().IsotropicRemesh(m, test.target, 3, nil, true, false)
			if err := surface.Validate(m); err != nil {
				t.Fatal(err)
			}
			if !surface.IsClosed(m) {
				t.Fatal("remeshed cube is not closed")
			}
			if test.keep && (len(m.Vertices) != 8 || len(m.Faces) != 12) {
				t.Errorf("want 8 vertices and 12 faces, got %d and %d", len(m.Vertices), len(m.Faces))
			}
			if v := volume(m); math.Abs(v-1) > 1e-9 {
				t.Errorf("want volume 1, got %g", v)
			}
			for _, v := range m.Vertices {
				if !onUnitCube(v) {
					t.Errorf("vertex %v left the cube surface", v)
				}
			}
		})
	}
}

func TestRemoveDegenerateNeedle(t *testing.T) {
	m := meshtest.Grid(0, 0, 0, 1, 3, 3)
	// Vertex 5 (1,1) almost on top of vertex 6 (2,1).
	m.Vertices[5] = r3.Vec{X: 2 - 1e-4, Y: 1}
	if kind, _ := classify(m, 3); kind != needle {
		t.Fatalf("fixture face is not a needle: %v", m.Faces[3])
	}
	border := surface.BorderEdges(m)
	before := make(map[r3.Vec]bool)
	for e := range border {
		before[m.Vertices[e[0]]] = true
		before[m.Vertices[e[1]]] = true
	}
	if !New().RemoveDegenerateFaces(m, border) {
		t.Fatal("needle left")
	}
	if len(m.Vertices) != 15 || len(m.Faces) != 16 {
		t.Fatalf("want 15 vertices and 16 faces, got %d and %d", len(m.Vertices), len(m.Faces))
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	for e := range surface.BorderEdges(m) {
		for _, v := range e {
			if !before[m.Vertices[v]] {
				t.Errorf("border vertex %v moved", m.Vertices[v])
			}
		}
	}
}

func TestRemoveDegenerateCap(t *testing.T) {
	newCap := func() *surface.Mesh {
		return &surface.Mesh{
			Vertices: []r3.Vec{{X: 0}, {X: 2}, {X: 1, Y: 1e-5}, {X: 1, Y: -1}},
			Faces:    [][3]int{{0, 1, 2}, {1, 0, 3}},
		}
	}
	m := newCap()
	if kind, j := classify(m, 0); kind != capFace || j != 0 {
		t.Fatalf("fixture is not a cap on edge 0: %v %d", kind, j)
	}
	if !New().RemoveDegenerateFaces(m, surface.BorderEdges(m)) {
		t.Fatal("cap left")
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	if !surface.NewTopology(m).HasEdge(2, 3) {
		t.Errorf("want the cap edge flipped, got faces %v", m.Faces)
	}

	m = newCap()
	constrained := surface.BorderEdges(m)
	constrained.Add(surface.MakeEdge(0, 1))
	if New().RemoveDegenerateFaces(m, constrained) {
		t.Error("constrained cap edge must not be flipped")
	}
	if m.Faces[0] != [3]int{0, 1, 2} {
		t.Errorf("faces changed: %v", m.Faces)
	}
}

func TestStitchBorders(t *testing.T) {
	m := meshtest.Grid(0, 0, 0, 1, 1, 1)
	m.Append(meshtest.Grid(1, 0, 0, 1, 1, 1))
	New().StitchBorders(m)
	if len(m.Vertices) != 6 || len(m.Faces) != 4 {
		t.Fatalf("want 6 vertices and 4 faces, got %d and %d", len(m.Vertices), len(m.Faces))
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	if n := len(surface.BorderEdges(m)); n != 6 {
		t.Errorf("want 6 border edges, got %d", n)
	}
}

func TestMergeDuplicatedBoundaryVertices(t *testing.T) {
	m := meshtest.Grid(0, 0, 0, 1, 2, 2)
	// Slit along edge 1-4: the faces of cell (1,0) use a copy of vertex 1.
	dup := m.AddVertex(m.Vertices[1])
	for f, face := range m.Faces {
		if face == [3]int{1, 2, 5} || face == [3]int{1, 5, 4} {
			m.Faces[f][0] = dup
		}
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	if n := len(surface.BorderEdges(m)); n != 10 {
		t.Fatalf("want 10 border edges on the slit fixture, got %d", n)
	}
	New().MergeDuplicatedBoundaryVertices(m)
	if len(m.Vertices) != 9 || len(m.Faces) != 8 {
		t.Fatalf("want 9 vertices and 8 faces, got %d and %d", len(m.Vertices), len(m.Faces))
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	if n := len(surface.BorderEdges(m)); n != 8 {
		t.Errorf("want 8 border edges, got %d", n)
	}
}

func TestClusterPoints(t *testing.T) {
	pts := []r3.Vec{{}, {X: 1e-3}, {X: 5}, {X: 5, Z: 2e-3}, {X: 10}, {X: 2e-3}}
	got := clusterPoints(pts, 1e-2)
	want := []int{0, 0, 2, 2, 4, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
	if clusterPoints(nil, 1) != nil {
		t.Error("want nil for no points")
	}
}

// offsetCube returns a unit cube overlapping the unit cube in a box of
// 0.5 by 0.7 by 0.6, placed so that no seam point is degenerate.
func offsetCube() *surface.Mesh {
	return meshtest.Cube(r3.Vec{X: 0.5, Y: 0.3, Z: 0.4}, 1)
}

func area(m *surface.Mesh) float64 {
	var a float64
	for f := range m.Faces {
		a += m.Triangle(f).Area()
	}
	return a
}

// volume returns the signed volume enclosed by the closed mesh m.
func volume(m *surface.Mesh) float64 {
	var v float64
	for f := range m.Faces {
		tri := m.Triangle(f)
		v += r3.Dot(tri[0], r3.Cross(tri[1], tri[2])) / 6
	}
	return v
}

func onUnitCube(v r3.Vec) bool {
	const tol = 1e-12
	inside, face := true, false
	for _, c := range []float64{v.X, v.Y, v.Z} {
		inside = inside && c > -tol && c < 1+tol
		face = face || math.Abs(c) < tol || math.Abs(c-1) < tol
	}
	return inside && face
}
