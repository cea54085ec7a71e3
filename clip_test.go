package meshclip

import (
	"fmt"
	"math"
	"testing"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/internal/meshtest"
	"github.com/soypat/meshclip/meshio"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/spatial/r3"
)

// checkExport verifies the export invariants of a.
func checkExport(t *testing.T, a meshio.Arrays, cfg Config) {
	t.Helper()
	n := a.VertexCount()
	used := make([]bool, n)
	for i := 0; i < a.TriangleCount(); i++ {
		tri := a.Triangle(i)
		for _, v := range tri {
			if v < 0 || v >= n {
				t.Fatalf("triangle %d index %d out of range", i, v)
			}
			used[v] = true
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			t.Fatalf("triangle %d repeats a vertex: %v", i, tri)
		}
		if area := arrayTriangle(a, i).Area(); area < cfg.AreaThreshold {
			t.Errorf("triangle %d area %g below threshold", i, area)
		}
	}
	for v, ok := range used {
		if !ok {
			t.Errorf("vertex %d not referenced", v)
		}
	}
}

func arrayTriangle(a meshio.Arrays, i int) d3.Triangle {
	var tri d3.Triangle
	for j, v := range a.Triangle(i) {
		p := a.Vertex(v)
		tri[j] = r3.Vec{X: p[0], Y: p[1], Z: p[2]}
	}
	return tri
}

func totalArea(a meshio.Arrays) float64 {
	var sum float64
	for i := 0; i < a.TriangleCount(); i++ {
		sum += arrayTriangle(a, i).Area()
	}
	return sum
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

func TestClipWithPlaneCubeHalves(t *testing.T) {
	p := Default()
	cfg := quietConfig()
	for _, test := range []struct {
		name   string
		normal []float64
		keep   func(z float64) bool
	}{
		{name: "below", normal: []float64{0, 0, 1}, keep: func(z float64) bool { return z <= 0.5+1e-12 }},
		{name: "above", normal: []float64{0, 0, -1}, keep: func(z float64) bool { return z >= 0.5-1e-12 }},
	} {
		t.Run(test.name, func(t *testing.T) {
			res := p.ClipWithPlane(cubeArrays(), test.normal, []float64{0.5, 0.5, 0.5}, cfg)
			if res.Outcome != Modified {
				t.Fatalf("want Modified, got %v (%v)", res.Outcome, res.Reason)
			}
			checkExport(t, res.Mesh, cfg)
			if res.Mesh.VertexCount() != 12 || res.Mesh.TriangleCount() != 14 {
				t.Errorf("want 12 vertices and 14 triangles, got %d and %d", res.Mesh.VertexCount(), res.Mesh.TriangleCount())
			}
			for i := 0; i < res.Mesh.VertexCount(); i++ {
				if z := res.Mesh.Vertex(i)[2]; !test.keep(z) {
					t.Errorf("vertex %d on the removed side: z=%g", i, z)
				}
			}
			m, _, err := meshio.Load(res.Mesh)
			if err != nil {
				t.Fatal(err)
			}
			if err := surface.Validate(m); err != nil {
				t.Fatal(err)
			}
			if got := len(surface.BorderEdges(m)); got != 8 {
				t.Errorf("want 8 border edges, got %d", got)
			}
		})
	}
}

func TestClipWithPlaneNoOp(t *testing.T) {
	for _, test := range []struct {
		name   string
		origin []float64
	}{
		{name: "above", origin: []float64{0, 0, 5}},
		{name: "on top face", origin: []float64{0, 0, 1}},
		// Closer to the top face than the snapping tolerance of the cut.
		{name: "near top face", origin: []float64{0, 0, 1 - 1e-11}},
	} {
		t.Run(test.name, func(t *testing.T) {
			res := Default().ClipWithPlane(cubeArrays(), []float64{0, 0, 1}, test.origin, quietConfig())
			if res.Outcome != NoOp {
				t.Fatalf("want NoOp, got %v", res.Outcome)
			}
			if res.Mesh.VertexCount() != 8 || res.Mesh.TriangleCount() != 12 {
				t.Errorf("want cube back, got %d vertices and %d triangles", res.Mesh.VertexCount(), res.Mesh.TriangleCount())
			}
		})
	}
	bad := Default().ClipWithPlane(cubeArrays(), []float64{0, 1}, []float64{0, 0, 5}, quietConfig())
	if bad.Outcome != Failed || bad.Reason == nil {
		t.Errorf("want failure on a short normal, got %v", bad.Outcome)
	}
}

// clipPatch is a plane patch at z=0.5 larger than the unit cube. Its
// vertices avoid the cube faces.
func clipPatch() *surface.Mesh {
	return meshtest.Grid(-0.77, -0.61, 0.5, 0.52, 5, 5)
}

func TestClipWithSurfacePatchInCube(t *testing.T) {
	cfg := quietConfig()
	cfg.RemeshBefore = false
	cfg.RemeshAfter = false
	res := Default().ClipWithSurface(meshtest.Arrays(clipPatch()), cubeArrays(), cfg)
	if res.Outcome != Modified {
		t.Fatalf("want Modified, got %v (%v)", res.Outcome, res.Reason)
	}
	checkExport(t, res.Mesh, cfg)
	const tol = 1e-9
	for i := 0; i < res.Mesh.VertexCount(); i++ {
		v := res.Mesh.Vertex(i)
		if v[0] < -tol || v[0] > 1+tol || v[1] < -tol || v[1] > 1+tol || math.Abs(v[2]-0.5) > tol {
			t.Errorf("vertex %v outside the cube section", v)
		}
	}
	if area := totalArea(res.Mesh); math.Abs(area-1) > 1e-6 {
		t.Errorf("want area 1, got %g", area)
	}
}

func TestClipWithSurfaceDisjoint(t *testing.T) {
	clipper := meshtest.Arrays(meshtest.Cube(r3.Vec{X: 10}, 1))
	res := Default().ClipWithSurface(cubeArrays(), clipper, quietConfig())
	if res.Outcome != NoOp {
		t.Fatalf("want NoOp, got %v", res.Outcome)
	}
	if res.Mesh.TriangleCount() != 12 {
		t.Errorf("want 12 triangles, got %d", res.Mesh.TriangleCount())
	}
}

func TestCorefinePerpendicularPatches(t *testing.T) {
	a, b := meshtest.PerpendicularPatches()
	cfg := DefaultCorefineConfig()
	cfg.Logger = quietConfig().Logger
	ra, rb := Default().Corefine(meshtest.Arrays(a), meshtest.Arrays(b), cfg)
	if ra.Outcome != Modified || rb.Outcome != Modified {
		t.Fatalf("want both Modified, got %v (%v) and %v (%v)", ra.Outcome, ra.Reason, rb.Outcome, rb.Reason)
	}
	checkExport(t, ra.Mesh, cfg)
	checkExport(t, rb.Mesh, cfg)
	for _, want := range []r3.Vec{{X: 0.3, Y: 0.2}, {X: 0.3, Y: 0.7}} {
		for name, res := range map[string]Result{"a": ra, "b": rb} {
			if !hasVertex(res.Mesh, want, 1e-9) {
				t.Errorf("mesh %s lacks seam end %v", name, want)
			}
		}
	}
	// Relaxation may slide inner seam vertices along the seam but keeps
	// them on it.
	for name, res := range map[string]Result{"a": ra, "b": rb} {
		onSeam := 0
		for i := 0; i < res.Mesh.VertexCount(); i++ {
			v := res.Mesh.Vertex(i)
			if math.Abs(v[0]-0.3) > 1e-9 || math.Abs(v[2]) > 1e-9 {
				continue
			}
			onSeam++
			if v[1] < 0.2-1e-9 || v[1] > 0.7+1e-9 {
				t.Errorf("mesh %s: seam vertex %v outside the seam", name, v)
			}
		}
		if onSeam != 4 {
			t.Errorf("mesh %s: want 4 seam vertices, got %d", name, onSeam)
		}
	}
	if got := totalArea(ra.Mesh); math.Abs(got-1) > 1e-6 {
		t.Errorf("corefinement changed area of a: %g", got)
	}
	if got := totalArea(rb.Mesh); math.Abs(got-1) > 1e-6 {
		t.Errorf("corefinement changed area of b: %g", got)
	}
}

func hasVertex(a meshio.Arrays, want r3.Vec, tol float64) bool {
	for i := 0; i < a.VertexCount(); i++ {
		v := a.Vertex(i)
		if d3.EqualWithin(r3.Vec{X: v[0], Y: v[1], Z: v[2]}, want, tol) {
			return true
		}
	}
	return false
}

func TestSharedEdges(t *testing.T) {
	a, b := meshtest.PerpendicularPatches()
	if !Default().Kernel().Corefine(a, b) {
		t.Fatal("corefinement failed")
	}
	sa, sb := SharedEdges(a, b, 0)
	if len(sa) != 3 || len(sb) != 3 {
		t.Fatalf("want 3 shared edges on each side, got %d and %d", len(sa), len(sb))
	}
	for e := range sa {
		for _, v := range e {
			if math.Abs(a.Vertices[v].Z) > 1e-12 || math.Abs(a.Vertices[v].X-0.3) > 1e-12 {
				t.Errorf("shared edge %v off the seam", e)
			}
		}
	}
	// Moving one seam vertex of b off the seam loses its edges unless a
	// tolerance absorbs the shift.
	var moved int
	for e := range sb {
		moved = e[0]
		break
	}
	b.Vertices[moved].Y += 1e-12
	if sa, _ := SharedEdges(a, b, 0); len(sa) == 3 {
		t.Error("exact match should miss the moved vertex")
	}
	if sa, _ := SharedEdges(a, b, 1e-6); len(sa) != 3 {
		t.Errorf("tolerant match: want 3 shared edges, got %d", len(sa))
	}
}

func TestWeldDisjointCubes(t *testing.T) {
	for _, target := range []float64{DefaultCorefineConfig().TargetEdgeLength, 3, 1.5, 1.2} {
		t.Run(fmt.Sprint(target), func(t *testing.T) {
			cfg := DefaultCorefineConfig()
			cfg.Logger = quietConfig().Logger
			cfg.TargetEdgeLength = target
			other := meshtest.Arrays(meshtest.Cube(r3.Vec{X: 3}, 1))
			res, err := Default().Weld([]meshio.Arrays{cubeArrays(), other}, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if res.Outcome != Modified {
				t.Fatalf("want Modified, got %v", res.Outcome)
			}
			checkExport(t, res.Mesh, cfg)
			if res.Mesh.VertexCount() != 16 || res.Mesh.TriangleCount() != 24 {
				t.Errorf("want 16 vertices and 24 triangles, got %d and %d", res.Mesh.VertexCount(), res.Mesh.TriangleCount())
			}
			m, _, err := meshio.Load(res.Mesh)
			if err != nil {
				t.Fatal(err)
			}
			if !surface.IsClosed(m) {
				t.Error("union of closed cubes must be closed")
			}
			if v := volume(m); math.Abs(v-2) > 1e-9 {
				t.Errorf("want volume 2, got %g", v)
			}
		})
	}
}

func TestWeldSingleMesh(t *testing.T) {
	res, err := Default().Weld([]meshio.Arrays{cubeArrays()}, quietConfig())
	if err != nil {
		t.Fatal(err)
	}
	if res.Mesh.VertexCount() != 8 || res.Mesh.TriangleCount() != 12 {
		t.Errorf("want the cube, got %d vertices and %d triangles", res.Mesh.VertexCount(), res.Mesh.TriangleCount())
	}
}

func TestWeldOpenPatches(t *testing.T) {
	left := meshtest.Grid(0, 0, 0, 0.25, 4, 4)
	right := meshtest.Grid(1, 0, 0, 0.25, 4, 4)
	cfg := DefaultCorefineConfig()
	cfg.Logger = quietConfig().Logger
	cfg.TargetEdgeLength = 0.25
	cfg.Iterations = 1
	res, err := Default().Weld([]meshio.Arrays{meshtest.Arrays(left), meshtest.Arrays(right)}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	checkExport(t, res.Mesh, cfg)
	m, _, err := meshio.Load(res.Mesh)
	if err != nil {
		t.Fatal(err)
	}
	if err := surface.Validate(m); err != nil {
		t.Fatal(err)
	}
	// The shared column at x=1 is stitched so no border edge runs along it.
	for e := range surface.BorderEdges(m) {
		if m.Vertices[e[0]].X == 1 && m.Vertices[e[1]].X == 1 {
			t.Errorf("border edge %v left on the seam", e)
		}
	}
	if area := totalArea(res.Mesh); math.Abs(area-2) > 1e-9 {
		t.Errorf("want area 2, got %g", area)
	}
}
