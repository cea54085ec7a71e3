package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/meshclip"
	"github.com/soypat/meshclip/internal/meshtest"
	"github.com/soypat/meshclip/meshio"
)

func writeMesh(t *testing.T, dir, name string, a meshio.Arrays) string {
	t.Helper()
	b, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunClipPlane(t *testing.T) {
	dir := t.TempDir()
	cube := writeMesh(t, dir, "cube.json", meshtest.Arrays(meshtest.UnitCube()))
	var out bytes.Buffer
	if err := run([]string{"clip-plane", "-normal", "0,0,1", "-origin", "0,0,0.5", cube}, &out); err != nil {
		t.Fatal(err)
	}
	var got meshio.Arrays
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.VertexCount() != 12 || got.TriangleCount() != 14 {
		t.Errorf("want 12 vertices and 14 triangles, got %d and %d", got.VertexCount(), got.TriangleCount())
	}
}

func TestParseConfigKeepsCommandDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	if err := os.WriteFile(path, []byte("iterations = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		name     string
		defaults meshclip.Config
	}{
		{name: "corefine", defaults: meshclip.DefaultCorefineConfig()},
		{name: "clip-plane", defaults: meshclip.DefaultConfig()},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := newCommand(test.name).parse([]string{"-config", path, "-v"}, test.defaults)
			if err != nil {
				t.Fatal(err)
			}
			want := test.defaults
			want.Iterations = 5
			want.Verbose = true
			if got != want {
				t.Errorf("want %+v, got %+v", want, got)
			}
		})
	}
}

func TestRunStats(t *testing.T) {
	dir := t.TempDir()
	cube := writeMesh(t, dir, "cube.json", meshtest.Arrays(meshtest.UnitCube()))
	png := filepath.Join(dir, "hist.png")
	var out bytes.Buffer
	if err := run([]string{"stats", "-plot", png, cube}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "edges=18") {
		t.Errorf("unexpected stats output %q", out.String())
	}
	if fi, err := os.Stat(png); err != nil || fi.Size() == 0 {
		t.Errorf("histogram not written: %v", err)
	}
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	for _, args := range [][]string{
		nil,
		{"bogus"},
		{"clip-surface"},
		{"weld"},
	} {
		if err := run(args, &out); err == nil {
			t.Errorf("%v: want error", args)
		}
	}
	if err := run([]string{"remesh", "-fixed", "1,x", "missing.json"}, &out); err == nil {
		t.Error("want error for missing input")
	}
	if err := run([]string{"bogus"}, &out); !errors.Is(err, errUsage) {
		t.Errorf("want usage error, got %v", err)
	}
}
