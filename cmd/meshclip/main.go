// Command meshclip runs the mesh pipeline on JSON documents of the form
// {"vertices": [...], "triangles": [...]}.
//
// Usage:
//
//	meshclip <command> [flags] [meshes...]
//
// Commands are clip-plane, clip-surface, corefine, weld, remesh and stats.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/soypat/meshclip"
	"github.com/soypat/meshclip/internal/diag"
	"github.com/soypat/meshclip/meshio"
)

var errUsage = errors.New("usage: meshclip <clip-plane|clip-surface|corefine|weld|remesh|stats> [flags] [meshes...]")

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "meshclip"})
	if err := run(os.Args[1:], os.Stdout); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

type command struct {
	fs      *flag.FlagSet
	config  string
	verbose bool
	out     string
}

func newCommand(name string) *command {
	c := &command{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.StringVar(&c.config, "config", "", "TOML configuration file")
	c.fs.BoolVar(&c.verbose, "v", false, "verbose logging")
	c.fs.StringVar(&c.out, "out", "", "output file, standard output if empty")
	return c
}

func (c *command) parse(args []string, defaults meshclip.Config) (meshclip.Config, error) {
	if err := c.fs.Parse(args); err != nil {
		return meshclip.Config{}, err
	}
	cfg := defaults
	if c.config != "" {
		loaded, err := meshclip.LoadConfigOver(c.config, defaults)
		if err != nil {
			return meshclip.Config{}, err
		}
		cfg = loaded
	}
	cfg.Verbose = cfg.Verbose || c.verbose
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	p := meshclip.Default()
	name, args := args[0], args[1:]
	switch name {
	case "clip-plane":
		c := newCommand(name)
		normal := c.fs.String("normal", "0,0,1", "plane normal as x,y,z")
		origin := c.fs.String("origin", "0,0,0", "point on the plane as x,y,z")
		cfg, err := c.parse(args, meshclip.DefaultConfig())
		if err != nil {
			return err
		}
		subject, err := readArgMesh(c.fs, 0)
		if err != nil {
			return err
		}
		n, err := parseFloats(*normal)
		if err != nil {
			return err
		}
		o, err := parseFloats(*origin)
		if err != nil {
			return err
		}
		return writeResult(c.out, stdout, p.ClipWithPlane(subject, n, o, cfg))

	case "clip-surface":
		c := newCommand(name)
		cfg, err := c.parse(args, meshclip.DefaultConfig())
		if err != nil {
			return err
		}
		subject, err := readArgMesh(c.fs, 0)
		if err != nil {
			return err
		}
		clipper, err := readArgMesh(c.fs, 1)
		if err != nil {
			return err
		}
		return writeResult(c.out, stdout, p.ClipWithSurface(subject, clipper, cfg))

	case "corefine":
		c := newCommand(name)
		outB := c.fs.String("out-b", "", "output file of the second mesh")
		cfg, err := c.parse(args, meshclip.DefaultCorefineConfig())
		if err != nil {
			return err
		}
		a, err := readArgMesh(c.fs, 0)
		if err != nil {
			return err
		}
		b, err := readArgMesh(c.fs, 1)
		if err != nil {
			return err
		}
		ra, rb := p.Corefine(a, b, cfg)
		if err := writeResult(c.out, stdout, ra); err != nil {
			return err
		}
		if *outB == "" {
			return errors.New("corefine: -out-b is required")
		}
		return writeResult(*outB, stdout, rb)

	case "weld":
		c := newCommand(name)
		cfg, err := c.parse(args, meshclip.DefaultCorefineConfig())
		if err != nil {
			return err
		}
		var meshes []meshio.Arrays
		for i := 0; i < c.fs.NArg(); i++ {
			m, err := readArgMesh(c.fs, i)
			if err != nil {
				return err
			}
			meshes = append(meshes, m)
		}
		res, err := p.Weld(meshes, cfg)
		if err != nil {
			return err
		}
		return writeResult(c.out, stdout, res)

	case "remesh":
		c := newCommand(name)
		fixed := c.fs.String("fixed", "", "fixed edges as comma separated vertex index pairs")
		cfg, err := c.parse(args, meshclip.DefaultConfig())
		if err != nil {
			return err
		}
		m, err := readArgMesh(c.fs, 0)
		if err != nil {
			return err
		}
		pairs, err := parseInts(*fixed)
		if err != nil {
			return err
		}
		return writeResult(c.out, stdout, p.Remesh(m, pairs, cfg))

	case "stats":
		c := newCommand(name)
		plotFile := c.fs.String("plot", "", "write an edge length histogram PNG to this file")
		bins := c.fs.Int("bins", 16, "histogram bins")
		if _, err := c.parse(args, meshclip.DefaultConfig()); err != nil {
			return err
		}
		a, err := readArgMesh(c.fs, 0)
		if err != nil {
			return err
		}
		m, diags, err := meshio.Load(a)
		if err != nil {
			return err
		}
		lengths := diag.Lengths(m)
		fmt.Fprintf(stdout, "vertices=%d faces=%d skipped=%d %v\n", len(m.Vertices), len(m.Faces), len(diags), diag.Summarize(lengths))
		if *plotFile == "" {
			return nil
		}
		f, err := os.Create(*plotFile)
		if err != nil {
			return err
		}
		if err := diag.Histogram(f, c.fs.Arg(0), lengths, *bins); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return fmt.Errorf("unknown command %q: %w", name, errUsage)
}

func readArgMesh(fs *flag.FlagSet, i int) (meshio.Arrays, error) {
	if fs.NArg() <= i {
		return meshio.Arrays{}, fmt.Errorf("%s: missing mesh argument %d: %w", fs.Name(), i+1, errUsage)
	}
	return readMesh(fs.Arg(i))
}

func readMesh(path string) (meshio.Arrays, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return meshio.Arrays{}, err
	}
	var a meshio.Arrays
	if err := json.Unmarshal(b, &a); err != nil {
		return meshio.Arrays{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// writeResult writes the mesh of res to path, or to stdout when path is
// empty. A failed result is returned as an error after writing.
func writeResult(path string, stdout io.Writer, res meshclip.Result) error {
	b, err := json.Marshal(res.Mesh)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Fprintf(stdout, "%s\n", b)
	} else {
		err = os.WriteFile(path, b, 0o644)
	}
	if err != nil {
		return err
	}
	if res.Outcome == meshclip.Failed {
		return fmt.Errorf("%v: %w", res.Outcome, res.Reason)
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
