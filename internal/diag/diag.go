// Package diag computes and plots edge length statistics of meshes.
package diag

import (
	"fmt"
	"io"
	"math"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Stats summarizes the edge lengths of a mesh.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

func (s Stats) String() string {
	return fmt.Sprintf("edges=%d min=%.6g max=%.6g mean=%.6g std=%.6g", s.Count, s.Min, s.Max, s.Mean, s.StdDev)
}

// Lengths returns the length of every undirected edge of m in ascending
// order. Edges with an out of range vertex are skipped.
func Lengths(m *surface.Mesh) []float64 {
	seen := make(surface.EdgeSet, 3*len(m.Faces)/2)
	var lengths []float64
	n := len(m.Vertices)
	for _, f := range m.Faces {
		for j := 0; j < 3; j++ {
			e := surface.MakeEdge(f[j], f[(j+1)%3])
			if e[0] < 0 || e[1] >= n || seen.Has(e) {
				continue
			}
			seen.Add(e)
			lengths = append(lengths, d3.Dist(m.Vertices[e[0]], m.Vertices[e[1]]))
		}
	}
	floats.Argsort(lengths, make([]int, len(lengths)))
	return lengths
}

// EdgeLengths returns the edge length statistics of m. The zero Stats is
// returned for a mesh without faces.
func EdgeLengths(m *surface.Mesh) Stats {
	return Summarize(Lengths(m))
}

// Summarize returns the statistics of lengths.
func Summarize(lengths []float64) Stats {
	if len(lengths) == 0 {
		return Stats{}
	}
	mean, std := stat.MeanStdDev(lengths, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Stats{
		Count:  len(lengths),
		Min:    floats.Min(lengths),
		Max:    floats.Max(lengths),
		Mean:   mean,
		StdDev: std,
	}
}

// Histogram writes a PNG histogram of lengths with the given number of bins.
func Histogram(w io.Writer, title string, lengths []float64, bins int) error {
	if len(lengths) == 0 {
		return fmt.Errorf("histogram %q: no edges", title)
	}
	if bins <= 0 {
		bins = 16
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "edge length"
	p.Y.Label.Text = "count"
	h, err := plotter.NewHist(plotter.Values(lengths), bins)
	if err != nil {
		return err
	}
	p.Add(h)
	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
