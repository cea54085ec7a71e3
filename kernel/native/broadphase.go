package native

import (
	"sort"

	"github.com/soypat/meshclip/internal/d3"
	"github.com/soypat/meshclip/surface"
)

// faceBoxes returns the bounding box of every face of m grown by tol.
func faceBoxes(m *surface.Mesh, tol float64) []d3.Box {
	boxes := make([]d3.Box, len(m.Faces))
	for i := range m.Faces {
		boxes[i] = m.Triangle(i).Bounds().Enlarge(tol)
	}
	return boxes
}

// overlappingPairs returns the pairs (i, j) such that a[i] and b[j]
// overlap, sorted by i then j, using a sweep along the x axis.
func overlappingPairs(a, b []d3.Box) [][2]int {
	type event struct {
		set, idx int
		x        float64
	}
	events := make([]event, 0, len(a)+len(b))
	for i, box := range a {
		events = append(events, event{set: 0, idx: i, x: box.Min.X})
	}
	for i, box := range b {
		events = append(events, event{set: 1, idx: i, x: box.Min.X})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].x != events[j].x {
			return events[i].x < events[j].x
		}
		if events[i].set != events[j].set {
			return events[i].set < events[j].set
		}
		return events[i].idx < events[j].idx
	})
	sets := [2][]d3.Box{a, b}
	var active [2][]int
	var pairs [][2]int
	for _, ev := range events {
		other := 1 - ev.set
		box := sets[ev.set][ev.idx]
		// Drop boxes of the other set that end before this one starts.
		kept := active[other][:0]
		for _, j := range active[other] {
			if sets[other][j].Max.X >= box.Min.X {
				kept = append(kept, j)
			}
		}
		active[other] = kept
		for _, j := range active[other] {
			if box.Overlaps(sets[other][j]) {
				if ev.set == 0 {
					pairs = append(pairs, [2]int{ev.idx, j})
				} else {
					pairs = append(pairs, [2]int{j, ev.idx})
				}
			}
		}
		active[ev.set] = append(active[ev.set], ev.idx)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}
