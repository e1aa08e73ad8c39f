// Package analysis summarizes the shape of a hierarchy: how deep and wide
// it is and how leaf values are distributed.
package analysis

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vanderheijden86/packzoom/pkg/model"

	"gonum.org/v1/gonum/stat"
)

// Entry is one ranked leaf.
type Entry struct {
	Path  string  `json:"path"`
	Value float64 `json:"value"`
	Share float64 `json:"share"` // fraction of the subtree total
}

// Distribution describes leaf values.
type Distribution struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// Stats summarizes one subtree.
type Stats struct {
	Root       string       `json:"root"`
	Nodes      int          `json:"nodes"`
	Parents    int          `json:"parents"`
	Leaves     int          `json:"leaves"`
	Empty      int          `json:"empty_leaves"` // leaves with no or zero size
	MaxDepth   int          `json:"max_depth"`    // relative to the subtree root
	PerDepth   []int        `json:"per_depth"`
	MaxFanout  int          `json:"max_fanout"`
	MeanFanout float64      `json:"mean_fanout"`
	Total      float64      `json:"total"`
	Leaf       Distribution `json:"leaf"`
	Largest    []Entry      `json:"largest"`
}

// Compute summarizes the subtree at id, listing the top largest leaves.
// An invalid id summarizes the whole tree.
func Compute(h *model.Hierarchy, id model.NodeID, top int) Stats {
	if h == nil || h.Len() == 0 {
		return Stats{}
	}
	if !h.Valid(id) {
		id = model.RootID
	}
	base := h.Nodes[id].Depth
	s := Stats{
		Root:  strings.Join(h.Path(id), "/"),
		Total: h.Nodes[id].Value,
	}

	var values []float64
	var leaves []model.NodeID
	fanouts := 0
	for _, d := range h.Descendants(id) {
		n := &h.Nodes[d]
		s.Nodes++
		depth := n.Depth - base
		for len(s.PerDepth) <= depth {
			s.PerDepth = append(s.PerDepth, 0)
		}
		s.PerDepth[depth]++
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		if len(n.Children) > 0 {
			s.Parents++
			fanouts += len(n.Children)
			if len(n.Children) > s.MaxFanout {
				s.MaxFanout = len(n.Children)
			}
			continue
		}
		s.Leaves++
		if n.Value <= 0 {
			s.Empty++
			continue
		}
		values = append(values, n.Value)
		leaves = append(leaves, d)
	}
	if s.Parents > 0 {
		s.MeanFanout = float64(fanouts) / float64(s.Parents)
	}
	s.Leaf = distribution(values)
	s.Largest = largest(h, leaves, s.Total, top)
	return s
}

func distribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	d := Distribution{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		d.StdDev = stat.StdDev(sorted, nil)
	}
	return d
}

func largest(h *model.Hierarchy, leaves []model.NodeID, total float64, top int) []Entry {
	if top <= 0 || len(leaves) == 0 {
		return nil
	}
	sort.SliceStable(leaves, func(i, j int) bool {
		return h.Nodes[leaves[i]].Value > h.Nodes[leaves[j]].Value
	})
	if len(leaves) > top {
		leaves = leaves[:top]
	}
	out := make([]Entry, len(leaves))
	for i, id := range leaves {
		v := h.Nodes[id].Value
		out[i] = Entry{Path: strings.Join(h.Path(id), "/"), Value: v}
		if total > 0 {
			out[i].Share = v / total
		}
	}
	return out
}

// WriteText prints s as an aligned report.
func (s Stats) WriteText(w io.Writer) error {
	root := s.Root
	if root == "" {
		root = "(root)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Subtree:     %s\n", root)
	fmt.Fprintf(&b, "Nodes:       %d (%d parents, %d leaves, %d empty)\n", s.Nodes, s.Parents, s.Leaves, s.Empty)
	fmt.Fprintf(&b, "Depth:       %d %v\n", s.MaxDepth, s.PerDepth)
	fmt.Fprintf(&b, "Fanout:      max %d, mean %.2f\n", s.MaxFanout, s.MeanFanout)
	fmt.Fprintf(&b, "Total:       %g\n", s.Total)
	fmt.Fprintf(&b, "Leaf values: min %g, median %g, p90 %g, max %g (mean %.2f ± %.2f)\n",
		s.Leaf.Min, s.Leaf.Median, s.Leaf.P90, s.Leaf.Max, s.Leaf.Mean, s.Leaf.StdDev)
	if len(s.Largest) > 0 {
		b.WriteString("Largest:\n")
		for i, e := range s.Largest {
			fmt.Fprintf(&b, "  %2d. %-40s %10g %6.1f%%\n", i+1, e.Path, e.Value, e.Share*100)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
