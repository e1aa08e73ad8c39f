// Package search finds hierarchy nodes by name. Every query term must match
// a node's name, slug or path; matches are ranked by how closely the name
// itself fits.
package search

import (
	"sort"
	"strings"

	"github.com/vanderheijden86/packzoom/pkg/model"

	"github.com/sahilm/fuzzy"
)

// Term scores, strongest first.
const (
	scoreExact       = 10.0
	scorePrefix      = 6.0
	scoreSubstring   = 4.0
	scoreSlug        = 3.0
	scorePath        = 2.0
	scoreSubsequence = 1.0
)

// Result is one ranked match.
type Result struct {
	Node  model.NodeID
	Path  string // slash-separated, "" for the root
	Score float64
}

type document struct {
	id    model.NodeID
	depth int
	name  string
	slug  string
	path  string
	raw   string
}

// Index holds the lowercased text of every node.
type Index struct {
	docs []document
}

// NewIndex indexes every node of h.
func NewIndex(h *model.Hierarchy) *Index {
	idx := &Index{docs: make([]document, 0, h.Len())}
	for i := range h.Nodes {
		n := &h.Nodes[i]
		path := strings.Join(h.Path(n.ID), "/")
		d := document{
			id:    n.ID,
			depth: n.Depth,
			name:  strings.ToLower(n.Name()),
			path:  strings.ToLower(path),
			raw:   path,
		}
		if n.Data != nil {
			d.slug = strings.ToLower(n.Data.Slug)
		}
		idx.docs = append(idx.docs, d)
	}
	return idx
}

// Len returns the number of indexed nodes.
func (idx *Index) Len() int { return len(idx.docs) }

// Search returns up to k matches for query, best first. Ties go to the
// shallower node, then to pre-order. An empty query matches nothing.
func (idx *Index) Search(query string, k int) []Result {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || k <= 0 {
		return nil
	}

	type hit struct {
		Result
		depth int
	}
	var hits []hit
	for _, d := range idx.docs {
		total := 0.0
		for _, t := range terms {
			s := scoreTerm(d, t)
			if s == 0 {
				total = 0
				break
			}
			total += s
		}
		if total > 0 {
			hits = append(hits, hit{Result{Node: d.id, Path: d.raw, Score: total}, d.depth})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].depth != hits[j].depth {
			return hits[i].depth < hits[j].depth
		}
		return hits[i].Node < hits[j].Node
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = h.Result
	}
	return out
}

func scoreTerm(d document, t string) float64 {
	switch {
	case d.name == t:
		return scoreExact
	case strings.HasPrefix(d.name, t):
		return scorePrefix
	case strings.Contains(d.name, t):
		return scoreSubstring
	case d.slug != "" && strings.Contains(d.slug, t):
		return scoreSlug
	case strings.Contains(d.path, t):
		return scorePath
	case isSubsequence(t, d.name):
		return scoreSubsequence
	}
	return 0
}

// isSubsequence reports whether every rune of sub appears in s in order.
func isSubsequence(sub, s string) bool {
	if sub == "" {
		return true
	}
	return len(fuzzy.Find(sub, []string{s})) > 0
}
