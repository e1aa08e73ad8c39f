// Package testutil provides dataset generators and assertions shared by the
// hierarchy, layout and focus tests. All seeded generators are deterministic.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/packzoom/pkg/model"
)

// GeneratorConfig controls random tree generation.
type GeneratorConfig struct {
	Seed     int64 // Random seed (0 = 42)
	MaxDepth int   // Deepest level below the root (default 3)
	MaxFan   int   // Max children per internal node (default 4)
	MaxSize  int   // Max leaf size (default 100)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, MaxDepth: 3, MaxFan: 4, MaxSize: 100}
}

// Generator creates dataset trees.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
	n   int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 3
	}
	if cfg.MaxFan <= 0 {
		cfg.MaxFan = 4
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// Random returns a tree with random shape within the configured bounds.
func (g *Generator) Random() *model.Datum {
	return g.node(0)
}

func (g *Generator) node(depth int) *model.Datum {
	g.n++
	d := &model.Datum{Name: fmt.Sprintf("n%d", g.n), Slug: fmt.Sprintf("Slug_%d", g.n%3)}
	if depth > 0 && (depth >= g.cfg.MaxDepth || g.rng.Intn(3) == 0) {
		d.Size = model.Weight(1 + g.rng.Intn(g.cfg.MaxSize))
		return d
	}
	fan := 1 + g.rng.Intn(g.cfg.MaxFan)
	for i := 0; i < fan; i++ {
		d.Children = append(d.Children, g.node(depth+1))
	}
	return d
}

// Balanced returns a full tree of the given depth and fan-out with unit
// leaf sizes.
func Balanced(depth, fan int) *model.Datum {
	var n int
	var build func(level int) *model.Datum
	build = func(level int) *model.Datum {
		n++
		d := &model.Datum{Name: fmt.Sprintf("b%d", n)}
		if level == depth {
			d.Size = 1
			return d
		}
		for i := 0; i < fan; i++ {
			d.Children = append(d.Children, build(level+1))
		}
		return d
	}
	return build(0)
}

// Sample returns root{A{a1(10), a2(20)}, B(5)}.
func Sample() *model.Datum {
	return &model.Datum{
		Name: "root",
		Children: []*model.Datum{
			{Name: "A", Children: []*model.Datum{
				{Name: "a1", Size: 10, Slug: "Alpha"},
				{Name: "a2", Size: 20},
			}},
			{Name: "B", Size: 5},
		},
	}
}
