package testutil

import (
	"fmt"

	"github.com/vanderheijden86/packzoom/pkg/model"

	"pgregory.net/rapid"
)

// TreeGen draws dataset trees with up to maxDepth levels below the root.
func TreeGen(maxDepth int) *rapid.Generator[*model.Datum] {
	return rapid.Custom(func(t *rapid.T) *model.Datum {
		n := 0
		var draw func(depth int) *model.Datum
		draw = func(depth int) *model.Datum {
			n++
			d := &model.Datum{Name: fmt.Sprintf("n%d", n)}
			leaf := depth > 0 && (depth >= maxDepth || rapid.Bool().Draw(t, "leaf"))
			if leaf {
				d.Size = model.Weight(rapid.IntRange(1, 1000).Draw(t, "size"))
				return d
			}
			fan := rapid.IntRange(1, 5).Draw(t, "fan")
			for i := 0; i < fan; i++ {
				d.Children = append(d.Children, draw(depth+1))
			}
			return d
		}
		return draw(0)
	})
}
