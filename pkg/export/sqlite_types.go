package export

import (
	"strings"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/model"
)

// ExportNode is one packed node as written to the layout database and the
// layout JSON file.
type ExportNode struct {
	ID      int     `json:"id"`
	Parent  *int    `json:"parent"`
	Name    string  `json:"name"`
	Slug    string  `json:"slug,omitempty"`
	DatumID string  `json:"datum_id,omitempty"`
	Depth   int     `json:"depth"`
	Kind    string  `json:"kind"`
	Size    float64 `json:"size,omitempty"`
	Value   float64 `json:"value"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	R       float64 `json:"r"`
	Classes string  `json:"classes"`
	Path    string  `json:"path"`
}

// ExportMeta contains metadata about the export.
type ExportMeta struct {
	Version       string    `json:"version"`
	GeneratedAt   time.Time `json:"generated_at"`
	NodeCount     int       `json:"node_count"`
	LeafCount     int       `json:"leaf_count"`
	TotalValue    float64   `json:"total_value"`
	SchemaVersion int       `json:"schema_version"`
	Title         string    `json:"title,omitempty"`
}

// ExportNodes flattens h in pre-order.
func ExportNodes(h *model.Hierarchy) []ExportNode {
	out := make([]ExportNode, 0, h.Len())
	for i := range h.Nodes {
		n := &h.Nodes[i]
		e := ExportNode{
			ID:      int(n.ID),
			Name:    n.Name(),
			Depth:   n.Depth,
			Kind:    n.Kind().String(),
			Value:   n.Value,
			X:       n.Circle.X,
			Y:       n.Circle.Y,
			R:       n.Circle.R,
			Classes: h.Classes(n.ID),
			Path:    strings.Join(h.Path(n.ID), "/"),
		}
		if n.Parent != model.NoNode {
			p := int(n.Parent)
			e.Parent = &p
		}
		if n.Data != nil {
			e.Slug = n.Data.Slug
			e.DatumID = n.Data.ID
			if len(n.Children) == 0 && n.Data.Size > 0 {
				e.Size = float64(n.Data.Size)
			}
		}
		out = append(out, e)
	}
	return out
}

func newExportMeta(h *model.Hierarchy, title, version string) ExportMeta {
	return ExportMeta{
		Version:       version,
		GeneratedAt:   time.Now().UTC(),
		NodeCount:     h.Len(),
		LeafCount:     len(h.Leaves(model.RootID)),
		TotalValue:    h.Root().Value,
		SchemaVersion: SchemaVersion,
		Title:         title,
	}
}
