package model

import (
	"regexp"
	"strings"
)

var classNameRe = regexp.MustCompile(`(^\d+)|(\W+)`)

// ClassName turns a node name into a CSS-safe class name: leading digits get
// an underscore prefix and every run of non-word characters becomes "_".
func ClassName(name string) string {
	return classNameRe.ReplaceAllString(name, "_${1}")
}

// Classes returns the style classes of the node's circle element.
func (h *Hierarchy) Classes(id NodeID) string {
	n := h.Node(id)
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case KindRoot:
		return "node node--root"
	case KindParent:
		return "node node--parent"
	default:
		slug := ""
		if n.Data != nil {
			slug = strings.ReplaceAll(strings.ToLower(n.Data.Slug), "_", "-")
		}
		return strings.TrimSpace("node node--leaf " + slug)
	}
}

// ThemeClass returns the class name of id's top-level ancestor, or "" when id
// is the root.
func (h *Hierarchy) ThemeClass(id NodeID) string {
	top := h.TopNode(id)
	if top == NoNode {
		return ""
	}
	return ClassName(h.Nodes[top].Name())
}
