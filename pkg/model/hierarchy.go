// Package model holds the hierarchy that every other package works on: the
// raw dataset tree, the arena of laid-out nodes built from it, and the small
// naming helpers used to classify nodes for styling.
package model

import (
	"errors"
	"sort"
	"strings"
)

// NodeID indexes a node inside its Hierarchy.
type NodeID int

// NoNode is the parent of the root and the result of failed lookups.
const NoNode NodeID = -1

// RootID is always the first node of the arena.
const RootID NodeID = 0

// ErrEmptyTree is returned when a hierarchy is built from nothing.
var ErrEmptyTree = errors.New("empty tree")

// Kind classifies a node for hit testing and styling.
type Kind int

const (
	KindRoot Kind = iota
	KindParent
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindParent:
		return "parent"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Circle is a layout circle in canvas coordinates.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Node is one entry of the arena. Parent is a plain index so children never
// own their parent.
type Node struct {
	ID       NodeID
	Data     *Datum
	Value    float64
	Depth    int
	Parent   NodeID
	Children []NodeID
	Circle   Circle
}

// Kind derives the node's classification from its position in the tree.
func (n *Node) Kind() Kind {
	switch {
	case n.Parent == NoNode:
		return KindRoot
	case len(n.Children) > 0:
		return KindParent
	default:
		return KindLeaf
	}
}

// Name returns the datum name, or "" when the datum is missing.
func (n *Node) Name() string {
	if n.Data == nil {
		return ""
	}
	return n.Data.Name
}

// Hierarchy is an immutable tree of nodes stored in pre-order. Only circle
// positions are written after construction, by the layout.
type Hierarchy struct {
	Nodes []Node
}

// Build constructs a hierarchy from a dataset. Values are summed from leaf
// sizes and children are sorted by descending value, ties keeping input order.
func Build(root *Datum) (*Hierarchy, error) {
	if root == nil {
		return nil, ErrEmptyTree
	}

	h := &Hierarchy{}
	h.add(root, NoNode, 0)
	h.sum(RootID)
	h.sortChildren()
	h.renumber()
	return h, nil
}

func (h *Hierarchy) add(d *Datum, parent NodeID, depth int) NodeID {
	id := NodeID(len(h.Nodes))
	h.Nodes = append(h.Nodes, Node{ID: id, Data: d, Depth: depth, Parent: parent})
	for _, c := range d.Children {
		if c == nil {
			continue
		}
		child := h.add(c, id, depth+1)
		h.Nodes[id].Children = append(h.Nodes[id].Children, child)
	}
	return id
}

func (h *Hierarchy) sum(id NodeID) float64 {
	n := &h.Nodes[id]
	if len(n.Children) == 0 {
		n.Value = float64(n.Data.Size)
		if n.Value < 0 {
			n.Value = 0
		}
		return n.Value
	}
	var total float64
	for _, c := range n.Children {
		total += h.sum(c)
	}
	h.Nodes[id].Value = total
	return total
}

func (h *Hierarchy) sortChildren() {
	for i := range h.Nodes {
		children := h.Nodes[i].Children
		sort.SliceStable(children, func(a, b int) bool {
			return h.Nodes[children[a]].Value > h.Nodes[children[b]].Value
		})
	}
}

// renumber rewrites the arena so that node order is pre-order over the
// sorted children, which is also paint order.
func (h *Hierarchy) renumber() {
	order := make([]NodeID, 0, len(h.Nodes))
	var walk func(NodeID)
	walk = func(id NodeID) {
		order = append(order, id)
		for _, c := range h.Nodes[id].Children {
			walk(c)
		}
	}
	walk(RootID)

	remap := make([]NodeID, len(h.Nodes))
	for newID, oldID := range order {
		remap[oldID] = NodeID(newID)
	}

	nodes := make([]Node, len(order))
	for newID, oldID := range order {
		n := h.Nodes[oldID]
		n.ID = NodeID(newID)
		if n.Parent != NoNode {
			n.Parent = remap[n.Parent]
		}
		children := make([]NodeID, len(n.Children))
		for i, c := range n.Children {
			children[i] = remap[c]
		}
		n.Children = children
		nodes[newID] = n
	}
	h.Nodes = nodes
}

// Len returns the number of nodes.
func (h *Hierarchy) Len() int { return len(h.Nodes) }

// Root returns the root node.
func (h *Hierarchy) Root() *Node { return &h.Nodes[RootID] }

// Node returns the node with the given id, or nil when out of range.
func (h *Hierarchy) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(h.Nodes) {
		return nil
	}
	return &h.Nodes[id]
}

// Valid reports whether id names a node of this hierarchy.
func (h *Hierarchy) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(h.Nodes)
}

// Parent returns the parent id of id, or NoNode for the root.
func (h *Hierarchy) Parent(id NodeID) NodeID {
	if !h.Valid(id) {
		return NoNode
	}
	return h.Nodes[id].Parent
}

// Descendants returns id and all nodes below it in pre-order.
func (h *Hierarchy) Descendants(id NodeID) []NodeID {
	if !h.Valid(id) {
		return nil
	}
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		out = append(out, n)
		for _, c := range h.Nodes[n].Children {
			walk(c)
		}
	}
	walk(id)
	return out
}

// Ancestors returns id followed by each parent up to the root.
func (h *Hierarchy) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for n := id; h.Valid(n); n = h.Nodes[n].Parent {
		out = append(out, n)
	}
	return out
}

// Leaves returns every leaf below id in pre-order.
func (h *Hierarchy) Leaves(id NodeID) []NodeID {
	var out []NodeID
	for _, n := range h.Descendants(id) {
		if len(h.Nodes[n].Children) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// TopNode returns the depth-1 ancestor of id (id itself at depth 1), or
// NoNode for the root.
func (h *Hierarchy) TopNode(id NodeID) NodeID {
	if !h.Valid(id) || h.Nodes[id].Depth == 0 {
		return NoNode
	}
	for h.Nodes[id].Depth > 1 {
		id = h.Nodes[id].Parent
	}
	return id
}

// Path returns the names from the root's first child down to id. The root
// itself has an empty path.
func (h *Hierarchy) Path(id NodeID) []string {
	anc := h.Ancestors(id)
	if len(anc) == 0 {
		return nil
	}
	path := make([]string, 0, len(anc)-1)
	for i := len(anc) - 2; i >= 0; i-- {
		path = append(path, h.Nodes[anc[i]].Name())
	}
	return path
}

// Find resolves a slash-separated name path ("A/a2") starting below the
// root. An empty path resolves to the root.
func (h *Hierarchy) Find(path string) NodeID {
	cur := RootID
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		next := NoNode
		for _, c := range h.Nodes[cur].Children {
			if h.Nodes[c].Name() == part {
				next = c
				break
			}
		}
		if next == NoNode {
			return NoNode
		}
		cur = next
	}
	return cur
}
