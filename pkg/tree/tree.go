package tree

import (
	"sort"
)

// NodeKind distinguishes structural branches from key-owning leaves.
type NodeKind int

// Node kinds
const (
	KindBranch NodeKind = iota
	KindLeaf
)

// Node is one element of a canonical selection tree. Nodes are immutable
// after construction; rendered state (expansion, cursor position, prefixes)
// belongs to the view layer, which references nodes by ID and never mutates
// them. A node's key set is the union of its own destination keys and those
// of all descendants, computed once when the node is built.
type Node struct {
	ID       string
	Label    string
	Kind     NodeKind
	Children []*Node

	keys map[string]struct{}
}

// NewLeaf builds a leaf node owning the given destination keys.
func NewLeaf(id, label string, keys ...string) *Node {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return &Node{
		ID:    id,
		Label: label,
		Kind:  KindLeaf,
		keys:  set,
	}
}

// NewBranch builds a branch node over the given children. The branch owns
// no keys of its own; its key set is the union over the children.
func NewBranch(id, label string, children ...*Node) *Node {
	set := map[string]struct{}{}
	for _, child := range children {
		for k := range child.keys {
			set[k] = struct{}{}
		}
	}
	return &Node{
		ID:       id,
		Label:    label,
		Kind:     KindBranch,
		Children: children,
		keys:     set,
	}
}

// Keys returns the node's descendant key set as a sorted slice.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.keys))
	for k := range n.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// KeyCount returns the size of the descendant key set.
func (n *Node) KeyCount() int {
	if n == nil {
		return 0
	}
	return len(n.keys)
}

// HasKeys reports whether any descendant key exists.
func (n *Node) HasKeys() bool {
	return n.KeyCount() > 0
}

// OwnsKey reports whether key is in the descendant key set.
func (n *Node) OwnsKey(key string) bool {
	if n == nil {
		return false
	}
	_, ok := n.keys[key]
	return ok
}

// CountSelected returns how many descendant keys satisfy the predicate.
func (n *Node) CountSelected(selected func(string) bool) int {
	if n == nil {
		return 0
	}
	count := 0
	for k := range n.keys {
		if selected(k) {
			count++
		}
	}
	return count
}

// Data is a complete canonical tree. The root itself is not rendered; its
// children form the top level of the view.
type Data struct {
	Root *Node
}

// NewData wraps a root node.
func NewData(root *Node) Data {
	return Data{Root: root}
}

// Empty reports whether the tree has no renderable nodes.
func (d Data) Empty() bool {
	return d.Root == nil || len(d.Root.Children) == 0
}
