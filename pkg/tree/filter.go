package tree

import (
	"strings"
)

// Filter prunes the tree to subtrees matching the query, case-insensitive
// substring over labels. A directly matching node keeps its entire subtree;
// a branch without a direct match survives only when some descendant
// matches, keeping exactly the matching children. An empty query returns
// the data unchanged.
func Filter(d Data, query string) Data {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || d.Root == nil {
		return d
	}
	kept := make([]*Node, 0, len(d.Root.Children))
	for _, child := range d.Root.Children {
		if pruned := filterNode(child, query); pruned != nil {
			kept = append(kept, pruned)
		}
	}
	return NewData(NewBranch(d.Root.ID, d.Root.Label, kept...))
}

func filterNode(n *Node, query string) *Node {
	if strings.Contains(strings.ToLower(n.Label), query) {
		return n
	}
	if n.Kind == KindLeaf {
		return nil
	}
	var kept []*Node
	for _, child := range n.Children {
		if pruned := filterNode(child, query); pruned != nil {
			kept = append(kept, pruned)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return NewBranch(n.ID, n.Label, kept...)
}
