package tree

// State is the tri-state selection indicator of a node.
type State int

// Selection states
const (
	StateNone State = iota
	StatePartial
	StateAll
)

// Prefix returns the rendered checkbox for a state.
func (s State) Prefix() string {
	switch s {
	case StateAll:
		return "[*] "
	case StatePartial:
		return "[-] "
	default:
		return "[ ] "
	}
}

// StateOf computes the tri-state of a node against the current selection:
// StateAll when every key of the node's non-empty descendant key set is
// selected, StateNone when the intersection is empty (or the node owns no
// keys), StatePartial otherwise.
func StateOf(n *Node, selected func(string) bool) State {
	total := n.KeyCount()
	if total == 0 {
		return StateNone
	}
	count := n.CountSelected(selected)
	switch {
	case count == 0:
		return StateNone
	case count == total:
		return StateAll
	default:
		return StatePartial
	}
}

// StateOfKeys applies the same tri-state rule to a bare key set, used for
// named-filter entries that carry keys without a subtree.
func StateOfKeys(keys []string, selected func(string) bool) State {
	if len(keys) == 0 {
		return StateNone
	}
	count := 0
	for _, k := range keys {
		if selected(k) {
			count++
		}
	}
	switch {
	case count == 0:
		return StateNone
	case count == len(keys):
		return StateAll
	default:
		return StatePartial
	}
}
