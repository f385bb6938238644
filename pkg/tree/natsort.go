package tree

import (
	"sort"
	"strings"
)

// Less orders strings numeric-aware: digit runs compare as integers, text
// runs compare case-insensitively, so "1/10/3" sorts after "1/2/3" and
// "Line 2" before "Line 10".
func Less(a, b string) bool {
	as, bs := splitSegments(a), splitSegments(b)
	for i := 0; i < len(as) && i < len(bs); i++ {
		sa, sb := as[i], bs[i]
		switch {
		case sa.numeric && sb.numeric:
			if sa.value != sb.value {
				return sa.value < sb.value
			}
		case !sa.numeric && !sb.numeric:
			la, lb := strings.ToLower(sa.text), strings.ToLower(sb.text)
			if la != lb {
				return la < lb
			}
		default:
			// Numbers sort before text at the same position.
			return sa.numeric
		}
	}
	return len(as) < len(bs)
}

type segment struct {
	numeric bool
	value   int
	text    string
}

func splitSegments(s string) []segment {
	var segs []segment
	i := 0
	for i < len(s) {
		j := i
		if isDigit(s[i]) {
			value := 0
			for j < len(s) && isDigit(s[j]) {
				value = value*10 + int(s[j]-'0')
				j++
			}
			segs = append(segs, segment{numeric: true, value: value})
		} else {
			for j < len(s) && !isDigit(s[j]) {
				j++
			}
			segs = append(segs, segment{text: s[i:j]})
		}
		i = j
	}
	return segs
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// SortedByKey returns the values of m ordered naturally by map key. Tree
// builders assemble children keyed by address or name and use this to fix
// the display order once at construction.
func SortedByKey(m map[string]*Node) []*Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
	nodes := make([]*Node, 0, len(keys))
	for _, k := range keys {
		nodes = append(nodes, m[k])
	}
	return nodes
}
