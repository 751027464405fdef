package xmlast

import "strconv"

// Node is one element of the parsed XML tree. Unlike a map-keyed DOM, child
// order is preserved and repeated sibling tags (many <Data> under one
// <Structure>) stay distinct entries instead of collapsing into one key.
type Node struct {
	Tag      string
	Attrs    map[string]string
	AttrKeys []string // insertion order, for stable re-emission/diagnostics
	Children []*Node
	Text     string
	Pos      Position
}

// Attr returns the named attribute and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrOr returns the named attribute, or def if absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attrs[name]; ok {
		return v
	}
	return def
}

// IntAttr parses the named attribute as a decimal integer.
func (n *Node) IntAttr(name string) (int, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

// BoolAttr parses the named attribute as "true"/"1" (true) vs. anything else
// (false), returning false with ok=false when the attribute is absent.
func (n *Node) BoolAttr(name string) (bool, bool) {
	v, ok := n.Attrs[name]
	if !ok {
		return false, false
	}
	return v == "true" || v == "1", true
}

// ChildrenByTag returns the child nodes matching tag, in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}
