package ltxtquery

// Kind classifies nodes in a parsed pattern tree.
type Kind int

const (
	KindWord Kind = iota
	KindAnd
	KindOr
	KindNot
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Modifier is a bit set of word matching modes.
type Modifier uint8

const (
	// CaseInsensitive is written as '@'.
	CaseInsensitive Modifier = 1 << iota
	// Prefix is written as '*'.
	Prefix
	// WordBoundary is written as '%' and matches underscore-separated words.
	WordBoundary
)

// Node is one element of an immutable pattern tree. Word nodes carry Value
// and Mods; And/Or nodes carry two children, Not/Group carry one.
type Node struct {
	Kind     Kind
	Value    string
	Mods     Modifier
	Children []*Node
}

// Word builds a word node with the given modifiers.
func Word(value string, mods ...Modifier) *Node {
	var m Modifier
	for _, mod := range mods {
		m |= mod
	}
	return &Node{Kind: KindWord, Value: value, Mods: m}
}

// And builds a conjunction.
func And(left, right *Node) *Node {
	return &Node{Kind: KindAnd, Children: []*Node{left, right}}
}

// Or builds a disjunction.
func Or(left, right *Node) *Node {
	return &Node{Kind: KindOr, Children: []*Node{left, right}}
}

// Not builds a negation.
func Not(operand *Node) *Node {
	return &Node{Kind: KindNot, Children: []*Node{operand}}
}

// Group builds an explicit parenthesized group.
func Group(inner *Node) *Node {
	return &Node{Kind: KindGroup, Children: []*Node{inner}}
}

// Has reports whether the word node carries modifier m.
func (n *Node) Has(m Modifier) bool {
	return n.Mods&m != 0
}

// Left returns the first child of a binary node.
func (n *Node) Left() *Node { return n.child(0) }

// Right returns the second child of a binary node.
func (n *Node) Right() *Node { return n.child(1) }

// Operand returns the single child of a Not or Group node.
func (n *Node) Operand() *Node { return n.child(0) }

func (n *Node) child(i int) *Node {
	if i < len(n.Children) {
		return n.Children[i]
	}
	return nil
}

// String renders the node in native ltxtquery syntax.
func (n *Node) String() string {
	return Compile(n)
}

// Walk visits n and its descendants depth-first, pre-order. Returning false
// from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
