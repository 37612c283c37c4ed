package ltxtquery

import "strings"

// Compile renders a tree in PostgreSQL ltxtquery syntax. Word modifiers are
// always emitted in the canonical order '*', '@', '%'.
func Compile(n *Node) string {
	var sb strings.Builder
	compileNode(&sb, n)
	return sb.String()
}

func compileNode(sb *strings.Builder, n *Node) {
	switch n.Kind {
	case KindWord:
		sb.WriteString(n.Value)
		if n.Has(Prefix) {
			sb.WriteByte('*')
		}
		if n.Has(CaseInsensitive) {
			sb.WriteByte('@')
		}
		if n.Has(WordBoundary) {
			sb.WriteByte('%')
		}
	case KindAnd:
		compileNode(sb, n.Left())
		sb.WriteString(" & ")
		compileNode(sb, n.Right())
	case KindOr:
		compileNode(sb, n.Left())
		sb.WriteString(" | ")
		compileNode(sb, n.Right())
	case KindNot:
		sb.WriteByte('!')
		compileNode(sb, n.Operand())
	case KindGroup:
		sb.WriteByte('(')
		compileNode(sb, n.Operand())
		sb.WriteByte(')')
	}
}
