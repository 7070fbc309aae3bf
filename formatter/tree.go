package formatter

import (
	"strings"

	"github.com/fatih/color"

	"github.com/gnoswap-labs/selparse/internal/tree"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentBar  = "│   "
	indentNone = "    "
)

var (
	errorStyle       = color.New(color.FgRed, color.Bold)
	fileStyle        = color.New(color.FgCyan, color.Bold)
	successStyle     = color.New(color.FgGreen, color.Bold)
	positionStyle    = color.New(color.FgHiBlue, color.Bold)
	rootStyle        = color.New(color.FgWhite, color.Bold)
	nonterminalStyle = color.New(color.FgYellow, color.Bold)
	terminalStyle    = color.New(color.FgGreen)
	branchStyle      = color.New(color.FgHiBlack)
)

// FormatTree renders t one node per line, children indented under their
// parent with box-drawing connectors:
//
//	SELECT a FROM t
//	└── 000-SELECT
//	    ├── 000-K_SELECT: SELECT
//	    ├── 001-ENUM
//	    │   └── 001-ID: a
//	    └── 002-FROM
//	        ...
//
// The root line shows the source text with whitespace runs collapsed.
func FormatTree(t *tree.Tree) string {
	if t == nil || t.Root == nil {
		return ""
	}

	var builder strings.Builder
	builder.WriteString(styleFor(t.Root).Sprint(collapseSpace(t.Root.Name)))
	builder.WriteString("\n")
	writeChildren(&builder, t.Root, "")
	return builder.String()
}

func writeChildren(b *strings.Builder, n *tree.Node, prefix string) {
	for i, child := range n.Children {
		connector, indent := branchMid, indentBar
		if i == len(n.Children)-1 {
			connector, indent = branchLast, indentNone
		}
		b.WriteString(branchStyle.Sprint(prefix + connector))
		b.WriteString(styleFor(child).Sprint(child.Label()))
		b.WriteString("\n")
		writeChildren(b, child, prefix+indent)
	}
}

func styleFor(n *tree.Node) *color.Color {
	switch n.Kind {
	case tree.KindRoot:
		return rootStyle
	case tree.KindTerminal:
		return terminalStyle
	default:
		return nonterminalStyle
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
