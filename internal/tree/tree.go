package tree

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gnoswap-labs/selparse/internal/token"
)

// Kind tells root, production and token nodes apart.
type Kind int

const (
	KindRoot Kind = iota
	KindNonterminal
	KindTerminal
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindNonterminal:
		return "nonterminal"
	case KindTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is one grammar symbol occurrence in a parse tree.
// A node is owned by exactly one parent.
type Node struct {
	ID       uuid.UUID
	Kind     Kind
	Name     string // production name, token class, or source text for the root
	Lexeme   string // terminals only
	Pos      int    // stream position when the node was created
	Children []*Node
}

// NewNonterminal creates an unattached production node.
func NewNonterminal(name string, pos int) *Node {
	return &Node{
		ID:   uuid.New(),
		Kind: KindNonterminal,
		Name: name,
		Pos:  pos,
	}
}

// NewTerminal creates a leaf for an accepted token.
func NewTerminal(tok token.Token, pos int) *Node {
	return &Node{
		ID:     uuid.New(),
		Kind:   KindTerminal,
		Name:   tok.Class.String(),
		Lexeme: tok.Lexeme,
		Pos:    pos,
	}
}

// Label renders the node as "NNN-NAME" for productions and
// "NNN-CLASS: lexeme" for tokens, NNN being the creation position.
func (n *Node) Label() string {
	switch n.Kind {
	case KindRoot:
		return n.Name
	case KindTerminal:
		return fmt.Sprintf("%03d-%s: %s", n.Pos, n.Name, n.Lexeme)
	default:
		return fmt.Sprintf("%03d-%s", n.Pos, n.Name)
	}
}

func (n *Node) String() string { return n.Label() }

// IsTerminal reports whether n is a token leaf.
func (n *Node) IsTerminal() bool { return n.Kind == KindTerminal }

// Graft moves children under n, after any existing children.
// Callers hand over ownership and must not attach them anywhere else.
func (n *Node) Graft(children ...*Node) {
	for _, child := range children {
		if child == nil {
			continue
		}
		n.Children = append(n.Children, child)
	}
}

// Clone returns a deep copy of the subtree rooted at n with fresh ids.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		ID:     uuid.New(),
		Kind:   n.Kind,
		Name:   n.Name,
		Lexeme: n.Lexeme,
		Pos:    n.Pos,
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk visits the subtree in pre-order. Returning false from fn skips the
// children of the visited node.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Size counts the nodes of the subtree, n included.
func (n *Node) Size() int {
	size := 0
	n.Walk(func(*Node, int) bool {
		size++
		return true
	})
	return size
}

// Depth is the number of nodes on the longest root-to-leaf path.
func (n *Node) Depth() int {
	deepest := 0
	for _, child := range n.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// Find collects every node named name, in pre-order.
func (n *Node) Find(name string) []*Node {
	var found []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.Name == name {
			found = append(found, node)
		}
		return true
	})
	return found
}

// Tokens returns the leaves of the subtree in order.
func (n *Node) Tokens() []token.Token {
	var toks []token.Token
	n.Walk(func(node *Node, _ int) bool {
		if node.Kind == KindTerminal {
			sym, err := token.Lookup(node.Name)
			if err != nil {
				sym = token.Illegal
			}
			toks = append(toks, token.Token{Class: sym, Lexeme: node.Lexeme})
		}
		return true
	})
	return toks
}

// Equal compares two subtrees by kind, name, lexeme, position and shape.
// Node ids are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Name != b.Name || a.Lexeme != b.Lexeme || a.Pos != b.Pos {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Tree is a parse result rooted at a node labelled with the full source text.
type Tree struct {
	Root *Node
}

// New creates a tree whose root carries source as its label.
func New(source string) *Tree {
	return &Tree{
		Root: &Node{
			ID:   uuid.New(),
			Kind: KindRoot,
			Name: source,
		},
	}
}

// Attach grafts a subtree as the next child of the root.
func (t *Tree) Attach(n *Node) {
	t.Root.Graft(n)
}

// Top returns the first production under the root, or nil if nothing parsed.
func (t *Tree) Top() *Node {
	if t == nil || t.Root == nil || len(t.Root.Children) == 0 {
		return nil
	}
	return t.Root.Children[0]
}
