package grammar

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnoswap-labs/selparse/internal/token"
	"github.com/gnoswap-labs/selparse/internal/tree"
)

// Production names. They double as node names in the parse tree.
const (
	Select    = "SELECT"
	From      = "FROM"
	Enum      = "ENUM"
	Where     = "WHERE"
	Expr      = "EXPR"
	Cond      = "COND"
	LogicalOp = "LOGICAL_OP"
)

// DefaultMaxDepth bounds production nesting when Options.MaxDepth is unset.
const DefaultMaxDepth = 512

var (
	// ErrMaxDepth reports that production nesting hit Options.MaxDepth and the
	// parse attempt was abandoned.
	ErrMaxDepth = errors.New("maximum production depth exceeded")
	// ErrUnknownProduction reports an Options.Start that names no production.
	ErrUnknownProduction = errors.New("unknown production")
)

// Productions lists the grammar's nonterminals in definition order.
func Productions() []string {
	return []string{Select, From, Enum, Where, Expr, Cond, LogicalOp}
}

// Options tune a single parse.
type Options struct {
	// Start is the production the parse begins with. Defaults to SELECT.
	Start string
	// MaxDepth bounds production nesting. Zero or less means DefaultMaxDepth.
	MaxDepth int
	// Memoize caches production results per stream position (packrat parsing).
	Memoize bool
	// Logger receives per-token trace output at debug level. Nil disables it.
	Logger *zap.Logger
}

// Result is the outcome of Parse. A parse never fails outright: an input the
// grammar rejects still yields a tree, possibly a bare root, and the cursor
// position reached.
type Result struct {
	Tree *tree.Tree
	// Pos is the final cursor position in the whitespace-free token sequence.
	Pos int
	// Total is the length of the whitespace-free token sequence.
	Total int
	// Err is set when the parse was abandoned rather than rejected.
	Err error
	// Furthest is the right-most terminal mismatch seen during the parse.
	Furthest *Diagnostic
}

// Complete reports whether every token was consumed.
func (r *Result) Complete() bool {
	return r.Err == nil && r.Pos == r.Total
}

// Diagnostic explains an incomplete parse, or nil if the parse is complete.
func (r *Result) Diagnostic() error {
	if r.Complete() {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	if r.Furthest != nil {
		return r.Furthest
	}
	return fmt.Errorf("parse stopped at token %d of %d", r.Pos, r.Total)
}

// Parse runs the grammar over tokens. WS tokens are dropped before parsing and
// the tree root is labelled with the unfiltered source text. Every call owns
// its own cursor and tree, so Parse is safe for concurrent use.
func Parse(tokens []token.Token, opts Options) *Result {
	s := newSession(tokens, opts)
	return s.run(opts.Start)
}
