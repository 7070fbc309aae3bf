package grammar

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gnoswap-labs/selparse/internal/token"
	"github.com/gnoswap-labs/selparse/internal/tree"
)

// matcher is one constituent of an alternative: a terminal match or a
// production call. It returns the subtree it built, the number of tokens it
// consumed and whether it succeeded. A failed matcher may report consumed
// tokens; the enclosing alternative rolls them back.
type matcher func() (*tree.Node, int, bool)

type memoKey struct {
	production string
	pos        int
}

type memoEntry struct {
	node *tree.Node
	n    int
	ok   bool
}

// session holds the state of one parse. It is never reused.
type session struct {
	source   string
	stream   *token.Stream
	logger   *zap.Logger
	maxDepth int
	depth    int
	aborted  bool
	memo     map[memoKey]memoEntry
	furthest *Diagnostic
	rules    map[string]matcher
}

func newSession(tokens []token.Token, opts Options) *session {
	s := &session{
		source:   token.Source(tokens),
		stream:   token.NewStream(tokens),
		logger:   opts.Logger,
		maxDepth: opts.MaxDepth,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxDepth <= 0 {
		s.maxDepth = DefaultMaxDepth
	}
	if opts.Memoize {
		s.memo = make(map[memoKey]memoEntry)
	}
	s.rules = map[string]matcher{
		Select:    s.parseSelect,
		From:      s.parseFrom,
		Enum:      s.parseEnum,
		Where:     s.parseWhere,
		Expr:      s.parseExpr,
		Cond:      s.parseCond,
		LogicalOp: s.parseLogicalOp,
	}
	return s
}

func (s *session) run(start string) *Result {
	if start == "" {
		start = Select
	}
	t := tree.New(s.source)
	res := &Result{Tree: t, Total: s.stream.Len()}

	rule, ok := s.rules[start]
	if !ok {
		res.Err = fmt.Errorf("%w: %q", ErrUnknownProduction, start)
		return res
	}

	if node, _, ok := rule(); ok {
		t.Attach(node)
	}

	res.Pos = s.stream.Pos()
	res.Furthest = s.furthest
	if s.aborted {
		res.Err = fmt.Errorf("%w (limit %d)", ErrMaxDepth, s.maxDepth)
	}

	s.logger.Debug("parse finished",
		zap.String("start", start),
		zap.Int("position", res.Pos),
		zap.Int("total", res.Total),
		zap.Bool("complete", res.Complete()),
	)
	return res
}

// matchTerminal consumes one token and accepts it if its class is expected.
// At end of input nothing is consumed; on a class mismatch the inspected token
// counts as consumed and must be rolled back by the caller.
func (s *session) matchTerminal(expected token.Symbol) (*tree.Node, int, bool) {
	pos := s.stream.Pos()
	tok, ok := s.stream.Next()
	if !ok {
		s.recordMismatch(pos, expected.String(), nil)
		return nil, 0, false
	}

	s.logger.Debug("processing token",
		zap.Stringer("token", tok),
		zap.Int("position", pos),
		zap.Stringer("expected", expected),
	)

	if tok.Class != expected {
		s.recordMismatch(pos, expected.String(), &tok)
		return nil, 1, false
	}
	return tree.NewTerminal(tok, pos), 1, true
}

func (s *session) terminal(expected token.Symbol) matcher {
	return func() (*tree.Node, int, bool) {
		return s.matchTerminal(expected)
	}
}

// seq groups the constituents of one alternative.
func seq(ms ...matcher) []matcher { return ms }

// production tries alts in order and returns the first that fully matches,
// grafted under a new node called name. On failure the stream is back where
// it was on entry and the reported count is zero.
func (s *session) production(name string, alts ...[]matcher) (*tree.Node, int, bool) {
	if s.aborted {
		return nil, 0, false
	}
	if s.stream.Exhausted() {
		s.recordMismatch(s.stream.Pos(), name, nil)
		return nil, 0, false
	}

	start := s.stream.Pos()
	key := memoKey{production: name, pos: start}
	if s.memo != nil {
		if e, ok := s.memo[key]; ok {
			return s.replay(e)
		}
	}

	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.maxDepth {
		s.aborted = true
		s.logger.Warn("production depth limit reached",
			zap.String("production", name),
			zap.Int("position", start),
			zap.Int("limit", s.maxDepth),
		)
		return nil, 0, false
	}

	node, n, ok := s.choose(name, start, alts)
	if s.memo != nil && !s.aborted {
		s.memo[key] = memoEntry{node: node, n: n, ok: ok}
	}
	return node, n, ok
}

func (s *session) choose(name string, start int, alts [][]matcher) (*tree.Node, int, bool) {
	node := tree.NewNonterminal(name, start)
	for i, alt := range alts {
		if s.aborted {
			break
		}
		children, n, ok := s.try(alt)
		if !ok {
			continue
		}
		node.Graft(children...)
		s.logger.Debug("production matched",
			zap.String("production", name),
			zap.Int("alternative", i+1),
			zap.Int("position", start),
			zap.Int("consumed", n),
		)
		return node, n, true
	}
	return nil, 0, false
}

// try runs one alternative left to right. If any constituent fails, all
// tokens consumed by the alternative are rolled back and its subtrees dropped.
func (s *session) try(alt []matcher) ([]*tree.Node, int, bool) {
	consumed := 0
	children := make([]*tree.Node, 0, len(alt))
	for _, m := range alt {
		child, n, ok := m()
		consumed += n
		if !ok {
			s.stream.Rollback(consumed)
			return nil, 0, false
		}
		children = append(children, child)
	}
	return children, consumed, true
}

// replay re-applies a memoized result at the current position.
func (s *session) replay(e memoEntry) (*tree.Node, int, bool) {
	if !e.ok {
		return nil, 0, false
	}
	for i := 0; i < e.n; i++ {
		s.stream.Next()
	}
	return e.node.Clone(), e.n, true
}

func (s *session) recordMismatch(pos int, expected string, found *token.Token) {
	switch {
	case s.furthest == nil || pos > s.furthest.Pos:
		s.furthest = &Diagnostic{Pos: pos, Expected: []string{expected}, Found: found}
	case pos == s.furthest.Pos:
		s.furthest.expect(expected)
	}
}
