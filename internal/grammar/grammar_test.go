package grammar

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnoswap-labs/selparse/internal/token"
	"github.com/gnoswap-labs/selparse/internal/tree"
)

// tokens classifies space separated words and interleaves WS tokens the way
// a lexer would.
func tokens(src string) []token.Token {
	var out []token.Token
	for i, w := range strings.Fields(src) {
		if i > 0 {
			out = append(out, token.Token{Class: token.WS, Lexeme: " "})
		}
		out = append(out, token.Token{Class: classify(w), Lexeme: w})
	}
	return out
}

func classify(w string) token.Symbol {
	switch w {
	case "SELECT":
		return token.KSelect
	case "FROM":
		return token.KFrom
	case "WHERE":
		return token.KWhere
	case "AND":
		return token.And
	case "OR":
		return token.Or
	case "NOT":
		return token.Not
	case ",":
		return token.Comma
	case "(":
		return token.LParen
	case ")":
		return token.RParen
	case "<", "<=", ">", ">=", "=", "<>":
		return token.RL
	default:
		return token.ID
	}
}

// shape renders a subtree as NAME(children...) using production names and
// token lexemes, for compact structural assertions.
func shape(n *tree.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.IsTerminal() {
		return n.Lexeme
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = shape(c)
	}
	return n.Name + "(" + strings.Join(parts, " ") + ")"
}

func leafCount(n *tree.Node) int {
	return len(n.Tokens())
}

var corpus = []string{
	"SELECT name , age FROM foo , bar WHERE NOT ( foo >= bar AND NOT ( foo1 <= bar1 OR foo2 < bar2 ) )",
	"SELECT a FROM b",
	"SELECT a , b , c FROM t WHERE a > b AND c < d OR e = f",
	"SELECT FROM foo",
	"SELECT a , FROM b",
	"SELECT a FROM b WHERE",
	"SELECT a FROM b WHERE ( a > b",
	"SELECT a FROM b WHERE NOT NOT a = b",
	"SELECT a FROM b WHERE a > b AND",
	"a > b OR ( c < d )",
	", , ) ( NOT AND",
	"",
}

func TestRollbackExactness(t *testing.T) {
	t.Parallel()
	for _, src := range corpus {
		toks := tokens(src)
		n := len(token.StripWhitespace(toks))
		for _, name := range Productions() {
			for start := 0; start <= n; start++ {
				s := newSession(toks, Options{})
				for i := 0; i < start; i++ {
					s.stream.Next()
				}
				node, consumed, ok := s.rules[name]()
				if ok {
					continue
				}
				assert.Nil(t, node)
				assert.Zero(t, consumed, "%s at %d of %q", name, start, src)
				assert.Equal(t, start, s.stream.Pos(), "%s at %d of %q", name, start, src)
			}
		}
	}
}

func TestConsumptionAccounting(t *testing.T) {
	t.Parallel()
	for _, src := range corpus {
		toks := tokens(src)
		n := len(token.StripWhitespace(toks))
		for _, name := range Productions() {
			for start := 0; start <= n; start++ {
				s := newSession(toks, Options{})
				for i := 0; i < start; i++ {
					s.stream.Next()
				}
				node, consumed, ok := s.rules[name]()
				if !ok {
					continue
				}
				require.NotNil(t, node)
				assert.Equal(t, consumed, s.stream.Pos()-start, "%s at %d of %q", name, start, src)
				assert.Equal(t, consumed, leafCount(node), "%s at %d of %q", name, start, src)
				assert.Equal(t, name, node.Name)
				assert.Equal(t, start, node.Pos)
			}
		}
	}
}

func TestIdempotentReparse(t *testing.T) {
	t.Parallel()
	for _, src := range corpus {
		first := Parse(tokens(src), Options{})
		second := Parse(tokens(src), Options{})

		assert.True(t, tree.Equal(first.Tree.Root, second.Tree.Root), src)
		assert.Equal(t, first.Pos, second.Pos, src)
		assert.Equal(t, first.Total, second.Total, src)
	}
}

func TestRightAssociativity(t *testing.T) {
	t.Parallel()
	for _, op := range []string{"AND", "OR"} {
		src := "SELECT x FROM y WHERE a > b " + op + " c < d AND e = f"
		res := Parse(tokens(src), Options{})
		require.True(t, res.Complete(), src)

		where := res.Tree.Top().Children[3]
		require.Equal(t, Where, where.Name)
		expr := where.Children[1]

		assert.Equal(t,
			"EXPR(COND(a > b) LOGICAL_OP("+op+") EXPR(COND(c < d) LOGICAL_OP(AND) EXPR(COND(e = f))))",
			shape(expr))
	}
}

func TestReferenceQueryIsFullyConsumed(t *testing.T) {
	t.Parallel()
	toks := token.Example()
	res := Parse(toks, Options{})

	require.NoError(t, res.Diagnostic())
	assert.True(t, res.Complete())
	assert.Equal(t, len(token.StripWhitespace(toks)), res.Pos)
	assert.Equal(t, 26, res.Total)
	assert.Equal(t, token.Source(toks), res.Tree.Root.Label())

	assert.Equal(t,
		"SELECT(SELECT ENUM(name , ENUM(age)) FROM(FROM ENUM(foo , ENUM(bar))) "+
			"WHERE(WHERE EXPR(NOT EXPR(( EXPR(COND(foo >= bar) LOGICAL_OP(AND) "+
			"EXPR(NOT EXPR(( EXPR(COND(foo1 <= bar1) LOGICAL_OP(OR) EXPR(COND(foo2 < bar2))) )))) )))))",
		shape(res.Tree.Top()))
	assert.Equal(t, token.StripWhitespace(toks), res.Tree.Root.Tokens())
}

func TestGracefulPartialFailure(t *testing.T) {
	t.Parallel()
	res := Parse(tokens("SELECT FROM foo"), Options{})

	assert.False(t, res.Complete())
	assert.Nil(t, res.Tree.Top(), "SELECT must fail when ENUM fails")
	assert.Less(t, res.Pos, 1, "cursor must stop before FROM")
	assert.Equal(t, 3, res.Total)
	assert.NoError(t, res.Err)

	require.NotNil(t, res.Furthest)
	assert.Equal(t, `at token 1: expected ID, found K_FROM "FROM"`, res.Furthest.Error())
	assert.EqualError(t, res.Diagnostic(), `at token 1: expected ID, found K_FROM "FROM"`)
}

func TestEnumSingleVersusList(t *testing.T) {
	t.Parallel()

	s := newSession(tokens("name"), Options{})
	node, n, ok := s.parseEnum()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ENUM(name)", shape(node))

	s = newSession(tokens("name , age"), Options{})
	node, n, ok = s.parseEnum()
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, "ENUM(name , ENUM(age))", shape(node))
	assert.Equal(t, "002-ENUM", node.Children[2].Label())
}

func TestEnumFallsBackWhenListIsCutShort(t *testing.T) {
	t.Parallel()
	s := newSession(tokens("name , FROM"), Options{})
	node, n, ok := s.parseEnum()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "ENUM(name)", shape(node))
	assert.Equal(t, 1, s.stream.Pos())
}

func TestOrderedChoiceDoesNotRevisitCommittedChoices(t *testing.T) {
	t.Parallel()
	// SELECT with WHERE wins only if the WHERE clause parses; otherwise the
	// short alternative commits and the trailing tokens are left over.
	res := Parse(tokens("SELECT a FROM b WHERE ( a > b"), Options{})
	assert.False(t, res.Complete())
	assert.Equal(t, 4, res.Pos)
	assert.Equal(t, "SELECT(SELECT ENUM(a) FROM(FROM ENUM(b)))", shape(res.Tree.Top()))
}

func TestExprAlternatives(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
		n    int
	}{
		{"a = b", "EXPR(COND(a = b))", 3},
		{"( a = b )", "EXPR(( EXPR(COND(a = b)) ))", 5},
		{"NOT a = b", "EXPR(NOT EXPR(COND(a = b)))", 4},
		{"NOT NOT ( a = b )", "EXPR(NOT EXPR(NOT EXPR(( EXPR(COND(a = b)) ))))", 7},
		{"a = b OR c = d", "EXPR(COND(a = b) LOGICAL_OP(OR) EXPR(COND(c = d)))", 7},
		// A parenthesized group cannot be the left operand of a binary chain.
		{"( a = b ) AND c = d", "EXPR(( EXPR(COND(a = b)) ))", 5},
		{"a = b AND", "EXPR(COND(a = b))", 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			s := newSession(tokens(tt.src), Options{})
			node, n, ok := s.parseExpr()
			require.True(t, ok)
			assert.Equal(t, tt.want, shape(node))
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestCondRequiresEveryMatch(t *testing.T) {
	t.Parallel()
	for _, src := range []string{"( < b", "a < (", "a b c", "a <"} {
		s := newSession(tokens(src), Options{})
		_, n, ok := s.parseCond()
		assert.False(t, ok, src)
		assert.Zero(t, n, src)
		assert.Zero(t, s.stream.Pos(), src)
	}
}

func TestDiagnostics(t *testing.T) {
	t.Parallel()
	tests := []struct {
		src  string
		want string
	}{
		{"SELECT a FROM b c", `at token 4: expected COMMA or K_WHERE, found ID "c"`},
		{"SELECT a FROM b WHERE", `at token 5: expected EXPR, found end of input`},
		{"SELECT a ,", `at token 3: expected ENUM, found end of input`},
		{"FROM a", `at token 0: expected K_SELECT, found K_FROM "FROM"`},
	}
	for _, tt := range tests {
		res := Parse(tokens(tt.src), Options{})
		assert.False(t, res.Complete(), tt.src)
		assert.EqualError(t, res.Diagnostic(), tt.want, tt.src)
	}
}

func TestCompleteParseHasNoDiagnostic(t *testing.T) {
	t.Parallel()
	res := Parse(tokens("SELECT a FROM b"), Options{})
	assert.True(t, res.Complete())
	assert.NoError(t, res.Diagnostic())
}

func TestEmptyInput(t *testing.T) {
	t.Parallel()
	res := Parse(nil, Options{})
	assert.NotNil(t, res.Tree)
	assert.Empty(t, res.Tree.Root.Children)
	assert.Equal(t, 0, res.Pos)
	assert.Equal(t, 0, res.Total)
	// nothing to consume, but SELECT did not match either
	assert.True(t, res.Complete())
}

func nested(depth int) string {
	return "SELECT a FROM b WHERE " + strings.Repeat("( ", depth) + "a = b" + strings.Repeat(" )", depth)
}

func TestDepthLimit(t *testing.T) {
	t.Parallel()

	res := Parse(tokens(nested(100)), Options{})
	require.NoError(t, res.Err)
	assert.True(t, res.Complete())
	assert.Equal(t, 103, res.Tree.Top().Find(Expr)[0].Depth())

	res = Parse(tokens(nested(100)), Options{MaxDepth: 50})
	assert.True(t, errors.Is(res.Err, ErrMaxDepth))
	assert.False(t, res.Complete())
	assert.Nil(t, res.Tree.Top())
	assert.Equal(t, 0, res.Pos, "abandoned parse must leave the cursor where it started")
	assert.ErrorIs(t, res.Diagnostic(), ErrMaxDepth)

	res = Parse(tokens(nested(DefaultMaxDepth)), Options{})
	assert.ErrorIs(t, res.Err, ErrMaxDepth)
}

func TestMemoizationIsTransparent(t *testing.T) {
	t.Parallel()
	inputs := append([]string{nested(40)}, corpus...)
	for _, src := range inputs {
		plain := Parse(tokens(src), Options{})
		memo := Parse(tokens(src), Options{Memoize: true})

		assert.True(t, tree.Equal(plain.Tree.Root, memo.Tree.Root), src)
		assert.Equal(t, plain.Pos, memo.Pos, src)
		assert.Equal(t, plain.Complete(), memo.Complete(), src)
	}
}

func TestMemoizedSubtreesAreNotShared(t *testing.T) {
	t.Parallel()
	// SELECT's two alternatives both parse ENUM and FROM at the same
	// positions; the second one is served from the memo table.
	res := Parse(tokens("SELECT a , b FROM c WHERE"), Options{Memoize: true})
	require.NotNil(t, res.Tree.Top())

	seen := map[*tree.Node]bool{}
	ids := map[string]bool{}
	res.Tree.Root.Walk(func(n *tree.Node, _ int) bool {
		assert.False(t, seen[n], "node %s reachable twice", n.Label())
		assert.False(t, ids[n.ID.String()], "duplicate id on %s", n.Label())
		seen[n] = true
		ids[n.ID.String()] = true
		return true
	})
}

func TestStartProduction(t *testing.T) {
	t.Parallel()
	res := Parse(tokens("a > b OR ( c < d )"), Options{Start: Expr})
	assert.True(t, res.Complete())
	assert.Equal(t, "EXPR(COND(a > b) LOGICAL_OP(OR) EXPR(( EXPR(COND(c < d)) )))", shape(res.Tree.Top()))

	res = Parse(tokens("a > b"), Options{Start: "HAVING"})
	assert.ErrorIs(t, res.Err, ErrUnknownProduction)
	assert.Nil(t, res.Tree.Top())
}

func TestConcurrentParsesAreIndependent(t *testing.T) {
	t.Parallel()
	want := Parse(token.Example(), Options{})

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Parse(token.Example(), Options{Memoize: i%2 == 0})
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.True(t, got.Complete())
		assert.True(t, tree.Equal(want.Tree.Root, got.Tree.Root))
	}
}

func TestTraceLogging(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	res := Parse(tokens("SELECT a FROM b"), Options{Logger: zap.New(core)})
	require.True(t, res.Complete())

	processed := logs.FilterMessage("processing token").All()
	require.NotEmpty(t, processed)
	assert.Equal(t, int64(0), processed[0].ContextMap()["position"])

	finished := logs.FilterMessage("parse finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, true, finished[0].ContextMap()["complete"])

	core, logs = observer.New(zap.WarnLevel)
	Parse(tokens(nested(10)), Options{MaxDepth: 5, Logger: zap.New(core)})
	assert.Equal(t, 1, logs.FilterMessage("production depth limit reached").Len())
}
