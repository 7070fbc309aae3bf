package token

// Example returns the token sequence for
//
//	SELECT name, age
//	FROM foo, bar
//	WHERE NOT (foo >= bar AND NOT (foo1 <= bar1 OR foo2 < bar2))
//
// with whitespace tokens interleaved as a lexer would emit them.
func Example() []Token {
	return []Token{
		{KSelect, "SELECT"},
		{WS, " "},
		{ID, "name"},
		{Comma, ","},
		{WS, " "},
		{ID, "age"},
		{WS, "\r\n"},
		{KFrom, "FROM"},
		{WS, " "},
		{ID, "foo"},
		{Comma, ","},
		{WS, " "},
		{ID, "bar"},
		{WS, "\r\n"},
		{KWhere, "WHERE"},
		{WS, " "},
		{Not, "NOT"},
		{WS, " "},
		{LParen, "("},
		{ID, "foo"},
		{WS, " "},
		{RL, ">="},
		{WS, " "},
		{ID, "bar"},
		{WS, " "},
		{And, "AND"},
		{WS, " "},
		{Not, "NOT"},
		{WS, " "},
		{LParen, "("},
		{ID, "foo1"},
		{WS, " "},
		{RL, "<="},
		{WS, " "},
		{ID, "bar1"},
		{WS, " "},
		{Or, "OR"},
		{WS, " "},
		{ID, "foo2"},
		{WS, " "},
		{RL, "<"},
		{WS, " "},
		{ID, "bar2"},
		{RParen, ")"},
		{RParen, ")"},
	}
}
