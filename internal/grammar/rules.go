package grammar

import (
	"github.com/gnoswap-labs/selparse/internal/token"
	"github.com/gnoswap-labs/selparse/internal/tree"
)

// SELECT -> K_SELECT ENUM FROM WHERE
//
//	| K_SELECT ENUM FROM
func (s *session) parseSelect() (*tree.Node, int, bool) {
	return s.production(Select,
		seq(s.terminal(token.KSelect), s.parseEnum, s.parseFrom, s.parseWhere),
		seq(s.terminal(token.KSelect), s.parseEnum, s.parseFrom),
	)
}

// FROM -> K_FROM ENUM
func (s *session) parseFrom() (*tree.Node, int, bool) {
	return s.production(From,
		seq(s.terminal(token.KFrom), s.parseEnum),
	)
}

// ENUM -> ID COMMA ENUM
//
//	| ID
//
// The list form comes first so a comma list is never cut short.
func (s *session) parseEnum() (*tree.Node, int, bool) {
	return s.production(Enum,
		seq(s.terminal(token.ID), s.terminal(token.Comma), s.parseEnum),
		seq(s.terminal(token.ID)),
	)
}

// WHERE -> K_WHERE EXPR
func (s *session) parseWhere() (*tree.Node, int, bool) {
	return s.production(Where,
		seq(s.terminal(token.KWhere), s.parseExpr),
	)
}

// EXPR -> COND LOGICAL_OP EXPR
//
//	| LPAREN EXPR RPAREN
//	| NOT EXPR
//	| COND
//
// Recursion is on the right only, so chains associate to the right and
// AND/OR bind equally.
func (s *session) parseExpr() (*tree.Node, int, bool) {
	return s.production(Expr,
		seq(s.parseCond, s.parseLogicalOp, s.parseExpr),
		seq(s.terminal(token.LParen), s.parseExpr, s.terminal(token.RParen)),
		seq(s.terminal(token.Not), s.parseExpr),
		seq(s.parseCond),
	)
}

// COND -> ID RL ID
func (s *session) parseCond() (*tree.Node, int, bool) {
	return s.production(Cond,
		seq(s.terminal(token.ID), s.terminal(token.RL), s.terminal(token.ID)),
	)
}

// LOGICAL_OP -> AND
//
//	| OR
func (s *session) parseLogicalOp() (*tree.Node, int, bool) {
	return s.production(LogicalOp,
		seq(s.terminal(token.And)),
		seq(s.terminal(token.Or)),
	)
}
