package token

import (
	"errors"
	"fmt"
	"strconv"
)

// Symbol is the class of a token as produced by the lexing collaborator.
type Symbol int

const (
	Illegal Symbol = iota
	KSelect        // SELECT keyword
	KFrom          // FROM keyword
	KWhere         // WHERE keyword
	ID             // identifier
	Comma          // ','
	LParen         // '('
	RParen         // ')'
	RL             // relational operator: < <= > >= = <>
	And            // AND
	Or             // OR
	Not            // NOT
	WS             // whitespace, stripped before parsing
)

var symbolNames = [...]string{
	Illegal: "ILLEGAL",
	KSelect: "K_SELECT",
	KFrom:   "K_FROM",
	KWhere:  "K_WHERE",
	ID:      "ID",
	Comma:   "COMMA",
	LParen:  "LPAREN",
	RParen:  "RPAREN",
	RL:      "RL",
	And:     "AND",
	Or:      "OR",
	Not:     "NOT",
	WS:      "WS",
}

var symbolsByName = func() map[string]Symbol {
	m := make(map[string]Symbol, len(symbolNames))
	for i, name := range symbolNames {
		if Symbol(i) == Illegal {
			continue
		}
		m[name] = Symbol(i)
	}
	return m
}()

// ErrUnknownClass is returned when a token class name is not part of the grammar.
var ErrUnknownClass = errors.New("unknown token class")

func (s Symbol) String() string {
	if s >= 0 && int(s) < len(symbolNames) {
		return symbolNames[s]
	}
	return "Symbol(" + strconv.Itoa(int(s)) + ")"
}

// Lookup maps a class name such as "K_SELECT" to its Symbol.
func Lookup(name string) (Symbol, error) {
	if s, ok := symbolsByName[name]; ok {
		return s, nil
	}
	return Illegal, fmt.Errorf("%w: %q", ErrUnknownClass, name)
}

// Token is a classified piece of source text.
type Token struct {
	Class  Symbol
	Lexeme string
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q", t.Class, t.Lexeme)
}

// StripWhitespace returns tokens without the WS class. The input is not modified.
func StripWhitespace(tokens []Token) []Token {
	filtered := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Class == WS {
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered
}

// Source concatenates the lexemes of tokens, whitespace included.
func Source(tokens []Token) string {
	n := 0
	for _, tok := range tokens {
		n += len(tok.Lexeme)
	}
	buf := make([]byte, 0, n)
	for _, tok := range tokens {
		buf = append(buf, tok.Lexeme...)
	}
	return string(buf)
}
