package token

import "fmt"

// Stream is an ordered token sequence with a single read cursor.
// The cursor moves forward only through Next and backward only through Rollback.
type Stream struct {
	tokens []Token
	pos    int
}

// NewStream creates a stream over tokens with whitespace already removed.
func NewStream(tokens []Token) *Stream {
	return &Stream{tokens: StripWhitespace(tokens)}
}

// Next returns the token under the cursor and advances. When the stream is
// exhausted it returns false and leaves the cursor where it is.
func (s *Stream) Next() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, true
}

// Peek returns the token under the cursor without consuming it.
func (s *Stream) Peek() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[s.pos], true
}

// Rollback moves the cursor back by exactly n consumed tokens.
func (s *Stream) Rollback(n int) {
	if n < 0 || n > s.pos {
		panic(fmt.Sprintf("token: rollback of %d from position %d", n, s.pos))
	}
	s.pos -= n
}

// Exhausted reports whether every token has been consumed.
func (s *Stream) Exhausted() bool { return s.pos == len(s.tokens) }

// Pos returns the cursor position in the filtered sequence.
func (s *Stream) Pos() int { return s.pos }

// Len returns the number of tokens in the filtered sequence.
func (s *Stream) Len() int { return len(s.tokens) }

// At returns the token at position i of the filtered sequence.
func (s *Stream) At(i int) (Token, bool) {
	if i < 0 || i >= len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[i], true
}
