// Package lexer holds the lexical and literal productions of the interface
// definition language. Every production consumes a prefix of its input and
// reports what it matched together with the unconsumed remainder.
package lexer

import (
	stderrors "errors"

	"github.com/rclgo/msgidl/compiler/errors"
)

// Match is the result of a successful production
type Match struct {
	Value string // consumed prefix
	Rest  string // unconsumed remainder
}

// Production matches a prefix of input. On failure it returns a
// *errors.SyntaxError whose offset is relative to input.
type Production func(input string) (Match, error)

// Scanner is a cursor over a single line. Productions run against the
// unconsumed part of the line; the scanner shifts their error offsets so
// they point into the whole line.
type Scanner struct {
	input string
	pos   int
}

// NewScanner creates a Scanner positioned at the start of input
func NewScanner(input string) *Scanner {
	return &Scanner{input: input}
}

// Offset returns the current byte offset into the line
func (s *Scanner) Offset() int {
	return s.pos
}

// Rest returns the unconsumed part of the line
func (s *Scanner) Rest() string {
	return s.input[s.pos:]
}

// Consumed returns the part of the line already consumed
func (s *Scanner) Consumed() string {
	return s.input[:s.pos]
}

// AtEnd reports whether the whole line has been consumed
func (s *Scanner) AtEnd() bool {
	return s.pos >= len(s.input)
}

// Peek returns the next byte without consuming it, or 0 at the end
func (s *Scanner) Peek() byte {
	if s.AtEnd() {
		return 0
	}
	return s.input[s.pos]
}

// Advance consumes n bytes
func (s *Scanner) Advance(n int) {
	s.pos = min(len(s.input), s.pos+n)
}

// SkipBlanks consumes spaces and tabs and returns how many were skipped
func (s *Scanner) SkipBlanks() int {
	start := s.pos
	for !s.AtEnd() && isBlank(s.input[s.pos]) {
		s.pos++
	}
	return s.pos - start
}

// RequireBlanks consumes at least one blank or fails naming what was
// expected after the blanks
func (s *Scanner) RequireBlanks(next string) error {
	if s.SkipBlanks() == 0 {
		return errors.Syntaxf(errors.ErrUnexpectedToken, next, s.pos,
			"expected whitespace before %s", next)
	}
	return nil
}

// Consume consumes prefix if the remainder starts with it
func (s *Scanner) Consume(prefix string) bool {
	if len(s.Rest()) >= len(prefix) && s.Rest()[:len(prefix)] == prefix {
		s.pos += len(prefix)
		return true
	}
	return false
}

// Expect runs p on the remainder and consumes its match
func (s *Scanner) Expect(p Production) (string, error) {
	m, err := p(s.Rest())
	if err != nil {
		return "", s.Shift(err)
	}
	s.pos += len(m.Value)
	return m.Value, nil
}

// ExpectEnd fails unless only blanks remain
func (s *Scanner) ExpectEnd() error {
	s.SkipBlanks()
	if !s.AtEnd() {
		return errors.Syntaxf(errors.ErrUnexpectedToken, "end of line", s.pos,
			"unexpected %q", s.Rest())
	}
	return nil
}

// Shift moves the offset of a syntax or range error produced against
// Rest() so that it is relative to the whole line
func (s *Scanner) Shift(err error) error {
	var se *errors.SyntaxError
	if stderrors.As(err, &se) {
		se.Shift(s.pos)
		return err
	}
	var re *errors.RangeError
	if stderrors.As(err, &re) {
		re.Offset += s.pos
	}
	return err
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
