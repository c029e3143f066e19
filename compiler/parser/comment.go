package parser

import (
	"strings"

	"github.com/rclgo/msgidl/compiler/errors"
)

// StripComments removes // and # line comments and /* */ block comments.
// Quoted strings are copied untouched. Newlines inside block comments are
// kept so line numbers in the result match the input.
func StripComments(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	var quote byte
	for i := 0; i < len(text); {
		c := text[i]

		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(text) && text[i+1] != '\n':
				b.WriteByte(text[i+1])
				i += 2
				continue
			case c == quote || c == '\n':
				quote = 0
			}
			i++
			continue
		}

		switch {
		case (c == '"' || c == '\'') && opensQuote(text, i):
			quote = c
			b.WriteByte(c)
			i++
		case c == '#' || strings.HasPrefix(text[i:], "//"):
			i += lineEnd(text[i:])
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return "", unterminatedComment(text, i)
			}
			comment := text[i : i+2+end+2]
			b.WriteString(strings.Repeat("\n", strings.Count(comment, "\n")))
			i += len(comment)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// opensQuote reports whether the quote at text[i] starts a value. A quote
// inside a word, as in an unquoted it's, is an ordinary character.
func opensQuote(text string, i int) bool {
	if i == 0 {
		return true
	}
	switch text[i-1] {
	case ' ', '\t', '\n', '\r', '=', '[', ',':
		return true
	}
	return false
}

// lineEnd returns the index of the next newline in s, or len(s)
func lineEnd(s string) int {
	if n := strings.IndexByte(s, '\n'); n >= 0 {
		return n
	}
	return len(s)
}

func unterminatedComment(text string, at int) error {
	lineStart := strings.LastIndexByte(text[:at], '\n') + 1
	err := errors.NewSyntaxError(errors.ErrUnterminatedComment, "'*/'", at-lineStart)
	err.Location = errors.SourceLocation{
		Line:   strings.Count(text[:at], "\n") + 1,
		Column: at - lineStart + 1,
		Length: 2,
	}
	return err
}

// isConstantLine reports whether line holds a bare '=' outside brackets
// and quotes. The '=' of a '<=' bound does not count.
func isConstantLine(line string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			if opensQuote(line, i) {
				quote = c
			}
		case '[':
			depth++
		case ']':
			depth--
		case '=':
			if depth == 0 && (i == 0 || line[i-1] != '<') {
				return true
			}
		}
	}
	return false
}
