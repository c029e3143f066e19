package parser

import (
	stderrors "errors"
	"strings"
	"unicode/utf8"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/lexer"
)

// valueParser reads literal values for a declared type. Syntax failures
// are returned directly; the first range failure is kept in rangeErr so
// the caller can still build the member or constant.
type valueParser struct {
	s        *lexer.Scanner
	rangeErr error
}

func (p *valueParser) recordRange(err error, offset int) {
	var re *errors.RangeError
	if stderrors.As(err, &re) {
		re.Offset = offset
	}
	if p.rangeErr == nil {
		p.rangeErr = err
	}
}

// value parses a literal of type t and returns its canonical text
func (p *valueParser) value(t ast.MemberType) (string, error) {
	switch v := t.(type) {
	case ast.BasicType:
		return p.basic(v)
	case ast.GenericString:
		return p.str(v)
	case ast.Array:
		return p.array(v.ValueType, v.Size, v.Size)
	case ast.Sequence:
		return p.array(v.ValueType, 0, -1)
	case ast.BoundedSequence:
		return p.array(v.ValueType, 0, v.MaxSize)
	}
	return "", errors.Syntaxf(errors.ErrUnexpectedDefault, "end of line", p.s.Offset(),
		"type %s does not accept a default value", t)
}

func (p *valueParser) basic(t ast.BasicType) (string, error) {
	start := p.s.Offset()
	switch {
	case t.IsInteger():
		m, err := lexer.IntegerLiteral(p.s.Rest())
		if err != nil {
			return "", p.s.Shift(err)
		}
		p.s.Advance(len(m.Value))
		if err := t.CheckIntegerRange(m.Int); err != nil {
			p.recordRange(err, start)
		}
		return m.Int.String(), nil
	case t.IsFloat():
		text, err := p.s.Expect(lexer.FloatLiteral)
		if err != nil {
			return "", err
		}
		if err := t.CheckFloatRange(text); err != nil {
			p.recordRange(err, start)
		}
		return text, nil
	default:
		return p.s.Expect(lexer.BoolLiteral)
	}
}

func (p *valueParser) str(t ast.GenericString) (string, error) {
	start := p.s.Offset()
	m, err := lexer.StringLiteral(p.s.Rest())
	if err != nil {
		return "", p.s.Shift(err)
	}
	p.s.Advance(len(m.Value))
	p.checkLength(t, m.Text, start)
	return m.Text, nil
}

func (p *valueParser) checkLength(t ast.GenericString, text string, offset int) {
	if n := utf8.RuneCountInString(text); t.Bounded() && n > t.MaxSize {
		p.recordRange(errors.Rangef(errors.ErrBoundExceeded, text, t.String(),
			"string of length %d exceeds bound of %s", n, t), offset)
	}
}

// array parses [v, v, ...] holding between minLen and maxLen elements.
// A negative maxLen means unbounded.
func (p *valueParser) array(elem ast.NestableType, minLen, maxLen int) (string, error) {
	start := p.s.Offset()
	switch elem.(type) {
	case ast.BasicType, ast.GenericString:
	default:
		return "", errors.Syntaxf(errors.ErrUnexpectedDefault, "end of line", start,
			"elements of type %s do not accept a default value", elem)
	}
	if !p.s.Consume("[") {
		return "", errors.NewSyntaxError(errors.ErrInvalidArrayLiteral, "'['", start)
	}

	var items []string
	p.s.SkipBlanks()
	if !p.s.Consume("]") {
		for {
			p.s.SkipBlanks()
			item, err := p.value(ast.NestableToMember(elem))
			if err != nil {
				return "", err
			}
			if _, ok := elem.(ast.GenericString); ok {
				item = lexer.Quote(item)
			}
			items = append(items, item)

			p.s.SkipBlanks()
			if p.s.Consume("]") {
				break
			}
			if !p.s.Consume(",") {
				return "", errors.NewSyntaxError(errors.ErrInvalidArrayLiteral, "',' or ']'", p.s.Offset())
			}
		}
	}

	text := "[" + strings.Join(items, ", ") + "]"
	switch n := len(items); {
	case minLen == maxLen && n != minLen:
		p.recordRange(errors.Rangef(errors.ErrArrayLength, text, "",
			"array literal has %d elements, expected %d", n, minLen), start)
	case maxLen >= 0 && n > maxLen:
		p.recordRange(errors.Rangef(errors.ErrBoundExceeded, text, "",
			"array literal has %d elements, exceeds bound of %d", n, maxLen), start)
	}
	return text, nil
}
