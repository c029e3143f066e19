package lexer

import (
	"math/big"
	"strings"

	"github.com/rclgo/msgidl/compiler/errors"
)

var (
	// MaxInt128 and MinInt128 bound every integer literal
	MaxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	MinInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// IntegerMatch is a matched integer literal and its value
type IntegerMatch struct {
	Match
	Int *big.Int
}

// IntegerLiteral matches a binary, octal, hexadecimal or decimal literal,
// tried in that order so a base prefix is never read as a decimal zero.
func IntegerLiteral(input string) (IntegerMatch, error) {
	for _, p := range []func(string) (IntegerMatch, error){BinLiteral, OctLiteral, HexLiteral} {
		m, err := p(input)
		if err == nil || isOverflow(err) {
			return m, err
		}
	}
	m, err := DecLiteral(input)
	if err != nil && !isOverflow(err) {
		return IntegerMatch{}, errors.NewSyntaxError(errors.ErrInvalidNumber, "integer literal", 0)
	}
	return m, err
}

// BinLiteral matches [+-]?0[bB][01]+(_[01]+)*
func BinLiteral(input string) (IntegerMatch, error) {
	return radixLiteral("binary literal", input, "0b", 2, func(c byte) bool { return c == '0' || c == '1' })
}

// OctLiteral matches [+-]?0[oO][0-7]+(_[0-7]+)*
func OctLiteral(input string) (IntegerMatch, error) {
	return radixLiteral("octal literal", input, "0o", 8, func(c byte) bool { return c >= '0' && c <= '7' })
}

// HexLiteral matches [+-]?0[xX][0-9a-fA-F]+(_[0-9a-fA-F]+)*
func HexLiteral(input string) (IntegerMatch, error) {
	return radixLiteral("hexadecimal literal", input, "0x", 16, isHexDigit)
}

// DecLiteral matches [+-]?[0-9]+(_[0-9]+)*
func DecLiteral(input string) (IntegerMatch, error) {
	return radixLiteral("decimal literal", input, "", 10, isDigit)
}

func radixLiteral(production, input, prefix string, base int, ok func(byte) bool) (IntegerMatch, error) {
	n := 0
	sign := ""
	if n < len(input) && (input[n] == '+' || input[n] == '-') {
		sign = input[:1]
		n++
	}
	if prefix != "" {
		if len(input) < n+len(prefix) || !strings.EqualFold(input[n:n+len(prefix)], prefix) {
			return IntegerMatch{}, errors.NewSyntaxError(errors.ErrInvalidNumber, production, n)
		}
		n += len(prefix)
	}

	digits := segments(input[n:], ok)
	if digits == 0 {
		return IntegerMatch{}, errors.NewSyntaxError(errors.ErrInvalidNumber, production, n)
	}

	text := sign + strings.ReplaceAll(input[n:n+digits], "_", "")
	n += digits

	value, parsed := new(big.Int).SetString(text, base)
	if !parsed {
		return IntegerMatch{}, errors.NewSyntaxError(errors.ErrInvalidNumber, production, 0)
	}
	m := IntegerMatch{Match: split(input, n), Int: value}
	if value.Cmp(MaxInt128) > 0 || value.Cmp(MinInt128) < 0 {
		return m, errors.Syntaxf(errors.ErrNumberOverflow, production, 0,
			"integer literal %s does not fit in 128 bits", input[:n])
	}
	return m, nil
}

// FloatLiteral matches [+-]?(d+(.d*)?|.d+)([eE][+-]?d+)? and returns the
// text unchanged
func FloatLiteral(input string) (Match, error) {
	n := 0
	if n < len(input) && (input[n] == '+' || input[n] == '-') {
		n++
	}

	intDigits := countDigits(input[n:])
	n += intDigits
	fracDigits := 0
	if n < len(input) && input[n] == '.' {
		fracDigits = countDigits(input[n+1:])
		if intDigits > 0 || fracDigits > 0 {
			n += 1 + fracDigits
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return Match{}, errors.NewSyntaxError(errors.ErrInvalidNumber, "float literal", 0)
	}

	if n < len(input) && (input[n] == 'e' || input[n] == 'E') {
		e := n + 1
		if e < len(input) && (input[e] == '+' || input[e] == '-') {
			e++
		}
		if d := countDigits(input[e:]); d > 0 {
			n = e + d
		}
	}
	return split(input, n), nil
}

// BoolLiteral matches true or false
func BoolLiteral(input string) (Match, error) {
	for _, word := range []string{"true", "false"} {
		if strings.HasPrefix(input, word) {
			return split(input, len(word)), nil
		}
	}
	return Match{}, errors.NewSyntaxError(errors.ErrInvalidBool, "bool literal", 0)
}

// StringMatch is a matched quoted string and its decoded content
type StringMatch struct {
	Match
	Text string
}

// StringLiteral matches a single or double quoted string. Backslash
// escapes \\ \" \' \n \t and \r are decoded.
func StringLiteral(input string) (StringMatch, error) {
	if len(input) == 0 || (input[0] != '"' && input[0] != '\'') {
		return StringMatch{}, errors.NewSyntaxError(errors.ErrExpectedValue, "string literal", 0)
	}
	quote := input[0]

	var b strings.Builder
	for i := 1; i < len(input); i++ {
		c := input[i]
		switch {
		case c == quote:
			return StringMatch{Match: split(input, i+1), Text: b.String()}, nil
		case c == '\\':
			if i+1 >= len(input) {
				return StringMatch{}, errors.NewSyntaxError(errors.ErrUnterminatedString, "string literal", 0)
			}
			i++
			switch input[i] {
			case '\\', '"', '\'':
				b.WriteByte(input[i])
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				return StringMatch{}, errors.Syntaxf(errors.ErrInvalidEscape, "string literal", i-1,
					"invalid escape sequence \\%c", input[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return StringMatch{}, errors.NewSyntaxError(errors.ErrUnterminatedString, "string literal", 0)
}

// Quote renders s as a double quoted literal that StringLiteral decodes
// back to s
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isOverflow(err error) bool {
	se, ok := err.(*errors.SyntaxError)
	return ok && se.Code == errors.ErrNumberOverflow
}

func countDigits(s string) int {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
