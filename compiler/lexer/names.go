package lexer

import (
	"github.com/rclgo/msgidl/compiler/errors"
)

// PackageName matches [a-z][a-z0-9]*(_[a-z0-9]+)*
func PackageName(input string) (Match, error) {
	return lowerName("package name", input)
}

// FieldName matches [a-z][a-z0-9]*(_[a-z0-9]+)*. A trailing or doubled
// underscore is left in the remainder.
func FieldName(input string) (Match, error) {
	return lowerName("field name", input)
}

// MessageName matches [A-Z][A-Za-z0-9]*
func MessageName(input string) (Match, error) {
	if len(input) == 0 || !isUpper(input[0]) {
		return Match{}, errors.NewSyntaxError(errors.ErrInvalidIdentifier, "message name", 0)
	}
	n := 1
	for n < len(input) && (isUpper(input[n]) || isLower(input[n]) || isDigit(input[n])) {
		n++
	}
	return split(input, n), nil
}

// ConstantName matches [A-Z]+(_[A-Z]+)*. Digits are not accepted.
func ConstantName(input string) (Match, error) {
	n := segments(input, isUpper)
	if n == 0 {
		return Match{}, errors.NewSyntaxError(errors.ErrInvalidIdentifier, "constant name", 0)
	}
	return split(input, n), nil
}

// IsPackageName reports whether s is exactly one package name
func IsPackageName(s string) bool {
	return whole(PackageName, s)
}

// IsMessageName reports whether s is exactly one message name
func IsMessageName(s string) bool {
	return whole(MessageName, s)
}

func lowerName(production, input string) (Match, error) {
	if len(input) == 0 || !isLower(input[0]) {
		return Match{}, errors.NewSyntaxError(errors.ErrInvalidIdentifier, production, 0)
	}
	n := segments(input, func(c byte) bool { return isLower(c) || isDigit(c) })
	return split(input, n), nil
}

// segments returns the length of the longest prefix made of runs of
// bytes accepted by ok, separated by single underscores
func segments(input string, ok func(byte) bool) int {
	n := 0
	for n < len(input) && ok(input[n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	for n+1 < len(input) && input[n] == '_' && ok(input[n+1]) {
		n += 2
		for n < len(input) && ok(input[n]) {
			n++
		}
	}
	return n
}

func whole(p Production, s string) bool {
	m, err := p(s)
	return err == nil && m.Rest == ""
}

func split(input string, n int) Match {
	return Match{Value: input[:n], Rest: input[n:]}
}

func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
