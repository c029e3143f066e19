// Package parser turns interface definition documents into the typed
// model of package ast. Each document is parsed line by line after
// comments are stripped; any failure aborts the whole document.
package parser

import (
	"strconv"
	"strings"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/lexer"
)

// ParseType parses a member type at the start of input and returns it
// together with the unconsumed remainder
func ParseType(input string) (ast.MemberType, string, error) {
	s := lexer.NewScanner(input)
	t, err := parseType(s)
	if err != nil {
		return nil, input, err
	}
	return t, s.Rest(), nil
}

// parseType reads a base type, an optional string bound and an optional
// array suffix
func parseType(s *lexer.Scanner) (ast.MemberType, error) {
	word := typeWord(s.Rest())
	base, err := baseType(word)
	if err != nil {
		return nil, s.Shift(err)
	}
	s.Advance(len(word))

	if s.Peek() == '<' {
		str, ok := base.(ast.GenericString)
		if !ok {
			return nil, errors.Syntaxf(errors.ErrInvalidBound, "type", s.Offset(),
				"%s does not take a bound", word)
		}
		if !s.Consume("<=") {
			return nil, errors.NewSyntaxError(errors.ErrInvalidBound, "'<='", s.Offset())
		}
		str.MaxSize, err = parseBound(s)
		if err != nil {
			return nil, err
		}
		base = str
	}

	if !s.Consume("[") {
		return ast.NestableToMember(base), nil
	}
	switch {
	case s.Consume("]"):
		return ast.Sequence{ValueType: base}, nil
	case s.Consume("<="):
		n, err := parseBound(s)
		if err != nil {
			return nil, err
		}
		if !s.Consume("]") {
			return nil, errors.NewSyntaxError(errors.ErrUnexpectedToken, "']'", s.Offset())
		}
		return ast.BoundedSequence{ValueType: base, MaxSize: n}, nil
	default:
		n, err := parseBound(s)
		if err != nil {
			return nil, err
		}
		if !s.Consume("]") {
			return nil, errors.NewSyntaxError(errors.ErrUnexpectedToken, "']'", s.Offset())
		}
		return ast.Array{ValueType: base, Size: n}, nil
	}
}

// typeWord returns the leading run of bytes that can spell a base type
func typeWord(input string) string {
	n := 0
	for n < len(input) {
		c := input[n]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '/' {
			n++
			continue
		}
		break
	}
	return input[:n]
}

// baseType resolves a keyword, message name or package qualified name
func baseType(word string) (ast.NestableType, error) {
	if bt, ok := ast.LookupBasicType(word); ok {
		return bt, nil
	}
	switch word {
	case "string":
		return ast.GenericString{}, nil
	case "wstring":
		return ast.GenericString{Wide: true}, nil
	}

	if strings.Contains(word, "/") {
		parts := strings.Split(word, "/")
		if len(parts) == 3 && parts[1] == "msg" {
			parts = []string{parts[0], parts[2]}
		}
		if len(parts) == 2 && lexer.IsPackageName(parts[0]) && lexer.IsMessageName(parts[1]) {
			return ast.NamespacedType{Package: parts[0], Name: parts[1]}, nil
		}
		return nil, errors.Syntaxf(errors.ErrExpectedType, "type", 0, "invalid qualified type %q", word)
	}

	if lexer.IsMessageName(word) {
		return ast.NamedType{Name: word}, nil
	}
	if word == "" {
		return nil, errors.NewSyntaxError(errors.ErrExpectedType, "type", 0)
	}
	return nil, errors.Syntaxf(errors.ErrExpectedType, "type", 0, "unknown type %q", word)
}

// parseBound reads a positive decimal bound
func parseBound(s *lexer.Scanner) (int, error) {
	rest := s.Rest()
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n == 0 {
		return 0, errors.Syntaxf(errors.ErrInvalidBound, "bound", s.Offset(), "expected a positive integer bound")
	}
	v, err := strconv.Atoi(rest[:n])
	if err != nil || v <= 0 {
		return 0, errors.Syntaxf(errors.ErrInvalidBound, "bound", s.Offset(), "bound must be a positive integer, got %s", rest[:n])
	}
	s.Advance(n)
	return v, nil
}
