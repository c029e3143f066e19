package parser

import (
	"strings"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/lexer"
)

// ConstDef parses a constant line:
//
//	TYPE NAME=value
//
// The type must be a constant type. An integer value outside the declared
// range returns the populated constant together with a *errors.RangeError.
func ConstDef(line string) (ast.Constant, error) {
	return constDef(lexer.NewScanner(line), nil, "constant type")
}

// IntegerConstDef parses a constant whose type is an integer basic type
func IntegerConstDef(line string) (ast.Constant, error) {
	return constDef(lexer.NewScanner(line), integerType, "integer type")
}

// FloatConstDef parses a float32 or float64 constant
func FloatConstDef(line string) (ast.Constant, error) {
	return constDef(lexer.NewScanner(line), floatType, "float type")
}

// BoolConstDef parses a bool constant
func BoolConstDef(line string) (ast.Constant, error) {
	return constDef(lexer.NewScanner(line), boolType, "bool")
}

// StringConstDef parses a string or wstring constant. The value may be
// quoted or, unquoted, the rest of the line with blanks trimmed.
func StringConstDef(line string) (ast.Constant, error) {
	return constDef(lexer.NewScanner(line), stringType, "string type")
}

func constDef(s *lexer.Scanner, check typeCheck, expected string) (ast.Constant, error) {
	start := s.Offset()
	memberType, err := parseType(s)
	if err != nil {
		return ast.Constant{}, err
	}
	if check != nil && !check(memberType) {
		return ast.Constant{}, errors.Syntaxf(errors.ErrExpectedType, expected, start,
			"expected %s, found %s", expected, memberType)
	}
	typ, err := ast.MemberToConstant(memberType)
	if err != nil {
		return ast.Constant{}, errors.Syntaxf(errors.ErrInvalidConstantType, "constant type", start,
			"type %s cannot be used for a constant", memberType)
	}

	if err := s.RequireBlanks("constant name"); err != nil {
		return ast.Constant{}, err
	}
	name, err := s.Expect(lexer.ConstantName)
	if err != nil {
		return ast.Constant{}, err
	}
	s.SkipBlanks()
	if !s.Consume("=") {
		return ast.Constant{}, errors.NewSyntaxError(errors.ErrExpectedEquals, "'='", s.Offset())
	}
	s.SkipBlanks()
	if s.AtEnd() {
		return ast.Constant{}, errors.NewSyntaxError(errors.ErrExpectedValue, "constant value", s.Offset())
	}

	constant := ast.Constant{Name: name, Type: typ}
	if _, ok := typ.(ast.GenericUnboundedString); ok && s.Peek() != '"' && s.Peek() != '\'' {
		constant.Value = strings.TrimSpace(s.Rest())
		return constant, nil
	}

	p := &valueParser{s: s}
	value, err := p.value(ast.ConstantToMember(typ))
	if err != nil {
		return ast.Constant{}, err
	}
	if err := s.ExpectEnd(); err != nil {
		return ast.Constant{}, err
	}
	constant.Value = value
	return constant, p.rangeErr
}
