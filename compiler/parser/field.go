package parser

import (
	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/lexer"
)

// typeCheck restricts the declared type of a definition
type typeCheck func(ast.MemberType) bool

func integerType(t ast.MemberType) bool {
	bt, ok := t.(ast.BasicType)
	return ok && bt.IsInteger()
}

func floatType(t ast.MemberType) bool {
	bt, ok := t.(ast.BasicType)
	return ok && bt.IsFloat()
}

func boolType(t ast.MemberType) bool {
	return t == ast.MemberType(ast.Bool)
}

func stringType(t ast.MemberType) bool {
	_, ok := t.(ast.GenericString)
	return ok
}

// FieldDef parses a field line of any member type:
//
//	TYPE name [default]
//
// An integer default outside the declared range returns the populated
// member together with a *errors.RangeError.
func FieldDef(line string) (ast.Member, error) {
	return fieldDef(lexer.NewScanner(line), nil, "type")
}

// IntegerFieldDef parses a field whose type is an integer basic type
func IntegerFieldDef(line string) (ast.Member, error) {
	return fieldDef(lexer.NewScanner(line), integerType, "integer type")
}

// FloatFieldDef parses a field whose type is float32 or float64
func FloatFieldDef(line string) (ast.Member, error) {
	return fieldDef(lexer.NewScanner(line), floatType, "float type")
}

// BoolFieldDef parses a bool field
func BoolFieldDef(line string) (ast.Member, error) {
	return fieldDef(lexer.NewScanner(line), boolType, "bool")
}

// StringFieldDef parses a string or wstring field, bounded or not
func StringFieldDef(line string) (ast.Member, error) {
	return fieldDef(lexer.NewScanner(line), stringType, "string type")
}

func fieldDef(s *lexer.Scanner, check typeCheck, expected string) (ast.Member, error) {
	start := s.Offset()
	typ, err := parseType(s)
	if err != nil {
		return ast.Member{}, err
	}
	if check != nil && !check(typ) {
		return ast.Member{}, errors.Syntaxf(errors.ErrExpectedType, expected, start,
			"expected %s, found %s", expected, typ)
	}
	if err := s.RequireBlanks("field name"); err != nil {
		return ast.Member{}, err
	}
	name, err := s.Expect(lexer.FieldName)
	if err != nil {
		return ast.Member{}, err
	}

	member := ast.Member{Name: name, Type: typ}
	if s.AtEnd() {
		return member, nil
	}
	if s.SkipBlanks() == 0 {
		return ast.Member{}, errors.Syntaxf(errors.ErrUnexpectedToken, "field name", s.Offset(),
			"unexpected %q after field name", s.Rest())
	}
	if s.AtEnd() {
		return member, nil
	}

	p := &valueParser{s: s}
	def, err := p.value(typ)
	if err != nil {
		return ast.Member{}, err
	}
	if err := s.ExpectEnd(); err != nil {
		return ast.Member{}, err
	}
	member.Default = &def
	return member, p.rangeErr
}
