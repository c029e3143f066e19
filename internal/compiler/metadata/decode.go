package metadata

import (
	stderrors "errors"
	"fmt"

	"github.com/rclgo/msgidl/compiler/ast"
)

// ErrInvalidMetadata is returned when a document cannot be turned back
// into an AST
var ErrInvalidMetadata = stderrors.New("invalid metadata")

var blockCounts = map[ast.Kind]int{
	ast.KindMessage: 1,
	ast.KindService: 2,
	ast.KindAction:  3,
}

// ToInterface rebuilds the parsed document described by m
func ToInterface(m InterfaceMetadata) (ast.Interface, error) {
	kind := ast.Kind(m.Kind)
	want, ok := blockCounts[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidMetadata, m.Kind)
	}
	if len(m.Messages) != want {
		return nil, fmt.Errorf("%w: %s %s has %d messages, expected %d",
			ErrInvalidMetadata, m.Kind, m.Name, len(m.Messages), want)
	}

	msgs := make([]ast.Message, len(m.Messages))
	for i, mm := range m.Messages {
		msg, err := ToMessage(m.Package, mm)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.FullName, err)
		}
		msgs[i] = *msg
	}

	switch kind {
	case ast.KindService:
		return &ast.Service{Package: m.Package, Name: m.Name, Request: msgs[0], Response: msgs[1]}, nil
	case ast.KindAction:
		return &ast.Action{Package: m.Package, Name: m.Name, Goal: msgs[0], Result: msgs[1], Feedback: msgs[2]}, nil
	}
	return &msgs[0], nil
}

// ToMessage rebuilds a single message of package pkg
func ToMessage(pkg string, m MessageMetadata) (*ast.Message, error) {
	msg := &ast.Message{
		Package:   pkg,
		Name:      m.Name,
		Members:   make([]ast.Member, 0, len(m.Fields)),
		Constants: make([]ast.Constant, 0, len(m.Constants)),
	}
	for _, f := range m.Fields {
		t, err := ToType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		member := ast.Member{Name: f.Name, Type: t}
		if f.Default != nil {
			d := *f.Default
			member.Default = &d
		}
		msg.Members = append(msg.Members, member)
	}
	for _, c := range m.Constants {
		t, err := ToType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("constant %s: %w", c.Name, err)
		}
		ct, err := ast.MemberToConstant(t)
		if err != nil {
			return nil, fmt.Errorf("%w: constant %s: %v", ErrInvalidMetadata, c.Name, err)
		}
		msg.Constants = append(msg.Constants, ast.Constant{Name: c.Name, Type: ct, Value: c.Value})
	}
	return msg, nil
}

// ToType rebuilds a member type from its structural description
func ToType(t TypeMetadata) (ast.MemberType, error) {
	switch t.Kind {
	case TypeArray, TypeSequence, TypeBoundedSequence:
		if t.Element == nil {
			return nil, fmt.Errorf("%w: %s without element type", ErrInvalidMetadata, t.Kind)
		}
		elem, err := toNestable(*t.Element)
		if err != nil {
			return nil, err
		}
		switch t.Kind {
		case TypeArray:
			if t.Size <= 0 {
				return nil, fmt.Errorf("%w: array size %d", ErrInvalidMetadata, t.Size)
			}
			return ast.Array{ValueType: elem, Size: t.Size}, nil
		case TypeBoundedSequence:
			if t.MaxSize <= 0 {
				return nil, fmt.Errorf("%w: sequence bound %d", ErrInvalidMetadata, t.MaxSize)
			}
			return ast.BoundedSequence{ValueType: elem, MaxSize: t.MaxSize}, nil
		}
		return ast.Sequence{ValueType: elem}, nil
	}

	elem, err := toNestable(t)
	if err != nil {
		return nil, err
	}
	return ast.NestableToMember(elem), nil
}

func toNestable(t TypeMetadata) (ast.NestableType, error) {
	switch t.Kind {
	case TypeBasic:
		b, ok := ast.LookupBasicType(t.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown basic type %q", ErrInvalidMetadata, t.Name)
		}
		return b, nil
	case TypeNamed:
		return ast.NamedType{Name: t.Name}, nil
	case TypeNamespaced:
		return ast.NamespacedType{Package: t.Package, Name: t.Name}, nil
	case TypeString:
		if t.MaxSize < 0 {
			return nil, fmt.Errorf("%w: string bound %d", ErrInvalidMetadata, t.MaxSize)
		}
		return ast.GenericString{Wide: t.Wide, MaxSize: t.MaxSize}, nil
	}
	return nil, fmt.Errorf("%w: type kind %q is not nestable", ErrInvalidMetadata, t.Kind)
}
