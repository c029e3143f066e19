package ast

import (
	stderrors "errors"
	"fmt"
)

var (
	// ErrNotNestable is returned when a composite is used where an
	// element type is required
	ErrNotNestable = stderrors.New("type is not nestable")

	// ErrNotConstant is returned for a member type a constant cannot declare
	ErrNotConstant = stderrors.New("type cannot be used for a constant")
)

// NestableToMember widens a nestable type to a member type
func NestableToMember(t NestableType) MemberType {
	switch v := t.(type) {
	case BasicType:
		return v
	case NamedType:
		return v
	case NamespacedType:
		return v
	case GenericString:
		return v
	}
	panic(fmt.Sprintf("ast: unknown nestable type %T", t))
}

// MemberToNestable narrows a member type to a nestable type. It fails
// for Array, Sequence and BoundedSequence.
func MemberToNestable(t MemberType) (NestableType, error) {
	switch v := t.(type) {
	case BasicType:
		return v, nil
	case NamedType:
		return v, nil
	case NamespacedType:
		return v, nil
	case GenericString:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotNestable, t)
}

// PrimitiveToNestable converts a primitive type into the nestable type
// with the same values
func PrimitiveToNestable(t PrimitiveType) NestableType {
	switch v := t.(type) {
	case BasicType:
		return v
	case GenericUnboundedString:
		return UnboundedToGeneric(v)
	}
	panic(fmt.Sprintf("ast: unknown primitive type %T", t))
}

// PrimitiveToConstant widens a primitive type to a constant type
func PrimitiveToConstant(t PrimitiveType) ConstantType {
	switch v := t.(type) {
	case BasicType:
		return v
	case GenericUnboundedString:
		return v
	}
	panic(fmt.Sprintf("ast: unknown primitive type %T", t))
}

// UnboundedToGeneric converts an unbounded string into a GenericString
func UnboundedToGeneric(t GenericUnboundedString) GenericString {
	return GenericString{Wide: t.Wide}
}

// ConstantToMember converts a constant type into the member type with
// the same values
func ConstantToMember(t ConstantType) MemberType {
	switch v := t.(type) {
	case BasicType:
		return v
	case GenericUnboundedString:
		return UnboundedToGeneric(v)
	case PrimitiveArray:
		return Array{ValueType: PrimitiveToNestable(v.ValueType), Size: v.Size}
	}
	panic(fmt.Sprintf("ast: unknown constant type %T", t))
}

// MemberToConstant narrows a member type to a constant type. It fails for
// named and namespaced types, bounded strings, sequences, and arrays
// whose element is not primitive.
func MemberToConstant(t MemberType) (ConstantType, error) {
	switch v := t.(type) {
	case BasicType:
		return v, nil
	case GenericString:
		if p, ok := nestableToPrimitive(v); ok {
			return PrimitiveToConstant(p), nil
		}
	case Array:
		if p, ok := nestableToPrimitive(v.ValueType); ok {
			return PrimitiveArray{ValueType: p, Size: v.Size}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotConstant, t)
}

func nestableToPrimitive(t NestableType) (PrimitiveType, bool) {
	switch v := t.(type) {
	case BasicType:
		return v, true
	case GenericString:
		if !v.Bounded() {
			return GenericUnboundedString{Wide: v.Wide}, true
		}
	}
	return nil, false
}
