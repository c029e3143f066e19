// Package ast defines the typed model produced by the parser: the type
// universe of the interface definition language and the message, service
// and action specs built from it.
//
// The four type families overlap. Each is a sealed interface and a
// concrete type joins a family by implementing its marker method:
//
//	                 Nestable  Member  Primitive  Constant
//	BasicType           x        x        x          x
//	NamedType           x        x
//	NamespacedType      x        x
//	GenericString       x        x
//	GenericUnbounded                      x          x
//	Array/Sequence               x
//	BoundedSequence              x
//	PrimitiveArray                                   x
//
// Moving a value between families goes through the conversion functions
// in convert.go.
package ast

import (
	"fmt"
)

// NestableType is any type usable as the element of a composite
type NestableType interface {
	fmt.Stringer
	isNestable()
}

// MemberType is any type a message field may declare
type MemberType interface {
	fmt.Stringer
	isMember()
}

// PrimitiveType is the scalar type of a constant
type PrimitiveType interface {
	fmt.Stringer
	isPrimitive()
}

// ConstantType is any type a constant may declare
type ConstantType interface {
	fmt.Stringer
	isConstant()
}

// NamedType is a bare message name, not resolved to a package
type NamedType struct {
	Name string
}

func (t NamedType) String() string { return t.Name }

// NamespacedType is a message name qualified by its package
type NamespacedType struct {
	Package string
	Name    string
}

func (t NamespacedType) String() string { return t.Package + "/" + t.Name }

// GenericString is string or wstring, optionally bounded. MaxSize is zero
// for an unbounded string and positive otherwise.
type GenericString struct {
	Wide    bool
	MaxSize int
}

// Bounded reports whether the string declares a maximum length
func (t GenericString) Bounded() bool { return t.MaxSize > 0 }

func (t GenericString) String() string {
	s := stringKeyword(t.Wide)
	if t.Bounded() {
		s += fmt.Sprintf("<=%d", t.MaxSize)
	}
	return s
}

// GenericUnboundedString is string or wstring without a bound
type GenericUnboundedString struct {
	Wide bool
}

func (t GenericUnboundedString) String() string { return stringKeyword(t.Wide) }

// Array is a fixed-length composite; Size is positive
type Array struct {
	ValueType NestableType
	Size      int
}

func (t Array) String() string { return fmt.Sprintf("%s[%d]", t.ValueType, t.Size) }

// Sequence is an unbounded composite
type Sequence struct {
	ValueType NestableType
}

func (t Sequence) String() string { return t.ValueType.String() + "[]" }

// BoundedSequence is a composite of at most MaxSize elements; MaxSize is
// positive
type BoundedSequence struct {
	ValueType NestableType
	MaxSize   int
}

func (t BoundedSequence) String() string {
	return fmt.Sprintf("%s[<=%d]", t.ValueType, t.MaxSize)
}

// PrimitiveArray is a fixed-length array of a primitive type, the only
// composite a constant may declare
type PrimitiveArray struct {
	ValueType PrimitiveType
	Size      int
}

func (t PrimitiveArray) String() string { return fmt.Sprintf("%s[%d]", t.ValueType, t.Size) }

func stringKeyword(wide bool) string {
	if wide {
		return "wstring"
	}
	return "string"
}

func (BasicType) isNestable()  {}
func (BasicType) isMember()    {}
func (BasicType) isPrimitive() {}
func (BasicType) isConstant()  {}

func (NamedType) isNestable() {}
func (NamedType) isMember()   {}

func (NamespacedType) isNestable() {}
func (NamespacedType) isMember()   {}

func (GenericString) isNestable() {}
func (GenericString) isMember()   {}

func (GenericUnboundedString) isPrimitive() {}
func (GenericUnboundedString) isConstant()  {}

func (Array) isMember()           {}
func (Sequence) isMember()        {}
func (BoundedSequence) isMember() {}

func (PrimitiveArray) isConstant() {}
