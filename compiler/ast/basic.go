package ast

import (
	stderrors "errors"
	"math/big"
	"strconv"

	"github.com/rclgo/msgidl/compiler/errors"
)

// BasicType is a fixed-width scalar type
type BasicType int

const (
	Int8 BasicType = iota + 1
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Bool
	Char
	Byte
)

var basicKeywords = map[BasicType]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Float32: "float32",
	Float64: "float64",
	Bool:    "bool",
	Char:    "char",
	Byte:    "byte",
}

var basicByKeyword = func() map[string]BasicType {
	m := make(map[string]BasicType, len(basicKeywords))
	for t, kw := range basicKeywords {
		m[kw] = t
	}
	return m
}()

// LookupBasicType returns the basic type spelled by keyword
func LookupBasicType(keyword string) (BasicType, bool) {
	t, ok := basicByKeyword[keyword]
	return t, ok
}

// BasicTypes returns every basic type in declaration order
func BasicTypes() []BasicType {
	return []BasicType{Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64, Bool, Char, Byte}
}

// String returns the IDL keyword
func (t BasicType) String() string {
	if kw, ok := basicKeywords[t]; ok {
		return kw
	}
	return "invalid"
}

// IsInteger reports whether values of t are integers. char and byte count.
func (t BasicType) IsInteger() bool {
	_, _, ok := t.integerBounds()
	return ok
}

// IsFloat reports whether t is float32 or float64
func (t BasicType) IsFloat() bool {
	return t == Float32 || t == Float64
}

// Bits returns the width of t in bits
func (t BasicType) Bits() int {
	switch t {
	case Int8, Uint8, Bool, Char, Byte:
		return 8
	case Int16, Uint16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	default:
		return 64
	}
}

// integerBounds returns the inclusive range of an integer type
func (t BasicType) integerBounds() (lo, hi *big.Int, ok bool) {
	switch t {
	case Int8, Int16, Int32, Int64:
		bits := uint(t.Bits())
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits-1), big.NewInt(1))
		lo = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1))
		return lo, hi, true
	case Uint8, Uint16, Uint32, Uint64, Char, Byte:
		bits := uint(t.Bits())
		hi = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
		return new(big.Int), hi, true
	default:
		return nil, nil, false
	}
}

// IntegerRange returns the inclusive bounds of an integer type. ok is
// false for float and bool.
func (t BasicType) IntegerRange() (lo, hi *big.Int, ok bool) {
	return t.integerBounds()
}

// CheckIntegerRange validates that v fits t. char and byte validate as
// uint8; float and bool always pass.
func (t BasicType) CheckIntegerRange(v *big.Int) error {
	lo, hi, ok := t.integerBounds()
	if !ok {
		return nil
	}
	if v.Cmp(lo) < 0 || v.Cmp(hi) > 0 {
		return errors.NewRangeError(v.String(), t.String())
	}
	return nil
}

// CheckFloatRange validates that the float literal text rounds to a
// finite value of t's width. Non-float types always pass.
func (t BasicType) CheckFloatRange(text string) error {
	if !t.IsFloat() {
		return nil
	}
	_, err := strconv.ParseFloat(text, t.Bits())
	if err == nil {
		return nil
	}
	if stderrors.Is(err, strconv.ErrRange) {
		return errors.Rangef(errors.ErrFloatOutOfRange, text, t.String(),
			"value %s is out of range for type %s", text, t)
	}
	return errors.Syntaxf(errors.ErrInvalidNumber, "float literal", 0, "invalid float literal %q", text)
}
