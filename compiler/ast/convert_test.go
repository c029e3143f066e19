package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ  MemberType
		want string
	}{
		{Float64, "float64"},
		{NamedType{Name: "Pose"}, "Pose"},
		{NamespacedType{Package: "geometry_msgs", Name: "Pose"}, "geometry_msgs/Pose"},
		{GenericString{}, "string"},
		{GenericString{Wide: true, MaxSize: 8}, "wstring<=8"},
		{Array{ValueType: Int32, Size: 3}, "int32[3]"},
		{Sequence{ValueType: GenericString{MaxSize: 4}}, "string<=4[]"},
		{BoundedSequence{ValueType: NamedType{Name: "Point"}, MaxSize: 10}, "Point[<=10]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
	assert.Equal(t, "wstring[2]", PrimitiveArray{ValueType: GenericUnboundedString{Wide: true}, Size: 2}.String())
}

func TestNestableMemberRoundTrip(t *testing.T) {
	nestables := []NestableType{
		Uint16,
		NamedType{Name: "Header"},
		NamespacedType{Package: "std_msgs", Name: "Header"},
		GenericString{Wide: true, MaxSize: 3},
	}
	for _, n := range nestables {
		back, err := MemberToNestable(NestableToMember(n))
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}
}

func TestMemberToNestable_RejectsComposites(t *testing.T) {
	for _, m := range []MemberType{
		Array{ValueType: Int8, Size: 2},
		Sequence{ValueType: Int8},
		BoundedSequence{ValueType: Int8, MaxSize: 2},
	} {
		_, err := MemberToNestable(m)
		assert.ErrorIs(t, err, ErrNotNestable, m.String())
	}
}

func TestPrimitiveConversions(t *testing.T) {
	assert.Equal(t, NestableType(Bool), PrimitiveToNestable(Bool))
	assert.Equal(t, NestableType(GenericString{Wide: true}), PrimitiveToNestable(GenericUnboundedString{Wide: true}))
	assert.Equal(t, ConstantType(Char), PrimitiveToConstant(Char))
	assert.Equal(t, ConstantType(GenericUnboundedString{}), PrimitiveToConstant(GenericUnboundedString{}))
	assert.Equal(t, GenericString{Wide: true}, UnboundedToGeneric(GenericUnboundedString{Wide: true}))
}

func TestMemberToConstant_Accepts(t *testing.T) {
	tests := []struct {
		member MemberType
		want   ConstantType
	}{
		{Int64, Int64},
		{GenericString{}, GenericUnboundedString{}},
		{GenericString{Wide: true}, GenericUnboundedString{Wide: true}},
		{Array{ValueType: Float32, Size: 3}, PrimitiveArray{ValueType: Float32, Size: 3}},
		{Array{ValueType: GenericString{}, Size: 2}, PrimitiveArray{ValueType: GenericUnboundedString{}, Size: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.member.String(), func(t *testing.T) {
			got, err := MemberToConstant(tt.member)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.member, ConstantToMember(got))
		})
	}
}

func TestMemberToConstant_Rejects(t *testing.T) {
	for _, m := range []MemberType{
		NamedType{Name: "Pose"},
		NamespacedType{Package: "geometry_msgs", Name: "Pose"},
		GenericString{MaxSize: 5},
		Sequence{ValueType: Int8},
		BoundedSequence{ValueType: Int8, MaxSize: 4},
		Array{ValueType: NamedType{Name: "Pose"}, Size: 2},
		Array{ValueType: GenericString{MaxSize: 5}, Size: 2},
	} {
		t.Run(m.String(), func(t *testing.T) {
			_, err := MemberToConstant(m)
			assert.ErrorIs(t, err, ErrNotConstant)
		})
	}
}
