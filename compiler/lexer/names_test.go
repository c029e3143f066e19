package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclgo/msgidl/compiler/errors"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		input string
		value string
		rest  string
	}{
		{"abc034_fs3_u3 = 20", "abc034_fs3_u3", " = 20"},
		{"x", "x", ""},
		{"position_x 1.0", "position_x", " 1.0"},
		{"a__b", "a", "__b"},
		{"trailing_", "trailing", "_"},
		{"lower_Upper", "lower", "_Upper"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := FieldName(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.rest, m.Rest)
		})
	}
}

func TestFieldName_Rejects(t *testing.T) {
	for _, input := range []string{"_invalid", "0abc", "Abc", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := FieldName(input)
			var se *errors.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "field name", se.Production)
			assert.Equal(t, 0, se.Offset)
			assert.Equal(t, errors.ErrInvalidIdentifier, se.Code)
		})
	}
}

func TestPackageName(t *testing.T) {
	m, err := PackageName("std_msgs/Header")
	require.NoError(t, err)
	assert.Equal(t, "std_msgs", m.Value)
	assert.Equal(t, "/Header", m.Rest)

	assert.True(t, IsPackageName("geometry_msgs"))
	assert.False(t, IsPackageName("geometry_msgs_"))
	assert.False(t, IsPackageName("Geometry"))
	assert.False(t, IsPackageName(""))
}

func TestMessageName(t *testing.T) {
	m, err := MessageName("StdMsgs12")
	require.NoError(t, err)
	assert.Equal(t, "StdMsgs12", m.Value)
	assert.Empty(t, m.Rest)

	m, err = MessageName("Pose[]")
	require.NoError(t, err)
	assert.Equal(t, "Pose", m.Value)
	assert.Equal(t, "[]", m.Rest)

	_, err = MessageName("aStdMsgs12")
	assert.Error(t, err)
	_, err = MessageName("1Abc")
	assert.Error(t, err)

	assert.True(t, IsMessageName("Twist"))
	assert.False(t, IsMessageName("Twist_Stamped"))
}

func TestConstantName(t *testing.T) {
	m, err := ConstantName("C_O_N_STAN_Ta")
	require.NoError(t, err)
	assert.Equal(t, "C_O_N_STAN_T", m.Value)
	assert.Equal(t, "a", m.Rest)

	m, err = ConstantName("MAX_SIZE=10")
	require.NoError(t, err)
	assert.Equal(t, "MAX_SIZE", m.Value)
	assert.Equal(t, "=10", m.Rest)

	m, err = ConstantName("LEVEL2")
	require.NoError(t, err)
	assert.Equal(t, "LEVEL", m.Value)
	assert.Equal(t, "2", m.Rest)

	_, err = ConstantName("_FOO")
	assert.Error(t, err)
	_, err = ConstantName("foo")
	assert.Error(t, err)
}

func TestScanner(t *testing.T) {
	s := NewScanner("int32  count_x 5  ")
	assert.Equal(t, 0, s.SkipBlanks())
	require.True(t, s.Consume("int32"))
	require.NoError(t, s.RequireBlanks("field name"))
	assert.Equal(t, 7, s.Offset())

	name, err := s.Expect(FieldName)
	require.NoError(t, err)
	assert.Equal(t, "count_x", name)
	assert.Equal(t, "int32  count_x", s.Consumed())

	s.SkipBlanks()
	assert.Equal(t, byte('5'), s.Peek())
	s.Advance(1)
	assert.NoError(t, s.ExpectEnd())
	assert.True(t, s.AtEnd())
	assert.Equal(t, byte(0), s.Peek())
}

func TestScanner_ShiftsOffsets(t *testing.T) {
	s := NewScanner("uint8 _bad")
	s.Advance(5)
	err := s.RequireBlanks("field name")
	require.NoError(t, err)

	_, err = s.Expect(FieldName)
	var se *errors.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 6, se.Offset)

	s = NewScanner("bool flag x")
	s.Advance(4)
	err = s.RequireBlanks("field name")
	require.NoError(t, err)
	s.Advance(4)
	err = s.ExpectEnd()
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 10, se.Offset)
}
