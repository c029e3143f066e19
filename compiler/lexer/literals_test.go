package lexer

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclgo/msgidl/compiler/errors"
)

func TestIntegerLiteral_Bases(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		rest  string
	}{
		{"101_010", 101010, ""},
		{"0b101_010", 0b101010, ""},
		{"+0b101_010", 0b101010, ""},
		{"-0b101_010", -0b101010, ""},
		{"0B11", 3, ""},
		{"0o12_345_670", 0o12345670, ""},
		{"-0o12_345_670", -0o12345670, ""},
		{"0O17", 15, ""},
		{"0x789_aBc", 0x789abc, ""},
		{"+0x789_aBc", 0x789abc, ""},
		{"-0x789_aBc", -0x789abc, ""},
		{"0XFF", 255, ""},
		{"123_456_789", 123456789, ""},
		{"-123_456_789", -123456789, ""},
		{"0", 0, ""},
		{"10 rest", 10, " rest"},
		{"1__2", 1, "__2"},
		{"0b2", 0, "b2"},
		{"0x", 0, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := IntegerLiteral(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Int.Int64())
			assert.Equal(t, tt.rest, m.Rest)
			assert.Equal(t, tt.input[:len(tt.input)-len(tt.rest)], m.Value)
		})
	}
}

// Removing separators and converting with the matching radix gives the
// same value as the literal production.
func TestIntegerLiteral_SeparatorsAreTransparent(t *testing.T) {
	tests := []struct {
		literal string
		digits  string
		base    int
	}{
		{"0b1_0_1_1", "1011", 2},
		{"-0o7_7_7", "-777", 8},
		{"0xdead_beef", "deadbeef", 16},
		{"+18_446_744_073_709_551_615", "+18446744073709551615", 10},
		{"-9_223_372_036_854_775_808", "-9223372036854775808", 10},
	}
	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			m, err := IntegerLiteral(tt.literal)
			require.NoError(t, err)
			want, ok := new(big.Int).SetString(tt.digits, tt.base)
			require.True(t, ok)
			assert.Zero(t, want.Cmp(m.Int))
		})
	}
}

func TestIntegerLiteral_Overflow(t *testing.T) {
	m, err := IntegerLiteral(MaxInt128.String())
	require.NoError(t, err)
	assert.Zero(t, MaxInt128.Cmp(m.Int))

	_, err = IntegerLiteral(MinInt128.String())
	require.NoError(t, err)

	tooBig := new(big.Int).Add(MaxInt128, big.NewInt(1)).String()
	_, err = IntegerLiteral(tooBig)
	var se *errors.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrNumberOverflow, se.Code)

	_, err = IntegerLiteral("0x" + strings.Repeat("f", 40))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrNumberOverflow, se.Code)
	assert.Equal(t, "hexadecimal literal", se.Production)
}

func TestIntegerLiteral_Rejects(t *testing.T) {
	for _, input := range []string{"", "abc", "-", "_1", "+x"} {
		t.Run(input, func(t *testing.T) {
			_, err := IntegerLiteral(input)
			var se *errors.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, errors.ErrInvalidNumber, se.Code)
			assert.Equal(t, "integer literal", se.Production)
		})
	}
}

func TestRadixBranches_RequirePrefix(t *testing.T) {
	_, err := BinLiteral("101")
	assert.Error(t, err)
	_, err = OctLiteral("0x1")
	assert.Error(t, err)
	_, err = HexLiteral("0o1")
	assert.Error(t, err)

	m, err := DecLiteral("0x1")
	require.NoError(t, err)
	assert.Equal(t, "0", m.Value)
}

func TestFloatLiteral(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"1.5", "1.5"},
		{"-0.25", "-0.25"},
		{"+3", "+3"},
		{"5.", "5."},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"6.02E+23", "6.02E+23"},
		{"1.5e-3 x", "1.5e-3"},
		{"2e", "2"},
		{"3.0f", "3.0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := FloatLiteral(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.value, m.Value)
			assert.Equal(t, tt.input[len(tt.value):], m.Rest)
		})
	}

	for _, input := range []string{"", ".", "-.", "e5", "abc"} {
		_, err := FloatLiteral(input)
		assert.Error(t, err, input)
	}
}

func TestBoolLiteral(t *testing.T) {
	m, err := BoolLiteral("true")
	require.NoError(t, err)
	assert.Equal(t, "true", m.Value)

	m, err = BoolLiteral("false ")
	require.NoError(t, err)
	assert.Equal(t, "false", m.Value)
	assert.Equal(t, " ", m.Rest)

	for _, input := range []string{"True", "1", "yes", ""} {
		_, err := BoolLiteral(input)
		var se *errors.SyntaxError
		require.ErrorAs(t, err, &se, input)
		assert.Equal(t, errors.ErrInvalidBool, se.Code)
	}
}

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		input string
		text  string
		rest  string
	}{
		{`"hello"`, "hello", ""},
		{`'single' tail`, "single", " tail"},
		{`"a \"quoted\" word"`, `a "quoted" word`, ""},
		{`'it\'s'`, "it's", ""},
		{`"tab\there\n"`, "tab\there\n", ""},
		{`"back\\slash"`, `back\slash`, ""},
		{`""`, "", ""},
		{`"has # and // inside"`, "has # and // inside", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, err := StringLiteral(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.text, m.Text)
			assert.Equal(t, tt.rest, m.Rest)
		})
	}
}

func TestStringLiteral_Errors(t *testing.T) {
	tests := []struct {
		input string
		code  string
	}{
		{`"open`, errors.ErrUnterminatedString},
		{`"ends with \`, errors.ErrUnterminatedString},
		{`"bad \q"`, errors.ErrInvalidEscape},
		{`bare`, errors.ErrExpectedValue},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := StringLiteral(tt.input)
			var se *errors.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
		})
	}
}

func TestQuote(t *testing.T) {
	for _, s := range []string{"plain", `with "quotes"`, "new\nline", `back\slash`, ""} {
		m, err := StringLiteral(Quote(s))
		require.NoError(t, err)
		assert.Equal(t, s, m.Text)
		assert.Empty(t, m.Rest)
	}
}

func BenchmarkIntegerLiteral(b *testing.B) {
	inputs := []string{"0b1010_1010", "0o755", "0xdead_beef", "-123_456_789", "18446744073709551615"}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			_, _ = IntegerLiteral(in)
		}
	}
}
