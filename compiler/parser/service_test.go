package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclgo/msgidl/compiler/errors"
)

const setBool = `bool data # e.g. for hardware enabling / disabling
---
bool success   # indicate successful run of triggered service
string message # informational, e.g. for error messages
`

func TestParseService(t *testing.T) {
	srv, err := ParseService("std_srvs", "SetBool", setBool)
	require.NoError(t, err)

	assert.Equal(t, "std_srvs/srv/SetBool", srv.FullName())
	assert.Equal(t, "SetBool_Request", srv.Request.Name)
	assert.Equal(t, "SetBool_Response", srv.Response.Name)
	assert.Equal(t, "std_srvs", srv.Response.Package)
	require.Len(t, srv.Request.Members, 1)
	require.Len(t, srv.Response.Members, 2)
	assert.Equal(t, "message", srv.Response.Members[1].Name)
}

func TestParseService_EmptyRequest(t *testing.T) {
	srv, err := ParseService("std_srvs", "Trigger", "---\nbool success\nstring message\n")
	require.NoError(t, err)
	assert.Empty(t, srv.Request.Members)
	assert.Len(t, srv.Response.Members, 2)
}

func TestParseService_BlockCount(t *testing.T) {
	for _, text := range []string{
		"bool a\n",
		"bool a\n---\nbool b\n---\nbool c\n",
	} {
		_, err := ParseService("pkg", "Srv", text)
		assert.ErrorIs(t, err, errors.ErrInvalidServiceSpecification)
		assert.NotErrorIs(t, err, errors.ErrInvalidActionSpecification)
	}
}

func TestParseService_SeparatorRules(t *testing.T) {
	// "--- " and "----" are not separator lines
	_, err := ParseService("pkg", "Srv", "bool a\n--- \nbool b\n")
	assert.ErrorIs(t, err, errors.ErrInvalidServiceSpecification)

	// separators inside block comments do not count
	_, err = ParseService("pkg", "Srv", "bool a\n/*\n---\n*/\n---\nbool b\n")
	assert.NoError(t, err)

	_, err = ParseService("pkg", "Srv", "bool a\r\n---\r\nbool b\r\n")
	assert.NoError(t, err)
}

func TestParseService_LinesAreDocumentRelative(t *testing.T) {
	_, err := ParseService("pkg", "Srv", "bool a\n---\nbool b\nbool c 2\n")
	var se *errors.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 4, se.Location.Line)
	assert.Equal(t, 8, se.Location.Column)
}

func TestParseAction(t *testing.T) {
	text := strings.Join([]string{
		"int32 order",
		"---",
		"int32[] sequence",
		"---",
		"int32[] partial_sequence",
	}, "\n")

	action, err := ParseAction("action_tutorials", "Fibonacci", text)
	require.NoError(t, err)
	assert.Equal(t, "action_tutorials/action/Fibonacci", action.FullName())
	assert.Equal(t, "Fibonacci_Goal", action.Goal.Name)
	assert.Equal(t, "Fibonacci_Result", action.Result.Name)
	assert.Equal(t, "Fibonacci_Feedback", action.Feedback.Name)
	assert.Equal(t, "partial_sequence", action.Feedback.Members[0].Name)
}

func TestParseAction_BlockCount(t *testing.T) {
	tests := []struct {
		separators int
		ok         bool
	}{
		{0, false},
		{1, false},
		{2, true},
		{3, false},
	}
	for _, tt := range tests {
		parts := make([]string, tt.separators+1)
		for i := range parts {
			parts[i] = "bool flag"
		}
		text := strings.Join(parts, "\n---\n")

		action, err := ParseAction("pkg", "Act", text)
		if tt.ok {
			require.NoError(t, err)
			assert.NotNil(t, action)
			continue
		}
		assert.Nil(t, action)
		require.ErrorIs(t, err, errors.ErrInvalidActionSpecification)

		var be *errors.BlockCountError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, 3, be.Expected)
		assert.Equal(t, tt.separators+1, be.Actual)
		assert.Contains(t, err.Error(), "nonconformant")
	}
}
