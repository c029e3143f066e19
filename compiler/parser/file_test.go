package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFile_Dispatch(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		file string
		body string
		kind ast.Kind
		full string
	}{
		{"Point.msg", "float64 x\nfloat64 y\n", ast.KindMessage, "geo/msg/Point"},
		{"AddTwo.srv", "int64 a\nint64 b\n---\nint64 sum\n", ast.KindService, "geo/srv/AddTwo"},
		{"Move.action", "float64 dist\n---\nbool ok\n---\nfloat64 left\n", ast.KindAction, "geo/action/Move"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			iface, err := ParseFile("geo", writeFile(t, dir, tt.file, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, iface.Kind())
			assert.Equal(t, tt.full, iface.FullName())
		})
	}
}

func TestParseFile_UnknownExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Point.idl", "float64 x\n")
	iface, err := ParseFile("geo", path)
	assert.Nil(t, iface)

	var ioe *errors.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, errors.ErrUnknownExtension, ioe.Code)
	assert.Equal(t, path, ioe.Path)
}

func TestParseFile_TagsErrorsWithPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Broken.msg", "int8 a\nint8 b x\n")
	_, err := ParseFile("geo", path)

	var se *errors.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, path, se.Location.File)
	assert.Equal(t, 2, se.Location.Line)

	srvPath := writeFile(t, t.TempDir(), "Bad.srv", "int8 a\n")
	_, err = ParseServiceFile("geo", srvPath)
	var be *errors.BlockCountError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, srvPath, be.Location.File)
}

func TestParseMessageFile_IOErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseMessageFile("geo", filepath.Join(dir, "Missing.msg"))
	var ioe *errors.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, errors.ErrReadFailed, ioe.Code)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := writeFile(t, dir, "Latin.msg", "string s \"caf\xe9\"\n")
	_, err = ParseMessageFile("geo", bad)
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, errors.ErrInvalidUTF8, ioe.Code)
}

func TestFileWrappers(t *testing.T) {
	dir := t.TempDir()

	msg, err := ParseMessageFile("geo", writeFile(t, dir, "Vector3.msg", "float64 x\nfloat64 y\nfloat64 z\n"))
	require.NoError(t, err)
	assert.Equal(t, "Vector3", msg.Name)
	assert.Len(t, msg.Members, 3)

	srv, err := ParseServiceFile("geo", writeFile(t, dir, "Reset.srv", "---\n"))
	require.NoError(t, err)
	assert.Equal(t, "Reset_Response", srv.Response.Name)

	action, err := ParseActionFile("geo", writeFile(t, dir, "Dock.action", "---\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, "Dock_Feedback", action.Feedback.Name)

	_, err = ParseMessageFile("geo", writeFile(t, dir, "lower.msg", ""))
	var se *errors.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.ErrInvalidTypeName, se.Code)
}

func TestKindOfAndNameOf(t *testing.T) {
	kind, ok := KindOf("a/b/Foo.action")
	assert.True(t, ok)
	assert.Equal(t, ast.KindAction, kind)
	_, ok = KindOf("Foo.txt")
	assert.False(t, ok)
	assert.Equal(t, "Foo", NameOf("/x/y/Foo.srv"))
}

func BenchmarkParseMessage(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ParseMessage("demo_msgs", "PoseStamped", poseStamped)
	}
}
