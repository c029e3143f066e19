package metadata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/parser"
)

const kitchenSink = `# every type family
int8 MIN=-128
string GREETING="hello"
uint8[2] PAIR=[1, 2]
bool flag true
float64[3] position [0.0, 1.5, -2.0]
string<=8 label "abc"
wstring note
geometry_msgs/Point origin
geometry_msgs/msg/Pose pose
Header header
int32[] samples
Header[<=4] history
string<=5[<=3] tags
`

func parseMessage(t *testing.T) *ast.Message {
	t.Helper()
	msg, err := parser.ParseMessage("demo_msgs", "KitchenSink", kitchenSink)
	require.NoError(t, err)
	return msg
}

func TestFromInterface_Message(t *testing.T) {
	meta := FromInterface(parseMessage(t), "msg/KitchenSink.msg")

	assert.Equal(t, "msg", meta.Kind)
	assert.Equal(t, "demo_msgs", meta.Package)
	assert.Equal(t, "KitchenSink", meta.Name)
	assert.Equal(t, "demo_msgs/msg/KitchenSink", meta.FullName)
	assert.Equal(t, "msg/KitchenSink.msg", meta.FilePath)
	require.Len(t, meta.Messages, 1)
	assert.Empty(t, meta.Messages[0].Role)
	assert.Equal(t, 10, meta.FieldCount())
	assert.Equal(t, 3, meta.ConstantCount())
}

func TestFromType(t *testing.T) {
	tests := []struct {
		name string
		typ  ast.MemberType
		want TypeMetadata
	}{
		{
			name: "basic",
			typ:  ast.Float32,
			want: TypeMetadata{Kind: TypeBasic, Spelling: "float32", Name: "float32"},
		},
		{
			name: "named",
			typ:  ast.NamedType{Name: "Header"},
			want: TypeMetadata{Kind: TypeNamed, Spelling: "Header", Name: "Header"},
		},
		{
			name: "namespaced",
			typ:  ast.NamespacedType{Package: "std_msgs", Name: "Header"},
			want: TypeMetadata{Kind: TypeNamespaced, Spelling: "std_msgs/Header", Name: "Header", Package: "std_msgs"},
		},
		{
			name: "bounded wide string",
			typ:  ast.GenericString{Wide: true, MaxSize: 10},
			want: TypeMetadata{Kind: TypeString, Spelling: "wstring<=10", Wide: true, MaxSize: 10},
		},
		{
			name: "bounded sequence",
			typ:  ast.BoundedSequence{ValueType: ast.Int16, MaxSize: 3},
			want: TypeMetadata{
				Kind:     TypeBoundedSequence,
				Spelling: "int16[<=3]",
				MaxSize:  3,
				Element:  &TypeMetadata{Kind: TypeBasic, Spelling: "int16", Name: "int16"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromType(tt.typ))
		})
	}
}

func TestRoundTrip_Message(t *testing.T) {
	msg := parseMessage(t)

	iface, err := ToInterface(FromInterface(msg, ""))
	require.NoError(t, err)

	assert.Equal(t, msg, iface)
}

func TestRoundTrip_ServiceAndAction(t *testing.T) {
	srv, err := parser.ParseService("demo_srvs", "AddTwoInts", "int64 a\nint64 b\n---\nint64 sum\n")
	require.NoError(t, err)
	action, err := parser.ParseAction("demo_actions", "Fibonacci", "int32 order\n---\nint32[] sequence\n---\nint32[] partial_sequence\n")
	require.NoError(t, err)

	for _, iface := range []ast.Interface{srv, action} {
		meta := FromInterface(iface, "")
		back, err := ToInterface(meta)
		require.NoError(t, err)
		assert.Equal(t, iface, back)
	}

	meta := FromInterface(action, "")
	assert.Equal(t, "Fibonacci", meta.Name)
	assert.Equal(t, []string{"goal", "result", "feedback"},
		[]string{meta.Messages[0].Role, meta.Messages[1].Role, meta.Messages[2].Role})
	assert.Equal(t, "Fibonacci_Feedback", meta.Messages[2].Name)
}

func TestRoundTrip_JSONAndYAML(t *testing.T) {
	msg := parseMessage(t)
	doc := Extract(FromInterface(msg, ""))

	jsonData, err := Serialize(doc)
	require.NoError(t, err)
	fromJSON, err := Deserialize(jsonData)
	require.NoError(t, err)

	yamlData, err := SerializeYAML(doc)
	require.NoError(t, err)
	fromYAML, err := DeserializeYAML(yamlData)
	require.NoError(t, err)

	for _, decoded := range []*Metadata{fromJSON, fromYAML} {
		require.Len(t, decoded.Interfaces, 1)
		assert.Equal(t, doc.SourceHash, decoded.SourceHash)
		iface, err := ToInterface(decoded.Interfaces[0])
		require.NoError(t, err)
		assert.Equal(t, msg, iface)
	}
}

func TestExtract_SortedAndDeterministic(t *testing.T) {
	a := InterfaceMetadata{Kind: "msg", Package: "p", Name: "B", FullName: "p/msg/B", Messages: []MessageMetadata{}}
	b := InterfaceMetadata{Kind: "msg", Package: "p", Name: "A", FullName: "p/msg/A", Messages: []MessageMetadata{}}

	first := Extract(a, b)
	second := Extract(b, a)

	assert.Equal(t, SchemaVersion, first.Version)
	assert.Equal(t, "p/msg/A", first.Interfaces[0].FullName)
	assert.Equal(t, first.SourceHash, second.SourceHash)
	assert.Len(t, first.SourceHash, 64)

	d1, err := Serialize(first)
	require.NoError(t, err)
	d2, err := Serialize(second)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestToInterface_Invalid(t *testing.T) {
	tests := []struct {
		name string
		meta InterfaceMetadata
	}{
		{"unknown kind", InterfaceMetadata{Kind: "idl"}},
		{"wrong block count", InterfaceMetadata{Kind: "srv", Messages: []MessageMetadata{{Name: "X"}}}},
		{"unknown basic", InterfaceMetadata{Kind: "msg", Messages: []MessageMetadata{{
			Name:   "X",
			Fields: []FieldMetadata{{Name: "a", Type: TypeMetadata{Kind: TypeBasic, Name: "int128"}}},
		}}}},
		{"array without element", InterfaceMetadata{Kind: "msg", Messages: []MessageMetadata{{
			Name:   "X",
			Fields: []FieldMetadata{{Name: "a", Type: TypeMetadata{Kind: TypeArray, Size: 2}}},
		}}}},
		{"sequence constant", InterfaceMetadata{Kind: "msg", Messages: []MessageMetadata{{
			Name: "X",
			Constants: []ConstantMetadata{{Name: "A", Value: "[]", Type: TypeMetadata{
				Kind:    TypeSequence,
				Element: &TypeMetadata{Kind: TypeBasic, Name: "int8"},
			}}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToInterface(tt.meta)
			assert.ErrorIs(t, err, ErrInvalidMetadata)
		})
	}
}

func TestFieldDefaultOmitted(t *testing.T) {
	msg, err := parser.ParseMessage("demo_msgs", "Plain", "int32 a\n")
	require.NoError(t, err)

	data, err := json.Marshal(FromMessage(msg))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "default")
}
