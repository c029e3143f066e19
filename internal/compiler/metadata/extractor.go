package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/rclgo/msgidl/compiler/ast"
)

var roles = map[ast.Kind][]string{
	ast.KindService: {"request", "response"},
	ast.KindAction:  {"goal", "result", "feedback"},
}

// Extract builds a Metadata document from already extracted interfaces.
// Interfaces are ordered by full name so the output is deterministic.
func Extract(ifaces ...InterfaceMetadata) *Metadata {
	sorted := make([]InterfaceMetadata, len(ifaces))
	copy(sorted, ifaces)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FullName < sorted[j].FullName
	})

	return &Metadata{
		Version:    SchemaVersion,
		SourceHash: computeSourceHash(sorted),
		Interfaces: sorted,
	}
}

// FromInterface converts a parsed document. path is recorded as the
// source file and may be empty.
func FromInterface(iface ast.Interface, path string) InterfaceMetadata {
	msgs := iface.Messages()
	meta := InterfaceMetadata{
		Kind:     string(iface.Kind()),
		Package:  msgs[0].Package,
		Name:     interfaceName(iface),
		FullName: iface.FullName(),
		FilePath: path,
		Messages: make([]MessageMetadata, 0, len(msgs)),
	}

	blockRoles := roles[iface.Kind()]
	for i, msg := range msgs {
		m := FromMessage(msg)
		if i < len(blockRoles) {
			m.Role = blockRoles[i]
		}
		meta.Messages = append(meta.Messages, m)
	}
	return meta
}

// FromMessage converts a single message
func FromMessage(msg *ast.Message) MessageMetadata {
	m := MessageMetadata{
		Name:      msg.Name,
		Fields:    make([]FieldMetadata, 0, len(msg.Members)),
		Constants: make([]ConstantMetadata, 0, len(msg.Constants)),
	}
	for _, f := range msg.Members {
		field := FieldMetadata{Name: f.Name, Type: FromType(f.Type)}
		if f.Default != nil {
			d := *f.Default
			field.Default = &d
		}
		m.Fields = append(m.Fields, field)
	}
	for _, c := range msg.Constants {
		m.Constants = append(m.Constants, ConstantMetadata{
			Name:  c.Name,
			Type:  FromType(ast.ConstantToMember(c.Type)),
			Value: c.Value,
		})
	}
	return m
}

// FromType describes a member type structurally
func FromType(t ast.MemberType) TypeMetadata {
	switch v := t.(type) {
	case ast.Array:
		elem := fromNestable(v.ValueType)
		return TypeMetadata{Kind: TypeArray, Spelling: v.String(), Size: v.Size, Element: &elem}
	case ast.Sequence:
		elem := fromNestable(v.ValueType)
		return TypeMetadata{Kind: TypeSequence, Spelling: v.String(), Element: &elem}
	case ast.BoundedSequence:
		elem := fromNestable(v.ValueType)
		return TypeMetadata{Kind: TypeBoundedSequence, Spelling: v.String(), MaxSize: v.MaxSize, Element: &elem}
	}
	nested, err := ast.MemberToNestable(t)
	if err != nil {
		panic("metadata: " + err.Error())
	}
	return fromNestable(nested)
}

func fromNestable(t ast.NestableType) TypeMetadata {
	switch v := t.(type) {
	case ast.BasicType:
		return TypeMetadata{Kind: TypeBasic, Spelling: v.String(), Name: v.String()}
	case ast.NamedType:
		return TypeMetadata{Kind: TypeNamed, Spelling: v.String(), Name: v.Name}
	case ast.NamespacedType:
		return TypeMetadata{Kind: TypeNamespaced, Spelling: v.String(), Name: v.Name, Package: v.Package}
	case ast.GenericString:
		return TypeMetadata{Kind: TypeString, Spelling: v.String(), Wide: v.Wide, MaxSize: v.MaxSize}
	}
	panic("metadata: unknown nestable type " + t.String())
}

func interfaceName(iface ast.Interface) string {
	switch v := iface.(type) {
	case *ast.Service:
		return v.Name
	case *ast.Action:
		return v.Name
	}
	return iface.Messages()[0].Name
}

// computeSourceHash hashes the canonical JSON encoding of the interfaces
func computeSourceHash(ifaces []InterfaceMetadata) string {
	data, err := json.Marshal(ifaces)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
