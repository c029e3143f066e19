// Package metadata provides a serializable view of parsed interface
// documents. It is the hand-off format for generators and the payload the
// cache stores, so every type in the AST survives a round trip through it.
package metadata

// SchemaVersion is written into every Metadata document
const SchemaVersion = "1"

// Metadata is the exported form of a set of parsed interfaces
type Metadata struct {
	Version    string              `json:"version" yaml:"version"`
	SourceHash string              `json:"source_hash,omitempty" yaml:"source_hash,omitempty"` // Hash of all interfaces for change detection
	Interfaces []InterfaceMetadata `json:"interfaces" yaml:"interfaces"`
}

// InterfaceMetadata describes one .msg, .srv or .action document
type InterfaceMetadata struct {
	Kind     string            `json:"kind" yaml:"kind"` // msg, srv, action
	Package  string            `json:"package" yaml:"package"`
	Name     string            `json:"name" yaml:"name"`
	FullName string            `json:"full_name" yaml:"full_name"`
	FilePath string            `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	Messages []MessageMetadata `json:"messages" yaml:"messages"`
}

// MessageMetadata describes a message or one block of a service or action
type MessageMetadata struct {
	Name      string             `json:"name" yaml:"name"`
	Role      string             `json:"role,omitempty" yaml:"role,omitempty"` // request, response, goal, result, feedback
	Fields    []FieldMetadata    `json:"fields" yaml:"fields"`
	Constants []ConstantMetadata `json:"constants" yaml:"constants"`
}

// FieldMetadata describes a message member
type FieldMetadata struct {
	Name    string       `json:"name" yaml:"name"`
	Type    TypeMetadata `json:"type" yaml:"type"`
	Default *string      `json:"default,omitempty" yaml:"default,omitempty"`
}

// ConstantMetadata describes a message constant
type ConstantMetadata struct {
	Name  string       `json:"name" yaml:"name"`
	Type  TypeMetadata `json:"type" yaml:"type"`
	Value string       `json:"value" yaml:"value"`
}

// Type kinds
const (
	TypeBasic           = "basic"
	TypeNamed           = "named"
	TypeNamespaced      = "namespaced"
	TypeString          = "string"
	TypeArray           = "array"
	TypeSequence        = "sequence"
	TypeBoundedSequence = "bounded_sequence"
)

// TypeMetadata is a structural description of a member or constant type.
// Spelling is the IDL text of the type and is informational only.
type TypeMetadata struct {
	Kind     string        `json:"kind" yaml:"kind"`
	Spelling string        `json:"spelling" yaml:"spelling"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`       // basic keyword or message name
	Package  string        `json:"package,omitempty" yaml:"package,omitempty"` // namespaced only
	Wide     bool          `json:"wide,omitempty" yaml:"wide,omitempty"`
	MaxSize  int           `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	Size     int           `json:"size,omitempty" yaml:"size,omitempty"`
	Element  *TypeMetadata `json:"element,omitempty" yaml:"element,omitempty"`
}

// FieldCount returns the total number of members across all messages
func (m *InterfaceMetadata) FieldCount() int {
	n := 0
	for _, msg := range m.Messages {
		n += len(msg.Fields)
	}
	return n
}

// ConstantCount returns the total number of constants across all messages
func (m *InterfaceMetadata) ConstantCount() int {
	n := 0
	for _, msg := range m.Messages {
		n += len(msg.Constants)
	}
	return n
}
