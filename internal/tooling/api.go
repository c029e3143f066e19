// Package tooling provides a programmatic API for IDE integration via LSP.
// It keeps open documents parsed and answers diagnostics, hover,
// completion, definition and symbol queries from them. All methods are
// safe for concurrent use.
package tooling

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"go.lsp.dev/uri"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/lexer"
	"github.com/rclgo/msgidl/compiler/parser"
	"github.com/rclgo/msgidl/internal/workspace"
)

// API provides thread-safe access to the parser for IDE integration
type API struct {
	documents map[string]*Document
	docsMutex sync.RWMutex

	symbolIndex *SymbolIndex

	config *Config
}

// Config holds configuration for the tooling API
type Config struct {
	// DefaultPackage is used when a document's package cannot be derived
	// from its location
	DefaultPackage string
}

// Document is an open interface file and the result of parsing it
type Document struct {
	URI     string
	Content string
	Version int

	Kind    ast.Kind
	Package string
	Name    string

	// Interface is nil when parsing failed
	Interface ast.Interface

	// Err is the parse failure, if any
	Err error

	Symbols []*Symbol
}

// Position represents a position in a document (zero-based for LSP compatibility)
type Position struct {
	Line      int // Zero-based line number
	Character int // Zero-based character offset
}

// Range represents a range in a document
type Range struct {
	Start Position
	End   Position
}

// Location represents a source location with URI and range
type Location struct {
	URI   string
	Range Range
}

// Symbol represents a named entity in a document
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range Range

	// Type is the declared type of a field or constant
	Type string

	// ContainerName is the message a field or constant belongs to
	ContainerName string

	// Detail holds the default or constant value
	Detail string
}

// SymbolKind categorizes symbols for IDE display
type SymbolKind int

const (
	// SymbolKindMessage is a message usable as a field type
	SymbolKindMessage SymbolKind = iota
	// SymbolKindInterface is a service or action
	SymbolKindInterface
	// SymbolKindField is a message member
	SymbolKindField
	// SymbolKindConstant is a message constant
	SymbolKindConstant
)

// Hover represents hover information for a symbol
type Hover struct {
	// Contents is the hover text (markdown formatted)
	Contents string

	// Range is the range of the hovered word
	Range Range
}

// CompletionItem represents a completion suggestion
type CompletionItem struct {
	Label         string
	Kind          CompletionKind
	Detail        string
	Documentation string
	SortText      string
}

// CompletionKind categorizes completion items
type CompletionKind int

const (
	// CompletionKindKeyword represents a built-in type keyword
	CompletionKindKeyword CompletionKind = iota
	// CompletionKindType represents a message type from an open document
	CompletionKindType
)

// Diagnostic represents a parse error
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Code     string
	Message  string
	Source   string
}

// DiagnosticSeverity indicates the severity of a diagnostic
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError represents an error diagnostic
	DiagnosticSeverityError DiagnosticSeverity = iota
	// DiagnosticSeverityWarning represents a warning diagnostic
	DiagnosticSeverityWarning
	// DiagnosticSeverityInfo represents an informational diagnostic
	DiagnosticSeverityInfo
	// DiagnosticSeverityHint represents a hint diagnostic
	DiagnosticSeverityHint
)

// NewAPI creates a new tooling API instance
func NewAPI() *API {
	return NewAPIWithConfig(&Config{DefaultPackage: "msgidl"})
}

// NewAPIWithConfig creates a new tooling API with custom configuration
func NewAPIWithConfig(config *Config) *API {
	return &API{
		documents:   make(map[string]*Document),
		symbolIndex: NewSymbolIndex(),
		config:      config,
	}
}

// ParseFile parses a document and caches the result
func (a *API) ParseFile(docURI, content string) (*Document, error) {
	return a.UpdateDocument(docURI, content, 1)
}

// UpdateDocument replaces the content of a document and reparses it.
// Unchanged content only bumps the version.
func (a *API) UpdateDocument(docURI, content string, version int) (*Document, error) {
	a.docsMutex.RLock()
	oldDoc, exists := a.documents[docURI]
	a.docsMutex.RUnlock()
	if exists && oldDoc.Content == content {
		a.docsMutex.Lock()
		oldDoc.Version = version
		a.docsMutex.Unlock()
		return oldDoc, nil
	}

	doc, err := a.parseDocument(docURI, content)
	if err != nil {
		return nil, err
	}
	doc.Version = version

	a.docsMutex.Lock()
	a.documents[docURI] = doc
	a.docsMutex.Unlock()

	a.symbolIndex.Index(docURI, doc.Symbols)
	return doc, nil
}

// parseDocument parses content without touching shared state
func (a *API) parseDocument(docURI, content string) (*Document, error) {
	path := filenameOf(docURI)
	kind, ok := parser.KindOf(path)
	if !ok {
		return nil, fmt.Errorf("not an interface file: %s", docURI)
	}

	doc := &Document{
		URI:     docURI,
		Content: content,
		Version: 1,
		Kind:    kind,
		Package: a.packageOf(path),
		Name:    parser.NameOf(path),
	}

	iface, err := parser.Parse(kind, doc.Package, doc.Name, content)
	if err != nil {
		doc.Err = errors.WithFile(err, path)
		return doc, nil
	}
	doc.Interface = iface
	doc.Symbols = extractSymbols(doc)
	return doc, nil
}

// packageOf derives the package of a file laid out as <pkg>/<msg|srv|action>/<file>
func (a *API) packageOf(path string) string {
	dir := filepath.Dir(path)
	for _, sub := range workspace.InterfaceDirs {
		if filepath.Base(dir) == sub {
			if name := workspace.PackageName(filepath.Dir(dir)); lexer.IsPackageName(name) {
				return name
			}
		}
	}
	return a.config.DefaultPackage
}

// GetDocument retrieves a cached document
func (a *API) GetDocument(docURI string) (*Document, bool) {
	a.docsMutex.RLock()
	defer a.docsMutex.RUnlock()

	doc, exists := a.documents[docURI]
	return doc, exists
}

// CloseDocument removes a document from the cache
func (a *API) CloseDocument(docURI string) {
	a.docsMutex.Lock()
	delete(a.documents, docURI)
	a.docsMutex.Unlock()

	a.symbolIndex.RemoveDocument(docURI)
}

// GetDiagnostics returns diagnostics for a document. A document either
// parses cleanly or carries exactly one error.
func (a *API) GetDiagnostics(docURI string) []Diagnostic {
	doc, exists := a.GetDocument(docURI)
	if !exists {
		return nil
	}
	if doc.Err == nil {
		return []Diagnostic{}
	}

	ce := errors.ToCompilerError(doc.Err)
	return []Diagnostic{{
		Range:    diagnosticRange(ce.Location),
		Severity: diagnosticSeverity(ce.Severity),
		Code:     ce.Code,
		Message:  ce.Message,
		Source:   "msgidl",
	}}
}

// GetDefinition returns the location of the message named at a position.
// Returns (nil, nil) if no open document defines it.
func (a *API) GetDefinition(docURI string, pos Position) (*Location, error) {
	doc, exists := a.GetDocument(docURI)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", docURI)
	}

	word, _, ok := wordAt(doc.Content, pos)
	if !ok {
		return nil, nil //nolint:nilnil // nil location is valid when no word at position
	}
	def := a.symbolIndex.FindDefinition(typeName(word))
	if def == nil {
		return nil, nil //nolint:nilnil // nil location is valid for unknown types
	}
	return &Location{URI: def.URI, Range: def.Range}, nil
}

// GetDocumentSymbols returns all symbols in a document
func (a *API) GetDocumentSymbols(docURI string) ([]*Symbol, error) {
	doc, exists := a.GetDocument(docURI)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", docURI)
	}

	return doc.Symbols, nil
}

// GetWorkspaceSymbols searches symbols across all open documents
func (a *API) GetWorkspaceSymbols(query string) []*IndexedSymbol {
	return a.symbolIndex.SearchSymbols(query)
}

// filenameOf converts a file URI to a path; other strings pass through
func filenameOf(docURI string) string {
	if strings.HasPrefix(docURI, uri.FileScheme+"://") {
		return uri.URI(docURI).Filename()
	}
	return docURI
}

func diagnosticRange(loc errors.SourceLocation) Range {
	line := max(loc.Line-1, 0)
	start := max(loc.Column-1, 0)
	return Range{
		Start: Position{Line: line, Character: start},
		End:   Position{Line: line, Character: start + max(loc.Length, 1)},
	}
}

func diagnosticSeverity(s errors.Severity) DiagnosticSeverity {
	switch s {
	case errors.Warning:
		return DiagnosticSeverityWarning
	case errors.Info:
		return DiagnosticSeverityInfo
	default:
		return DiagnosticSeverityError
	}
}
