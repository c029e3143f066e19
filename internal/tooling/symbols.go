package tooling

import (
	"regexp"
	"strings"
	"sync"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/parser"
)

// SymbolIndex maintains a searchable index of all symbols across documents
type SymbolIndex struct {
	// symbols maps symbol name to all definitions
	symbols map[string][]*IndexedSymbol
	mutex   sync.RWMutex
}

// IndexedSymbol represents a symbol with its location
type IndexedSymbol struct {
	URI   string
	Range Range
	*Symbol
}

// NewSymbolIndex creates a new symbol index
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[string][]*IndexedSymbol),
	}
}

// Index replaces the symbols recorded for a document
func (si *SymbolIndex) Index(uri string, symbols []*Symbol) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)

	for _, sym := range symbols {
		indexed := &IndexedSymbol{
			URI:    uri,
			Range:  sym.Range,
			Symbol: sym,
		}

		si.symbols[sym.Name] = append(si.symbols[sym.Name], indexed)
	}
}

// RemoveDocument removes all symbols from a document
func (si *SymbolIndex) RemoveDocument(uri string) {
	si.mutex.Lock()
	defer si.mutex.Unlock()

	si.removeDocumentLocked(uri)
}

func (si *SymbolIndex) removeDocumentLocked(uri string) {
	for name, syms := range si.symbols {
		filtered := make([]*IndexedSymbol, 0, len(syms))
		for _, sym := range syms {
			if sym.URI != uri {
				filtered = append(filtered, sym)
			}
		}
		if len(filtered) > 0 {
			si.symbols[name] = filtered
		} else {
			delete(si.symbols, name)
		}
	}
}

// FindDefinition finds the message symbol with the given name
func (si *SymbolIndex) FindDefinition(name string) *IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	for _, sym := range si.symbols[name] {
		if sym.Kind == SymbolKindMessage {
			return sym
		}
	}
	return nil
}

// MessageNames returns the names of all indexed messages
func (si *SymbolIndex) MessageNames() []string {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	var names []string
	for name, syms := range si.symbols {
		for _, sym := range syms {
			if sym.Kind == SymbolKindMessage {
				names = append(names, name)
				break
			}
		}
	}
	return names
}

// SearchSymbols searches for symbols matching a query across all documents
func (si *SymbolIndex) SearchSymbols(query string) []*IndexedSymbol {
	si.mutex.RLock()
	defer si.mutex.RUnlock()

	query = strings.ToLower(query)
	result := make([]*IndexedSymbol, 0)

	for name, syms := range si.symbols {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			result = append(result, syms...)
		}
	}

	return result
}

var separatorLine = regexp.MustCompile(`^---\r?$`)

// extractSymbols locates the messages, fields and constants of a parsed
// document in its source text
func extractSymbols(doc *Document) []*Symbol {
	if doc.Interface == nil {
		return nil
	}
	stripped, err := parser.StripComments(doc.Content)
	if err != nil {
		return nil
	}

	msgs := doc.Interface.Messages()
	kind := SymbolKindInterface
	if doc.Kind == ast.KindMessage {
		kind = SymbolKindMessage
	}
	symbols := []*Symbol{{
		Name:  doc.Name,
		Kind:  kind,
		Range: Range{End: Position{Character: len(doc.Name)}},
		Type:  doc.Interface.FullName(),
	}}

	block := 0
	for i, line := range strings.Split(stripped, "\n") {
		if separatorLine.MatchString(line) {
			block++
			continue
		}
		if block >= len(msgs) {
			break
		}
		name, col, ok := declaredName(line)
		if !ok {
			continue
		}
		msg := msgs[block]
		r := Range{
			Start: Position{Line: i, Character: col},
			End:   Position{Line: i, Character: col + len(name)},
		}

		if m, ok := msg.Member(name); ok {
			sym := &Symbol{Name: name, Kind: SymbolKindField, Range: r, Type: m.Type.String(), ContainerName: msg.Name}
			if m.Default != nil {
				sym.Detail = *m.Default
			}
			symbols = append(symbols, sym)
		} else if c, ok := msg.Constant(name); ok {
			symbols = append(symbols, &Symbol{
				Name:          name,
				Kind:          SymbolKindConstant,
				Range:         r,
				Type:          ast.ConstantToMember(c.Type).String(),
				ContainerName: msg.Name,
				Detail:        c.Value,
			})
		}
	}

	return symbols
}

// declaredName finds the second word of a declaration line, the field or
// constant name, and its byte column
func declaredName(line string) (string, int, bool) {
	i := skipBlank(line, 0)
	if i == len(line) {
		return "", 0, false
	}
	for i < len(line) && line[i] != ' ' && line[i] != '\t' {
		i++
	}
	start := skipBlank(line, i)
	end := start
	for end < len(line) && isWordByte(line[end]) {
		end++
	}
	if end == start {
		return "", 0, false
	}
	return line[start:end], start, true
}

func skipBlank(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// findSymbolAtPosition returns the symbol whose name covers pos
func findSymbolAtPosition(doc *Document, pos Position) *Symbol {
	for _, sym := range doc.Symbols {
		if (sym.Kind == SymbolKindField || sym.Kind == SymbolKindConstant) && positionInRange(pos, sym.Range) {
			return sym
		}
	}
	return nil
}

func positionInRange(pos Position, r Range) bool {
	if pos.Line != r.Start.Line {
		return false
	}
	return pos.Character >= r.Start.Character && pos.Character <= r.End.Character
}

// wordAt returns the type-or-identifier word around pos, including any
// package qualification
func wordAt(content string, pos Position) (string, Range, bool) {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", Range{}, false
	}
	line := lines[pos.Line]
	if pos.Character > len(line) {
		return "", Range{}, false
	}

	start := pos.Character
	for start > 0 && (isWordByte(line[start-1]) || line[start-1] == '/') {
		start--
	}
	end := pos.Character
	for end < len(line) && (isWordByte(line[end]) || line[end] == '/') {
		end++
	}
	if start == end {
		return "", Range{}, false
	}
	return line[start:end], Range{
		Start: Position{Line: pos.Line, Character: start},
		End:   Position{Line: pos.Line, Character: end},
	}, true
}

// typeName strips a package qualification from a type word
func typeName(word string) string {
	if i := strings.LastIndexByte(word, '/'); i >= 0 {
		return word[i+1:]
	}
	return word
}

func isWordByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
