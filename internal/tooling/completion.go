package tooling

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rclgo/msgidl/compiler/ast"
)

// GetCompletions returns completion items for a position in a document.
// Types are offered while the cursor is in the first word of a line;
// elsewhere there is nothing to complete.
func (a *API) GetCompletions(docURI string, pos Position) ([]CompletionItem, error) {
	doc, exists := a.GetDocument(docURI)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", docURI)
	}

	prefix, ok := typePrefix(doc.Content, pos)
	if !ok {
		return []CompletionItem{}, nil
	}

	items := make([]CompletionItem, 0)
	for _, kw := range typeKeywords() {
		if strings.HasPrefix(kw, prefix) {
			items = append(items, CompletionItem{
				Label:    kw,
				Kind:     CompletionKindKeyword,
				Detail:   "built-in type",
				SortText: "0" + kw,
			})
		}
	}

	names := a.symbolIndex.MessageNames()
	sort.Strings(names)
	for _, name := range names {
		if name == doc.Name || !strings.HasPrefix(name, prefix) {
			continue
		}
		def := a.symbolIndex.FindDefinition(name)
		if def == nil {
			continue
		}
		items = append(items, CompletionItem{
			Label:    name,
			Kind:     CompletionKindType,
			Detail:   def.Type,
			SortText: "1" + name,
		})
	}

	return items, nil
}

// typePrefix returns the partial first word of the line before pos
func typePrefix(content string, pos Position) (string, bool) {
	lines := strings.Split(content, "\n")
	if pos.Line < 0 || pos.Line >= len(lines) {
		return "", false
	}
	line := lines[pos.Line]
	if pos.Character > len(line) {
		pos.Character = len(line)
	}

	before := strings.TrimLeft(line[:pos.Character], " \t")
	if strings.ContainsAny(before, " \t#") {
		return "", false
	}
	return before, true
}

func typeKeywords() []string {
	kws := make([]string, 0, len(ast.BasicTypes())+2)
	for _, t := range ast.BasicTypes() {
		kws = append(kws, t.String())
	}
	return append(kws, "string", "wstring")
}
