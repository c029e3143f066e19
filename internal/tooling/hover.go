package tooling

import (
	"fmt"
	"strings"

	"github.com/rclgo/msgidl/compiler/ast"
)

// GetHover returns hover information for a position in a document.
// Returns (nil, nil) if there is nothing to describe at the position.
func (a *API) GetHover(docURI string, pos Position) (*Hover, error) {
	doc, exists := a.GetDocument(docURI)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", docURI)
	}

	if symbol := findSymbolAtPosition(doc, pos); symbol != nil {
		return buildSymbolHover(symbol), nil
	}

	word, r, ok := wordAt(doc.Content, pos)
	if !ok {
		return nil, nil //nolint:nilnil // nil hover is valid when no word at position
	}
	if contents, ok := describeKeyword(word); ok {
		return &Hover{Contents: contents, Range: r}, nil
	}
	if def := a.symbolIndex.FindDefinition(typeName(word)); def != nil {
		return &Hover{Contents: codeBlock(def.Type), Range: r}, nil
	}
	return nil, nil //nolint:nilnil // unknown words have no hover
}

// buildSymbolHover creates hover information for a field or constant
func buildSymbolHover(symbol *Symbol) *Hover {
	var content strings.Builder

	decl := symbol.Type + " " + symbol.Name
	switch symbol.Kind {
	case SymbolKindConstant:
		decl += "=" + symbol.Detail
	case SymbolKindField:
		if symbol.Detail != "" {
			decl += " " + symbol.Detail
		}
	}
	content.WriteString(codeBlock(decl))

	if symbol.ContainerName != "" {
		content.WriteString(fmt.Sprintf("*In message:* `%s`\n\n", symbol.ContainerName))
	}

	switch symbol.Kind {
	case SymbolKindField:
		content.WriteString("**Field**\n")
		if symbol.Detail != "" {
			content.WriteString("\nHas a default value\n")
		}
	case SymbolKindConstant:
		content.WriteString("**Constant**\n")
	}

	return &Hover{
		Contents: content.String(),
		Range:    symbol.Range,
	}
}

// describeKeyword documents a built-in type keyword
func describeKeyword(word string) (string, bool) {
	switch word {
	case "string":
		return codeBlock("string") + "UTF-8 string, optionally bounded with `<=N`\n", true
	case "wstring":
		return codeBlock("wstring") + "Wide string, optionally bounded with `<=N`\n", true
	}

	t, ok := ast.LookupBasicType(word)
	if !ok {
		return "", false
	}

	var desc string
	switch {
	case t.IsInteger():
		lo, hi, _ := t.IntegerRange()
		desc = fmt.Sprintf("%d-bit integer in [%s, %s]", t.Bits(), lo.String(), hi.String())
	case t.IsFloat():
		desc = fmt.Sprintf("%d-bit IEEE 754 floating point", t.Bits())
	default:
		desc = "Boolean, `true` or `false`"
	}
	return codeBlock(word) + desc + "\n", true
}

func codeBlock(s string) string {
	return "```msgidl\n" + s + "\n```\n\n"
}
