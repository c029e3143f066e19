package parser

import (
	"regexp"
	"strings"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
)

var separator = regexp.MustCompile(`(?m)^---\r?$`)

// splitBlocks strips comments from text and splits it on separator lines
func splitBlocks(text string) ([]block, error) {
	stripped, err := StripComments(text)
	if err != nil {
		return nil, err
	}

	var blocks []block
	start := 0
	for _, loc := range separator.FindAllStringIndex(stripped, -1) {
		blocks = append(blocks, newBlock(stripped, start, loc[0]))
		start = loc[1]
	}
	return append(blocks, newBlock(stripped, start, len(stripped))), nil
}

func newBlock(text string, start, end int) block {
	return block{
		text: text[start:end],
		line: strings.Count(text[:start], "\n") + 1,
	}
}

// ParseService parses the text of a .srv document: a request block and a
// response block separated by a '---' line
func ParseService(pkg, name, text string) (*ast.Service, error) {
	if err := validateNames(pkg, name); err != nil {
		return nil, err
	}
	blocks, err := splitBlocks(text)
	if err != nil {
		return nil, err
	}
	if len(blocks) != 2 {
		return nil, &errors.BlockCountError{Kind: "service", Expected: 2, Actual: len(blocks)}
	}

	request, err := parseBody(pkg, name+"_Request", blocks[0])
	if err != nil {
		return nil, err
	}
	response, err := parseBody(pkg, name+"_Response", blocks[1])
	if err != nil {
		return nil, err
	}
	return &ast.Service{
		Package:  pkg,
		Name:     name,
		Request:  *request,
		Response: *response,
	}, nil
}
