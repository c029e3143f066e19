package parser

import (
	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
)

// ParseAction parses the text of a .action document: goal, result and
// feedback blocks separated by two '---' lines
func ParseAction(pkg, name, text string) (*ast.Action, error) {
	if err := validateNames(pkg, name); err != nil {
		return nil, err
	}
	blocks, err := splitBlocks(text)
	if err != nil {
		return nil, err
	}
	if len(blocks) != 3 {
		return nil, &errors.BlockCountError{Kind: "action", Expected: 3, Actual: len(blocks)}
	}

	var msgs [3]*ast.Message
	for i, suffix := range []string{"_Goal", "_Result", "_Feedback"} {
		msgs[i], err = parseBody(pkg, name+suffix, blocks[i])
		if err != nil {
			return nil, err
		}
	}
	return &ast.Action{
		Package:  pkg,
		Name:     name,
		Goal:     *msgs[0],
		Result:   *msgs[1],
		Feedback: *msgs[2],
	}, nil
}
