package parser

import (
	stderrors "errors"
	"strings"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
	"github.com/rclgo/msgidl/compiler/lexer"
)

// ParseMessage parses the text of a .msg document. pkg must be a valid
// package name and name a valid message name.
func ParseMessage(pkg, name, text string) (*ast.Message, error) {
	if err := validateNames(pkg, name); err != nil {
		return nil, err
	}
	stripped, err := StripComments(text)
	if err != nil {
		return nil, err
	}
	return parseBody(pkg, name, block{text: stripped, line: 1})
}

func validateNames(pkg, name string) error {
	if !lexer.IsPackageName(pkg) {
		return errors.Syntaxf(errors.ErrInvalidPackageName, "package name", 0, "invalid package name %q", pkg)
	}
	if !lexer.IsMessageName(name) {
		return errors.Syntaxf(errors.ErrInvalidTypeName, "message name", 0, "invalid type name %q", name)
	}
	return nil
}

// block is a comment-free run of lines starting at a 1-based document line
type block struct {
	text string
	line int
}

// parseBody parses every non-blank line of b into a message
func parseBody(pkg, name string, b block) (*ast.Message, error) {
	msg := &ast.Message{
		Package:   pkg,
		Name:      name,
		Members:   []ast.Member{},
		Constants: []ast.Constant{},
	}
	seen := make(map[string]bool)

	for i, raw := range strings.Split(b.text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := b.line + i

		s := lexer.NewScanner(line)
		s.SkipBlanks()

		var declared string
		if isConstantLine(line) {
			c, err := constDef(s, nil, "constant type")
			if err != nil {
				return nil, lineError(err, lineNo, line)
			}
			msg.Constants = append(msg.Constants, c)
			declared = c.Name
		} else {
			m, err := fieldDef(s, nil, "type")
			if err != nil {
				return nil, lineError(err, lineNo, line)
			}
			msg.Members = append(msg.Members, m)
			declared = m.Name
		}

		if seen[declared] {
			err := errors.Syntaxf(errors.ErrDuplicateMember, "unique name", strings.Index(line, declared),
				"duplicate member %q in %s", declared, name)
			return nil, errors.AtLine(err, lineNo)
		}
		seen[declared] = true
	}
	return msg, nil
}

// lineError anchors err at lineNo and sets the highlight length from the
// offending token when one can be found
func lineError(err error, lineNo int, line string) error {
	err = errors.AtLine(err, lineNo)
	var se *errors.SyntaxError
	if stderrors.As(err, &se) && se.Offset < len(line) {
		se.Location.Length = tokenLength(line[se.Offset:])
	}
	return err
}

func tokenLength(s string) int {
	if n := strings.IndexAny(s, " \t"); n >= 0 {
		return max(n, 1)
	}
	return max(len(s), 1)
}
