package parser

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rclgo/msgidl/compiler/ast"
	"github.com/rclgo/msgidl/compiler/errors"
)

// Parse parses text as a document of the given kind
func Parse(kind ast.Kind, pkg, name, text string) (ast.Interface, error) {
	var (
		iface ast.Interface
		err   error
	)
	switch kind {
	case ast.KindMessage:
		iface, err = ParseMessage(pkg, name, text)
	case ast.KindService:
		iface, err = ParseService(pkg, name, text)
	case ast.KindAction:
		iface, err = ParseAction(pkg, name, text)
	default:
		return nil, &errors.IOError{Code: errors.ErrUnknownExtension, Path: name + kind.Extension()}
	}
	if err != nil {
		return nil, err
	}
	return iface, nil
}

// KindOf returns the document kind for a file path's extension
func KindOf(path string) (ast.Kind, bool) {
	switch filepath.Ext(path) {
	case ".msg":
		return ast.KindMessage, true
	case ".srv":
		return ast.KindService, true
	case ".action":
		return ast.KindAction, true
	}
	return "", false
}

// NameOf returns the interface name of a file: its base name without
// extension
func NameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadSource reads a UTF-8 interface file
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &errors.IOError{Code: errors.ErrReadFailed, Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &errors.IOError{Code: errors.ErrInvalidUTF8, Path: path}
	}
	return string(data), nil
}

// ParseMessageFile reads and parses a .msg file of package pkg
func ParseMessageFile(pkg, path string) (*ast.Message, error) {
	text, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	msg, err := ParseMessage(pkg, NameOf(path), text)
	return msg, errors.WithFile(err, path)
}

// ParseServiceFile reads and parses a .srv file of package pkg
func ParseServiceFile(pkg, path string) (*ast.Service, error) {
	text, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	srv, err := ParseService(pkg, NameOf(path), text)
	return srv, errors.WithFile(err, path)
}

// ParseActionFile reads and parses a .action file of package pkg
func ParseActionFile(pkg, path string) (*ast.Action, error) {
	text, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	action, err := ParseAction(pkg, NameOf(path), text)
	return action, errors.WithFile(err, path)
}

// ParseFile parses an interface file, choosing the document kind from its
// extension
func ParseFile(pkg, path string) (ast.Interface, error) {
	kind, ok := KindOf(path)
	if !ok {
		return nil, &errors.IOError{Code: errors.ErrUnknownExtension, Path: path}
	}
	text, err := ReadSource(path)
	if err != nil {
		return nil, err
	}
	iface, err := Parse(kind, pkg, NameOf(path), text)
	if err != nil {
		return nil, errors.WithFile(err, path)
	}
	return iface, nil
}
