package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels for the two document-shape failures. A *BlockCountError
// matches exactly one of them under errors.Is.
var (
	ErrInvalidServiceSpecification = stderrors.New("invalid service specification")
	ErrInvalidActionSpecification  = stderrors.New("invalid action specification")
)

// SyntaxError reports that a grammar production did not match.
// Offset is the byte offset into the input handed to the failing
// production; Location is filled in once the error reaches document level.
type SyntaxError struct {
	Code       string
	Production string
	Message    string
	Offset     int
	Location   SourceLocation
}

// NewSyntaxError creates a SyntaxError with the default message for code
func NewSyntaxError(code, production string, offset int) *SyntaxError {
	return &SyntaxError{
		Code:       code,
		Production: production,
		Message:    GetErrorMessage(code),
		Offset:     offset,
	}
}

// Syntaxf creates a SyntaxError with a formatted message
func Syntaxf(code, production string, offset int, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Code:       code,
		Production: production,
		Message:    fmt.Sprintf(format, args...),
		Offset:     offset,
	}
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("%s (expected %s)", e.Message, e.Production)
	if loc := e.Location.String(); loc != "" {
		return loc + ": " + msg
	}
	return fmt.Sprintf("%s at offset %d", msg, e.Offset)
}

// Shift moves the error's offset by n bytes. Parsers chaining productions
// over a shared line use it to report offsets relative to the line.
func (e *SyntaxError) Shift(n int) *SyntaxError {
	e.Offset += n
	return e
}

// RangeError reports a syntactically valid literal whose value does not fit
// the declared type. Value is the literal's canonical text.
type RangeError struct {
	Code     string
	Value    string
	Type     string
	Message  string
	Offset   int
	Location SourceLocation
}

// NewRangeError creates a RangeError for an integer value
func NewRangeError(value, typ string) *RangeError {
	return &RangeError{
		Code:    ErrIntegerOutOfRange,
		Value:   value,
		Type:    typ,
		Message: fmt.Sprintf("value %s is out of range for type %s", value, typ),
	}
}

// Rangef creates a RangeError with a custom code and message
func Rangef(code, value, typ, format string, args ...any) *RangeError {
	return &RangeError{
		Code:    code,
		Value:   value,
		Type:    typ,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *RangeError) Error() string {
	if loc := e.Location.String(); loc != "" {
		return loc + ": " + e.Message
	}
	return e.Message
}

// BlockCountError reports a service or action document whose '---'
// separators split it into the wrong number of blocks.
type BlockCountError struct {
	Kind     string // "service" or "action"
	Expected int
	Actual   int
	Location SourceLocation
}

func (e *BlockCountError) Error() string {
	msg := fmt.Sprintf("invalid %s specification: number of '---' separators nonconformant with %s definition: expected %d blocks, found %d",
		e.Kind, e.Kind, e.Expected, e.Actual)
	if e.Location.File != "" {
		return e.Location.File + ": " + msg
	}
	return msg
}

// Is matches the service or action sentinel
func (e *BlockCountError) Is(target error) bool {
	switch target {
	case ErrInvalidServiceSpecification:
		return e.Kind == "service"
	case ErrInvalidActionSpecification:
		return e.Kind == "action"
	}
	return false
}

// Code returns the diagnostic code for the block count failure
func (e *BlockCountError) Code() string {
	if e.Kind == "action" {
		return ErrInvalidActionSpec
	}
	return ErrInvalidServiceSpec
}

// IOError reports a failure at the file boundary: the file could not be
// read, is not UTF-8, or has an unknown extension.
type IOError struct {
	Code string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, GetErrorMessage(e.Code), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, GetErrorMessage(e.Code))
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// AtLine anchors a line-relative parse error at a 1-based document line.
// The column is derived from the error's offset. Other errors pass through.
func AtLine(err error, line int) error {
	var se *SyntaxError
	if stderrors.As(err, &se) {
		se.Location.Line = line
		se.Location.Column = se.Offset + 1
		return err
	}
	var re *RangeError
	if stderrors.As(err, &re) {
		re.Location.Line = line
		re.Location.Column = re.Offset + 1
	}
	return err
}

// WithFile tags a parse error with the path of the file it came from
func WithFile(err error, file string) error {
	var se *SyntaxError
	if stderrors.As(err, &se) {
		se.Location.File = file
		return err
	}
	var re *RangeError
	if stderrors.As(err, &re) {
		re.Location.File = file
		return err
	}
	var be *BlockCountError
	if stderrors.As(err, &be) {
		be.Location.File = file
	}
	return err
}
