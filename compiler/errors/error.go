package errors

import (
	"encoding/json"
	"fmt"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Fatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Severity
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	switch str {
	case "info":
		*s = Info
	case "warning":
		*s = Warning
	case "error":
		*s = Error
	case "fatal":
		*s = Fatal
	default:
		*s = Error
	}
	return nil
}

// SourceLocation represents a location in an interface file.
// Line and Column are 1-based; zero means unknown.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Length int    `json:"length"`
}

// String renders the location as file:line:column, omitting unknown parts
func (l SourceLocation) String() string {
	s := l.File
	if l.Line > 0 {
		if s != "" {
			s += ":"
		}
		s += fmt.Sprintf("%d", l.Line)
		if l.Column > 0 {
			s += fmt.Sprintf(":%d", l.Column)
		}
	}
	return s
}

// ErrorContext contains surrounding source for a diagnostic
type ErrorContext struct {
	SourceLines []string  `json:"source_lines"` // up to 3 lines before, error line, up to 3 lines after
	Highlight   Highlight `json:"highlight"`
}

// Highlight specifies which part of the context to highlight
type Highlight struct {
	Line  int `json:"line"`  // index into SourceLines
	Start int `json:"start"` // 0-based column start
	End   int `json:"end"`   // 0-based column end
}

// FixSuggestion represents a suggested fix
type FixSuggestion struct {
	Description string  `json:"description"`
	OldCode     string  `json:"old_code"`
	NewCode     string  `json:"new_code"`
	Confidence  float64 `json:"confidence"` // 0.0 to 1.0
}

// CompilerError is the presentation form of any parse failure. The typed
// errors in this package convert into it through ToCompilerError.
type CompilerError struct {
	Phase      string         // "lexer", "parser", "range", "document", "io"
	Code       string         // "E001", "E100", etc.
	Message    string         // Human-readable message
	Location   SourceLocation // File, line, column
	Severity   Severity
	Context    ErrorContext
	Suggestion *FixSuggestion
}

// Error implements the error interface
func (e CompilerError) Error() string {
	if loc := e.Location.String(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewCompilerError creates a new CompilerError
func NewCompilerError(phase, code, message string, location SourceLocation, severity Severity) CompilerError {
	return CompilerError{
		Phase:    phase,
		Code:     code,
		Message:  message,
		Location: location,
		Severity: severity,
	}
}

// WithContext adds context to the error
func (e CompilerError) WithContext(ctx ErrorContext) CompilerError {
	e.Context = ctx
	return e
}

// WithSuggestion adds a fix suggestion to the error
func (e CompilerError) WithSuggestion(suggestion FixSuggestion) CompilerError {
	e.Suggestion = &suggestion
	return e
}

// MarshalJSON implements json.Marshaler
func (e CompilerError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Phase      string         `json:"phase"`
		Code       string         `json:"code"`
		Message    string         `json:"message"`
		Severity   Severity       `json:"severity"`
		Location   SourceLocation `json:"location"`
		Context    ErrorContext   `json:"context"`
		Suggestion *FixSuggestion `json:"suggestion"`
	}{
		Phase:      e.Phase,
		Code:       e.Code,
		Message:    e.Message,
		Severity:   e.Severity,
		Location:   e.Location,
		Context:    e.Context,
		Suggestion: e.Suggestion,
	})
}

// IsError returns true if the error is at Error or Fatal severity
func (e CompilerError) IsError() bool {
	return e.Severity == Error || e.Severity == Fatal
}

// IsWarning returns true if the error is at Warning severity
func (e CompilerError) IsWarning() bool {
	return e.Severity == Warning
}

// IsFatal returns true if the error is at Fatal severity
func (e CompilerError) IsFatal() bool {
	return e.Severity == Fatal
}
