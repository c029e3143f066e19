package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rclgo/msgidl/compiler/errors"
)

// ErrorLevel represents the severity of an error message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the error message formatting
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

func levelColors(level ErrorLevel, noColor bool) (header, body *color.Color, symbol string) {
	switch level {
	case ErrorLevelWarning:
		header = color.New(color.FgYellow, color.Bold)
		body = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		header = color.New(color.FgCyan, color.Bold)
		body = color.New(color.FgCyan)
		symbol = "ℹ️"
	default:
		header = color.New(color.FgRed, color.Bold)
		body = color.New(color.FgRed)
		symbol = "❌"
	}
	if noColor {
		header.DisableColor()
		body.DisableColor()
	}
	return header, body, symbol
}

// FormatError creates a standardized error message with suggestions and help commands
//
// Example output:
//
//	❌ INTERFACE NOT FOUND
//	   Cannot find interface 'Pont' in demo_msgs.
//
//	   Did you mean: Point?
//
//	   → List interfaces: msgidl check
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	headerColor, bodyColor, symbol := levelColors(opts.Level, opts.NoColor)

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s\n", symbol, strings.ToUpper(opts.Context))
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted error message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatDiagnostic renders a parse failure with its source context:
//
//	error[E102]: expected type
//	  --> demo_msgs/msg/Point.msg:2:1
//	   |
//	 1 | float64 x
//	 2 | flot32 y
//	   | ^^^^^^
//	   = help: Did you mean 'float32'?
func FormatDiagnostic(ce errors.CompilerError, noColor bool) string {
	var b strings.Builder

	level := ErrorLevelError
	if ce.IsWarning() {
		level = ErrorLevelWarning
	} else if !ce.IsError() {
		level = ErrorLevelInfo
	}
	headerColor, _, _ := levelColors(level, noColor)
	blue := color.New(color.FgBlue, color.Bold)
	if noColor {
		blue.DisableColor()
	}

	headerColor.Fprintf(&b, "%s[%s]", ce.Severity, ce.Code)
	fmt.Fprintf(&b, ": %s\n", ce.Message)

	if loc := ce.Location.String(); loc != "" {
		blue.Fprint(&b, "  --> ")
		fmt.Fprintln(&b, loc)
	}

	lines := ce.Context.SourceLines
	hl := ce.Context.Highlight
	if len(lines) > 0 && ce.Location.Line > 0 {
		first := ce.Location.Line - hl.Line
		gutter := len(fmt.Sprint(first + len(lines) - 1))
		pad := strings.Repeat(" ", gutter)

		blue.Fprintf(&b, " %s |\n", pad)
		for i, line := range lines {
			blue.Fprintf(&b, " %*d | ", gutter, first+i)
			fmt.Fprintln(&b, line)
			if i == hl.Line {
				width := hl.End - hl.Start
				if width < 1 {
					width = 1
				}
				blue.Fprintf(&b, " %s | ", pad)
				headerColor.Fprintln(&b, strings.Repeat(" ", hl.Start)+strings.Repeat("^", width))
			}
		}
	}

	if s := ce.Suggestion; s != nil {
		blue.Fprint(&b, "   = ")
		fmt.Fprintf(&b, "help: %s\n", s.Description)
	}

	return b.String()
}

// WriteDiagnostics writes each diagnostic followed by a blank line
func WriteDiagnostics(w io.Writer, diags []errors.CompilerError, noColor bool) {
	for _, ce := range diags {
		fmt.Fprintln(w, FormatDiagnostic(ce, noColor))
	}
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// InterfaceNotFoundError reports a lookup miss with close names
func InterfaceNotFoundError(name, pkg string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "INTERFACE NOT FOUND",
		Problem:     fmt.Sprintf("Cannot find interface '%s' in %s.", name, pkg),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List interfaces: msgidl check",
		},
		NoColor: noColor,
	})
}

// CheckFailedError summarizes a package with failing files
func CheckFailedError(pkg string, failed, total int, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CHECK FAILED",
		Problem: fmt.Sprintf("%d of %d interface files in %s failed to parse.", failed, total, pkg),
		HelpCommands: []string{
			"Machine-readable report: msgidl check --format json",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat msgidl.yaml",
			"Create one: msgidl init",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
