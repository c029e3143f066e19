package errors

import (
	"os"
	"strings"
)

// EnrichError adds source context and suggestions to an error
func EnrichError(err CompilerError, sourceContent string) CompilerError {
	err = err.WithContext(extractSourceContext(err.Location, sourceContent))

	if suggestion := suggestFix(err); suggestion != nil {
		err = err.WithSuggestion(*suggestion)
	}

	return err
}

// extractSourceContext extracts 3 lines before, the error line, and 3 lines after
func extractSourceContext(location SourceLocation, sourceContent string) ErrorContext {
	lines := strings.Split(sourceContent, "\n")

	if location.Line < 1 || location.Line > len(lines) {
		return ErrorContext{}
	}

	errorLineIndex := location.Line - 1
	startLine := max(0, errorLineIndex-3)
	endLine := min(len(lines), errorLineIndex+4)

	contextLines := make([]string, 0, endLine-startLine)
	for i := startLine; i < endLine; i++ {
		contextLines = append(contextLines, strings.TrimRight(lines[i], "\r"))
	}

	start := max(0, location.Column-1)
	end := start + location.Length
	if location.Length == 0 {
		end = start + 1
	}

	return ErrorContext{
		SourceLines: contextLines,
		Highlight: Highlight{
			Line:  errorLineIndex - startLine,
			Start: start,
			End:   end,
		},
	}
}

// EnrichErrorFromFile reads the source file and enriches the error.
// If the file cannot be read the error is returned as-is.
func EnrichErrorFromFile(err CompilerError) CompilerError {
	if err.Location.File == "" {
		return err
	}
	content, readErr := os.ReadFile(err.Location.File)
	if readErr != nil {
		return err
	}
	return EnrichError(err, string(content))
}

// errorLine returns the highlighted source line, if any
func (e CompilerError) errorLine() (string, bool) {
	ctx := e.Context
	if len(ctx.SourceLines) == 0 || ctx.Highlight.Line < 0 || ctx.Highlight.Line >= len(ctx.SourceLines) {
		return "", false
	}
	return ctx.SourceLines[ctx.Highlight.Line], true
}
