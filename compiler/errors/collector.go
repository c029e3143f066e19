package errors

import (
	"fmt"
	"strings"
)

// MaxErrors is the default number of errors collected before further
// errors are dropped
const MaxErrors = 100

// Collector accumulates diagnostics from many documents. Each document
// still fails atomically; the collector only gathers the per-document
// failures of a batch.
type Collector struct {
	errors   []CompilerError
	warnings []CompilerError
	maxCount int
	dropped  int
}

// NewCollector creates a Collector with the default limit
func NewCollector() *Collector {
	return NewCollectorWithMax(MaxErrors)
}

// NewCollectorWithMax creates a Collector with a custom limit
func NewCollectorWithMax(maxCount int) *Collector {
	return &Collector{
		errors:   make([]CompilerError, 0),
		warnings: make([]CompilerError, 0),
		maxCount: maxCount,
	}
}

// Add converts err and records it. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.Record(ToCompilerError(err))
}

// Record adds an already converted diagnostic
func (c *Collector) Record(err CompilerError) {
	if err.IsWarning() || err.Severity == Info {
		c.warnings = append(c.warnings, err)
		return
	}
	if len(c.errors) >= c.maxCount {
		c.dropped++
		return
	}
	c.errors = append(c.errors, err)
}

// HasErrors returns true if there are any errors (not just warnings)
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// ErrorCount returns the number of errors, including dropped ones
func (c *Collector) ErrorCount() int {
	return len(c.errors) + c.dropped
}

// WarningCount returns the number of warnings
func (c *Collector) WarningCount() int {
	return len(c.warnings)
}

// Dropped returns how many errors exceeded the limit
func (c *Collector) Dropped() int {
	return c.dropped
}

// Errors returns the recorded errors
func (c *Collector) Errors() []CompilerError {
	return c.errors
}

// All returns errors followed by warnings
func (c *Collector) All() []CompilerError {
	all := make([]CompilerError, 0, len(c.errors)+len(c.warnings))
	all = append(all, c.errors...)
	all = append(all, c.warnings...)
	return all
}

// ByCode returns the recorded diagnostics with the given code
func (c *Collector) ByCode(code string) []CompilerError {
	var result []CompilerError
	for _, err := range c.All() {
		if err.Code == code {
			result = append(result, err)
		}
	}
	return result
}

// Error implements the error interface
func (c *Collector) Error() string {
	if c.ErrorCount() == 0 && len(c.warnings) == 0 {
		return "no errors"
	}
	if c.ErrorCount() == 1 && len(c.warnings) == 0 {
		return c.errors[0].Error()
	}
	return fmt.Sprintf("%d error(s) and %d warning(s)", c.ErrorCount(), len(c.warnings))
}

// Summary returns a human-readable summary
func (c *Collector) Summary() string {
	if c.ErrorCount() == 0 && len(c.warnings) == 0 {
		return "No errors or warnings"
	}

	var parts []string
	if n := c.ErrorCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", n))
	}
	if len(c.warnings) > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", len(c.warnings)))
	}
	return "Found " + strings.Join(parts, " and ")
}
