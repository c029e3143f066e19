package errors

import "encoding/json"

// Report statuses
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Report is the machine-readable outcome of checking a set of documents,
// emitted by check --format json|yaml and /api/diagnostics
type Report struct {
	Status   string          `json:"status" yaml:"status"`
	Errors   []CompilerError `json:"errors" yaml:"errors"`
	Warnings []CompilerError `json:"warnings" yaml:"warnings"`
	Summary  ReportSummary   `json:"summary" yaml:"summary"`
}

// ReportSummary counts the diagnostics of a Report
type ReportSummary struct {
	ErrorCount   int `json:"error_count" yaml:"error_count"`
	WarningCount int `json:"warning_count" yaml:"warning_count"`
	TotalCount   int `json:"total_count" yaml:"total_count"`
}

// NewReport splits diags by severity. Info diagnostics only count
// towards the total.
func NewReport(diags []CompilerError) Report {
	r := Report{
		Errors:   []CompilerError{},
		Warnings: []CompilerError{},
	}
	for _, d := range diags {
		switch {
		case d.IsError():
			r.Errors = append(r.Errors, d)
		case d.IsWarning():
			r.Warnings = append(r.Warnings, d)
		}
	}

	r.Summary = ReportSummary{
		ErrorCount:   len(r.Errors),
		WarningCount: len(r.Warnings),
		TotalCount:   len(diags),
	}
	switch {
	case len(r.Errors) > 0:
		r.Status = StatusError
	case len(r.Warnings) > 0:
		r.Status = StatusWarning
	default:
		r.Status = StatusSuccess
	}
	return r
}

// FormatErrorsAsJSON renders the report of diags as indented JSON
func FormatErrorsAsJSON(diags []CompilerError) (string, error) {
	data, err := json.MarshalIndent(NewReport(diags), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
