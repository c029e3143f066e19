package errors

import (
	stderrors "errors"
)

// ToCompilerError converts any error returned by the parser into a
// CompilerError diagnostic. Unknown errors become a fatal diagnostic with
// an empty code so callers never lose a failure.
func ToCompilerError(err error) CompilerError {
	if err == nil {
		return CompilerError{}
	}

	var ce CompilerError
	if stderrors.As(err, &ce) {
		return ce
	}

	var se *SyntaxError
	if stderrors.As(err, &se) {
		msg := se.Message
		if se.Production != "" {
			msg += " (expected " + se.Production + ")"
		}
		return NewCompilerError(GetPhaseForCode(se.Code), se.Code, msg, se.Location, Error)
	}

	var re *RangeError
	if stderrors.As(err, &re) {
		return NewCompilerError(GetPhaseForCode(re.Code), re.Code, re.Message, re.Location, Error)
	}

	var be *BlockCountError
	if stderrors.As(err, &be) {
		loc := be.Location
		msg := (&BlockCountError{Kind: be.Kind, Expected: be.Expected, Actual: be.Actual}).Error()
		return NewCompilerError("document", be.Code(), msg, loc, Error)
	}

	var ioe *IOError
	if stderrors.As(err, &ioe) {
		msg := GetErrorMessage(ioe.Code)
		if ioe.Err != nil {
			msg += ": " + ioe.Err.Error()
		}
		return NewCompilerError("io", ioe.Code, msg, SourceLocation{File: ioe.Path}, Fatal)
	}

	return NewCompilerError("unknown", "", err.Error(), SourceLocation{}, Fatal)
}

// ToCompilerErrors converts a batch of errors, skipping nils
func ToCompilerErrors(errs []error) []CompilerError {
	out := make([]CompilerError, 0, len(errs))
	for _, err := range errs {
		if err == nil {
			continue
		}
		out = append(out, ToCompilerError(err))
	}
	return out
}
