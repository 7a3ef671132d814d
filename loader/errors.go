package loader

import "errors"

// ErrorCollector gathers failures that stop a file from being parsed at all
// (missing files, unbalanced preprocessor directives). Syntax diagnostics are
// kept per file in Result.Errors instead.
type ErrorCollector struct {
	Errors []error

	// Max errors before further ones are dropped
	// 0 => no limit
	MaxErrors int
}

// AddErrors records errs and returns false once the limit has been reached.
func (f *ErrorCollector) AddErrors(errs ...error) bool {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if f.MaxErrors > 0 && len(f.Errors) >= f.MaxErrors {
			return false
		}
		f.Errors = append(f.Errors, err)
	}
	return f.MaxErrors == 0 || len(f.Errors) < f.MaxErrors
}

// Err joins the collected errors, or returns nil when there are none.
func (f *ErrorCollector) Err() error {
	return errors.Join(f.Errors...)
}
