package report

import (
	"errors"
	"fmt"
	"strings"
)

// AggregateError is returned instead of a report when validation runs in
// fail-fast mode and the report is not valid.
type AggregateError struct {
	Report *Report
}

func (e *AggregateError) Error() string {
	errs := e.Errors()
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Errors returns the error-severity findings as errors, in report order.
func (e *AggregateError) Errors() []error {
	if e.Report == nil {
		return nil
	}
	var errs []error
	for _, f := range e.Report.findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errs
}

// Unwrap exposes the individual findings to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors()
}

// ValidationErrors returns all findings carried by err if it is (or wraps)
// an AggregateError. Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors()
	}
	return nil
}

// FromError extracts the report carried by an AggregateError.
func FromError(err error) (*Report, bool) {
	var aggr *AggregateError
	if errors.As(err, &aggr) && aggr.Report != nil {
		return aggr.Report, true
	}
	return nil, false
}
