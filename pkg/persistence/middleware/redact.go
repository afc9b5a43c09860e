package middleware

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/tabula/pkg/ports"
	"github.com/aretw0/tabula/pkg/report"
)

// Mask replaces redacted values in stored reports.
const Mask = "***"

type redactMiddleware struct {
	next     ports.ReportStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the offending values of
// findings whose column matches one of the patterns, before the report
// reaches the underlying store. Occurrences of the value in the finding
// message are masked too. The caller's report is left untouched.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, 0, len(patternStrings))
	for _, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("redact pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}
	return func(next ports.ReportStore) ports.ReportStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, runID string, rep *report.Report) error {
	if rep == nil || len(m.patterns) == 0 {
		return m.next.Save(ctx, runID, rep)
	}

	// Findings() returns a copy, so masking never leaks into the caller's report.
	findings := rep.Findings()
	for i, f := range findings {
		if f.Column == "" || !m.matches(f.Column) {
			continue
		}
		findings[i] = redactFinding(f)
	}

	masked := report.New(rep.Schema(), rep.Rows(), findings).WithRunID(rep.RunID())
	return m.next.Save(ctx, runID, masked)
}

func (m *redactMiddleware) Load(ctx context.Context, runID string) (*report.Report, error) {
	return m.next.Load(ctx, runID)
}

func (m *redactMiddleware) Delete(ctx context.Context, runID string) error {
	return m.next.Delete(ctx, runID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) matches(column string) bool {
	for _, p := range m.patterns {
		if p.MatchString(column) {
			return true
		}
	}
	return false
}

func redactFinding(f report.Finding) report.Finding {
	if f.Value == nil {
		return f
	}
	if s := fmt.Sprint(f.Value); s != "" {
		f.Message = strings.ReplaceAll(f.Message, s, Mask)
	}
	f.Value = Mask
	return f
}
