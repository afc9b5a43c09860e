// Package csv reads delimited text into a frame.Table.
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/tabula/pkg/frame"
)

var plainNumber = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)

// Option configures a Read.
type Option func(*config)

type config struct {
	comma     rune
	nulls     map[string]bool
	inference bool
	trim      bool
}

// WithComma sets the field delimiter. Defaults to ','.
func WithComma(r rune) Option {
	return func(c *config) {
		c.comma = r
	}
}

// WithNullValues adds cell texts read as missing values.
// The empty cell is always missing.
func WithNullValues(values ...string) Option {
	return func(c *config) {
		for _, v := range values {
			c.nulls[v] = true
		}
	}
}

// WithTypeInference converts plain decimal cells into int64 or float64 and
// true/false cells into bool. Without it every present cell is a string.
// Spellings such as "NaN", "inf" or "0x1F", and digits with a leading zero
// like zip codes "01234", stay strings.
func WithTypeInference() Option {
	return func(c *config) {
		c.inference = true
	}
}

// WithTrimSpace strips surrounding whitespace from every cell.
func WithTrimSpace() Option {
	return func(c *config) {
		c.trim = true
	}
}

// Read parses CSV from r. The first record is the header.
func Read(r io.Reader, opts ...Option) (*frame.Frame, error) {
	cfg := config{comma: ',', nulls: map[string]bool{"": true}}
	for _, opt := range opts {
		opt(&cfg)
	}

	// FieldsPerRecord stays 0: every record must match the header width,
	// which the column slices below rely on.
	cr := stdcsv.NewReader(r)
	cr.Comma = cfg.comma

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: missing header row")
		}
		return nil, fmt.Errorf("csv: failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	cols := make([][]any, len(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		for i, cell := range rec {
			cols[i] = append(cols[i], cfg.value(cell))
		}
	}

	series := make([]frame.Series, len(header))
	for i, name := range header {
		series[i] = frame.Series{Name: name, Values: cols[i]}
	}
	f, err := frame.New(series...)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	return f, nil
}

// ReadFile parses the CSV file at path.
func ReadFile(path string, opts ...Option) (*frame.Frame, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer fh.Close()

	return Read(fh, opts...)
}

func (c *config) value(cell string) any {
	if c.trim {
		cell = strings.TrimSpace(cell)
	}
	if c.nulls[cell] {
		return nil
	}
	if !c.inference {
		return cell
	}
	if plainNumber.MatchString(cell) {
		if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsInf(f, 0) {
			return f
		}
		return cell
	}
	switch cell {
	case "true", "True", "TRUE":
		return true
	case "false", "False", "FALSE":
		return false
	}
	return cell
}
