/*******************************************************************************
 * Copyright (c) 2024 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package selectcols projects a delimited table down to a chosen subset of its
// named columns.

package selectcols

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrEmptyTable  = Error("table has no header row")
	ErrShortRow    = Error("row has fewer columns than selected")
	ErrNonNumeric  = Error("non-numeric value in zero-filtered column")
	maxLineLength  = 64 * 1024 * 1024
	initialBufSize = 64 * 1024
)

// ParseSeparator converts a separator given on the command line (the literal
// character or an alias like "tab") in to the separator itself. Anything
// unrecognised is an errs.ConfigError.
func ParseSeparator(sep string) (string, error) {
	switch sep {
	case `\t`, "\t", "t", "tab":
		return "\t", nil
	case "s", "space", " ":
		return " ", nil
	case "c", "comma", ",":
		return ",", nil
	}

	return "", errs.Config("invalid separator %q", sep)
}

// ReadColumnNames reads one column name per line from r, trimming surrounding
// whitespace and skipping blank lines.
func ReadColumnNames(r io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}

		names = append(names, name)
	}

	return names, scanner.Err()
}

// ColumnSpec says which columns a Projector should keep.
type ColumnSpec struct {
	// Names of the columns to keep. Order is irrelevant: columns are output
	// in header order.
	Names []string

	// KeepFirst keeps the first column even if its name isn't in Names.
	KeepFirst bool

	// DropZeroRows drops data rows where every kept cell (ignoring a first
	// column kept due to KeepFirst) is numerically zero.
	DropZeroRows bool
}

// Projector restricts rows to a fixed set of column indexes.
type Projector struct {
	sep       string
	spec      ColumnSpec
	colnos    []int
	checkFrom int
	logger    log15.Logger
}

// NewProjector works out which indexes of header to keep for the given spec.
func NewProjector(header []string, sep string, spec ColumnSpec, logger log15.Logger) *Projector {
	wanted := make(map[string]bool, len(spec.Names))
	for _, name := range spec.Names {
		wanted[name] = true
	}

	var colnos []int

	for i, name := range header {
		if wanted[name] {
			colnos = append(colnos, i)
		}
	}

	p := &Projector{sep: sep, spec: spec, logger: logger}

	if spec.KeepFirst {
		if len(colnos) == 0 || colnos[0] != 0 {
			colnos = append([]int{0}, colnos...)
		}

		p.checkFrom = 1
	}

	p.colnos = colnos

	logger.Debug("selected columns", "indexes", colnos)

	return p
}

// Columns returns the indexes this Projector keeps, in output order.
func (p *Projector) Columns() []int {
	return p.colnos
}

// Project returns row restricted to our columns. It is an error for the row to
// be too short.
func (p *Projector) Project(row []string) ([]string, error) {
	out := make([]string, len(p.colnos))

	for i, c := range p.colnos {
		if c >= len(row) {
			return nil, ErrShortRow
		}

		out[i] = row[c]
	}

	return out, nil
}

// IsZeroRow returns true if every projected cell, except a kept first column,
// parses as the number zero. A row with no such cells is not considered zero.
// Cells that aren't numbers are an error.
func (p *Projector) IsZeroRow(projected []string) (bool, error) {
	cells := projected[p.checkFrom:]
	if len(cells) == 0 {
		return false, nil
	}

	for _, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return false, fmt.Errorf("%q: %w", cell, ErrNonNumeric)
		}

		if v != 0 {
			return false, nil
		}
	}

	return true, nil
}

// Select reads a table from in, with columns separated by sep, and writes it
// out with only the columns named in spec. The header row is always written.
// Data rows keep their order, except that zero rows are dropped if
// spec.DropZeroRows. Processing stops at the first malformed row.
func Select(in io.Reader, out io.Writer, sep string, spec ColumnSpec, logger log15.Logger) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, initialBufSize), maxLineLength)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return err
		}

		return ErrEmptyTable
	}

	header := strings.Split(scanner.Text(), sep)
	p := NewProjector(header, sep, spec, logger)
	w := bufio.NewWriter(out)

	if err := p.writeRow(w, header, 1, false); err != nil {
		return err
	}

	for lineNum := 2; scanner.Scan(); lineNum++ {
		if err := p.writeRow(w, strings.Split(scanner.Text(), sep), lineNum, spec.DropZeroRows); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}

	return w.Flush()
}

// writeRow projects row and writes it to w, unless filtering and it's a zero
// row.
func (p *Projector) writeRow(w *bufio.Writer, row []string, lineNum int, filter bool) error {
	projected, err := p.Project(row)
	if err != nil {
		return fmt.Errorf("line %d: %w", lineNum, err)
	}

	if filter {
		zero, err := p.IsZeroRow(projected)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		if zero {
			p.logger.Debug("dropping zero row", "line", lineNum)

			return nil
		}
	}

	_, err = w.WriteString(strings.Join(projected, p.sep) + "\n")

	return err
}
