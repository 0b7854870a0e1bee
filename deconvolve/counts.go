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

package deconvolve

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/wtsi-ssg/kvasir/internal/errs"
)

type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrBadCountLine = Error("counts line must have 3 tab separated columns")
	ErrBadCount     = Error("count must be a non-negative integer")
	ErrTooManyLines = Error("counts add up to more lines than can be tracked")
)

const countColumns = 3

// CountTable maps sample keys to destination names to the number of records
// to write to that destination.
type CountTable map[string]map[string]int64

// Add records count for the given sample and destination, replacing any
// existing count.
func (c CountTable) Add(sample, destination string, count int64) {
	dests, ok := c[sample]
	if !ok {
		dests = make(map[string]int64)
		c[sample] = dests
	}

	dests[destination] = count
}

// Total returns the sum of the counts for the given sample.
func (c CountTable) Total(sample string) int64 {
	var total int64

	for _, n := range c[sample] {
		total += n
	}

	return total
}

// CheckLines returns an errs.ConfigError if, for any sample, a count or the
// running total of counts would overflow when multiplied by linesPerRecord.
// Total can then be safely multiplied by linesPerRecord for every sample.
func (c CountTable) CheckLines(linesPerRecord int64) error {
	if linesPerRecord < 1 {
		linesPerRecord = 1
	}

	limit := math.MaxInt64 / linesPerRecord

	for sample, dests := range c {
		var total int64

		for dest, n := range dests {
			if n > limit-total {
				return errs.Config("sample %s destination %s: %w", sample, dest, ErrTooManyLines)
			}

			total += n
		}
	}

	return nil
}

// ParseCounts reads a tab separated counts table of lines like:
//
//	sample\tdestination\tcount
//
// Blank lines are skipped. Later lines replace earlier ones for the same
// sample and destination.
func ParseCounts(r io.Reader) (CountTable, error) {
	counts := make(CountTable)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := strings.Split(line, "\t")
		if len(cols) != countColumns {
			return nil, fmt.Errorf("line %d: %w", lineNum, ErrBadCountLine)
		}

		n, err := strconv.ParseInt(strings.TrimSpace(cols[2]), 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("line %d: %q: %w", lineNum, cols[2], ErrBadCount)
		}

		counts.Add(cols[0], cols[1], n)
	}

	return counts, scanner.Err()
}
