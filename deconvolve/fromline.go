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
	"io"
	"math"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

const ErrBadStartLine = Error("start line must be at least 1")

// CopyFromLine copies everything from line start (counting from 1) onwards in
// r to w, verbatim. It returns the number of lines written.
//
// If r has fewer than start lines, nothing is written and a warning is logged.
// A start less than 1 is an errs.ConfigError.
func CopyFromLine(r io.Reader, w io.Writer, start int64, logger log15.Logger) (int64, error) {
	if start < 1 {
		return 0, errs.Config("%d: %w", start, ErrBadStartLine)
	}

	cursor := NewLineCursor(r)

	logger.Info("skipping until line", "line", start)

	skipped, err := cursor.CopyLines(start-1, io.Discard)
	if err != nil {
		return 0, err
	}

	if cursor.EOF() {
		logger.Warn("source ended before the start line", "line", start, "lines", skipped)

		return 0, nil
	}

	bw := bufio.NewWriter(w)

	written, err := cursor.CopyLines(math.MaxInt64, bw)
	if err == nil {
		err = bw.Flush()
	}

	if err != nil {
		return written, err
	}

	if written == 0 {
		logger.Warn("source ended before the start line", "line", start, "lines", cursor.Position())
	}

	logger.Info("wrote lines", "written", written, "total", cursor.Position())

	return written, nil
}
