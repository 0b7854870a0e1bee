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
	"errors"
	"io"
)

const cursorBufferSize = 64 * 1024

// LineCursor reads lines from a stream, remembering how many it has consumed,
// so consecutive CopyLines calls carry on exactly where the last left off.
type LineCursor struct {
	r    *bufio.Reader
	line int64
	eof  bool
}

// NewLineCursor returns a LineCursor positioned before the first line of r.
func NewLineCursor(r io.Reader) *LineCursor {
	return &LineCursor{r: bufio.NewReaderSize(r, cursorBufferSize)}
}

// Position returns the number of lines consumed so far.
func (c *LineCursor) Position() int64 {
	return c.line
}

// EOF returns true once the underlying stream has been exhausted.
func (c *LineCursor) EOF() bool {
	return c.eof
}

// CopyLines copies the next n lines, verbatim including line endings, to w.
// Lines longer than the internal buffer are copied in pieces, so memory use
// stays bounded. A final line without a newline counts as a line.
//
// If the stream ends first, the number of lines actually copied is returned
// with a nil error.
func (c *LineCursor) CopyLines(n int64, w io.Writer) (copied int64, err error) {
	defer func() {
		c.line += copied
	}()

	partial := false

	for copied < n && !c.eof {
		chunk, rerr := c.r.ReadSlice('\n')

		if len(chunk) > 0 {
			if _, err = w.Write(chunk); err != nil {
				return copied, err
			}
		}

		switch {
		case rerr == nil:
			copied++
			partial = false
		case errors.Is(rerr, bufio.ErrBufferFull):
			partial = true
		case errors.Is(rerr, io.EOF):
			if len(chunk) > 0 || partial {
				copied++
			}

			c.eof = true
		default:
			return copied, rerr
		}
	}

	return copied, nil
}
