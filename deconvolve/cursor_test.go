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
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLineCursor(t *testing.T) {
	Convey("Given a LineCursor over some lines", t, func() {
		c := NewLineCursor(strings.NewReader("l1\nl2\r\nl3\n\nl5"))
		So(c.Position(), ShouldEqual, 0)

		Convey("consecutive copies carry on where the last left off", func() {
			var a, b, rest bytes.Buffer

			n, err := c.CopyLines(2, &a)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(a.String(), ShouldEqual, "l1\nl2\r\n")
			So(c.Position(), ShouldEqual, 2)

			n, err = c.CopyLines(0, &b)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)
			So(b.Len(), ShouldEqual, 0)

			n, err = c.CopyLines(2, &b)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(b.String(), ShouldEqual, "l3\n\n")
			So(c.EOF(), ShouldBeFalse)

			Convey("and a final line without a newline is still a line", func() {
				n, err = c.CopyLines(10, &rest)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(rest.String(), ShouldEqual, "l5")
				So(c.EOF(), ShouldBeTrue)
				So(c.Position(), ShouldEqual, 5)

				n, err = c.CopyLines(1, &rest)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})

	Convey("Lines longer than the buffer are copied whole", t, func() {
		long := strings.Repeat("A", cursorBufferSize*2+7)
		c := NewLineCursor(strings.NewReader(long + "\nnext\n"))

		var out bytes.Buffer

		n, err := c.CopyLines(1, &out)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 1)
		So(out.String(), ShouldEqual, long+"\n")

		out.Reset()
		n, err = c.CopyLines(1, &out)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 1)
		So(out.String(), ShouldEqual, "next\n")
	})

	Convey("A long final line without a newline counts once", t, func() {
		long := strings.Repeat("C", cursorBufferSize+1)
		c := NewLineCursor(strings.NewReader(long))

		var out bytes.Buffer

		n, err := c.CopyLines(3, &out)
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 1)
		So(out.String(), ShouldEqual, long)
	})
}
