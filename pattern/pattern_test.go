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

package pattern

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

func TestPattern(t *testing.T) {
	Convey("You can make a Pattern with valid groups", t, func() {
		p, err := New(`(\w+)_R([12])`, DefaultIDGroup, DefaultMateGroup, true)
		So(err, ShouldBeNil)
		So(p.Paired(), ShouldBeTrue)
		So(p.String(), ShouldEqual, `(\w+)_R([12])`)

		Convey("which extracts the sample key and mate tag from a path", func() {
			r := p.Extract("/data/run1/sampleA_R2.fastq")
			So(r.Matched(), ShouldBeTrue)
			So(r.Path, ShouldEqual, "/data/run1/sampleA_R2.fastq")
			So(r.Groups, ShouldResemble, []string{"sampleA", "2"})
			So(r.Key, ShouldEqual, "sampleA")
			So(r.Mate, ShouldEqual, "2")
		})

		Convey("which gives an empty record for paths that don't match", func() {
			r := p.Extract("/data/run1/sampleA.fastq")
			So(r.Matched(), ShouldBeFalse)
			So(r.Groups, ShouldBeEmpty)
			So(r.Key, ShouldBeEmpty)
		})

		Convey("which can extract many paths at once", func() {
			rs := p.ExtractAll([]string{"x_R1.fastq", "y.fastq"})
			So(len(rs), ShouldEqual, 2)
			So(rs[0].Key, ShouldEqual, "x")
			So(rs[1].Matched(), ShouldBeFalse)
		})
	})

	Convey("Patterns search rather than anchor", t, func() {
		p, err := New(`S(\d+)`, 1, 0, false)
		So(err, ShouldBeNil)

		r := p.Extract("/a/b/lane_S12_L001.fastq")
		So(r.Key, ShouldEqual, "12")
		So(r.Mate, ShouldBeEmpty)
	})

	Convey("You can choose which group holds the key", t, func() {
		p, err := New(`(L\d+)_(\w+?)_(\d)`, 2, 3, true)
		So(err, ShouldBeNil)

		r := p.Extract("L001_sampleB_1.fastq")
		So(r.Key, ShouldEqual, "sampleB")
		So(r.Mate, ShouldEqual, "1")
	})

	Convey("A non-participating id group gives an unmatched record", t, func() {
		p, err := New(`(x\d)?y`, 1, 0, false)
		So(err, ShouldBeNil)

		r := p.Extract("y.fastq")
		So(r.Matched(), ShouldBeFalse)
		So(r.EmptyKey(), ShouldBeTrue)
	})

	Convey("An id group that matches an empty string gives an unmatched record", t, func() {
		p, err := New(`(x*)y`, 1, 0, false)
		So(err, ShouldBeNil)

		r := p.Extract("y.fastq")
		So(r.Groups, ShouldResemble, []string{""})
		So(r.Matched(), ShouldBeFalse)
		So(r.EmptyKey(), ShouldBeTrue)

		r = p.Extract("z.fastq")
		So(r.EmptyKey(), ShouldBeFalse)
	})

	Convey("Group indexes are validated up front", t, func() {
		_, err := New(`(\w+)`, 2, 0, false)
		So(err, ShouldNotBeNil)
		So(errs.IsConfig(err), ShouldBeTrue)

		_, err = New(`(\w+)`, 0, 0, false)
		So(errs.IsConfig(err), ShouldBeTrue)

		_, err = New(`(\w+)_(\d)`, 1, 3, true)
		So(errs.IsConfig(err), ShouldBeTrue)

		Convey("but the mate group is ignored when not paired", func() {
			_, err = New(`(\w+)`, 1, 3, false)
			So(err, ShouldBeNil)
		})
	})

	Convey("Invalid expressions are configuration errors", t, func() {
		_, err := New(`(\w+`, 1, 2, false)
		So(errs.IsConfig(err), ShouldBeTrue)
	})
}
