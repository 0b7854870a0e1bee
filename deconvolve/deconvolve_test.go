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
	"errors"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/inconshreveable/log15"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-ssg/kvasir/combine"
	"github.com/wtsi-ssg/kvasir/internal"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

func TestDeconvolve(t *testing.T) {
	Convey("Given concatenated source files and counts", t, func() {
		inDir := t.TempDir()
		outDir := t.TempDir()

		r1 := fastq("a1", "a2", "b1", "c1", "c2", "c3")
		r2 := fastq("A1", "A2", "B1", "C1", "C2", "C3")
		writeFile(t, filepath.Join(inDir, "s1.R1.fastq"), r1)
		writeFile(t, filepath.Join(inDir, "s1.R2.fastq"), r2)

		counts := CountTable{"s1": {"c": 3, "a": 2, "b": 1}}

		buff := new(bytes.Buffer)
		l := log15.New()
		l.SetHandler(log15.StreamHandler(buff, log15.LogfmtFormat()))

		d := &Deconvolver{
			InputDir:       inDir,
			OutputDir:      outDir,
			LinesPerRecord: FastqLinesPerRecord,
			Logger:         l,
		}

		Convey("You can split each mate in to per-destination files", func() {
			So(d.Deconvolve(counts), ShouldBeNil)

			So(readFile(t, filepath.Join(outDir, "a_s1_1.fastq")), ShouldEqual, fastq("a1", "a2"))
			So(readFile(t, filepath.Join(outDir, "b_s1_1.fastq")), ShouldEqual, fastq("b1"))
			So(readFile(t, filepath.Join(outDir, "c_s1_1.fastq")), ShouldEqual, fastq("c1", "c2", "c3"))
			So(readFile(t, filepath.Join(outDir, "a_s1_2.fastq")), ShouldEqual, fastq("A1", "A2"))
			So(readFile(t, filepath.Join(outDir, "c_s1_2.fastq")), ShouldEqual, fastq("C1", "C2", "C3"))

			log := buff.String()
			So(log, ShouldContainSubstring, `msg="reading lines" from=1 to=8`)
			So(log, ShouldContainSubstring, `msg="reading lines" from=9 to=12`)
			So(log, ShouldContainSubstring, `msg="reading lines" from=13 to=24`)
			So(strings.Index(log, "a_s1_1"), ShouldBeLessThan, strings.Index(log, "b_s1_1"))
			So(strings.Index(log, "c_s1_1"), ShouldBeLessThan, strings.Index(log, "a_s1_2"))

			Convey("and concatenating them again gives back the original", func() {
				c := &combine.Concatenator{Logger: l}
				dest := filepath.Join(outDir, "roundtrip.fastq")

				_, err := c.Concatenate([]string{
					filepath.Join(outDir, "a_s1_1.fastq"),
					filepath.Join(outDir, "b_s1_1.fastq"),
					filepath.Join(outDir, "c_s1_1.fastq"),
				}, dest)
				So(err, ShouldBeNil)
				So(readFile(t, dest), ShouldEqual, r1)
			})
		})

		Convey("Zero counts give empty outputs without skipping lines", func() {
			counts["s1"]["b"] = 0
			counts["s1"]["c"] = 4
			d.Mates = []int{1}

			So(d.Deconvolve(counts), ShouldBeNil)
			So(readFile(t, filepath.Join(outDir, "b_s1_1.fastq")), ShouldEqual, "")
			So(readFile(t, filepath.Join(outDir, "c_s1_1.fastq")), ShouldEqual, fastq("b1", "c1", "c2", "c3"))

			_, err := os.Stat(filepath.Join(outDir, "a_s1_2.fastq"))
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("Counts too large to be line numbers are rejected before anything is written", func() {
			counts = CountTable{"s1": {"a": math.MaxInt64/FastqLinesPerRecord + 1, "b": 1}}

			err := d.Deconvolve(counts)
			So(errs.IsConfig(err), ShouldBeTrue)
			So(errors.Is(err, ErrTooManyLines), ShouldBeTrue)

			entries, err := os.ReadDir(outDir)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
			So(buff.String(), ShouldNotContainSubstring, "reading lines")

			Convey("as are counts that only overflow when added together", func() {
				counts = CountTable{"s1": {"a": math.MaxInt64 / FastqLinesPerRecord, "b": 1}}

				So(errs.IsConfig(d.Deconvolve(counts)), ShouldBeTrue)
			})
		})

		Convey("Counts beyond the end of the source are warned about", func() {
			counts["s1"]["c"] = 5

			So(d.Deconvolve(counts), ShouldBeNil)
			So(readFile(t, filepath.Join(outDir, "c_s1_1.fastq")), ShouldEqual, fastq("c1", "c2", "c3"))
			So(buff.String(), ShouldContainSubstring,
				`lvl=warn msg="source ended before all requested lines were read" sample=s1 mate=1 destination=c requested=20 written=12`)

			Convey("and later destinations are created empty", func() {
				counts["s1"]["d"] = 1

				So(d.Deconvolve(counts), ShouldBeNil)
				So(readFile(t, filepath.Join(outDir, "d_s1_1.fastq")), ShouldEqual, "")
			})
		})

		Convey("A missing source only skips that sample's mate", func() {
			counts["s0"] = map[string]int64{"a": 1}
			So(os.Remove(filepath.Join(inDir, "s1.R2.fastq")), ShouldBeNil)

			err := d.Deconvolve(counts)
			So(err, ShouldNotBeNil)

			var merr *multierror.Error
			So(errors.As(err, &merr), ShouldBeTrue)
			So(len(merr.Errors), ShouldEqual, 3)

			var ioErr *errs.IOError
			So(errors.As(merr.Errors[0], &ioErr), ShouldBeTrue)
			So(ioErr.Path, ShouldEqual, filepath.Join(inDir, "s0.R1.fastq"))

			So(readFile(t, filepath.Join(outDir, "a_s1_1.fastq")), ShouldEqual, fastq("a1", "a2"))
			So(buff.String(), ShouldContainSubstring, `lvl=warn msg="missing source file for sample" sample=s1 mate=2`)
		})

		Convey("A dry run creates nothing but logs the same", func() {
			So(d.Deconvolve(counts), ShouldBeNil)
			realLog := stripTimes(buff.String())

			outDir2 := t.TempDir()
			buff.Reset()

			d.OutputDir = outDir2
			d.DryRun = true
			So(d.Deconvolve(counts), ShouldBeNil)

			entries, err := os.ReadDir(outDir2)
			So(err, ShouldBeNil)
			So(entries, ShouldBeEmpty)
			So(strings.ReplaceAll(stripTimes(buff.String()), outDir2, outDir), ShouldEqual, realLog)
		})

		Convey("You can read and write compressed files", func() {
			writeCompressed(t, filepath.Join(inDir, "s1.R1.fastq.gz"), r1)
			d.Compressed = true
			d.Mates = []int{1}

			So(d.Deconvolve(counts), ShouldBeNil)

			content, err := internal.ReadCompressedFile(filepath.Join(outDir, "c_s1_1.fastq.gz"))
			So(err, ShouldBeNil)
			So(content, ShouldEqual, fastq("c1", "c2", "c3"))
		})
	})

	Convey("Names follow the expected conventions", t, func() {
		So(SourceName("s", 2, false), ShouldEqual, "s.R2.fastq")
		So(SourceName("s", 1, true), ShouldEqual, "s.R1.fastq.gz")
		So(OutputName("d", "s", 1, false), ShouldEqual, "d_s_1.fastq")
	})
}

// fastq returns a FASTQ record for each of the given read names.
func fastq(names ...string) string {
	var sb strings.Builder

	for _, name := range names {
		sb.WriteString("@" + name + "\nACGT\n+\nIIII\n")
	}

	return sb.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func writeCompressed(t *testing.T, path, content string) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	zw, closer, err := combine.Compress(file)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = zw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}

	if err = closer(); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return string(b)
}

var logTime = regexp.MustCompile(`t=\S+ `) //nolint:gochecknoglobals

func stripTimes(log string) string {
	return logTime.ReplaceAllString(log, "")
}
