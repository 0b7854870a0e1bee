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

package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

func TestFindFiles(t *testing.T) {
	Convey("Given a directory tree of sequencing files", t, func() {
		dir := t.TempDir()

		for _, rel := range []string{
			"a.fastq", "run1/b.fastq.gz", "run1/lane2/c.fastq", "run2/notes.txt", "run2/d.fq",
		} {
			path := filepath.Join(dir, rel)
			So(os.MkdirAll(filepath.Dir(path), 0700), ShouldBeNil)
			So(os.WriteFile(path, []byte("x"), 0600), ShouldBeNil)
		}

		So(os.Mkdir(filepath.Join(dir, "dir.fastq"), 0700), ShouldBeNil)

		var problems []string

		cb := func(path string, _ error) {
			problems = append(problems, path)
		}

		Convey("You can find all files matching the default glob recursively", func() {
			paths, err := FindFiles(dir, DefaultGlob, cb)
			So(err, ShouldBeNil)

			sort.Strings(paths)
			So(paths, ShouldResemble, []string{
				filepath.Join(dir, "a.fastq"),
				filepath.Join(dir, "run1", "lane2", "c.fastq"),
			})
			So(problems, ShouldBeEmpty)
		})

		Convey("You can include compressed files with a wider glob", func() {
			paths, err := FindFiles(dir, "*.fastq*", cb)
			So(err, ShouldBeNil)
			So(paths, ShouldContain, filepath.Join(dir, "run1", "b.fastq.gz"))
			So(len(paths), ShouldEqual, 3)
		})

		Convey("You can use a different glob", func() {
			paths, err := FindFiles(dir, "*.fq", cb)
			So(err, ShouldBeNil)
			So(paths, ShouldResemble, []string{filepath.Join(dir, "run2", "d.fq")})
		})

		Convey("Invalid globs are configuration errors", func() {
			_, err := FindFiles(dir, "[", cb)
			So(errs.IsConfig(err), ShouldBeTrue)
		})

		Convey("A missing directory is an error", func() {
			_, err := FindFiles(filepath.Join(dir, "missing"), DefaultGlob, cb)
			So(err, ShouldNotBeNil)
			So(errs.IsConfig(err), ShouldBeFalse)
		})
	})
}
