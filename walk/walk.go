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

// package walk is used to find the candidate input files nested under a
// directory.

package walk

import (
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

// DefaultGlob matches uncompressed FASTQ files.
const DefaultGlob = "*.fastq"

// ErrorCallback is a callback function you supply FindFiles(), and it will be
// provided problematic paths encountered during the walk.
type ErrorCallback func(path string, err error)

// FindFiles walks dir recursively and returns the paths of all non-directory
// entries whose basename matches glob, in no particular order.
//
// Entries that can't be read are passed to cb and skipped; the walk continues.
// An invalid glob is an errs.ConfigError. Failure to read dir itself is
// returned as an errs.IOError.
func FindFiles(dir, glob string, cb ErrorCallback) ([]string, error) {
	if _, err := filepath.Match(glob, ""); err != nil {
		return nil, errs.Config("invalid glob %q: %w", glob, err)
	}

	dir = filepath.Clean(dir)

	var paths []string

	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}

			if matched, _ := filepath.Match(glob, de.Name()); matched { //nolint:errcheck
				paths = append(paths, path)
			}

			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if path == dir {
				return godirwalk.Halt
			}

			cb(path, err)

			return godirwalk.SkipNode
		},
		Unsorted: true,
	})

	return paths, errs.IO(dir, err)
}
