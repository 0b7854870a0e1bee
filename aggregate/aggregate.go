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

// package aggregate ties together pattern matching, grouping and concatenation
// to combine many FASTQ files in to one (or, if paired-end, two) per sample.

package aggregate

import (
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/inconshreveable/log15"
	"github.com/wtsi-ssg/kvasir/combine"
	"github.com/wtsi-ssg/kvasir/fs"
	"github.com/wtsi-ssg/kvasir/group"
	"github.com/wtsi-ssg/kvasir/pattern"
	"github.com/wtsi-ssg/kvasir/reporter"
)

// OutputName returns the basename of the file a sample's group is written to,
// eg. "sampleA.R1.fastq". Unpaired groups are written as R1.
func OutputName(key string, mate group.Mate, compress bool) string {
	n := string(mate)
	if mate == group.MateNone {
		n = string(group.Mate1)
	}

	return fs.CompressedName(fmt.Sprintf("%s.R%s.fastq", key, n), compress)
}

// Result describes what was written for one group.
type Result struct {
	Key   string
	Mate  group.Mate
	Path  string
	Files int
	Bytes int64
	Err   error
}

// Aggregator combines the files of each sample found by a Pattern.
type Aggregator struct {
	Pattern   *pattern.Pattern
	OutputDir string
	DryRun    bool
	Compress  bool
	Logger    log15.Logger

	// Reporter, if set, times each group's concatenation.
	Reporter *reporter.Reporter
}

// Run extracts sample keys from paths, groups them, and concatenates each
// group in sorted sample order to <OutputDir>/<sample>.R<mate>.fastq. Empty
// groups are skipped. OutputDir must already exist unless DryRun.
//
// A group that fails doesn't stop the others; its error is in its Result and
// all such errors are also returned together as a multierror.
func (a *Aggregator) Run(paths []string) ([]Result, error) {
	groups := group.Build(a.Pattern.ExtractAll(paths), a.Pattern.Paired(), a.Logger)
	c := &combine.Concatenator{DryRun: a.DryRun, Compress: a.Compress, Logger: a.Logger}

	var (
		results []Result
		merr    *multierror.Error
	)

	groups.Each(func(g *group.Group) {
		if g.Empty() {
			return
		}

		result := a.concatenate(c, g)
		if result.Err != nil {
			a.Logger.Warn("failed to combine files", "sample", g.Key, "mate", string(g.Mate), "err", result.Err)
			merr = multierror.Append(merr, result.Err)
		}

		results = append(results, result)
	})

	return results, merr.ErrorOrNil()
}

func (a *Aggregator) concatenate(c *combine.Concatenator, g *group.Group) Result {
	dest := filepath.Join(a.OutputDir, OutputName(g.Key, g.Mate, a.Compress))
	result := Result{Key: g.Key, Mate: g.Mate, Path: dest, Files: len(g.Files)}

	a.Logger.Info("combining files", "sample", g.Key, "mate", string(g.Mate))

	for _, path := range g.Paths() {
		if fs.HasCompressedName(path) {
			a.Logger.Warn("compressed input will be concatenated without decompressing",
				"path", path, "output", dest)
		}
	}

	op := func() (int64, error) {
		return c.Concatenate(g.Paths(), dest)
	}

	if a.Reporter == nil {
		result.Bytes, result.Err = op()

		return result
	}

	result.Err = a.Reporter.TimeOperation(func() (int64, error) {
		n, err := op()
		result.Bytes = n

		return n, err
	})

	return result
}
