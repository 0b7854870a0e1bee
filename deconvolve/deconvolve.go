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

// package deconvolve splits concatenated per-sample FASTQ files back in to
// their constituent parts, using a table of how many records each part had.

package deconvolve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/inconshreveable/log15"
	"github.com/wtsi-ssg/kvasir/combine"
	"github.com/wtsi-ssg/kvasir/fs"
	"github.com/wtsi-ssg/kvasir/internal/errs"
	"github.com/wtsi-ssg/kvasir/internal/sorted"
)

// FastqLinesPerRecord is the number of lines in a FASTQ record.
const FastqLinesPerRecord = 4

// DefaultMates are the mates processed for each sample, in order.
var DefaultMates = []int{1, 2} //nolint:gochecknoglobals

// SourceName returns the basename of the concatenated file for a sample's
// mate, eg. "sampleA.R1.fastq".
func SourceName(sample string, mate int, compressed bool) string {
	return fs.CompressedName(fmt.Sprintf("%s.R%d.fastq", sample, mate), compressed)
}

// OutputName returns the basename of the file a destination's lines are
// written to, eg. "dest_sampleA_1.fastq".
func OutputName(destination, sample string, mate int, compressed bool) string {
	return fs.CompressedName(fmt.Sprintf("%s_%s_%d.fastq", destination, sample, mate), compressed)
}

// Deconvolver splits source files in InputDir in to per-destination files in
// OutputDir.
type Deconvolver struct {
	InputDir  string
	OutputDir string

	// LinesPerRecord converts counts to lines. Zero is treated as 1, so that
	// counts are line counts.
	LinesPerRecord int64

	// Mates to process for every sample, in order. Defaults to DefaultMates.
	Mates []int

	// Compressed means sources are named *.fastq.gz and outputs are gzip
	// compressed. Sources are decompressed if gzipped regardless.
	Compressed bool

	// DryRun reads sources and logs as normal, but creates no files.
	DryRun bool

	Logger log15.Logger
}

// Deconvolve processes every sample in counts, in sorted order, and for each
// of our Mates splits its source file in to one output file per destination,
// destinations also being in sorted order.
//
// A sample+mate whose source can't be read is skipped with a warning and the
// others still processed; such errors are returned together at the end as
// errs.IOErrors in a multierror.
//
// Counts too large to be converted to line numbers are an errs.ConfigError,
// returned before anything is read or written.
func (d *Deconvolver) Deconvolve(counts CountTable) error {
	if err := counts.CheckLines(d.linesPerRecord()); err != nil {
		return err
	}

	var merr *multierror.Error

	for _, sample := range sorted.Keys(counts) {
		for _, mate := range d.mates() {
			if err := d.split(counts, sample, mate); err != nil {
				merr = multierror.Append(merr, err)
			}
		}
	}

	return merr.ErrorOrNil()
}

func (d *Deconvolver) mates() []int {
	if len(d.Mates) == 0 {
		return DefaultMates
	}

	return d.Mates
}

func (d *Deconvolver) linesPerRecord() int64 {
	if d.LinesPerRecord <= 0 {
		return 1
	}

	return d.LinesPerRecord
}

// split reads the source for the sample's mate and writes consecutive runs of
// lines to each destination.
func (d *Deconvolver) split(counts CountTable, sample string, mate int) error {
	destCounts := counts[sample]
	source := filepath.Join(d.InputDir, SourceName(sample, mate, d.Compressed))
	d.Logger.Debug("reading from file", "path", source)

	r, err := fs.OpenMaybeCompressed(source)
	if err != nil {
		d.Logger.Warn("missing source file for sample", "sample", sample, "mate", mate, "path", source, "err", err)

		return errs.IO(source, err)
	}

	defer r.Close()

	d.Logger.Info("splitting sample", "sample", sample, "mate", mate,
		"destinations", len(destCounts), "lines", counts.Total(sample)*d.linesPerRecord())

	cursor := NewLineCursor(r)

	var stop int64

	for _, dest := range sorted.Keys(destCounts) {
		lines := destCounts[dest] * d.linesPerRecord()
		stop += lines
		name := OutputName(dest, sample, mate, d.Compressed)

		d.Logger.Info("reading lines", "from", cursor.Position()+1, "to", stop)
		d.Logger.Info("writing to file", "path", filepath.Join(d.OutputDir, name))

		copied, err := d.writeLines(cursor, lines, name)
		if err != nil {
			return err
		}

		if copied < lines {
			d.Logger.Warn("source ended before all requested lines were read",
				"sample", sample, "mate", mate, "destination", dest,
				"requested", lines, "written", copied)
		}
	}

	return nil
}

// writeLines copies the next n lines from cursor to a new file called name in
// our OutputDir, or just consumes them in DryRun mode. A partially written file
// is removed on failure.
func (d *Deconvolver) writeLines(cursor *LineCursor, n int64, name string) (int64, error) {
	path := filepath.Join(d.OutputDir, name)

	if d.DryRun {
		copied, err := cursor.CopyLines(n, io.Discard)

		return copied, errs.IO(path, err)
	}

	file, err := fs.CreateOutputFileInDir(d.OutputDir, name)
	if err != nil {
		return 0, errs.IO(path, err)
	}

	output, finish := io.Writer(file), file.Close

	if d.Compressed {
		output, finish, err = compressed(file)
		if err != nil {
			file.Close()
			os.Remove(path)

			return 0, errs.IO(path, err)
		}
	}

	bw := bufio.NewWriter(output)

	copied, err := cursor.CopyLines(n, bw)
	if err == nil {
		err = bw.Flush()
	}

	if errf := finish(); err == nil {
		err = errf
	}

	if err != nil {
		os.Remove(path)
	}

	return copied, errs.IO(path, err)
}

// compressed wraps combine.Compress to return a plain io.Writer.
func compressed(file *os.File) (io.Writer, func() error, error) {
	zw, closer, err := combine.Compress(file)

	return zw, closer, err
}
