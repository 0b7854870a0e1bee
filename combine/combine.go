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

// package combine concatenates groups of files, byte for byte, in to single
// (optionally compressed) outputs.

package combine

import (
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/inconshreveable/log15"
	"github.com/klauspost/pgzip"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

const bytesInMB = 1000000
const pgzipWriterBlocksMultiplier = 2

// Concatenator writes the contents of a list of files, in order, to a single
// destination file.
type Concatenator struct {
	// DryRun causes all inputs to be read and logged, but no destination file
	// to be created.
	DryRun bool

	// Compress causes the destination to be gzip compressed.
	Compress bool

	Logger log15.Logger

	buf []byte
}

// Concatenate copies the raw bytes of every input, in order, to dest, and
// returns the number of (uncompressed) bytes written. In DryRun mode the
// inputs are still fully read and the same count is returned, but dest is
// never created.
//
// dest is only created once the first input has been opened; if any input
// fails after that, the partially written dest is removed. Any failure is
// returned as an errs.IOError. An empty inputs list writes nothing and creates
// no dest.
func (c *Concatenator) Concatenate(inputs []string, dest string) (int64, error) {
	c.Logger.Info("writing to file", "path", dest)

	if len(inputs) == 0 {
		return 0, nil
	}

	for _, input := range inputs {
		c.Logger.Info("using file", "file", filepath.Base(input))
	}

	first, err := os.Open(inputs[0])
	if err != nil {
		return 0, errs.IO(inputs[0], err)
	}

	output, finish, err := c.openOutput(dest)
	if err != nil {
		first.Close()

		return 0, errs.IO(dest, err)
	}

	written, err := c.copyAll(first, inputs[1:], output)
	if err != nil {
		abandon(finish, dest, c.DryRun)

		return written, err
	}

	if err = finish(); err != nil {
		abandon(nil, dest, c.DryRun)

		return written, errs.IO(dest, err)
	}

	c.Logger.Info("wrote file", "path", dest, "files", len(inputs), "size", humanize.Bytes(uint64(written)))

	return written, nil
}

// openOutput returns a writer for dest and a function that must be called to
// flush and close it. In DryRun mode the writer discards everything.
func (c *Concatenator) openOutput(dest string) (io.Writer, func() error, error) {
	if c.DryRun {
		return io.Discard, func() error { return nil }, nil
	}

	file, err := os.Create(dest)
	if err != nil {
		return nil, nil, err
	}

	if !c.Compress {
		return file, file.Close, nil
	}

	compressor, closer, err := Compress(file)
	if err != nil {
		file.Close()
		os.Remove(dest)

		return nil, nil, err
	}

	return compressor, closer, nil
}

// copyAll copies the already open first file followed by the rest to output.
// Each input is closed once copied, so only one is open at a time.
func (c *Concatenator) copyAll(first *os.File, rest []string, output io.Writer) (int64, error) {
	if c.buf == nil {
		c.buf = make([]byte, bytesInMB)
	}

	written, err := copyAndClose(first, output, c.buf)
	if err != nil {
		return written, err
	}

	for _, path := range rest {
		input, err := os.Open(path)
		if err != nil {
			return written, errs.IO(path, err)
		}

		n, err := copyAndClose(input, output, c.buf)
		written += n

		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// copyAndClose copies all of input to output and closes input.
func copyAndClose(input *os.File, output io.Writer, buf []byte) (int64, error) {
	n, err := io.CopyBuffer(output, input, buf)
	if err != nil {
		input.Close()

		return n, errs.IO(input.Name(), err)
	}

	return n, errs.IO(input.Name(), input.Close())
}

// abandon closes (if finish isn't nil) and deletes a partially written dest.
func abandon(finish func() error, dest string, dryRun bool) {
	if dryRun {
		return
	}

	if finish != nil {
		finish() //nolint:errcheck
	}

	os.Remove(dest)
}

// Compress wraps the given output to compress data copied to it, and returns
// the writer. Also returns a function that you should call to close the writer
// and output when you're done.
func Compress(output *os.File) (*pgzip.Writer, func() error, error) {
	compressedOutput := pgzip.NewWriter(output)

	err := compressedOutput.SetConcurrency(bytesInMB, runtime.GOMAXPROCS(0)*pgzipWriterBlocksMultiplier)
	if err != nil {
		return nil, nil, err
	}

	return compressedOutput, func() error {
		errc := compressedOutput.Close()

		if err := output.Close(); errc == nil {
			errc = err
		}

		return errc
	}, nil
}
