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

// package fs has helpers for the files kvasir reads and writes.

package fs

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrNotDir = Error("not a directory")

// DirPerms are the permissions of output directories we create.
const DirPerms = 0755

// gzipMagic are the first bytes of any gzip stream.
var gzipMagic = []byte{0x1f, 0x8b} //nolint:gochecknoglobals

// DirValid returns an error if dir doesn't exist or isn't a directory.
func DirValid(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return ErrNotDir
	}

	return nil
}

// EnsureDir creates dir, and any parents, if it doesn't already exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, DirPerms)
}

// CreateOutputFileInDir creates (or truncates) a file for writing in the given
// dir with the given basename.
func CreateOutputFileInDir(dir, basename string) (*os.File, error) {
	return os.Create(filepath.Join(dir, basename))
}

// compressedReadCloser closes both the decompressor and the underlying file.
type compressedReadCloser struct {
	*pgzip.Reader
	file *os.File
}

func (c *compressedReadCloser) Close() error {
	err := c.Reader.Close()

	if errf := c.file.Close(); err == nil {
		err = errf
	}

	return err
}

// OpenMaybeCompressed opens path for reading. If the file starts with the gzip
// magic number, the returned reader decompresses it.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	compressed, err := IsCompressed(file)
	if err != nil {
		file.Close()

		return nil, err
	}

	if !compressed {
		return file, nil
	}

	zr, err := pgzip.NewReader(file)
	if err != nil {
		file.Close()

		return nil, err
	}

	return &compressedReadCloser{Reader: zr, file: file}, nil
}

// IsCompressed peeks at the start of the given file to see if it is gzipped,
// then seeks back to the start.
func IsCompressed(file *os.File) (bool, error) {
	sig := make([]byte, len(gzipMagic))

	n, err := io.ReadFull(file, sig)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF { //nolint:errorlint
		return false, err
	}

	if _, err = file.Seek(0, io.SeekStart); err != nil {
		return false, err
	}

	return n == len(gzipMagic) && bytes.Equal(sig, gzipMagic), nil
}

// CompressedSuffix is the file extension of gzipped files.
const CompressedSuffix = ".gz"

// CompressedName returns basename with a .gz suffix if compress is true.
func CompressedName(basename string, compress bool) string {
	if compress && !HasCompressedName(basename) {
		return basename + CompressedSuffix
	}

	return basename
}

// HasCompressedName returns true if path has a .gz suffix.
func HasCompressedName(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}
