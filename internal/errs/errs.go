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

// package errs holds the error types shared by kvasir's packages, so callers
// can tell fatal configuration problems from per-file I/O problems.

package errs

import (
	"errors"
	"fmt"
)

// ConfigError is returned when the supplied configuration (a pattern, a capture
// group index, a separator) means the run cannot proceed for any input. These
// are fatal.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// Config wraps err as a ConfigError, formatting it with the given args if
// supplied.
func Config(format string, a ...interface{}) error {
	return &ConfigError{Err: fmt.Errorf(format, a...)}
}

// IOError is returned when a particular file could not be read or written. It
// only affects the group or sample the file belongs to.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %s", e.Path, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// IO wraps err as an IOError about path. Returns nil if err is nil.
func IO(path string, err error) error {
	if err == nil {
		return nil
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}

	return &IOError{Path: path, Err: err}
}

// IsConfig returns true if err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var cErr *ConfigError

	return errors.As(err, &cErr)
}
