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

// package reporter is used to report on how long, and how much data, a series
// of operations took.

package reporter

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/inconshreveable/log15"
)

const nanosecondsInSecond = 1000000000

// Reporter can be used to output timing and volume information about a kind of
// operation, eg. writing each sample's concatenated file.
type Reporter struct {
	operation      string       // the name of the operation you will Time(), output in Report().
	logger         log15.Logger // where your reports will be logged to.
	duration       time.Duration
	failedDuration time.Duration
	count          int64
	failedCount    int64
	bytes          uint64
	enabled        bool
}

// New returns a reporter that will log how long operation took to logger.
func New(operation string, logger log15.Logger) *Reporter {
	return &Reporter{
		operation: operation,
		logger:    logger,
	}
}

// Enable will cause future TimeOperation() calls to time the operation. If not
// enabled, TimeOperation() calls just call the operation.
func (r *Reporter) Enable() {
	r.enabled = true
}

// TimeOperation calls f and returns its error. If Enable() has been called, it
// also records how long f took and the number of bytes it says it handled, so
// that ReportFinal() can report on them.
func (r *Reporter) TimeOperation(f func() (int64, error)) error {
	if !r.enabled {
		_, err := f()

		return err
	}

	t := time.Now()
	n, err := f()
	d := time.Since(t)

	if err != nil {
		r.failedCount++
		r.failedDuration += d

		return err
	}

	r.count++
	r.duration += d

	if n > 0 {
		r.bytes += uint64(n)
	}

	return nil
}

// ReportFinal logs overall timings and volume, and failures if there were any.
// Does nothing if not enabled.
func (r *Reporter) ReportFinal() {
	if !r.enabled {
		return
	}

	r.logger.Info("report overall",
		"op", r.operation,
		"count", r.count,
		"size", humanize.Bytes(r.bytes),
		"time", r.duration,
		"ops/s", opsPerSecond(r.count, r.duration))

	if r.failedCount > 0 {
		r.logger.Warn("report failed",
			"op", r.operation,
			"count", r.failedCount,
			"time", r.failedDuration)
	}
}

// opsPerSecond returns operations/d.Seconds rounded to 2 decimal places, or n/a
// if either is 0.
func opsPerSecond(ops int64, d time.Duration) string {
	if ops == 0 || d == 0 {
		return "n/a"
	}

	return fmt.Sprintf("%.2f", float64(ops)/float64(d.Nanoseconds())*nanosecondsInSecond)
}
