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

package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/wtsi-ssg/kvasir/deconvolve"
	"github.com/wtsi-ssg/kvasir/fs"
)

// options for this cmd.
var (
	fromStart  int64
	fromOutput string
)

// fromlineCmd represents the fromline command.
var fromlineCmd = &cobra.Command{
	Use:   "fromline",
	Short: "Copy a file from a given line onwards",
	Long: `Copy a file from a given line onwards.

Skips the lines of the given file before --start (lines are counted from 1),
and writes the rest, unaltered, to --output (default STDOUT). Gzipped input is
decompressed.

This is useful for recovering the reads left over after 'kvasir deconvolve',
eg. for a file with 1000 counted 4-line reads:
$ kvasir fromline -n 4001 -o leftover.fastq sampleA.R1.fastq

A summary of how many lines were written out of how many read is logged (use -v
to see it). If the file has fewer lines than --start, the output is empty and a
warning is logged.`,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) != 1 {
			die("exactly 1 input file must be supplied")
		}

		if fromStart < 1 {
			die("--start must be at least 1")
		}

		r, err := fs.OpenMaybeCompressed(args[0])
		if err != nil {
			die("could not open input file: %s", err)
		}

		defer r.Close()

		err = writeOutput(fromOutput, func(w io.Writer) error {
			_, errc := deconvolve.CopyFromLine(r, w, fromStart, appLogger)

			return errc
		})
		if err != nil {
			die("failed to copy lines: %s", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(fromlineCmd)

	// flags specific to this sub-command
	fromlineCmd.Flags().Int64VarP(&fromStart, "start", "n", 1, "first line to copy")
	fromlineCmd.Flags().StringVarP(&fromOutput, "output", "o", "", "output file (default STDOUT)")
}
