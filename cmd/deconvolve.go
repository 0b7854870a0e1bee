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
	"os"

	"github.com/spf13/cobra"
	"github.com/wtsi-ssg/kvasir/deconvolve"
	"github.com/wtsi-ssg/kvasir/fs"
)

// options for this cmd.
var (
	decOutputDir      string
	decLinesPerRecord int64
	decSingle         bool
	decCompressed     bool
	decDryRun         bool
)

// deconvolveCmd represents the deconvolve command.
var deconvolveCmd = &cobra.Command{
	Use:   "deconvolve",
	Short: "Split concatenated FASTQ files using read counts",
	Long: `Split concatenated FASTQ files using read counts.

This is the reverse of 'kvasir aggregate'. Supply the directory holding the
concatenated [sample].R1.fastq and [sample].R2.fastq files, and a tab separated
read counts file with lines like:
sampleA	partX	1000

For each sample in the counts file (in sorted order), each of its R1 and R2
files is read from the start, and the first partX reads (partX's count times
--lines_per_record lines) are written to partX_sampleA_1.fastq (or _2), the
next part's reads to the next file, and so on, with parts in sorted order.

Output files are written to the --output directory (default: the current
directory).

If a sample's file is missing, it is skipped with a warning. If a file has
fewer reads than its counts add up to, the remaining parts are short (or empty)
and a warning is logged.

With --compressed, [sample].R1.fastq.gz files are read and gzip compressed
outputs written.

With --dryrun, everything is read and logged (use -v to see it), but nothing
is written.`,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) != 2 { //nolint:mnd
			die("the input directory and the read counts file must be supplied")
		}

		if decLinesPerRecord < 1 {
			die("--lines_per_record must be at least 1")
		}

		if err := fs.DirValid(args[0]); err != nil {
			die("could not read input directory [%s]: %s", args[0], err)
		}

		counts := readCounts(args[1])

		if err := counts.CheckLines(decLinesPerRecord); err != nil {
			die("bad read counts file [%s]: %s", args[1], err)
		}

		if decOutputDir == "" {
			decOutputDir = "."
		} else if !decDryRun {
			if err := fs.EnsureDir(decOutputDir); err != nil {
				die("could not create output directory: %s", err)
			}
		}

		d := &deconvolve.Deconvolver{
			InputDir:       args[0],
			OutputDir:      decOutputDir,
			LinesPerRecord: decLinesPerRecord,
			Compressed:     decCompressed,
			DryRun:         decDryRun,
			Logger:         appLogger,
		}

		if decSingle {
			d.Mates = []int{1}
		}

		warnGroupErrors("deconvolve", d.Deconvolve(counts))
	},
}

func init() {
	RootCmd.AddCommand(deconvolveCmd)

	// flags specific to this sub-command
	deconvolveCmd.Flags().StringVarP(&decOutputDir, "output", "o", "", "directory for output files")
	deconvolveCmd.Flags().Int64Var(&decLinesPerRecord, "lines_per_record", deconvolve.FastqLinesPerRecord,
		"lines per counted read")
	deconvolveCmd.Flags().BoolVar(&decSingle, "single", false, "only split R1 files")
	deconvolveCmd.Flags().BoolVarP(&decCompressed, "compressed", "z", false,
		"read .fastq.gz files and compress outputs")
	deconvolveCmd.Flags().BoolVar(&decDryRun, "dryrun", false, "output logs but do not write files")
}

// readCounts parses the counts file at path, dying on failure.
func readCounts(path string) deconvolve.CountTable {
	f, err := os.Open(path)
	if err != nil {
		die("could not open read counts file: %s", err)
	}

	defer f.Close()

	counts, err := deconvolve.ParseCounts(f)
	if err != nil {
		die("could not parse read counts file [%s]: %s", path, err)
	}

	if len(counts) == 0 {
		warn("read counts file [%s] has no counts", path)
	}

	return counts
}
