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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/wtsi-ssg/kvasir/aggregate"
	"github.com/wtsi-ssg/kvasir/fs"
	"github.com/wtsi-ssg/kvasir/pattern"
	"github.com/wtsi-ssg/kvasir/reporter"
	"github.com/wtsi-ssg/kvasir/walk"
)

var ErrInputDirRequired = errors.New("exactly 1 directory of FASTQ files must be supplied")

// options for this cmd.
var (
	aggRegex     string
	aggPaired    bool
	aggOutputDir string
	aggIDGroup   int
	aggMateGroup int
	aggGlob      string
	aggDryRun    bool
	aggCompress  bool
	aggSummary   bool
	aggTimings   bool
)

// aggregateCmd represents the aggregate command.
var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Concatenate FASTQ files from the same sample",
	Long: `Concatenate FASTQ files from the same sample.

All files under the given directory (recursively) with basenames matching
--glob are candidates. The --regex is searched for in each candidate's path;
files it doesn't match are ignored with a warning. The --id_group'th capture
group of the match is the sample identifier.

All the files of each sample are concatenated, in path order, to
[sample].R1.fastq in the --output directory. With --paired_end, the
--mate_group'th capture group must be 1 or 2, and files are concatenated to
[sample].R1.fastq and [sample].R2.fastq respectively; files with any other mate
are ignored.

For example, given files like sampleA_L001_R1_001.fastq:
$ kvasir aggregate -r '(\w+?)_L\d+_R(\d)' -p -o combined fastqs/

With --compress the outputs are gzip compressed and given a .gz suffix.

With --dryrun, everything is read and logged (use -v to see it), but nothing
is written.

Samples whose files can't be read are skipped with a warning; the exit code is
only non-zero for invalid options or if the input directory can't be read.`,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) != 1 {
			die("%s", ErrInputDirRequired)
		}

		if aggRegex == "" {
			die("--regex is required")
		}

		if aggOutputDir == "" {
			die("--output is required")
		}

		p, err := pattern.New(aggRegex, aggIDGroup, aggMateGroup, aggPaired)
		if err != nil {
			die("%s", err)
		}

		appLogger.Info("finding samples", "pattern", p.String(), "paired", p.Paired())

		inputDir, err := filepath.Abs(args[0])
		if err != nil {
			die("could not get the absolute path to [%s]: %s", args[0], err)
		}

		results, err := aggregateDir(p, inputDir)
		warnGroupErrors("aggregate", err)

		if aggSummary {
			printAggregateSummary(results)
		}
	},
}

func init() {
	RootCmd.AddCommand(aggregateCmd)

	// flags specific to this sub-command
	aggregateCmd.Flags().StringVarP(&aggRegex, "regex", "r", "",
		"pattern to find sample identifier and paired end mate")
	aggregateCmd.Flags().BoolVarP(&aggPaired, "paired_end", "p", false, "split files by paired end mate")
	aggregateCmd.Flags().StringVarP(&aggOutputDir, "output", "o", "", "directory for concatenated files")
	aggregateCmd.Flags().IntVar(&aggIDGroup, "id_group", pattern.DefaultIDGroup,
		"capture group of --regex holding the sample identifier")
	aggregateCmd.Flags().IntVar(&aggMateGroup, "mate_group", pattern.DefaultMateGroup,
		"capture group of --regex holding the paired end mate")
	aggregateCmd.Flags().StringVarP(&aggGlob, "glob", "g", walk.DefaultGlob, "basename glob of candidate files")
	aggregateCmd.Flags().BoolVar(&aggDryRun, "dryrun", false, "output logs but do not write files")
	aggregateCmd.Flags().BoolVarP(&aggCompress, "compress", "z", false, "gzip compress the outputs")
	aggregateCmd.Flags().BoolVarP(&aggSummary, "summary", "s", false, "print a table of what was combined")
	aggregateCmd.Flags().BoolVar(&aggTimings, "timings", false, "log how long combining took")
}

// aggregateDir finds the candidate files in dir and aggregates them.
func aggregateDir(p *pattern.Pattern, dir string) ([]aggregate.Result, error) {
	paths, err := walk.FindFiles(dir, aggGlob, func(path string, err error) {
		warn("could not read [%s]: %s", path, err)
	})
	if err != nil {
		die("failed to find input files: %s", err)
	}

	info("found %d candidate files", len(paths))

	if !aggDryRun {
		if err = fs.EnsureDir(aggOutputDir); err != nil {
			die("could not create output directory: %s", err)
		}
	}

	a := &aggregate.Aggregator{
		Pattern:   p,
		OutputDir: aggOutputDir,
		DryRun:    aggDryRun,
		Compress:  aggCompress,
		Logger:    appLogger,
	}

	if aggTimings {
		a.Reporter = reporter.New("combine", appLogger)
		a.Reporter.Enable()

		defer a.Reporter.ReportFinal()
	}

	return a.Run(paths)
}

// printAggregateSummary prints a table of results to STDOUT.
func printAggregateSummary(results []aggregate.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Sample", "Mate", "Files", "Size", "Output"})

	for _, r := range results {
		output := r.Path
		if r.Err != nil {
			output = "FAILED: " + r.Err.Error()
		}

		mate := string(r.Mate)
		if mate == "" {
			mate = "-"
		}

		table.Append([]string{r.Key, mate, fmt.Sprintf("%d", r.Files), humanize.Bytes(uint64(r.Bytes)), output})
	}

	table.Render()
}
