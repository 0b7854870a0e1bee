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
	"os"

	"github.com/spf13/cobra"
	"github.com/wtsi-ssg/kvasir/selectcols"
)

// options for this cmd.
var (
	selColumnsFile string
	selSeparator   string
	selOutput      string
	selKeepFirst   bool
	selDropZero    bool
)

// selectcolsCmd represents the selectcols command.
var selectcolsCmd = &cobra.Command{
	Use:   "selectcols",
	Short: "Get selected columns from a table",
	Long: `Get selected columns from a table.

Given a table file (eg. .tsv or .csv) with a header row, and a --columns file
with one column name per line, outputs the table with only the named columns,
in the order they appear in the table.

--separator can be the separator itself or one of: t, tab, \t; s, space; c,
comma. It defaults to comma.

--keep_first keeps the first column even if it isn't named (useful when the
first column doesn't have a label).

--drop_zero drops data rows whose selected values (other than a kept first
column) are all zero. Every such value must be a number.

If no --output is specified, the table goes to STDOUT:
$ kvasir selectcols -c columns.txt -k -s tab table.tsv > selected.tsv`,
	Run: func(_ *cobra.Command, args []string) {
		if len(args) != 1 {
			die("exactly 1 table file must be supplied")
		}

		if selColumnsFile == "" {
			die("--columns is required")
		}

		sep, err := selectcols.ParseSeparator(selSeparator)
		if err != nil {
			die("%s", err)
		}

		spec := selectcols.ColumnSpec{
			Names:        readColumnNames(selColumnsFile),
			KeepFirst:    selKeepFirst,
			DropZeroRows: selDropZero,
		}

		appLogger.Info("getting columns", "columns", spec.Names)

		if err = selectColumns(args[0], sep, spec); err != nil {
			die("failed to select columns: %s", err)
		}
	},
}

func init() {
	RootCmd.AddCommand(selectcolsCmd)

	// flags specific to this sub-command
	selectcolsCmd.Flags().StringVarP(&selColumnsFile, "columns", "c", "",
		"text file with one column name per line")
	selectcolsCmd.Flags().StringVarP(&selSeparator, "separator", "s", ",", "separator for columns")
	selectcolsCmd.Flags().StringVarP(&selOutput, "output", "o", "", "output file (default STDOUT)")
	selectcolsCmd.Flags().BoolVarP(&selKeepFirst, "keep_first", "k", false, "keep the first column")
	selectcolsCmd.Flags().BoolVarP(&selDropZero, "drop_zero", "z", false, "drop rows that are all zero")
}

// readColumnNames reads the column names file, dying on failure.
func readColumnNames(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		die("could not open columns file: %s", err)
	}

	defer f.Close()

	names, err := selectcols.ReadColumnNames(f)
	if err != nil {
		die("could not read columns file: %s", err)
	}

	return names
}

// selectColumns streams the table at path to our output.
func selectColumns(path, sep string, spec selectcols.ColumnSpec) error {
	table, err := os.Open(path)
	if err != nil {
		return err
	}

	defer table.Close()

	return writeOutput(selOutput, func(out io.Writer) error {
		return selectcols.Select(table, out, sep, spec, appLogger)
	})
}
