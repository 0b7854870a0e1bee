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

// package cmd is the cobra file that enables subcommands and handles
// command-line args.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"
	"github.com/wtsi-ssg/kvasir/internal/errs"
)

const defaultLogBasename = "kvasir.log"

// Version gets set during build:
// go build -ldflags "-X github.com/wtsi-ssg/kvasir/cmd.Version=x.y.z".
var Version string

// appLogger is used for logging events in our commands. It is passed to the
// packages that do the work.
var appLogger = log15.New()

// these variables are accessible by all subcommands.
var (
	verbose bool
	quiet   bool
	debug   bool
	logPath string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "kvasir",
	Short: "kvasir combines, splits and trims sequencing files and tables.",
	Long: `kvasir combines, splits and trims sequencing files and tables.

Combine all the FASTQ files for each sample (found by a regular expression with
capture groups) in to one file per sample, or two if paired-end:
$ kvasir aggregate -r '(\w+)_L\d+_R(\d)' -p -o [/output/dir] [/fastq/dir]

Split per-sample files back in to their parts, using a table of read counts:
$ kvasir deconvolve -o [/output/dir] [/concatenated/dir] [counts.tsv]

Keep only certain columns of a table:
$ kvasir selectcols -c [columns.txt] -s tab [table.tsv]

Logging goes to STDERR; by default only warnings and errors are shown.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
	},
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(Version) //nolint:forbidigo
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen once to
// the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		die(err.Error())
	}
}

func init() {
	// set up logging to stderr
	appLogger.SetHandler(log15.LvlFilterHandler(log15.LvlWarn, log15.StderrHandler))

	RootCmd.AddCommand(versionCmd)

	// global flags
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "display info status messages")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all but error messages")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "display debug messages")
	RootCmd.PersistentFlags().StringVarP(&logPath, "log", "l", "",
		"also log to this file (or "+defaultLogBasename+" in this directory)")
}

// logLevel returns the level implied by our verbosity flags.
func logLevel() log15.Lvl {
	switch {
	case debug:
		return log15.LvlDebug
	case verbose:
		return log15.LvlInfo
	case quiet:
		return log15.LvlError
	default:
		return log15.LvlWarn
	}
}

// setupLogging configures appLogger according to our global flags.
func setupLogging() {
	lvl := logLevel()
	handler := log15.LvlFilterHandler(lvl, log15.StderrHandler)

	if logPath != "" {
		if fh := fileHandler(logPath); fh != nil {
			handler = log15.MultiHandler(handler, log15.LvlFilterHandler(lvl, fh))
		}
	}

	appLogger.SetHandler(handler)
}

// fileHandler returns a handler that logs to path, or a default file within it
// if it is a directory. Returns nil (after warning) if the file can't be opened.
func fileHandler(path string) log15.Handler {
	path, err := filepath.Abs(path)
	if err != nil {
		warn("Could not log to file [%s]: %s", path, err)

		return nil
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, defaultLogBasename)
	}

	fh, err := log15.FileHandler(path, log15.LogfmtFormat())
	if err != nil {
		warn("Could not log to file [%s]: %s", path, err)

		return nil
	}

	return fh
}

// info is a convenience to log a message at the Info level.
func info(msg string, a ...interface{}) {
	appLogger.Info(fmt.Sprintf(msg, a...))
}

// warn is a convenience to log a message at the Warn level.
func warn(msg string, a ...interface{}) {
	appLogger.Warn(fmt.Sprintf(msg, a...))
}

// die is a convenience to log a message at the Error level and exit non zero.
func die(msg string, a ...interface{}) {
	appLogger.Error(fmt.Sprintf(msg, a...))
	os.Exit(1)
}

// warnGroupErrors logs each of the per-group or per-sample errors that didn't
// stop the run. Configuration errors, which stop the whole run, are fatal.
func warnGroupErrors(what string, err error) {
	if err == nil {
		return
	}

	if errs.IsConfig(err) {
		die("%s failed: %s", what, err)
	}

	warn("%s completed with errors: %s", what, err)
}

// writeOutput calls write with STDOUT, or with a new file at path if path isn't
// empty. The file is removed if write fails, so that an error never leaves
// behind a file that looks complete.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = write(f)

	if errc := f.Close(); err == nil {
		err = errc
	}

	if err != nil {
		os.Remove(path)
	}

	return err
}
