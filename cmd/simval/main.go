// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command simval compares the fields of a candidate simulation run
// with those of a reference run and reports, field by field, whether
// the two distributions agree.
//
// Usage:
//
//	simval -i candidate -r reference [flags]
//
// For every numeric field of the candidate table, simval bins the
// candidate and reference samples on the same binning, scales the
// reference to the candidate's record count, prints summary
// statistics of both, a chi-squared and a Kolmogorov agreement test,
// and then the outcome of five fixed rules.
//
// Inputs may be text, CSV, TSV, XLSX, JSON or JSON Lines files,
// optionally compressed with gzip, bzip2 or xz. An input may also be
// a glob pattern, whose matching files are read as one table, or "-"
// for standard input.
//
// The field filter (-f) supports the following query syntax:
//
//	.name:regexp  - The field name matches regexp (anchored)
//	.glob:pattern - The field name matches the glob pattern
//	key:(x y ...) - Test if key matches any of x, y, etc.
//	x y ...       - Test if x, y, etc. are all true
//	x AND y       - Same as x y
//	x OR y        - Test if x or y are true
//	-x            - Negate x
//	(...)         - Subexpression
//
// Defaults for most flags can be set with SIMVAL_* environment
// variables, also read from a .env file in the current directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/SuperNEMO-DBD/SimulationValidationTool/config"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/dataset"
	"github.com/SuperNEMO-DBD/SimulationValidationTool/report"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // candidate unreadable, or a field failed with --strict
	exitUsage  = 2
)

func main() {
	log.SetPrefix("")
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options are the command-line settings not carried by config.Config.
type options struct {
	input, reference string
	verbose          bool
}

func run(args []string, stdout, stderr io.Writer) int {
	if err := godotenv.Overload(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	// Validated once flags are applied.
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	code := exitOK
	var opts options
	cmd := &cobra.Command{
		Use:   "simval -i candidate -r reference [flags]",
		Short: "Compare a simulation run with a reference run, field by field",
		Long: `simval compares every numeric field of a candidate dataset with the same
field of a reference dataset. For each field it prints summary statistics
of both, a chi-squared and a Kolmogorov agreement test, and the failing
rules, or "All Tests Passed".

Inputs may be text, CSV, TSV, XLSX, JSON or JSON Lines files, optionally
compressed with gzip, bzip2 or xz. An input may be a glob pattern, whose
matching files are read as one table, or "-" for standard input.

The field filter supports the following query syntax:

	.name:regexp  - The field name matches regexp (anchored)
	.glob:pattern - The field name matches the glob pattern
	key:(x y ...) - Test if key matches any of x, y, etc.
	x y ...       - Test if x, y, etc. are all true
	x AND y       - Same as x y
	x OR y        - Test if x or y are true
	-x            - Negate x
	(...)         - Subexpression`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.input == "" || opts.reference == "" {
				fmt.Fprintln(stdout, "Missing file name input.")
				cmd.Usage()
				return nil
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			code = compare(cmd.Context(), &cfg, opts, stdout, stderr)
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVarP(&opts.input, "inputFile", "i", "", "candidate dataset `locator`")
	flags.StringVarP(&opts.reference, "referenceFile", "r", "", "reference dataset `locator`")
	flags.StringVarP(&cfg.Table, "table", "t", cfg.Table, "`name` of the table to read from both datasets")
	flags.IntVarP(&cfg.NBins, "nbins", "n", cfg.NBins, "bin `count` for fields without their own binning")
	flags.StringVarP(&cfg.FieldConfigPath, "config", "c", cfg.FieldConfigPath, "YAML `file` of per-field binning")
	flags.StringVarP(&cfg.WeightField, "weight", "w", cfg.WeightField, "`field` holding per-record weights")
	flags.StringVarP(&cfg.Filter, "filter", "f", cfg.Filter, "compare only fields matching `query`")
	flags.IntVarP(&cfg.Jobs, "jobs", "j", cfg.Jobs, "compare `n` fields in parallel")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "exit with status 1 if any field fails")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flags.SetNormalizeFunc(flagAliases)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "simval: %v\n", err)
		return exitUsage
	}
	return code
}

// flagAliases maps alternative flag names to their canonical names.
func flagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "refFile", "referenceFileName":
		name = "referenceFile"
	case "inputFileName":
		name = "inputFile"
	}
	return pflag.NormalizedName(name)
}

// compare runs the comparison and returns the exit code.
func compare(ctx context.Context, cfg *config.Config, opts options, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "", 0)

	if err := cfg.LoadFields(); err != nil {
		logger.Printf("simval: %v", err)
		return exitUsage
	}
	dopts := dataset.Options{Table: cfg.Table}
	fmt.Fprintf(stdout, "Processing %s\n", opts.input)
	cand, err := dataset.Open(opts.input, dopts)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v\n", err)
		return exitFailed
	}
	ref, err := dataset.Open(opts.reference, dopts)
	if err != nil {
		fmt.Fprintf(stdout, "WARNING: No valid reference file given. Bad reference %s: %v\n", opts.reference, err)
		ref = nil
	}

	d := &report.Driver{
		Cand:        cand,
		Ref:         ref,
		BinSpec:     cfg.BinSpec,
		WeightField: cfg.WeightField,
		Filter:      cfg.FieldFilter(),
		Workers:     cfg.Jobs,
	}
	if opts.verbose {
		d.Log = logger
	}
	sum, err := d.Run(ctx, stdout)
	if err != nil {
		logger.Printf("simval: %v", err)
		return exitFailed
	}
	if cfg.Strict && sum.Failed > 0 {
		return exitFailed
	}
	return exitOK
}
