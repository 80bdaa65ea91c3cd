package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	pflag "github.com/spf13/pflag"

	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/assembler"
	"github.com/spicery/nutmeg-blocks/pkg/checker"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `nutmeg-blocks - basic block partitioner

This tool reads a unit of routines (JSON, YAML or the .nasm text form) and
prints the basic blocks of every routine together with the source lines
each block executes.

Usage:
  nutmeg-blocks [options]

Options:
`

func main() {
	var showHelp, showVersion, noLines, check, debug bool
	var inputFile, outputFile, inputFormat, format, configFile string
	var indent, threshold int

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.StringVarP(&inputFile, "input", "i", "", "Input file (defaults to stdin)")
	pflag.StringVarP(&outputFile, "output", "o", "", "Output file (defaults to stdout)")
	pflag.StringVar(&inputFormat, "input-format", "", "Input format (JSON, YAML, NASM); defaults to the input file extension")
	pflag.StringVarP(&format, "format", "f", "", "Output format (JSON, YAML, TEXT, ASCIITREE, DOT)")
	pflag.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	pflag.IntVar(&indent, "indent", 0, "Indentation for JSON and YAML output")
	pflag.IntVar(&threshold, "array-store-threshold", 0, "Routine size above which array accesses stop ending blocks")
	pflag.BoolVar(&noLines, "no-lines", false, "Suppress line sets in output")
	pflag.BoolVar(&check, "check", false, "Validate the unit before partitioning")
	pflag.BoolVar(&debug, "debug", false, "Enable debug logging")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("nutmeg-blocks version %s\n", Version)
		os.Exit(0)
	}

	// Reject any positional arguments.
	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Error: Unexpected positional arguments. Use --input and --output flags instead.\n\n")
		pflag.Usage()
		os.Exit(1)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	config, err := common.LoadConfig(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Command line flags override the configuration file and environment.
	if pflag.CommandLine.Changed("format") {
		config.Format = format
	}
	if pflag.CommandLine.Changed("indent") {
		config.Indent = indent
	}
	if pflag.CommandLine.Changed("array-store-threshold") {
		config.ArrayStoreThreshold = threshold
	}
	if noLines {
		config.IncludeLines = false
	}

	printFunc, err := analysis.PickPrintFunc(config.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid output format")
	}

	unit, err := assembler.ReadUnitFile(inputFile, inputFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read unit")
	}
	log.Debug().Str("unit", unit.Name).Int("routines", len(unit.Routines)).Msg("read unit")

	if check {
		c := checker.NewChecker()
		if !c.CheckUnit(unit) {
			c.ReportErrors(os.Stderr)
			os.Exit(1)
		}
	}

	report := analysis.AnalyzeUnit(unit, analysis.Options{ArrayStoreThreshold: config.ArrayStoreThreshold})
	for _, rr := range report.Routines {
		log.Debug().Str("routine", rr.Routine).Int("size", rr.Size).Int("blocks", len(rr.Blocks)).Msg("partitioned")
	}

	// Determine output destination.
	var output io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile) // #nosec G304 - CLI tool writes to user-specified output files
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create output file")
		}
		defer file.Close()
		output = file
	}

	if err := printFunc(report, output, &config.PrintOptions); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}
}
