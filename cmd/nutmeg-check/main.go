package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	pflag "github.com/spf13/pflag"

	"github.com/spicery/nutmeg-blocks/pkg/assembler"
	"github.com/spicery/nutmeg-blocks/pkg/checker"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `nutmeg-check - validates a unit of routines

This tool reads a unit of routines and checks that every instruction is
known, labels are unique and every jump, switch and handler refers to a
defined label. If validation fails, it exits with a non-zero status;
otherwise it emits the unit unchanged to stdout.

Usage:
  nutmeg-check [options]

Options:
`

func main() {
	var showHelp, showVersion, debug bool
	var inputFile, outputFile, inputFormat, format, configFile string

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.StringVarP(&inputFile, "input", "i", "", "Input file (defaults to stdin)")
	pflag.StringVarP(&outputFile, "output", "o", "", "Output file (defaults to stdout)")
	pflag.StringVar(&inputFormat, "input-format", "", "Input format (JSON, YAML, NASM); defaults to the input file extension")
	pflag.StringVarP(&format, "format", "f", "", "Output format (JSON, YAML)")
	pflag.StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	pflag.BoolVar(&debug, "debug", false, "Enable debug logging")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("nutmeg-check version %s\n", Version)
		os.Exit(0)
	}

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
	if pflag.CommandLine.Changed("format") {
		config.Format = format
	}

	printFunc, err := common.PickUnitPrintFunc(config.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid output format")
	}

	unit, err := assembler.ReadUnitFile(inputFile, inputFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read unit")
	}

	c := checker.NewChecker()
	if !c.CheckUnit(unit) {
		c.ReportErrors(os.Stderr)
		os.Exit(1)
	}
	log.Debug().Str("unit", unit.Name).Int("routines", len(unit.Routines)).Msg("unit is well formed")

	var output io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile) // #nosec G304 - CLI tool writes to user-specified output files
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create output file")
		}
		defer file.Close()
		output = file
	}

	if err := printFunc(unit, output, &config.PrintOptions); err != nil {
		log.Fatal().Err(err).Msg("failed to write unit")
	}
}
