package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	pflag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/assembler"
	"github.com/spicery/nutmeg-blocks/pkg/common"
	"github.com/spicery/nutmeg-blocks/pkg/instrument"
	"github.com/spicery/nutmeg-blocks/pkg/tracker"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `nutmeg-instrument - plants a probe at the start of every basic block

This tool reads a unit of routines and replays each routine against its
block partition. By default it writes the unit back with a probe planted
ahead of the first executable instruction of every block. With --events it
prints the block notifications instead.

Usage:
  nutmeg-instrument [options]

Options:
`

type routineEvents struct {
	Routine string          `json:"routine" yaml:"routine"`
	Events  []tracker.Event `json:"events" yaml:"events"`
}

func main() {
	var showHelp, showVersion, events, debug bool
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
	pflag.BoolVar(&events, "events", false, "Print block notifications instead of the rewritten unit")
	pflag.BoolVar(&debug, "debug", false, "Enable debug logging")

	pflag.Parse()

	if showHelp {
		pflag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("nutmeg-instrument version %s\n", Version)
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
	options := analysis.Options{ArrayStoreThreshold: config.ArrayStoreThreshold}

	unit, err := assembler.ReadUnitFile(inputFile, inputFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read unit")
	}

	var output io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile) // #nosec G304 - CLI tool writes to user-specified output files
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create output file")
		}
		defer file.Close()
		output = file
	}

	if events {
		if err := printEvents(unit, options, config, output); err != nil {
			log.Fatal().Err(err).Msg("failed to write events")
		}
		return
	}

	printFunc, err := common.PickUnitPrintFunc(config.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid output format")
	}

	rewritten, results := instrument.InstrumentUnit(unit, options)
	for _, res := range results {
		log.Debug().Str("routine", res.Routine.Signature()).Int("blocks", res.Blocks).Int("probes", len(res.Probes)).Msg("instrumented")
	}

	if err := printFunc(rewritten, output, &config.PrintOptions); err != nil {
		log.Fatal().Err(err).Msg("failed to write unit")
	}
}

func printEvents(unit *common.Unit, options analysis.Options, config *common.Config, output io.Writer) error {
	all := make([]routineEvents, 0, len(unit.Routines))
	for _, r := range unit.Routines {
		var rec tracker.Recorder
		tracker.TrackWithOptions(r, options, &rec, &rec)
		all = append(all, routineEvents{Routine: r.Signature(), Events: rec.Events()})
	}

	switch strings.ToUpper(config.Format) {
	case "YAML":
		encoder := yaml.NewEncoder(output)
		encoder.SetIndent(config.Indent)
		if err := encoder.Encode(all); err != nil {
			return err
		}
		return encoder.Close()
	case "JSON":
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", strings.Repeat(" ", config.Indent))
		return encoder.Encode(all)
	default:
		return fmt.Errorf("unknown format: %s", config.Format)
	}
}
