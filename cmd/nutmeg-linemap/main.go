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
	"github.com/spicery/nutmeg-blocks/pkg/linemap"
)

// Version is injected at build time via ldflags.
var Version = "dev"

const usage = `nutmeg-linemap - maps basic blocks to source lines

This tool reads a unit of routines and prints, for every block of every
routine, the source lines the block executes. With --bundle the map is
stored in a SQLite bundle instead; --dump prints the contents of a bundle.

Usage:
  nutmeg-linemap [options]

Options:
`

func main() {
	var showHelp, showVersion, migrate, dump, debug bool
	var bundleFile, inputFile, outputFile, inputFormat, format, configFile string

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", usage)
		pflag.PrintDefaults()
	}

	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.BoolVar(&showVersion, "version", false, "Show version")
	pflag.BoolVar(&migrate, "migrate", false, "Perform database migration")
	pflag.BoolVar(&dump, "dump", false, "Print the line map held in the bundle")
	pflag.StringVar(&bundleFile, "bundle", "", "Bundle file path")
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
		fmt.Printf("nutmeg-linemap version %s\n", Version)
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

	if dump && bundleFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --dump requires --bundle\n")
		pflag.Usage()
		os.Exit(1)
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

	if bundleFile == "" {
		unit, err := assembler.ReadUnitFile(inputFile, inputFormat)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read unit")
		}
		lines := linemap.NewLineMapper(options).MapLines(unit)
		if err := printEntries(lines.Entries(), config, output); err != nil {
			log.Fatal().Err(err).Msg("failed to write line map")
		}
		return
	}

	// Check if the bundle file exists.
	_, err = os.Stat(bundleFile)
	fileExists := err == nil

	store, err := linemap.NewStore(bundleFile, options, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open bundle")
	}
	defer store.Close()

	upToDate, err := store.CheckMigration()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to check migration status")
	}

	if !upToDate {
		// A fresh bundle is migrated automatically; an existing one needs
		// --migrate.
		if fileExists && !migrate {
			log.Fatal().Str("bundle", bundleFile).Msg("database schema is not up to date, use --migrate to update")
		}
		if err := store.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		log.Info().Str("bundle", bundleFile).Bool("created", !fileExists).Msg("database migrated")
	}

	if dump {
		lines, err := store.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load bundle")
		}
		if err := printEntries(lines.Entries(), config, output); err != nil {
			log.Fatal().Err(err).Msg("failed to write line map")
		}
		return
	}

	unit, err := assembler.ReadUnitFile(inputFile, inputFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read unit")
	}
	if err := store.SaveUnit(unit); err != nil {
		log.Fatal().Err(err).Msg("failed to save unit")
	}
	log.Info().Str("unit", unit.Name).Int("routines", len(unit.Routines)).Msg("bundling completed")
}

func printEntries(entries []linemap.Entry, config *common.Config, output io.Writer) error {
	switch strings.ToUpper(config.Format) {
	case "YAML":
		encoder := yaml.NewEncoder(output)
		encoder.SetIndent(config.Indent)
		if err := encoder.Encode(entries); err != nil {
			return err
		}
		return encoder.Close()
	case "JSON":
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", strings.Repeat(" ", config.Indent))
		return encoder.Encode(entries)
	default:
		return fmt.Errorf("unknown format: %s", config.Format)
	}
}
