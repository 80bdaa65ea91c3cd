package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

func prepare(report *Report, options *common.PrintOptions) *Report {
	if options != nil && !options.IncludeLines {
		return report.withoutLines()
	}
	return report
}

func PrintReportJSON(report *Report, output io.Writer, options *common.PrintOptions) error {
	encoder := json.NewEncoder(output)
	if options != nil && options.Indent > 0 {
		encoder.SetIndent("", strings.Repeat(" ", options.Indent))
	}
	return encoder.Encode(prepare(report, options))
}

func PrintReportYAML(report *Report, output io.Writer, options *common.PrintOptions) error {
	encoder := yaml.NewEncoder(output)
	if options != nil && options.Indent > 0 {
		encoder.SetIndent(options.Indent)
	}
	if err := encoder.Encode(prepare(report, options)); err != nil {
		return err
	}
	return encoder.Close()
}

// PrintReportText prints one line per block.
func PrintReportText(report *Report, output io.Writer, options *common.PrintOptions) error {
	report = prepare(report, options)
	for _, rr := range report.Routines {
		if _, err := fmt.Fprintf(output, "%s (%d instructions, %d blocks)\n", rr.Routine, rr.Size, len(rr.Blocks)); err != nil {
			return err
		}
		for i, b := range rr.Blocks {
			if _, err := fmt.Fprintf(output, "  B%d %s\n", i, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func PickPrintFunc(format string) (func(*Report, io.Writer, *common.PrintOptions) error, error) {
	switch strings.ToUpper(format) {
	case "JSON":
		return PrintReportJSON, nil
	case "YAML":
		return PrintReportYAML, nil
	case "TEXT":
		return PrintReportText, nil
	case "ASCIITREE":
		return PrintReportAsciiTree, nil
	case "DOT":
		return PrintReportDOT, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
