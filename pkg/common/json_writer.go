package common

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func PrintUnitJSON(unit *Unit, output io.Writer, options *PrintOptions) error {
	encoder := json.NewEncoder(output)
	if options != nil && options.Indent > 0 {
		encoder.SetIndent("", strings.Repeat(" ", options.Indent))
	}
	return encoder.Encode(unit)
}

func PrintUnitYAML(unit *Unit, output io.Writer, options *PrintOptions) error {
	encoder := yaml.NewEncoder(output)
	if options != nil && options.Indent > 0 {
		encoder.SetIndent(options.Indent)
	}
	if err := encoder.Encode(unit); err != nil {
		return err
	}
	return encoder.Close()
}

func ReadUnitJSON(input io.Reader) (*Unit, error) {
	var unit Unit
	decoder := json.NewDecoder(input)
	if err := decoder.Decode(&unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

func ReadUnitYAML(input io.Reader) (*Unit, error) {
	var unit Unit
	decoder := yaml.NewDecoder(input)
	if err := decoder.Decode(&unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// PickReadFunc selects a unit reader by format name or, failing that, by
// file extension.
func PickReadFunc(format string) (func(io.Reader) (*Unit, error), error) {
	switch strings.ToUpper(strings.TrimPrefix(filepath.Ext(format), ".")) {
	case "YAML", "YML":
		return ReadUnitYAML, nil
	case "JSON":
		return ReadUnitJSON, nil
	}
	switch strings.ToUpper(format) {
	case "JSON", "":
		return ReadUnitJSON, nil
	case "YAML", "YML":
		return ReadUnitYAML, nil
	default:
		return nil, fmt.Errorf("unknown input format: %s", format)
	}
}

func PickUnitPrintFunc(format string) (func(*Unit, io.Writer, *PrintOptions) error, error) {
	switch strings.ToUpper(format) {
	case "JSON":
		return PrintUnitJSON, nil
	case "YAML":
		return PrintUnitYAML, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
