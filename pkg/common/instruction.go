package common

import (
	"fmt"
	"strings"
)

// Instruction represents a single element of a routine body.
// This uses an adjacently tagged union format with a Type field and
// type-specific fields. Only the relevant fields for each type are populated.
type Instruction struct {
	Type Op `json:"type" yaml:"type"`

	// Label markers: the label's own name. Jumps: the target label.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// tableswitch, lookupswitch.
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
	Labels  []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Line markers.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`

	// Free-form operand: field or method reference, constant, local slot.
	Operand string `json:"operand,omitempty" yaml:"operand,omitempty"`
}

// Kind returns the kind of the instruction.
func (ins Instruction) Kind() Kind {
	return ins.Type.Kind()
}

// IsExecutable reports whether the instruction is neither a label nor a
// frame marker. Line markers are handled separately by every consumer.
func (ins Instruction) IsExecutable() bool {
	k := ins.Kind()
	return k != KindLabel && k != KindFrame
}

// Targets returns every label the instruction may transfer control to.
func (ins Instruction) Targets() []string {
	switch ins.Type.Class() {
	case ClassJump:
		if ins.Label != "" {
			return []string{ins.Label}
		}
	case ClassSwitch:
		targets := make([]string, 0, len(ins.Labels)+1)
		targets = append(targets, ins.Default)
		return append(targets, ins.Labels...)
	}
	return nil
}

func (ins Instruction) String() string {
	switch ins.Kind() {
	case KindLabel:
		return ins.Label + ":"
	case KindLine:
		return fmt.Sprintf(".line %d", ins.Line)
	case KindFrame:
		return ".frame"
	}
	var sb strings.Builder
	sb.WriteString(string(ins.Type))
	switch ins.Type.Class() {
	case ClassJump:
		sb.WriteString(" ")
		sb.WriteString(ins.Label)
	case ClassSwitch:
		sb.WriteString(" ")
		sb.WriteString(ins.Default)
		for _, l := range ins.Labels {
			sb.WriteString(" ")
			sb.WriteString(l)
		}
	default:
		if ins.Operand != "" {
			sb.WriteString(" ")
			sb.WriteString(ins.Operand)
		}
	}
	return sb.String()
}

// Constructor functions for creating instructions.

// NewLabel creates a label marker.
func NewLabel(name string) Instruction {
	return Instruction{Type: OpLabel, Label: name}
}

// NewLine creates a line-number marker.
func NewLine(line int) Instruction {
	return Instruction{Type: OpLine, Line: line}
}

// NewFrame creates a frame marker.
func NewFrame() Instruction {
	return Instruction{Type: OpFrame}
}

// NewOp creates an executable instruction with an optional operand.
func NewOp(op Op, operand string) Instruction {
	return Instruction{Type: op, Operand: operand}
}

// NewJump creates a conditional or unconditional jump to target.
func NewJump(op Op, target string) Instruction {
	return Instruction{Type: op, Label: target}
}

// NewSwitch creates a multi-way dispatch.
func NewSwitch(op Op, dflt string, labels ...string) Instruction {
	return Instruction{Type: op, Default: dflt, Labels: labels}
}

// NewProbe creates a probe instruction for the given block.
func NewProbe(block int) Instruction {
	return Instruction{Type: OpProbe, Operand: fmt.Sprintf("%d", block)}
}
