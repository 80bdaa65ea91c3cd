package analysis

import (
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Report is the block partition of every routine in a unit.
type Report struct {
	Unit     string          `json:"unit" yaml:"unit"`
	Routines []RoutineReport `json:"routines" yaml:"routines"`
}

type RoutineReport struct {
	Routine string  `json:"routine" yaml:"routine"`
	Size    int     `json:"size" yaml:"size"`
	Blocks  []Block `json:"blocks" yaml:"blocks"`
}

// AnalyzeUnit partitions each routine of unit independently.
func AnalyzeUnit(unit *common.Unit, options Options) *Report {
	report := &Report{Unit: unit.Name, Routines: make([]RoutineReport, 0, len(unit.Routines))}
	for _, r := range unit.Routines {
		report.Routines = append(report.Routines, RoutineReport{
			Routine: r.Signature(),
			Size:    r.Size(),
			Blocks:  AnalyzeWithOptions(r, options),
		})
	}
	return report
}

// withoutLines returns a copy of the report with line sets cleared.
func (rep *Report) withoutLines() *Report {
	stripped := &Report{Unit: rep.Unit, Routines: make([]RoutineReport, len(rep.Routines))}
	for i, rr := range rep.Routines {
		blocks := make([]Block, len(rr.Blocks))
		for j, b := range rr.Blocks {
			blocks[j] = Block{FirstIndex: b.FirstIndex, LastIndex: b.LastIndex}
		}
		stripped.Routines[i] = RoutineReport{Routine: rr.Routine, Size: rr.Size, Blocks: blocks}
	}
	return stripped
}
