// Package instrument rewrites routines so that every basic block records its
// own execution. It is driven by the block notifications of a tracker.
package instrument

import (
	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/common"
	"github.com/spicery/nutmeg-blocks/pkg/tracker"
)

// Probe describes a planted probe instruction.
type Probe struct {
	Block   int  `json:"block" yaml:"block"`
	Index   int  `json:"index" yaml:"index"`     // Position in the rewritten routine.
	Finally bool `json:"finally" yaml:"finally"` // Planted inside a catch-all handler region.
}

// ProbeInserter is the Observer and next Visitor of a tracker. Each block
// notification arms a probe, which is planted just before the next
// executable instruction, so that labels, line markers and frames that
// open the block stay ahead of it.
type ProbeInserter struct {
	next         common.Visitor
	block        int
	pending      bool
	written      int
	finallyDepth int
	probes       common.List[Probe]
}

var (
	_ tracker.Observer = (*ProbeInserter)(nil)
	_ common.Visitor   = (*ProbeInserter)(nil)
)

func NewProbeInserter(next common.Visitor) *ProbeInserter {
	return &ProbeInserter{next: next, block: -1}
}

func (p *ProbeInserter) RegisterNewMethodStart() {
	p.arm()
}

func (p *ProbeInserter) RegisterNewBlock() {
	p.arm()
}

func (p *ProbeInserter) RegisterFinallyBlockStart() {
	p.finallyDepth++
}

func (p *ProbeInserter) RegisterFinallyBlockEnd() {
	if p.finallyDepth > 0 {
		p.finallyDepth--
	}
}

// A block made only of markers never gets its probe; the next block's
// probe replaces it.
func (p *ProbeInserter) arm() {
	p.block++
	p.pending = true
}

func (p *ProbeInserter) VisitHandler(h common.Handler) {
	p.next.VisitHandler(h)
}

func (p *ProbeInserter) VisitInstruction(ins common.Instruction) {
	if p.pending && ins.Kind() == common.KindInstruction {
		p.probes.Add(Probe{Block: p.block, Index: p.written, Finally: p.finallyDepth > 0})
		p.emit(common.NewProbe(p.block))
		p.pending = false
	}
	p.emit(ins)
}

func (p *ProbeInserter) emit(ins common.Instruction) {
	p.next.VisitInstruction(ins)
	p.written++
}

// Probes returns the probes planted so far, in order.
func (p *ProbeInserter) Probes() []Probe {
	return p.probes.Items()
}

// Blocks returns the number of blocks announced so far.
func (p *ProbeInserter) Blocks() int {
	return p.block + 1
}

// Result is one rewritten routine.
type Result struct {
	Routine *common.Routine `json:"routine" yaml:"routine"`
	Blocks  int             `json:"blocks" yaml:"blocks"`
	Probes  []Probe         `json:"probes" yaml:"probes"`
}

// Instrument replays r through a tracker into a probe inserter and returns
// the rewritten routine.
func Instrument(r *common.Routine, options analysis.Options) *Result {
	var out common.Recorder
	inserter := NewProbeInserter(&out)
	tracker.TrackWithOptions(r, options, inserter, inserter)
	return &Result{
		Routine: out.Routine(r),
		Blocks:  inserter.Blocks(),
		Probes:  inserter.Probes(),
	}
}

// InstrumentUnit rewrites every routine of unit.
func InstrumentUnit(unit *common.Unit, options analysis.Options) (*common.Unit, []*Result) {
	rewritten := &common.Unit{Name: unit.Name, Routines: make([]*common.Routine, 0, len(unit.Routines))}
	results := make([]*Result, 0, len(unit.Routines))
	for _, r := range unit.Routines {
		res := Instrument(r, options)
		rewritten.Routines = append(rewritten.Routines, res.Routine)
		results = append(results, res)
	}
	return rewritten, results
}
