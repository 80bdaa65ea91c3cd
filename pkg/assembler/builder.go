package assembler

import (
	"fmt"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Assembler hands out routine builders for one unit.
type Assembler struct {
	owner    string
	routines common.List[*common.Routine]
}

// NewAssembler creates an assembler whose routines belong to owner.
func NewAssembler(owner string) *Assembler {
	return &Assembler{owner: owner}
}

// RoutineBuilder accumulates the body of one routine.
type RoutineBuilder struct {
	Assembler    *Assembler
	name         string
	descriptor   string
	instructions common.List[common.Instruction]
	handlers     common.List[common.Handler]
	labelCounter int
}

func (a *Assembler) NewRoutineBuilder(name, descriptor string) *RoutineBuilder {
	return &RoutineBuilder{
		Assembler:  a,
		name:       name,
		descriptor: descriptor,
	}
}

// Unit returns the routines built so far.
func (a *Assembler) Unit() *common.Unit {
	return &common.Unit{Name: a.owner, Routines: a.routines.Items()}
}

// AllocateLabel returns a fresh label, L0, L1, ... per routine.
func (rb *RoutineBuilder) AllocateLabel() Label {
	label := NewSimpleLabel(fmt.Sprintf("L%d", rb.labelCounter))
	rb.labelCounter++
	return label
}

// AllocateHandlerLabel returns a fresh label for a handler entry.
func (rb *RoutineBuilder) AllocateHandlerLabel() Label {
	label := NewHandlerLabel(fmt.Sprintf("H%d", rb.labelCounter))
	rb.labelCounter++
	return label
}

// Len returns the number of instructions planted so far.
func (rb *RoutineBuilder) Len() int {
	return rb.instructions.Len()
}

func (rb *RoutineBuilder) PlantLabel(label Label) *RoutineBuilder {
	rb.instructions.Add(common.NewLabel(label.Name()))
	return rb
}

func (rb *RoutineBuilder) PlantLine(line int) *RoutineBuilder {
	rb.instructions.Add(common.NewLine(line))
	return rb
}

func (rb *RoutineBuilder) PlantFrame() *RoutineBuilder {
	rb.instructions.Add(common.NewFrame())
	return rb
}

// Plant adds an executable instruction; operand may be empty.
func (rb *RoutineBuilder) Plant(op common.Op, operand string) *RoutineBuilder {
	rb.instructions.Add(common.NewOp(op, operand))
	return rb
}

// PlantOps adds several operand-less instructions.
func (rb *RoutineBuilder) PlantOps(ops ...common.Op) *RoutineBuilder {
	for _, op := range ops {
		rb.Plant(op, "")
	}
	return rb
}

func (rb *RoutineBuilder) PlantJump(op common.Op, target Label) *RoutineBuilder {
	rb.instructions.Add(common.NewJump(op, target.Name()))
	return rb
}

func (rb *RoutineBuilder) PlantSwitch(op common.Op, dflt Label, cases ...Label) *RoutineBuilder {
	names := make([]string, len(cases))
	for i, c := range cases {
		names[i] = c.Name()
	}
	rb.instructions.Add(common.NewSwitch(op, dflt.Name(), names...))
	return rb
}

// PlantTryCatch declares a handler region. An empty exceptionType makes it
// a catch-all.
func (rb *RoutineBuilder) PlantTryCatch(start, end, handler Label, exceptionType string) *RoutineBuilder {
	rb.handlers.Add(common.Handler{
		Start:   start.Name(),
		End:     end.Name(),
		Handler: handler.Name(),
		Type:    exceptionType,
	})
	return rb
}

// Build returns the routine and adds it to the assembler's unit.
func (rb *RoutineBuilder) Build() *common.Routine {
	r := &common.Routine{
		Owner:        rb.Assembler.owner,
		Name:         rb.name,
		Descriptor:   rb.descriptor,
		Handlers:     rb.handlers.Items(),
		Instructions: rb.instructions.Items(),
	}
	rb.Assembler.routines.Add(r)
	return r
}
