package common

import "fmt"

// Handler declares an exception-protected region of a routine. An empty Type
// is a catch-all handler, as used for finally blocks.
type Handler struct {
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
	Handler string `json:"handler" yaml:"handler"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"`
}

// IsCatchAll reports whether the handler matches any thrown value.
func (h Handler) IsCatchAll() bool {
	return h.Type == ""
}

// Routine is a single executable routine (method body) with its handler
// declarations.
type Routine struct {
	Owner        string        `json:"owner,omitempty" yaml:"owner,omitempty"`
	Name         string        `json:"name" yaml:"name"`
	Descriptor   string        `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
	Handlers     []Handler     `json:"handlers,omitempty" yaml:"handlers,omitempty"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
}

// Unit groups the routines of one class or compilation unit.
type Unit struct {
	Name     string     `json:"name" yaml:"name"`
	Routines []*Routine `json:"routines" yaml:"routines"`
}

// Size returns the number of instructions, markers included.
func (r *Routine) Size() int {
	return len(r.Instructions)
}

// Get returns the instruction at index i.
func (r *Routine) Get(i int) Instruction {
	return r.Instructions[i]
}

// Signature identifies the routine within its unit.
func (r *Routine) Signature() string {
	if r.Owner == "" {
		return r.Name + r.Descriptor
	}
	return fmt.Sprintf("%s.%s%s", r.Owner, r.Name, r.Descriptor)
}

// Visitor receives a traversal of a routine. Handlers are visited before
// instructions, and instructions are visited in order.
type Visitor interface {
	VisitHandler(h Handler)
	VisitInstruction(ins Instruction)
}

// Accept drives v over the routine.
func (r *Routine) Accept(v Visitor) {
	for _, h := range r.Handlers {
		v.VisitHandler(h)
	}
	for _, ins := range r.Instructions {
		v.VisitInstruction(ins)
	}
}

// Recorder is a Visitor that rebuilds the routine it is shown.
type Recorder struct {
	handlers     List[Handler]
	instructions List[Instruction]
}

func (rec *Recorder) VisitHandler(h Handler) {
	rec.handlers.Add(h)
}

func (rec *Recorder) VisitInstruction(ins Instruction) {
	rec.instructions.Add(ins)
}

// Routine returns a routine carrying the recorded handlers and instructions
// under the identity of template.
func (rec *Recorder) Routine(template *Routine) *Routine {
	return &Routine{
		Owner:        template.Owner,
		Name:         template.Name,
		Descriptor:   template.Descriptor,
		Handlers:     rec.handlers.Items(),
		Instructions: rec.instructions.Items(),
	}
}

// Instructions returns the recorded instructions.
func (rec *Recorder) Instructions() []Instruction {
	return rec.instructions.Items()
}
