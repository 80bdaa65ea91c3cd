package checker

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Bug is an internal inconsistency in the checker's input, such as a nil
// routine, rather than a problem with the routine itself.
type Bug struct {
	Message string
	Routine string
}

// Issue is a well-formedness problem in a routine. Index is the offending
// instruction, or -1 when the problem is not tied to one.
type Issue struct {
	Message string
	Routine string
	Index   int
}

func (i Issue) Error() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Routine, i.Message)
	}
	return fmt.Sprintf("%s: %s, at instruction %d", i.Routine, i.Message, i.Index)
}

// Checker validates that routines are well formed before they are analysed.
// The partitioner and tracker assume well-formed input and do not check.
type Checker struct {
	Bugs   []Bug   // Accumulated internal errors (bugs).
	Issues []Issue // Accumulated validation errors.
}

// NewChecker creates a new checker instance.
func NewChecker() *Checker {
	return &Checker{
		Bugs:   []Bug{},
		Issues: []Issue{},
	}
}

func (c *Checker) ReportErrors(output io.Writer) {
	// First report any bugs and then move onto issues.
	if len(c.Bugs) > 0 {
		fmt.Fprintln(output, "Bug in the input detected; the unit is faulty:")
		for n, bug := range c.Bugs {
			fmt.Fprintf(output, "  [%d]. %s, in %s\n", n+1, bug.Message, bug.Routine)
		}
	}
	if len(c.Issues) > 0 {
		fmt.Fprintln(output, "Errors found in the routines:")
		for n, issue := range c.Issues {
			fmt.Fprintf(output, "  [%d]. %s\n", n+1, issue.Error())
		}
	}
}

// Err returns the bugs and issues found so far as one error, or nil.
func (c *Checker) Err() error {
	var errs *multierror.Error
	for _, bug := range c.Bugs {
		errs = multierror.Append(errs, fmt.Errorf("bug: %s, in %s", bug.Message, bug.Routine))
	}
	for _, issue := range c.Issues {
		errs = multierror.Append(errs, issue)
	}
	return errs.ErrorOrNil()
}

// CheckUnit validates every routine of the unit.
func (c *Checker) CheckUnit(unit *common.Unit) bool {
	if unit == nil {
		c.addBug("invalid unit: nil", "")
		return false
	}
	for n, r := range unit.Routines {
		if r == nil {
			c.addBug(fmt.Sprintf("routine %d is nil", n), unit.Name)
			continue
		}
		c.Check(r)
	}
	return c.ok()
}

// Check validates a single routine.
func (c *Checker) Check(r *common.Routine) bool {
	name := r.Signature()
	labels := make(map[string]int)

	for i, ins := range r.Instructions {
		info, known := common.LookupOp(ins.Type)
		if !known {
			c.addIssue(fmt.Sprintf("unknown instruction type %q", ins.Type), name, i)
			continue
		}
		switch info.Kind {
		case common.KindLabel:
			if ins.Label == "" {
				c.addIssue("label without a name", name, i)
			} else if first, dup := labels[ins.Label]; dup {
				c.addIssue(fmt.Sprintf("label %s already defined at instruction %d", ins.Label, first), name, i)
			} else {
				labels[ins.Label] = i
			}
		case common.KindLine:
			if ins.Line <= 0 {
				c.addIssue(fmt.Sprintf("invalid line number %d", ins.Line), name, i)
			}
		}
		if info.Class == common.ClassJump && ins.Label == "" {
			c.addIssue(fmt.Sprintf("%s without a target", ins.Type), name, i)
		}
		if info.Class == common.ClassSwitch && ins.Default == "" {
			c.addIssue(fmt.Sprintf("%s without a default label", ins.Type), name, i)
		}
	}

	for i, ins := range r.Instructions {
		for _, target := range ins.Targets() {
			if _, ok := labels[target]; target != "" && !ok {
				c.addIssue(fmt.Sprintf("jump target %s is not defined", target), name, i)
			}
		}
	}

	for _, h := range r.Handlers {
		for _, l := range []string{h.Start, h.End, h.Handler} {
			if _, ok := labels[l]; !ok {
				c.addIssue(fmt.Sprintf("handler region %s..%s refers to undefined label %q", h.Start, h.End, l), name, -1)
			}
		}
	}

	return c.ok()
}

func (c *Checker) ok() bool {
	return len(c.Issues) == 0 && len(c.Bugs) == 0
}

func (c *Checker) addIssue(message, routine string, index int) {
	c.Issues = append(c.Issues, Issue{Message: message, Routine: routine, Index: index})
}

func (c *Checker) addBug(message, routine string) {
	c.Bugs = append(c.Bugs, Bug{Message: message, Routine: routine})
}
