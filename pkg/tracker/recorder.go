package tracker

import (
	"fmt"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

type EventKind string

const (
	EventMethodStart  EventKind = "method-start"
	EventNewBlock     EventKind = "new-block"
	EventFinallyStart EventKind = "finally-start"
	EventFinallyEnd   EventKind = "finally-end"
)

// Event is one notification, tagged with the index of the instruction being
// visited when it fired. Method start is tagged -1.
type Event struct {
	Kind  EventKind `json:"kind" yaml:"kind"`
	Index int       `json:"index" yaml:"index"`
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%d", e.Kind, e.Index)
}

// Recorder logs notifications. It is both the Observer and the next Visitor
// of a tracker so that it can tell which instruction each notification
// belongs to; it forwards the traversal to Next when set.
type Recorder struct {
	Next   common.Visitor
	events common.List[Event]
	seen   int
}

func (r *Recorder) RegisterNewMethodStart() {
	r.events.Add(Event{Kind: EventMethodStart, Index: -1})
}

// Block boundaries and handler starts fire before the instruction is
// forwarded, so the current instruction is the next one to arrive.
func (r *Recorder) RegisterNewBlock() {
	r.events.Add(Event{Kind: EventNewBlock, Index: r.seen})
}

func (r *Recorder) RegisterFinallyBlockStart() {
	r.events.Add(Event{Kind: EventFinallyStart, Index: r.seen})
}

// Handler ends fire after the return or throw was forwarded.
func (r *Recorder) RegisterFinallyBlockEnd() {
	r.events.Add(Event{Kind: EventFinallyEnd, Index: r.seen - 1})
}

func (r *Recorder) VisitHandler(h common.Handler) {
	if r.Next != nil {
		r.Next.VisitHandler(h)
	}
}

func (r *Recorder) VisitInstruction(ins common.Instruction) {
	r.seen++
	if r.Next != nil {
		r.Next.VisitInstruction(ins)
	}
}

func (r *Recorder) Events() []Event {
	return r.events.Items()
}

// BlockStarts returns the instruction indices of the new-block events.
func (r *Recorder) BlockStarts() []int {
	var starts []int
	for _, e := range r.events.Items() {
		if e.Kind == EventNewBlock {
			starts = append(starts, e.Index)
		}
	}
	return starts
}
