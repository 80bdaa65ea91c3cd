// Package tracker replays a routine against its precomputed block partition
// and notifies an Observer as each block is reached.
package tracker

import (
	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// Observer receives the block notifications of one routine.
type Observer interface {
	RegisterNewMethodStart()
	RegisterNewBlock()
	RegisterFinallyBlockStart()
	RegisterFinallyBlockEnd()
}

// noBlock is active when the partition is empty. It never matches an index.
var noBlock = analysis.Block{FirstIndex: -1, LastIndex: -1}

// Tracker is a Visitor that forwards every handler and instruction to the
// next Visitor unchanged, notifying its Observer of block boundaries on the
// way.
//
// The traversal driving the tracker must visit the same instructions, in the
// same order, as the routine the blocks were computed from. A traversal that
// skips or repeats instructions silently shifts the notifications.
type Tracker struct {
	observer Observer
	next     common.Visitor
	blocks   *common.Queue[analysis.Block]
	current  analysis.Block
	index    int
	handlers map[string]struct{}
}

// New returns a tracker over blocks, which must be in ascending order.
func New(blocks []analysis.Block, observer Observer, next common.Visitor) *Tracker {
	t := &Tracker{
		observer: observer,
		next:     next,
		blocks:   common.NewQueue(blocks),
		current:  noBlock,
		handlers: make(map[string]struct{}),
	}
	if b, ok := t.blocks.Pop(); ok {
		t.current = b
	}
	return t
}

// Start announces the routine. It is called once, before the traversal.
func (t *Tracker) Start() {
	t.observer.RegisterNewMethodStart()
}

// Index returns the number of instructions visited so far.
func (t *Tracker) Index() int {
	return t.index
}

func (t *Tracker) VisitHandler(h common.Handler) {
	t.next.VisitHandler(h)
	if h.IsCatchAll() {
		t.handlers[h.Handler] = struct{}{}
	}
}

func (t *Tracker) VisitInstruction(ins common.Instruction) {
	t.visitAnything()

	if ins.Kind() == common.KindLabel {
		if _, ok := t.handlers[ins.Label]; ok {
			t.observer.RegisterFinallyBlockStart()
		}
	}

	t.next.VisitInstruction(ins)

	if ins.Type.IsReturnOrThrow() {
		t.observer.RegisterFinallyBlockEnd()
	}
}

func (t *Tracker) visitAnything() {
	if t.index == t.current.FirstIndex {
		// The entry block coincides with the method start.
		if t.index != 0 {
			t.observer.RegisterNewBlock()
		}
		if b, ok := t.blocks.Pop(); ok {
			t.current = b
		}
	}
	t.index++
}

// Track partitions r, announces it and replays it through a tracker into
// next.
func Track(r *common.Routine, observer Observer, next common.Visitor) {
	TrackWithOptions(r, analysis.DefaultOptions(), observer, next)
}

func TrackWithOptions(r *common.Routine, options analysis.Options, observer Observer, next common.Visitor) {
	t := New(analysis.AnalyzeWithOptions(r, options), observer, next)
	t.Start()
	r.Accept(t)
}
