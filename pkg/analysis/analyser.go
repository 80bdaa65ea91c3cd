// Package analysis partitions a routine's instruction stream into basic
// blocks.
package analysis

import (
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

const likelyNumberOfLinesPerBlock = 7

// Options tunes the partitioner.
type Options struct {
	// Routines with more instructions than this stop treating array element
	// loads and stores as block-ending. Huge generated initialisers that fill
	// constant tables would otherwise get a block per element.
	ArrayStoreThreshold int
}

func DefaultOptions() Options {
	return Options{ArrayStoreThreshold: common.DefaultArrayStoreThreshold}
}

// Analyze partitions r into basic blocks using the default options.
func Analyze(r *common.Routine) []Block {
	return AnalyzeWithOptions(r, DefaultOptions())
}

// AnalyzeWithOptions partitions r into basic blocks, in ascending order.
//
// Blocks cover every instruction index except that a trailing block made of a
// single instruction is not emitted. A block whose own scan saw no line
// inherits the lines of the block before it.
func AnalyzeWithOptions(r *common.Routine, options Options) []Block {
	size := r.Size()
	if size == 0 {
		return nil
	}

	jumpTargets := FindJumpTargets(r)
	ignoreArrayStores := size > options.ArrayStoreThreshold

	var blocks common.List[Block]
	closeBlock := func(first, last int, lines lineSet) {
		if len(lines) == 0 {
			if prev, ok := blocks.Last(); ok && len(prev.Lines) > 0 {
				lines.addAll(prev.Lines)
			}
		}
		blocks.Add(Block{FirstIndex: first, LastIndex: last, Lines: lines.sorted()})
	}

	blockLines := newLineSet()
	lastLine, seenLine := 0, false
	lastInstruction := size - 1
	blockStart := 0

	for i := 0; i < size; i++ {
		ins := r.Get(i)

		switch {
		case ins.Kind() == common.KindLine:
			blockLines.add(ins.Line)
			lastLine, seenLine = ins.Line, true
		case isJumpTarget(ins, jumpTargets) && blockStart != i:
			closeBlock(blockStart, i-1, blockLines)
			blockStart = i
			blockLines = newLineSet()
		case EndsBlock(ins.Type, ignoreArrayStores):
			closeBlock(blockStart, i, blockLines)
			blockStart = i + 1
			blockLines = newLineSet()
		case seenLine && ins.IsExecutable():
			blockLines.add(lastLine)
		}
	}

	// A last block of exactly one instruction is dropped. Compilers leave
	// hanging labels at the end of routines and these should not become
	// blocks of their own. When the final instruction closed a block there is
	// nothing left to emit.
	if blockStart < lastInstruction {
		blocks.Add(Block{FirstIndex: blockStart, LastIndex: lastInstruction, Lines: blockLines.sorted()})
	}

	return blocks.Items()
}

// FindJumpTargets returns the labels reachable by an explicit transfer:
// jump targets, switch default and case labels, and handler entries.
func FindJumpTargets(r *common.Routine) map[string]struct{} {
	targets := make(map[string]struct{})
	for _, ins := range r.Instructions {
		for _, t := range ins.Targets() {
			targets[t] = struct{}{}
		}
	}
	// Handler entries normally coincide with a jump target already.
	for _, h := range r.Handlers {
		targets[h.Handler] = struct{}{}
	}
	return targets
}

func isJumpTarget(ins common.Instruction, targets map[string]struct{}) bool {
	if ins.Kind() != common.KindLabel {
		return false
	}
	_, ok := targets[ins.Label]
	return ok
}
