package analysis

import (
	"fmt"
	"sort"
)

// Block is a maximal run of instructions [FirstIndex, LastIndex] with one
// entry point. Lines holds the source lines of its executable instructions,
// sorted and without duplicates.
type Block struct {
	FirstIndex int   `json:"first" yaml:"first"`
	LastIndex  int   `json:"last" yaml:"last"`
	Lines      []int `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// Len returns the number of instructions in the block.
func (b Block) Len() int {
	return b.LastIndex - b.FirstIndex + 1
}

// Contains reports whether instruction index i lies within the block.
func (b Block) Contains(i int) bool {
	return i >= b.FirstIndex && i <= b.LastIndex
}

func (b Block) String() string {
	return fmt.Sprintf("[%d..%d] lines=%v", b.FirstIndex, b.LastIndex, b.Lines)
}

type lineSet map[int]struct{}

func newLineSet() lineSet {
	return make(lineSet, likelyNumberOfLinesPerBlock)
}

func (s lineSet) add(line int) {
	s[line] = struct{}{}
}

func (s lineSet) addAll(lines []int) {
	for _, l := range lines {
		s[l] = struct{}{}
	}
}

func (s lineSet) sorted() []int {
	lines := make([]int, 0, len(s))
	for l := range s {
		lines = append(lines, l)
	}
	sort.Ints(lines)
	return lines
}
