// Package linemap maps the basic blocks of routines to the source lines they
// execute, and persists those maps in a SQLite bundle.
package linemap

import (
	"fmt"
	"sort"

	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// BlockLocation identifies a block by its routine and its position in the
// routine's partition.
type BlockLocation struct {
	Owner      string `json:"owner" yaml:"owner"`
	Routine    string `json:"routine" yaml:"routine"`
	Descriptor string `json:"descriptor" yaml:"descriptor"`
	Block      int    `json:"block" yaml:"block"`
}

func (l BlockLocation) String() string {
	return fmt.Sprintf("%s.%s%s#%d", l.Owner, l.Routine, l.Descriptor, l.Block)
}

// LocationOf returns the location of the index-th block of r.
func LocationOf(r *common.Routine, index int) BlockLocation {
	return BlockLocation{Owner: r.Owner, Routine: r.Name, Descriptor: r.Descriptor, Block: index}
}

// LineMap associates each block with its source lines.
type LineMap map[BlockLocation][]int

// LineMapper builds line maps with fixed analysis options.
type LineMapper struct {
	options analysis.Options
}

func NewLineMapper(options analysis.Options) *LineMapper {
	return &LineMapper{options: options}
}

// MapRoutine maps the blocks of a single routine.
func (m *LineMapper) MapRoutine(r *common.Routine) LineMap {
	lines := make(LineMap)
	m.mapInto(lines, r)
	return lines
}

// MapLines maps the blocks of every routine in unit.
func (m *LineMapper) MapLines(unit *common.Unit) LineMap {
	lines := make(LineMap)
	for _, r := range unit.Routines {
		m.mapInto(lines, r)
	}
	return lines
}

func (m *LineMapper) mapInto(lines LineMap, r *common.Routine) {
	for i, b := range analysis.AnalyzeWithOptions(r, m.options) {
		lines[LocationOf(r, i)] = b.Lines
	}
}

// Entry is one block of a line map in a form that serialises as a list.
type Entry struct {
	BlockLocation `yaml:",inline"`
	Lines         []int `json:"lines" yaml:"lines"`
}

// Entries returns the map ordered by owner, routine, descriptor and block.
func (m LineMap) Entries() []Entry {
	entries := make([]Entry, 0, len(m))
	for loc, lines := range m {
		entries = append(entries, Entry{BlockLocation: loc, Lines: lines})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].BlockLocation, entries[j].BlockLocation
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Routine != b.Routine {
			return a.Routine < b.Routine
		}
		if a.Descriptor != b.Descriptor {
			return a.Descriptor < b.Descriptor
		}
		return a.Block < b.Block
	})
	return entries
}
