package linemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicery/nutmeg-blocks/pkg/analysis"
	"github.com/spicery/nutmeg-blocks/pkg/assembler"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

const sampleUnit = `
.unit demo/Sample
.routine pick (I)I
.line 5
iload 1
ifeq L0
.line 6
iconst 1
ireturn
L0:
.line 8
iconst 0
ireturn
.routine quiet ()V
return
`

func mustUnit(t *testing.T, text string) *common.Unit {
	t.Helper()
	unit, err := assembler.AssembleString(text)
	require.NoError(t, err)
	return unit
}

func TestMapLines(t *testing.T) {
	unit := mustUnit(t, sampleUnit)
	lines := NewLineMapper(analysis.DefaultOptions()).MapLines(unit)

	pick := unit.Routines[0]
	assert.Equal(t, LineMap{
		LocationOf(pick, 0): {5},
		LocationOf(pick, 1): {6},
		LocationOf(pick, 2): {8},
		LocationOf(unit.Routines[1], 0): {},
	}, lines)
}

func TestMapRoutine(t *testing.T) {
	unit := mustUnit(t, sampleUnit)
	lines := NewLineMapper(analysis.DefaultOptions()).MapRoutine(unit.Routines[0])
	assert.Len(t, lines, 3)
}

func TestEntriesAreOrdered(t *testing.T) {
	unit := mustUnit(t, sampleUnit)
	entries := NewLineMapper(analysis.DefaultOptions()).MapLines(unit).Entries()

	require.Len(t, entries, 4)
	assert.Equal(t, "demo/Sample.pick(I)I#0", entries[0].String())
	assert.Equal(t, "demo/Sample.pick(I)I#2", entries[2].String())
	assert.Equal(t, "demo/Sample.quiet()V#0", entries[3].String())
	assert.Equal(t, []int{8}, entries[2].Lines)
}
