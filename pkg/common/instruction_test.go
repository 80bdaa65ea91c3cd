package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionKinds(t *testing.T) {
	assert.Equal(t, KindLabel, NewLabel("L0").Kind())
	assert.Equal(t, KindLine, NewLine(3).Kind())
	assert.Equal(t, KindFrame, NewFrame().Kind())
	assert.Equal(t, KindInstruction, NewOp("iadd", "").Kind())
	assert.Equal(t, KindInstruction, NewOp("unheard_of", "").Kind())

	assert.False(t, NewLabel("L0").IsExecutable())
	assert.False(t, NewFrame().IsExecutable())
	assert.True(t, NewOp("nop", "").IsExecutable())
}

func TestInstructionTargets(t *testing.T) {
	assert.Equal(t, []string{"L1"}, NewJump("goto", "L1").Targets())
	assert.Equal(t, []string{"D", "A", "B"}, NewSwitch("lookupswitch", "D", "A", "B").Targets())
	assert.Nil(t, NewOp("iadd", "").Targets())
	assert.Nil(t, NewLabel("L1").Targets())
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "L0:", NewLabel("L0").String())
	assert.Equal(t, ".line 7", NewLine(7).String())
	assert.Equal(t, "ifeq L2", NewJump("ifeq", "L2").String())
	assert.Equal(t, "tableswitch D A B", NewSwitch("tableswitch", "D", "A", "B").String())
	assert.Equal(t, "probe 3", NewProbe(3).String())
}

func TestOpClasses(t *testing.T) {
	assert.True(t, Op("athrow").IsReturnOrThrow())
	assert.True(t, Op("return").IsReturnOrThrow())
	assert.False(t, Op("goto").IsReturnOrThrow())
	assert.Equal(t, "array-store", Op("iastore").Class().String())

	_, ok := Lookup("GOTO")
	assert.True(t, ok)
	_, ok = LookupOp("GOTO")
	assert.False(t, ok)
}

func TestUnitEncodingsAgree(t *testing.T) {
	unit := &Unit{Name: "U", Routines: []*Routine{{
		Owner:        "U",
		Name:         "f",
		Descriptor:   "()V",
		Handlers:     []Handler{{Start: "A", End: "B", Handler: "H"}},
		Instructions: []Instruction{NewLabel("A"), NewLine(1), NewOp("return", ""), NewLabel("B"), NewLabel("H")},
	}}}

	for _, format := range []string{"JSON", "YAML"} {
		t.Run(format, func(t *testing.T) {
			printFunc, err := PickUnitPrintFunc(format)
			require.NoError(t, err)
			readFunc, err := PickReadFunc(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, printFunc(unit, &buf, &PrintOptions{Indent: 2}))
			decoded, err := readFunc(&buf)
			require.NoError(t, err)
			assert.Equal(t, unit, decoded)
		})
	}
}

func TestRecorderRebuildsRoutine(t *testing.T) {
	r := &Routine{
		Name:         "f",
		Handlers:     []Handler{{Start: "A", End: "B", Handler: "A"}},
		Instructions: []Instruction{NewLabel("A"), NewOp("return", ""), NewLabel("B")},
	}
	var rec Recorder
	r.Accept(&rec)
	assert.Equal(t, r, rec.Routine(r))
	assert.Equal(t, r.Instructions, rec.Instructions())
}
