package analysis

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicery/nutmeg-blocks/pkg/assembler"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

func mustRoutine(t *testing.T, text string) *common.Routine {
	t.Helper()
	unit, err := assembler.AssembleString(text)
	require.NoError(t, err)
	require.Len(t, unit.Routines, 1)
	return unit.Routines[0]
}

// requireCoverage checks that blocks are contiguous, ascending and cover
// [0, size-1], or [0, size-2] when a trailing instruction was left out.
func requireCoverage(t *testing.T, blocks []Block, size int) {
	t.Helper()
	next := 0
	for i, b := range blocks {
		require.Equal(t, next, b.FirstIndex, "block %d starts out of sequence", i)
		require.GreaterOrEqual(t, b.LastIndex, b.FirstIndex, "block %d is empty", i)
		next = b.LastIndex + 1
	}
	require.True(t, next == size || next == size-1, "blocks cover [0, %d) of %d instructions", next, size)
}

func TestEmptyRoutine(t *testing.T) {
	assert.Empty(t, Analyze(&common.Routine{Name: "empty"}))
}

func TestStraightLineSingleLine(t *testing.T) {
	r := mustRoutine(t, `
.line 5
iconst 1
iconst 2
iadd
ireturn
`)
	blocks := Analyze(r)
	require.Len(t, blocks, 1)
	assert.Equal(t, Block{FirstIndex: 0, LastIndex: 4, Lines: []int{5}}, blocks[0])
}

func TestThreeReturnPoints(t *testing.T) {
	r := mustRoutine(t, `
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
`)
	blocks := Analyze(r)
	assert.Equal(t, []Block{
		{FirstIndex: 0, LastIndex: 2, Lines: []int{5}},
		{FirstIndex: 3, LastIndex: 5, Lines: []int{6}},
		{FirstIndex: 6, LastIndex: 9, Lines: []int{8}},
	}, blocks)
	requireCoverage(t, blocks, r.Size())
}

// Two statements spread over nine blocks. Blocks that end on their first
// executable instruction, and the block made of a lone label, inherit the
// lines of the block before them.
const twoStatements = `
.routine compute (I)I
.line 10
aload 1
iload 2
iaload
aload 0
getfield Foo.f:I
idiv
istore 3
iload 3
ifeq L0
iload 3
ifne L1
L0:
L1:
.line 11
aload 0
invokevirtual Foo.g()I
checkcast Bar
areturn
`

func TestTwoStatementRegression(t *testing.T) {
	r := mustRoutine(t, twoStatements)
	require.Equal(t, 19, r.Size())

	blocks := Analyze(r)
	assert.Equal(t, []Block{
		{FirstIndex: 0, LastIndex: 3, Lines: []int{10}},
		{FirstIndex: 4, LastIndex: 5, Lines: []int{10}},
		{FirstIndex: 6, LastIndex: 6, Lines: []int{10}},
		{FirstIndex: 7, LastIndex: 9, Lines: []int{10}},
		{FirstIndex: 10, LastIndex: 11, Lines: []int{10}},
		{FirstIndex: 12, LastIndex: 12, Lines: []int{10}},
		{FirstIndex: 13, LastIndex: 16, Lines: []int{11}},
		{FirstIndex: 17, LastIndex: 17, Lines: []int{11}},
		{FirstIndex: 18, LastIndex: 18, Lines: []int{11}},
	}, blocks)
	requireCoverage(t, blocks, r.Size())
}

func TestLineInheritanceFromLabelOnlyBlock(t *testing.T) {
	r := mustRoutine(t, `
.line 4
iload 0
tableswitch L0 L1
L0:
L1:
iconst 1
ireturn
`)
	assert.Equal(t, []Block{
		{FirstIndex: 0, LastIndex: 2, Lines: []int{4}},
		{FirstIndex: 3, LastIndex: 3, Lines: []int{4}},
		{FirstIndex: 4, LastIndex: 6, Lines: []int{4}},
	}, Analyze(r))
}

func TestNoLinesBeforeFirstMarker(t *testing.T) {
	r := mustRoutine(t, `
iconst 1
ifeq L0
L0:
.line 7
iconst 2
ireturn
`)
	blocks := Analyze(r)
	require.Len(t, blocks, 2)
	assert.Empty(t, blocks[0].Lines)
	assert.Equal(t, []int{7}, blocks[1].Lines)
}

func TestTrailingSingleInstructionIsDropped(t *testing.T) {
	r := mustRoutine(t, `
.line 1
iconst 1
ireturn
L9:
`)
	blocks := Analyze(r)
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].LastIndex)
	requireCoverage(t, blocks, r.Size())
}

func TestTrailingLongerBlockIsKept(t *testing.T) {
	r := mustRoutine(t, `
.line 1
iconst 1
ireturn
L9:
nop
`)
	blocks := Analyze(r)
	require.Len(t, blocks, 2)
	assert.Equal(t, Block{FirstIndex: 3, LastIndex: 4, Lines: []int{1}}, blocks[1])
}

func TestNoEmptyBlockAfterFinalReturn(t *testing.T) {
	r := mustRoutine(t, `
iconst 1
ireturn
`)
	blocks := Analyze(r)
	require.Len(t, blocks, 1)
	assert.Equal(t, 1, blocks[0].LastIndex)
}

func TestArrayStoreThreshold(t *testing.T) {
	r := mustRoutine(t, `
aload 0
iconst 0
iaload
ireturn
`)
	assert.Equal(t, []Block{
		{FirstIndex: 0, LastIndex: 2, Lines: []int{}},
		{FirstIndex: 3, LastIndex: 3, Lines: []int{}},
	}, Analyze(r))

	blocks := AnalyzeWithOptions(r, Options{ArrayStoreThreshold: 3})
	assert.Equal(t, []Block{{FirstIndex: 0, LastIndex: 3, Lines: []int{}}}, blocks)
}

func TestHandlerEntryStartsBlock(t *testing.T) {
	r := mustRoutine(t, `
.try L0 L1 H2
L0:
.line 3
aload 0
monitorenter
L1:
H2:
.line 4
astore 1
aload 1
athrow
`)
	assert.Equal(t, []Block{
		{FirstIndex: 0, LastIndex: 3, Lines: []int{3}},
		{FirstIndex: 4, LastIndex: 4, Lines: []int{3}},
		{FirstIndex: 5, LastIndex: 9, Lines: []int{4}},
	}, Analyze(r))
}

func TestFindJumpTargets(t *testing.T) {
	r := mustRoutine(t, `
.try L0 L1 H9 java/lang/Exception
L0:
goto L1
lookupswitch D C1 C2
L1:
`)
	targets := FindJumpTargets(r)
	for _, l := range []string{"L1", "D", "C1", "C2", "H9"} {
		assert.Contains(t, targets, l)
	}
	assert.NotContains(t, targets, "L0")
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	r := mustRoutine(t, twoStatements)
	assert.Equal(t, Analyze(r), Analyze(r))
}

func TestEndsBlock(t *testing.T) {
	tests := []struct {
		op                common.Op
		ignoreArrayStores bool
		want              bool
	}{
		{"goto", false, true},
		{"ifeq", false, true},
		{"ireturn", false, true},
		{"athrow", false, true},
		{"idiv", false, true},
		{"drem", false, true},
		{"monitorenter", false, true},
		{"iaload", false, true},
		{"iaload", true, false},
		{"aastore", false, true},
		{"aastore", true, false},
		{"checkcast", false, true},
		{"multianewarray", false, true},
		{"getstatic", false, true},
		{"putfield", false, true},
		{"new", false, true},
		{"anewarray", false, true},
		{"invokestatic", false, true},
		{"invokedynamic", false, true},
		{"tableswitch", false, false},
		{"iadd", false, false},
		{"arraylength", false, false},
		{"probe", false, false},
		{"mystery", false, false},
		{common.OpLabel, false, false},
		{common.OpLine, false, false},
		{common.OpFrame, false, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%v", tt.op, tt.ignoreArrayStores), func(t *testing.T) {
			assert.Equal(t, tt.want, EndsBlock(tt.op, tt.ignoreArrayStores))
		})
	}
}

var palette = []common.Op{"iload", "iadd", "nop", "idiv", "invokevirtual", "ireturn", "iaload", "getfield", "pop"}

// randomRoutine builds a well formed routine: every jump targets a label
// that is planted somewhere in the body.
func randomRoutine(rng *rand.Rand, size int) *common.Routine {
	a := assembler.NewAssembler("Random")
	rb := a.NewRoutineBuilder("r", "()V")
	labels := make([]assembler.Label, 1+rng.Intn(4))
	for i := range labels {
		labels[i] = rb.AllocateLabel()
	}
	planted := make([]bool, len(labels))
	for rb.Len() < size {
		switch n := rng.Intn(10); {
		case n == 0:
			rb.PlantLine(1 + rng.Intn(50))
		case n == 1:
			k := rng.Intn(len(labels))
			if !planted[k] {
				rb.PlantLabel(labels[k])
				planted[k] = true
			}
		case n == 2:
			rb.PlantJump("ifne", labels[rng.Intn(len(labels))])
		case n == 3:
			rb.PlantFrame()
		default:
			rb.Plant(palette[rng.Intn(len(palette))], "")
		}
	}
	for k, done := range planted {
		if !done {
			rb.PlantLabel(labels[k])
		}
	}
	return rb.Build()
}

func TestRandomRoutinesAreCovered(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for n := 0; n < 200; n++ {
		r := randomRoutine(rng, 1+rng.Intn(60))
		blocks := Analyze(r)
		requireCoverage(t, blocks, r.Size())
		for i, b := range blocks {
			assert.IsIncreasing(t, append([]int{0}, b.Lines...), "block %d lines are not sorted and distinct", i)
		}
	}
}
