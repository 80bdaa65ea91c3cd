package checker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spicery/nutmeg-blocks/pkg/assembler"
	"github.com/spicery/nutmeg-blocks/pkg/common"
)

func TestWellFormedUnit(t *testing.T) {
	unit, err := assembler.AssembleString(`
.unit demo/Ok
.routine f (I)I
.try L0 L1 H0
L0:
.line 3
iload 1
lookupswitch L1 L0
L1:
ireturn
H0:
athrow
`)
	require.NoError(t, err)

	c := NewChecker()
	assert.True(t, c.CheckUnit(unit))
	assert.NoError(t, c.Err())
}

func TestMalformedRoutine(t *testing.T) {
	r := &common.Routine{
		Name: "bad",
		Handlers: []common.Handler{
			{Start: "A", End: "B", Handler: "Missing"},
		},
		Instructions: []common.Instruction{
			common.NewLabel("A"),
			common.NewLabel("A"),
			common.NewLabel(""),
			common.NewLine(0),
			{Type: "IADD"},
			{Type: "goto"},
			{Type: "tableswitch", Labels: []string{"B"}},
			common.NewJump("ifeq", "Nowhere"),
			common.NewLabel("B"),
		},
	}

	c := NewChecker()
	assert.False(t, c.Check(r))

	messages := make([]string, 0, len(c.Issues))
	for _, issue := range c.Issues {
		messages = append(messages, issue.Error())
	}
	assert.Equal(t, []string{
		"bad: label A already defined at instruction 0, at instruction 1",
		"bad: label without a name, at instruction 2",
		"bad: invalid line number 0, at instruction 3",
		`bad: unknown instruction type "IADD", at instruction 4`,
		"bad: goto without a target, at instruction 5",
		"bad: tableswitch without a default label, at instruction 6",
		"bad: jump target Nowhere is not defined, at instruction 7",
		`bad: handler region A..B refers to undefined label "Missing"`,
	}, messages)
	assert.Error(t, c.Err())
}

func TestNilInputIsABug(t *testing.T) {
	c := NewChecker()
	assert.False(t, c.CheckUnit(&common.Unit{Name: "u", Routines: []*common.Routine{nil}}))
	require.Len(t, c.Bugs, 1)

	var buf bytes.Buffer
	c.ReportErrors(&buf)
	assert.Contains(t, buf.String(), "routine 0 is nil, in u")
	assert.Contains(t, c.Err().Error(), "bug: routine 0 is nil")
}

func TestReportErrorsListsIssues(t *testing.T) {
	c := NewChecker()
	c.Check(&common.Routine{Name: "g", Instructions: []common.Instruction{common.NewJump("goto", "X")}})

	var buf bytes.Buffer
	c.ReportErrors(&buf)
	assert.Contains(t, buf.String(), "Errors found in the routines:")
	assert.Contains(t, buf.String(), "[1]. g: jump target X is not defined, at instruction 0")
}
