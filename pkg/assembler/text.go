package assembler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/spicery/nutmeg-blocks/pkg/common"
)

// DefaultRoutineName names the routine that collects instructions appearing
// before any .routine directive.
const DefaultRoutineName = "main"

// Assemble reads the text form of a unit:
//
//	.unit com/example/Foo          ; owner of the following routines
//	.routine foo (I)I              ; starts a routine
//	.try L0 L1 L2 java/io/IOException
//	L0:
//	.line 5
//	iload 1
//	ifeq L1
//	tableswitch L3 L4 L5           ; default first, then cases
//	.frame
//
// All errors are collected and returned together.
func Assemble(input io.Reader) (*common.Unit, error) {
	p := &textParser{assembler: NewAssembler("")}
	scanner := bufio.NewScanner(input)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		p.parseLine(lineNo, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		p.errs = multierror.Append(p.errs, fmt.Errorf("read: %w", err))
	}
	p.finish()
	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return p.assembler.Unit(), nil
}

// AssembleString is Assemble over a string.
func AssembleString(text string) (*common.Unit, error) {
	return Assemble(strings.NewReader(text))
}

type textParser struct {
	assembler *Assembler
	current   *RoutineBuilder
	errs      *multierror.Error
}

func (p *textParser) errorf(lineNo int, format string, args ...any) {
	p.errs = multierror.Append(p.errs, fmt.Errorf("line %d: %s", lineNo, fmt.Sprintf(format, args...)))
}

func (p *textParser) finish() {
	if p.current != nil {
		p.current.Build()
		p.current = nil
	}
}

func (p *textParser) routine() *RoutineBuilder {
	if p.current == nil {
		p.current = p.assembler.NewRoutineBuilder(DefaultRoutineName, "")
	}
	return p.current
}

func (p *textParser) parseLine(lineNo int, text string) {
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	head, args := fields[0], fields[1:]

	switch {
	case strings.HasPrefix(head, "."):
		p.parseDirective(lineNo, head, args)
	case strings.HasSuffix(head, ":"):
		name := strings.TrimSuffix(head, ":")
		if name == "" || len(args) > 0 {
			p.errorf(lineNo, "malformed label %q", text)
			return
		}
		p.routine().PlantLabel(NewSimpleLabel(name))
	default:
		p.parseInstruction(lineNo, head, args)
	}
}

func (p *textParser) parseDirective(lineNo int, directive string, args []string) {
	switch directive {
	case ".unit":
		if len(args) != 1 {
			p.errorf(lineNo, ".unit takes one argument")
			return
		}
		p.finish()
		p.assembler.owner = args[0]
	case ".routine":
		if len(args) < 1 || len(args) > 2 {
			p.errorf(lineNo, ".routine takes a name and an optional descriptor")
			return
		}
		p.finish()
		descriptor := ""
		if len(args) == 2 {
			descriptor = args[1]
		}
		p.current = p.assembler.NewRoutineBuilder(args[0], descriptor)
	case ".line":
		if len(args) != 1 {
			p.errorf(lineNo, ".line takes one argument")
			return
		}
		line, err := strconv.Atoi(args[0])
		if err != nil {
			p.errorf(lineNo, "invalid line number %q", args[0])
			return
		}
		p.routine().PlantLine(line)
	case ".frame":
		p.routine().PlantFrame()
	case ".try":
		if len(args) < 3 || len(args) > 4 {
			p.errorf(lineNo, ".try takes start, end, handler and an optional type")
			return
		}
		exceptionType := ""
		if len(args) == 4 {
			exceptionType = args[3]
		}
		p.routine().PlantTryCatch(NewSimpleLabel(args[0]), NewSimpleLabel(args[1]), NewHandlerLabel(args[2]), exceptionType)
	default:
		p.errorf(lineNo, "unknown directive %s", directive)
	}
}

func (p *textParser) parseInstruction(lineNo int, mnemonic string, args []string) {
	info, ok := common.Lookup(mnemonic)
	if !ok || info.Kind != common.KindInstruction {
		p.errorf(lineNo, "unknown instruction %q", mnemonic)
		return
	}
	rb := p.routine()
	switch info.Class {
	case common.ClassJump:
		if len(args) != 1 {
			p.errorf(lineNo, "%s takes one label", mnemonic)
			return
		}
		rb.PlantJump(info.Op, NewSimpleLabel(args[0]))
	case common.ClassSwitch:
		if len(args) < 1 {
			p.errorf(lineNo, "%s needs a default label", mnemonic)
			return
		}
		cases := make([]Label, 0, len(args)-1)
		for _, a := range args[1:] {
			cases = append(cases, NewSimpleLabel(a))
		}
		rb.PlantSwitch(info.Op, NewSimpleLabel(args[0]), cases...)
	default:
		rb.Plant(info.Op, strings.Join(args, " "))
	}
}

// PickReadFunc extends common.PickReadFunc with the text form, selected by
// the format name NASM or a .nasm extension.
func PickReadFunc(format string) (func(io.Reader) (*common.Unit, error), error) {
	if strings.EqualFold(format, "NASM") || strings.EqualFold(filepath.Ext(format), ".nasm") {
		return Assemble, nil
	}
	return common.PickReadFunc(format)
}

// ReadUnitFile reads a unit from path, or from stdin when path is empty. The
// format defaults to the file's extension, then to JSON.
func ReadUnitFile(path, format string) (*common.Unit, error) {
	if format == "" && filepath.Ext(path) != "" {
		format = path
	}
	read, err := PickReadFunc(format)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return read(os.Stdin)
	}
	f, err := os.Open(path) // #nosec G304 - CLI tool reads user-specified input files
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	unit, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return unit, nil
}
