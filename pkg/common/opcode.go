package common

import "strings"

// Kind distinguishes executable instructions from the markers that share the
// instruction stream with them.
type Kind int

const (
	KindInstruction Kind = iota // An executable operation.
	KindLabel                   // A jump-target anchor, no semantics of its own.
	KindLine                    // Associates following instructions with a source line.
	KindFrame                   // Verifier metadata.
)

func (k Kind) String() string {
	switch k {
	case KindInstruction:
		return "instruction"
	case KindLabel:
		return "label"
	case KindLine:
		return "line"
	case KindFrame:
		return "frame"
	default:
		return "unknown"
	}
}

// Class is the control-flow classification of an executable op.
type Class int

const (
	ClassPlain Class = iota
	ClassJump
	ClassSwitch
	ClassReturn
	ClassThrow
	ClassDivide
	ClassMonitor
	ClassArrayLoad
	ClassArrayStore
	ClassCast
	ClassStaticField
	ClassInstanceField
	ClassAllocate
	ClassMultiArray
	ClassCall
	ClassDynamicCall
)

var classNames = [...]string{
	ClassPlain:         "plain",
	ClassJump:          "jump",
	ClassSwitch:        "switch",
	ClassReturn:        "return",
	ClassThrow:         "throw",
	ClassDivide:        "divide",
	ClassMonitor:       "monitor",
	ClassArrayLoad:     "array-load",
	ClassArrayStore:    "array-store",
	ClassCast:          "cast",
	ClassStaticField:   "static-field",
	ClassInstanceField: "instance-field",
	ClassAllocate:      "allocate",
	ClassMultiArray:    "multi-array",
	ClassCall:          "call",
	ClassDynamicCall:   "dynamic-call",
}

func (c Class) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Op is the mnemonic of an instruction, as it appears in the "type" field of
// a serialised instruction.
type Op string

// Pseudo-ops for the non-executable markers.
const (
	OpLabel Op = "label"
	OpLine  Op = "line"
	OpFrame Op = "frame"
)

// OpProbe is planted by the instrumenter at the start of each block.
const OpProbe Op = "probe"

// Info describes an op.
type Info struct {
	Op    Op
	Kind  Kind
	Class Class
}

var infos = map[Op]Info{}

func register(class Class, ops ...Op) {
	for _, op := range ops {
		infos[op] = Info{Op: op, Kind: KindInstruction, Class: class}
	}
}

func init() {
	infos[OpLabel] = Info{Op: OpLabel, Kind: KindLabel}
	infos[OpLine] = Info{Op: OpLine, Kind: KindLine}
	infos[OpFrame] = Info{Op: OpFrame, Kind: KindFrame}

	register(ClassPlain,
		"nop", "aconst_null", "iconst", "lconst", "fconst", "dconst", "bipush", "sipush", "ldc",
		"iload", "lload", "fload", "dload", "aload",
		"istore", "lstore", "fstore", "dstore", "astore",
		"pop", "pop2", "dup", "dup_x1", "dup_x2", "dup2", "dup2_x1", "dup2_x2", "swap",
		"iadd", "ladd", "fadd", "dadd", "isub", "lsub", "fsub", "dsub",
		"imul", "lmul", "fmul", "dmul", "ineg", "lneg", "fneg", "dneg",
		"ishl", "lshl", "ishr", "lshr", "iushr", "lushr",
		"iand", "land", "ior", "lor", "ixor", "lxor", "iinc",
		"i2l", "i2f", "i2d", "l2i", "l2f", "l2d", "f2i", "f2l", "f2d", "d2i", "d2l", "d2f",
		"i2b", "i2c", "i2s",
		"lcmp", "fcmpl", "fcmpg", "dcmpl", "dcmpg",
		"arraylength", "instanceof", "ret",
		OpProbe,
	)
	register(ClassJump,
		"ifeq", "ifne", "iflt", "ifge", "ifgt", "ifle",
		"if_icmpeq", "if_icmpne", "if_icmplt", "if_icmpge", "if_icmpgt", "if_icmple",
		"if_acmpeq", "if_acmpne", "ifnull", "ifnonnull",
		"goto", "jsr",
	)
	register(ClassSwitch, "tableswitch", "lookupswitch")
	register(ClassReturn, "ireturn", "lreturn", "freturn", "dreturn", "areturn", "return")
	register(ClassThrow, "athrow")
	register(ClassDivide, "idiv", "ldiv", "fdiv", "ddiv", "irem", "lrem", "frem", "drem")
	register(ClassMonitor, "monitorenter", "monitorexit")
	register(ClassArrayLoad, "iaload", "laload", "faload", "daload", "aaload", "baload", "caload", "saload")
	register(ClassArrayStore, "iastore", "lastore", "fastore", "dastore", "aastore", "bastore", "castore", "sastore")
	register(ClassCast, "checkcast")
	register(ClassStaticField, "getstatic", "putstatic")
	register(ClassInstanceField, "getfield", "putfield")
	register(ClassAllocate, "new", "newarray", "anewarray")
	register(ClassMultiArray, "multianewarray")
	register(ClassCall, "invokevirtual", "invokespecial", "invokestatic", "invokeinterface")
	register(ClassDynamicCall, "invokedynamic")
}

// Lookup returns the Info for the named op. Names are case-insensitive.
func Lookup(name string) (Info, bool) {
	info, ok := infos[Op(strings.ToLower(name))]
	return info, ok
}

// LookupOp returns the Info for op, matched exactly.
func LookupOp(op Op) (Info, bool) {
	info, ok := infos[op]
	return info, ok
}

// GetInfo returns the Info for op. Unknown ops are reported as plain
// executable instructions.
func GetInfo(op Op) Info {
	if info, ok := infos[op]; ok {
		return info
	}
	return Info{Op: op, Kind: KindInstruction, Class: ClassPlain}
}

// Kind returns the kind of the op.
func (op Op) Kind() Kind {
	return GetInfo(op).Kind
}

// Class returns the control-flow class of the op.
func (op Op) Class() Class {
	return GetInfo(op).Class
}

// IsReturnOrThrow reports whether op leaves the routine.
func (op Op) IsReturnOrThrow() bool {
	c := op.Class()
	return c == ClassReturn || c == ClassThrow
}
