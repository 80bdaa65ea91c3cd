package analysis

import "github.com/spicery/nutmeg-blocks/pkg/common"

// EndsBlock reports whether control may leave the block after op, either by
// an explicit transfer or by an exception the op might raise.
func EndsBlock(op common.Op, ignoreArrayStores bool) bool {
	info := common.GetInfo(op)
	if info.Kind != common.KindInstruction {
		return false
	}
	return endsBlock(info.Class, ignoreArrayStores)
}

func endsBlock(class common.Class, ignoreArrayStores bool) bool {
	switch class {
	case common.ClassJump, common.ClassReturn, common.ClassThrow:
		return true
	// Division by zero.
	case common.ClassDivide:
		return true
	// Null reference or illegal monitor state.
	case common.ClassMonitor:
		return true
	// Index out of bounds or null array.
	case common.ClassArrayLoad, common.ClassArrayStore:
		return !ignoreArrayStores
	case common.ClassCast, common.ClassMultiArray:
		return true
	// May trigger class initialisation.
	case common.ClassStaticField, common.ClassInstanceField, common.ClassAllocate:
		return true
	// Callee behaviour is unknown.
	case common.ClassCall, common.ClassDynamicCall:
		return true
	default:
		return false
	}
}
