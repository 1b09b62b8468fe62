package vm

import (
	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/scope"
)

// frame is one active instruction sequence: the main program, a function
// body or a callable table entry.
type frame struct {
	name  string
	code  *bytecode.Code
	scope *scope.Scope
	ip    int
}

// captureStack lists the active frames innermost first.
func (vm *VirtualMachine) captureStack() []errz.StackFrame {
	frames := make([]errz.StackFrame, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		frames = append(frames, errz.StackFrame{Function: f.name, Offset: f.ip})
	}
	return frames
}
