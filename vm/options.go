package vm

import (
	"io"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/scope"
	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithOutput sets the writer PRINT renders to. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = w
	}
}

// WithTrace enables tracing: before a sequence runs, every instruction is
// listed to w, followed by a <RESULT> marker.
func WithTrace(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.trace = w
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}

// WithLogger sets the logger used for run and call events.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithScope runs the code in the given root scope instead of a fresh one.
// Bindings written by the run remain visible in s afterwards.
func WithScope(s *scope.Scope) Option {
	return func(vm *VirtualMachine) {
		vm.scope = s
	}
}

// WithMaxCallDepth limits the number of nested calls. Values <= 0 keep the
// default.
func WithMaxCallDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		if depth > 0 {
			vm.maxCallDepth = depth
		}
	}
}

// WithCallable registers a sequence in the callable table.
func WithCallable(address int, code *bytecode.Code) Option {
	return func(vm *VirtualMachine) {
		vm.callables[address] = code
	}
}
