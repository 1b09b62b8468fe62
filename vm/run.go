package vm

import (
	"context"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/object"
)

// Run the given code in a new Virtual Machine and return the top of the
// stack, or nil when the stack is empty.
func Run(ctx context.Context, main *bytecode.Code, options ...Option) (object.Object, error) {
	machine := New(main, options...)
	if err := machine.Run(ctx); err != nil {
		return nil, err
	}
	if result, exists := machine.TOS(); exists {
		return result, nil
	}
	return object.Nil, nil
}
