package object

import (
	"github.com/femira-lang/femira/bytecode"
)

// Function is a runtime function value: an immutable bytecode.Function
// template plus the scope it was bound in. A Function that has never been
// written to a name has no scope.
type Function struct {
	fn    *bytecode.Function
	scope Scope
}

func (f *Function) Type() Type {
	return FUNCTION
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.fn.Name()
}

// Template returns the immutable compiled function.
func (f *Function) Template() *bytecode.Function {
	return f.fn
}

// Code returns the compiled body.
func (f *Function) Code() *bytecode.Code {
	return f.fn.Code()
}

// Parameters returns the parameter names in declaration order.
func (f *Function) Parameters() []string {
	return f.fn.Parameters()
}

// Scope returns the defining scope, or nil if the function is unbound.
func (f *Function) Scope() Scope {
	return f.scope
}

// Bind returns a copy of the function whose defining scope is s. The
// receiver is left unchanged so a shared constant can be bound in many
// scopes.
func (f *Function) Bind(s Scope) *Function {
	return &Function{fn: f.fn, scope: s}
}

func (f *Function) Inspect() string {
	return f.fn.String()
}

func (f *Function) String() string {
	return f.Inspect()
}

func (f *Function) Interface() interface{} {
	return nil
}

// Equals is always false: functions have no equality.
func (f *Function) Equals(other Object) bool {
	return false
}

func NewFunction(fn *bytecode.Function) *Function {
	return &Function{fn: fn}
}
