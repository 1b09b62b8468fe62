package bytecode

import (
	"fmt"
	"strings"
)

// Function represents a compiled function template: a name, ordered
// parameter names and the body. It is immutable after creation.
type Function struct {
	name       string
	parameters []string
	code       *Code
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name       string
	Parameters []string
	Code       *Code
}

// NewFunction creates a new immutable Function from the given parameters.
func NewFunction(params FunctionParams) *Function {
	code := params.Code
	if code == nil {
		code = NewCode(CodeParams{Name: params.Name})
	}
	return &Function{
		name:       params.Name,
		parameters: copyStrings(params.Parameters),
		code:       code,
	}
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.name
}

// Code returns the compiled body.
func (f *Function) Code() *Code {
	return f.code
}

// ParameterCount returns the number of parameters.
func (f *Function) ParameterCount() int {
	return len(f.parameters)
}

// Parameter returns the name of the parameter at the given index.
func (f *Function) Parameter(index int) string {
	return f.parameters[index]
}

// Parameters returns a copy of the parameter names.
func (f *Function) Parameters() []string {
	return copyStrings(f.parameters)
}

// String returns e.g. "fn add(a, b)".
func (f *Function) String() string {
	return fmt.Sprintf("fn %s(%s)", f.name, strings.Join(f.parameters, ", "))
}
