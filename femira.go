// Package femira compiles and runs Femira scripts.
//
// A script is compiled once into an immutable *bytecode.Code which may be
// run any number of times, concurrently if desired:
//
//	code, err := femira.Compile(`fn add(a, b) { return a + b }; add(2, 3)`)
//	if err != nil {
//		return err
//	}
//	result, err := femira.Run(ctx, code) // int64(5)
package femira

import (
	"context"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/compiler"
	"github.com/femira-lang/femira/object"
	"github.com/femira-lang/femira/parser"
	"github.com/femira-lang/femira/vm"
)

// Compile parses and compiles source code into executable bytecode.
// The returned Code is immutable and safe for concurrent use.
func Compile(source string, opts ...Option) (*bytecode.Code, error) {
	o := collectOptions(opts...)

	var parserOpts []parser.Option
	if o.filename != "" {
		parserOpts = append(parserOpts, parser.WithFilename(o.filename))
	}
	program, err := parser.Parse(context.Background(), source, parserOpts...)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(program, o.compilerOpts(source)...)
}

// Run executes compiled bytecode and returns the value left on top of the
// stack as a native Go value. Each call creates a fresh machine, so the
// same Code may be run concurrently.
func Run(ctx context.Context, code *bytecode.Code, opts ...Option) (any, error) {
	o := collectOptions(opts...)
	vmOpts, err := o.vmOpts()
	if err != nil {
		return nil, err
	}
	result, err := vm.Run(ctx, code, vmOpts...)
	if err != nil {
		return nil, err
	}
	return toGo(result), nil
}

// Eval is a convenience function that compiles and runs source code.
func Eval(ctx context.Context, source string, opts ...Option) (any, error) {
	code, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	return Run(ctx, code, opts...)
}

// toGo converts a value to its Go equivalent. Functions have none and are
// returned as their printed form.
func toGo(obj object.Object) any {
	if fn, ok := obj.(*object.Function); ok {
		return fn.Inspect()
	}
	return obj.Interface()
}
