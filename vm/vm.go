// Package vm provides a VirtualMachine that executes compiled Femira code.
//
// The machine runs a flat instruction sequence against an operand stack
// shared by every call frame and a graph of scopes. Functions run in a
// scope derived from the scope they were bound in; callable table entries
// run directly in the caller's scope.
package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/object"
	"github.com/femira-lang/femira/op"
	"github.com/femira-lang/femira/scope"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxCallDepth is the default limit on nested calls.
const DefaultMaxCallDepth = 1024

type VirtualMachine struct {
	main         *bytecode.Code
	scope        *scope.Scope
	stack        []object.Object
	frames       []frame
	callables    map[int]*bytecode.Code
	output       io.Writer
	trace        io.Writer
	observer     Observer
	observerCfg  ObserverConfig
	logger       zerolog.Logger
	maxCallDepth int
	steps        int64
	running      bool
	runMutex     sync.Mutex
}

// New creates a new Virtual Machine for the given main sequence.
func New(main *bytecode.Code, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		main:         main,
		callables:    map[int]*bytecode.Code{},
		output:       os.Stdout,
		logger:       zerolog.Nop(),
		maxCallDepth: DefaultMaxCallDepth,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.scope == nil {
		vm.scope = scope.New()
	}
	return vm
}

// Run executes the main sequence from the first instruction. Values left
// on the stack by a previous run are kept.
func (vm *VirtualMachine) Run(ctx context.Context) error {
	if vm.main == nil {
		return errz.New(errz.ErrRuntime, "no main code available")
	}
	return vm.runTopLevel(ctx, vm.main, "")
}

// RegisterCallable stores a sequence in the callable table. CALL with an
// int operand runs the sequence registered at that address.
func (vm *VirtualMachine) RegisterCallable(address int, code *bytecode.Code) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.callables[address] = code
}

// CallAddress runs the callable registered at address in the root scope.
func (vm *VirtualMachine) CallAddress(ctx context.Context, address int) error {
	vm.runMutex.Lock()
	code, ok := vm.callables[address]
	vm.runMutex.Unlock()
	if !ok {
		return errz.Newf(errz.ErrLookup, "no callable registered at address %d", address)
	}
	return vm.runTopLevel(ctx, code, callableName(address))
}

// Stack returns a copy of the operand stack, bottom first.
func (vm *VirtualMachine) Stack() []object.Object {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	stack := make([]object.Object, len(vm.stack))
	copy(stack, vm.stack)
	return stack
}

// TOS returns the top-of-stack object if there is one, without modifying the
// stack. This only works on a stopped VM. If the VM is running, (nil, false)
// is returned.
func (vm *VirtualMachine) TOS() (object.Object, bool) {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if !vm.running && len(vm.stack) > 0 {
		return vm.stack[len(vm.stack)-1], true
	}
	return nil, false
}

// Scope returns the root scope.
func (vm *VirtualMachine) Scope() *scope.Scope {
	return vm.scope
}

func (vm *VirtualMachine) start() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return errz.New(errz.ErrRuntime, "vm is already running")
	}
	vm.running = true
	if vm.observer != nil {
		vm.observerCfg = NormalizeConfig(vm.observer.Config())
	}
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
	vm.frames = vm.frames[:0]
}

// runTopLevel runs code in the root scope. Panics raised while running are
// converted to runtime errors.
func (vm *VirtualMachine) runTopLevel(ctx context.Context, code *bytecode.Code, name string) (err error) {
	if err := vm.start(); err != nil {
		return err
	}
	logger := vm.logger.With().Str("run_id", newRunID()).Logger()
	startedAt := time.Now()
	startSteps := vm.steps
	defer func() {
		if r := recover(); r != nil {
			err = errz.NewStructuredErrorf(errz.ErrRuntime, errz.SourceLocation{},
				vm.captureStack(), "panic: %v", r)
		}
		vm.stop()
		logger.Debug().
			Int64("steps", vm.steps-startSteps).
			Dur("duration", time.Since(startedAt)).
			Err(err).
			Msg("run finished")
	}()
	logger.Debug().
		Str("code", code.Name()).
		Int("instructions", code.InstructionCount()).
		Msg("run started")
	vm.writeTrace(code)
	return vm.exec(ctx, frame{name: name, code: code, scope: vm.scope})
}

// exec pushes a frame and runs its sequence to completion or RETURN. The
// frame is only popped on a normal return so that a recovered panic still
// sees the full call stack.
func (vm *VirtualMachine) exec(ctx context.Context, f frame) error {
	vm.frames = append(vm.frames, f)
	err := vm.eval(ctx, len(vm.frames)-1)
	vm.frames = vm.frames[:len(vm.frames)-1]
	return err
}

// eval runs the sequence of the frame at index fi. The frames slice may be
// reallocated by nested calls, so the frame is always addressed by index.
func (vm *VirtualMachine) eval(ctx context.Context, fi int) error {
	code := vm.frames[fi].code
	sc := vm.frames[fi].scope
	done := ctx.Done()

	for ip := 0; ip < code.InstructionCount(); {
		if done != nil {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}

		instr := code.InstructionAt(ip)
		vm.frames[fi].ip = ip
		vm.steps++
		if err := vm.observeStep(instr.Op, fi); err != nil {
			return err
		}

		// The next instruction, unless a jump says otherwise
		next := ip + 1

		switch instr.Op {
		case op.Push:
			obj, err := object.FromConstant(instr.Operand)
			if err != nil {
				return vm.typeError("%v", err)
			}
			vm.push(obj)
		case op.Write:
			name, err := vm.nameOperand(instr)
			if err != nil {
				return err
			}
			value, err := vm.pop()
			if err != nil {
				return err
			}
			if fn, ok := value.(*object.Function); ok {
				value = fn.Bind(sc)
			}
			sc.Write(name, value)
		case op.Read:
			name, err := vm.nameOperand(instr)
			if err != nil {
				return err
			}
			value, err := sc.Read(name)
			if err != nil {
				return vm.wrapError(err)
			}
			vm.push(value)
		case op.Call:
			if instr.HasOperand() {
				address, ok := instr.Displacement()
				if !ok {
					return vm.typeError("call address must be an int (got %s)",
						bytecode.FormatOperand(instr.Operand))
				}
				if err := vm.callAddress(ctx, int(address), sc); err != nil {
					return err
				}
			} else if err := vm.callFunction(ctx, sc); err != nil {
				return err
			}
		case op.Return:
			return nil
		case op.Add, op.Sub, op.Mul, op.Div,
			op.Eq, op.NotEq, op.And, op.Or,
			op.Bigger, op.Smaller, op.BiggerOrEq, op.SmallerOrEq:
			right, err := vm.pop()
			if err != nil {
				return err
			}
			left, err := vm.pop()
			if err != nil {
				return err
			}
			result, err := object.BinaryOp(instr.Op, left, right)
			if err != nil {
				return vm.wrapError(err)
			}
			vm.push(result)
		case op.Neg, op.Not:
			operand, err := vm.pop()
			if err != nil {
				return err
			}
			result, err := object.UnaryOp(instr.Op, operand)
			if err != nil {
				return vm.wrapError(err)
			}
			vm.push(result)
		case op.Jump:
			d, err := vm.displacement(instr)
			if err != nil {
				return err
			}
			next = ip + 1 + d
		case op.JumpIfNot:
			d, err := vm.displacement(instr)
			if err != nil {
				return err
			}
			value, err := vm.pop()
			if err != nil {
				return err
			}
			cond, err := object.AsBool(value)
			if err != nil {
				return vm.typeError("condition must be a bool (got %s)", value.Type())
			}
			if !cond {
				next = ip + 1 + d
			}
		case op.Print:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			if err := writeFrame(vm.output, object.PrintableString(value)); err != nil {
				return vm.runtimeError(errz.ErrRuntime, "print failed: %v", err)
			}
		case op.Wait:
			value, err := vm.pop()
			if err != nil {
				return err
			}
			d, err := object.AsDuration(value)
			if err != nil {
				return vm.wrapError(err)
			}
			time.Sleep(d)
		case op.NewArray:
			vm.push(object.NewArray(nil))
		case op.NewObject:
			vm.push(object.NewRecord(nil))
		case op.SetIndex:
			if err := vm.setIndex(); err != nil {
				return err
			}
		case op.ReadIndex:
			if err := vm.readIndex(); err != nil {
				return err
			}
		default:
			return vm.evalError("unknown opcode: %d", instr.Op)
		}

		if next < 0 || next > code.InstructionCount() {
			return vm.evalError("jump target %d out of range (length %d)",
				next, code.InstructionCount())
		}
		ip = next
	}
	return nil
}

// callFunction pops a function and its arguments and runs the function body
// in a scope derived from the function's defining scope. Unbound functions
// use the calling scope.
func (vm *VirtualMachine) callFunction(ctx context.Context, current *scope.Scope) error {
	value, err := vm.pop()
	if err != nil {
		return err
	}
	fn, err := object.AsFunction(value)
	if err != nil {
		return vm.wrapError(err)
	}
	params := fn.Parameters()
	args := make([]object.Object, len(params))
	for i := len(params) - 1; i >= 0; i-- {
		if args[i], err = vm.pop(); err != nil {
			return err
		}
	}
	if err := vm.checkCallDepth(); err != nil {
		return err
	}
	defining, ok := fn.Scope().(*scope.Scope)
	if !ok || defining == nil {
		defining = current
	}
	callScope, err := defining.Derive(params, args)
	if err != nil {
		return vm.wrapError(err)
	}
	defer callScope.Release()

	vm.logger.Trace().
		Str("function", fn.Name()).
		Int("args", len(args)).
		Int("depth", len(vm.frames)).
		Msg("call")
	if err := vm.observeCall(CallEvent{
		FunctionName: fn.Name(),
		Address:      -1,
		ArgCount:     len(args),
		FrameDepth:   len(vm.frames) + 1,
	}); err != nil {
		return err
	}
	if err := vm.exec(ctx, frame{name: fn.Name(), code: fn.Code(), scope: callScope}); err != nil {
		return err
	}
	return vm.observeReturn(ReturnEvent{
		FunctionName: fn.Name(),
		Address:      -1,
		FrameDepth:   len(vm.frames),
	})
}

// callAddress runs a callable table entry in the current scope.
func (vm *VirtualMachine) callAddress(ctx context.Context, address int, current *scope.Scope) error {
	code, ok := vm.callables[address]
	if !ok {
		return vm.runtimeError(errz.ErrLookup, "no callable registered at address %d", address)
	}
	if err := vm.checkCallDepth(); err != nil {
		return err
	}
	name := callableName(address)
	vm.logger.Trace().
		Int("address", address).
		Int("depth", len(vm.frames)).
		Msg("call")
	if err := vm.observeCall(CallEvent{
		FunctionName: name,
		Address:      address,
		FrameDepth:   len(vm.frames) + 1,
	}); err != nil {
		return err
	}
	vm.writeTrace(code)
	if err := vm.exec(ctx, frame{name: name, code: code, scope: current}); err != nil {
		return err
	}
	return vm.observeReturn(ReturnEvent{
		FunctionName: name,
		Address:      address,
		FrameDepth:   len(vm.frames),
	})
}

// checkCallDepth fails when one more frame would exceed the limit. The
// main frame does not count as a call.
func (vm *VirtualMachine) checkCallDepth() error {
	if len(vm.frames) > vm.maxCallDepth {
		return vm.evalError("maximum call depth exceeded (%d)", vm.maxCallDepth)
	}
	return nil
}

// setIndex pops container, value and index and stores the value.
func (vm *VirtualMachine) setIndex() error {
	container, err := vm.pop()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	index, err := vm.pop()
	if err != nil {
		return err
	}
	switch container := container.(type) {
	case *object.Array:
		i, err := object.AsInt(index)
		if err != nil {
			return vm.typeError("array index must be an int (got %s)", index.Type())
		}
		if err := container.Set(i, value); err != nil {
			return vm.wrapError(err)
		}
	case *object.Record:
		key, err := object.AsString(index)
		if err != nil {
			return vm.typeError("record key must be a string (got %s)", index.Type())
		}
		container.Set(key, value)
	default:
		return vm.typeError("%s object does not support index assignment", container.Type())
	}
	return nil
}

// readIndex pops container and index and pushes the element.
func (vm *VirtualMachine) readIndex() error {
	container, err := vm.pop()
	if err != nil {
		return err
	}
	index, err := vm.pop()
	if err != nil {
		return err
	}
	switch container := container.(type) {
	case *object.Array:
		i, err := object.AsInt(index)
		if err != nil {
			return vm.typeError("array index must be an int (got %s)", index.Type())
		}
		value, err := container.Get(i)
		if err != nil {
			return vm.wrapError(err)
		}
		vm.push(value)
	case *object.Record:
		key, err := object.AsString(index)
		if err != nil {
			return vm.typeError("record key must be a string (got %s)", index.Type())
		}
		value, ok := container.Get(key)
		if !ok {
			return vm.runtimeError(errz.ErrLookup, "record has no field %q", key)
		}
		vm.push(value)
	default:
		return vm.typeError("%s object is not indexable", container.Type())
	}
	return nil
}

func (vm *VirtualMachine) pop() (object.Object, error) {
	n := len(vm.stack)
	if n == 0 {
		return nil, vm.runtimeError(errz.ErrLookup, "stack underflow")
	}
	obj := vm.stack[n-1]
	vm.stack[n-1] = nil
	vm.stack = vm.stack[:n-1]
	return obj, nil
}

func (vm *VirtualMachine) push(obj object.Object) {
	vm.stack = append(vm.stack, obj)
}

func (vm *VirtualMachine) nameOperand(instr bytecode.Instruction) (string, error) {
	name, ok := instr.Name()
	if !ok {
		return "", vm.typeError("%s requires a name operand (got %s)",
			instr.Op, bytecode.FormatOperand(instr.Operand))
	}
	return name, nil
}

func (vm *VirtualMachine) displacement(instr bytecode.Instruction) (int, error) {
	d, ok := instr.Displacement()
	if !ok {
		return 0, vm.typeError("%s requires an int displacement (got %s)",
			instr.Op, bytecode.FormatOperand(instr.Operand))
	}
	return int(d), nil
}

func (vm *VirtualMachine) observeStep(code op.Code, fi int) error {
	if vm.observer == nil {
		return nil
	}
	switch vm.observerCfg.StepMode {
	case StepNone:
		return nil
	case StepSampled:
		if vm.steps%int64(vm.observerCfg.SampleInterval) != 0 {
			return nil
		}
	}
	event := StepEvent{
		Offset:       vm.frames[fi].ip,
		Opcode:       code,
		OpcodeName:   code.String(),
		FunctionName: vm.frames[fi].name,
		StackDepth:   len(vm.stack),
		FrameDepth:   len(vm.frames),
	}
	if !vm.observer.OnStep(event) {
		return vm.evalError("execution halted by observer")
	}
	return nil
}

func (vm *VirtualMachine) observeCall(event CallEvent) error {
	if vm.observer == nil || !vm.observerCfg.ObserveCalls {
		return nil
	}
	if !vm.observer.OnCall(event) {
		return vm.evalError("execution halted by observer")
	}
	return nil
}

func (vm *VirtualMachine) observeReturn(event ReturnEvent) error {
	if vm.observer == nil || !vm.observerCfg.ObserveReturns {
		return nil
	}
	if !vm.observer.OnReturn(event) {
		return vm.evalError("execution halted by observer")
	}
	return nil
}

// writeTrace lists every instruction of code followed by a <RESULT> marker.
func (vm *VirtualMachine) writeTrace(code *bytecode.Code) {
	if vm.trace == nil {
		return
	}
	for _, instr := range code.Instructions() {
		operand := ""
		if instr.HasOperand() || instr.Op == op.Push {
			operand = bytecode.FormatOperand(instr.Operand)
		}
		fmt.Fprintf(vm.trace, "%d:    %s    %s\n", instr.Op, strings.ToLower(instr.Op.String()), operand)
	}
	fmt.Fprintln(vm.trace, "<RESULT>")
}

// writeFrame renders text in the PRINT box:
//
//	 --------
//	 | text |
//	 --------
func writeFrame(w io.Writer, text string) error {
	line := " " + strings.Repeat("-", utf8.RuneCountInString(text)+4)
	_, err := fmt.Fprintf(w, "%s\n | %s | \n%s\n", line, text, line)
	return err
}

func callableName(address int) string {
	return fmt.Sprintf("<callable %d>", address)
}

func newRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

// wrapError attaches the current call stack to an error raised by the
// object or scope layers.
func (vm *VirtualMachine) wrapError(err error) error {
	if se, ok := err.(*errz.StructuredError); ok {
		return se.WithStack(vm.captureStack())
	}
	return vm.evalError("%v", err).WithCause(err)
}

// runtimeError creates a StructuredError with the current stack trace.
func (vm *VirtualMachine) runtimeError(kind errz.ErrorKind, format string, args ...any) *errz.StructuredError {
	return errz.NewStructuredErrorf(kind, errz.SourceLocation{}, vm.captureStack(), format, args...)
}

// typeError creates a type error with stack trace.
func (vm *VirtualMachine) typeError(format string, args ...any) *errz.StructuredError {
	return vm.runtimeError(errz.ErrType, format, args...)
}

// evalError creates an evaluation error with stack trace.
func (vm *VirtualMachine) evalError(format string, args ...any) *errz.StructuredError {
	return vm.runtimeError(errz.ErrRuntime, format, args...)
}
