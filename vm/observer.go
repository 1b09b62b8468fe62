package vm

import (
	"github.com/femira-lang/femira/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every instruction.
	StepAll StepMode = iota

	// StepNone never calls OnStep. Use for observers that only need
	// Call/Return events.
	StepNone

	// StepSampled calls OnStep every N instructions.
	StepSampled
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveCalls enables OnCall callbacks.
	ObserveCalls bool

	// ObserveReturns enables OnReturn callbacks.
	ObserveReturns bool
}

// NewObserverConfig creates a config that observes calls and returns.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveCalls:   true,
		ObserveReturns: true,
	}
}

// NormalizeConfig clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer receives VM execution events. Methods are called synchronously
// on the goroutine running the VM. Returning false from any method halts
// execution with a runtime error.
//
// Implementations can embed NoOpObserver and override only what they need.
type Observer interface {
	// Config is called once when a run starts.
	Config() ObserverConfig

	// OnStep is called before an instruction executes, per the StepMode.
	OnStep(event StepEvent) bool

	// OnCall is called when a function or callable sequence is entered.
	OnCall(event CallEvent) bool

	// OnReturn is called when a function or callable sequence finishes.
	OnReturn(event ReturnEvent) bool
}

// StepEvent describes one instruction about to execute.
type StepEvent struct {
	// Offset is the instruction index within the running sequence.
	Offset int

	Opcode     op.Code
	OpcodeName string

	// FunctionName is the name of the running sequence; empty for the
	// main program.
	FunctionName string

	// StackDepth is the number of values on the operand stack.
	StackDepth int

	// FrameDepth is the number of active sequences, including main.
	FrameDepth int
}

// CallEvent describes a call.
type CallEvent struct {
	// FunctionName is empty for address calls.
	FunctionName string

	// Address is the callable table address for address calls, or -1.
	Address int

	ArgCount int

	// FrameDepth is the depth after the call.
	FrameDepth int
}

// ReturnEvent describes a completed call.
type ReturnEvent struct {
	FunctionName string
	Address      int

	// FrameDepth is the depth after returning.
	FrameDepth int
}

// NoOpObserver implements Observer and does nothing. Its Config uses
// StepAll with call and return events enabled.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig { return NewObserverConfig(StepAll) }
func (NoOpObserver) OnStep(StepEvent) bool { return true }
func (NoOpObserver) OnCall(CallEvent) bool { return true }
func (NoOpObserver) OnReturn(ReturnEvent) bool { return true }
