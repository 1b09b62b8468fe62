package femira

import (
	"fmt"
	"io"
	"maps"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/compiler"
	"github.com/femira-lang/femira/object"
	"github.com/femira-lang/femira/scope"
	"github.com/femira-lang/femira/vm"
	"github.com/rs/zerolog"
)

// Option configures a Femira compilation or execution.
type Option func(*options)

type options struct {
	env          map[string]any
	filename     string
	output       io.Writer
	trace        io.Writer
	logger       *zerolog.Logger
	observer     vm.Observer
	scope        *scope.Scope
	maxCallDepth int
	callables    map[int]*bytecode.Code
}

func collectOptions(opts ...Option) *options {
	o := &options{
		env:       map[string]any{},
		callables: map[int]*bytecode.Code{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts(source string) []compiler.Option {
	opts := []compiler.Option{compiler.WithSource(source)}
	if o.filename != "" {
		opts = append(opts, compiler.WithFilename(o.filename))
	}
	return opts
}

func (o *options) vmOpts() ([]vm.Option, error) {
	var opts []vm.Option
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.trace != nil {
		opts = append(opts, vm.WithTrace(o.trace))
	}
	if o.logger != nil {
		opts = append(opts, vm.WithLogger(*o.logger))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if o.maxCallDepth > 0 {
		opts = append(opts, vm.WithMaxCallDepth(o.maxCallDepth))
	}
	for address, code := range o.callables {
		opts = append(opts, vm.WithCallable(address, code))
	}
	s := o.scope
	if len(o.env) > 0 {
		if s == nil {
			s = scope.New()
		}
		for name, value := range o.env {
			obj := object.FromGoType(value)
			if obj == nil {
				return nil, fmt.Errorf("unsupported type for %q: %T", name, value)
			}
			s.Write(name, obj)
		}
	}
	if s != nil {
		opts = append(opts, vm.WithScope(s))
	}
	return opts, nil
}

// WithEnv provides bindings that are visible to the script. This option is
// additive; if the same key is supplied multiple times, the last value
// wins. Values may be nil, bools, ints, float64s, strings, []any and
// map[string]any.
func WithEnv(env map[string]any) Option {
	return func(o *options) {
		maps.Copy(o.env, env)
	}
}

// WithFilename sets the filename used in error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithOutput sets the writer print statements render to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithTrace lists the executed instructions to w before the run.
func WithTrace(w io.Writer) Option {
	return func(o *options) {
		o.trace = w
	}
}

// WithLogger sets the logger for run and call events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithObserver sets an observer for VM execution events.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithScope runs the script in s, so bindings persist across runs.
func WithScope(s *scope.Scope) Option {
	return func(o *options) {
		o.scope = s
	}
}

// WithMaxCallDepth limits the number of nested calls.
func WithMaxCallDepth(depth int) Option {
	return func(o *options) {
		o.maxCallDepth = depth
	}
}

// WithCallable registers a sequence in the callable table at address.
func WithCallable(address int, code *bytecode.Code) Option {
	return func(o *options) {
		o.callables[address] = code
	}
}
