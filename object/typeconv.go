package object

import (
	"fmt"
	"math"
	"time"

	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/errz"
)

// FromConstant converts a bytecode operand constant to a value.
func FromConstant(c any) (Object, error) {
	switch c := c.(type) {
	case nil:
		return Nil, nil
	case int64:
		return NewInt(c), nil
	case float64:
		return NewFloat(c), nil
	case string:
		return NewString(c), nil
	case bool:
		return NewBool(c), nil
	case *bytecode.Function:
		return NewFunction(c), nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", c)
	}
}

// FromGoType converts a native Go value to a value. Unsupported types
// return nil.
func FromGoType(v any) Object {
	switch v := v.(type) {
	case nil:
		return Nil
	case Object:
		return v
	case bool:
		return NewBool(v)
	case int:
		return NewInt(int64(v))
	case int64:
		return NewInt(v)
	case float64:
		return NewFloat(v)
	case string:
		return NewString(v)
	case []any:
		items := make([]Object, 0, len(v))
		for _, item := range v {
			obj := FromGoType(item)
			if obj == nil {
				return nil
			}
			items = append(items, obj)
		}
		return NewArray(items)
	case map[string]any:
		fields := make(map[string]Object, len(v))
		for k, item := range v {
			obj := FromGoType(item)
			if obj == nil {
				return nil
			}
			fields[k] = obj
		}
		return NewRecord(fields)
	default:
		return nil
	}
}

func AsBool(obj Object) (bool, error) {
	b, ok := obj.(*Bool)
	if !ok {
		return false, typeErrorf("expected bool (got %s)", obj.Type())
	}
	return b.value, nil
}

func AsInt(obj Object) (int64, error) {
	i, ok := obj.(*Int)
	if !ok {
		return 0, typeErrorf("expected int (got %s)", obj.Type())
	}
	return i.value, nil
}

func AsString(obj Object) (string, error) {
	s, ok := obj.(*String)
	if !ok {
		return "", typeErrorf("expected string (got %s)", obj.Type())
	}
	return s.value, nil
}

// MaxDuration is the longest duration AsDuration accepts.
const MaxDuration = time.Duration(math.MaxInt64)

// AsDuration converts an int or float number of seconds to a duration.
// Negative, NaN and unrepresentable values are range errors.
func AsDuration(obj Object) (time.Duration, error) {
	var seconds float64
	switch obj := obj.(type) {
	case *Int:
		seconds = float64(obj.value)
	case *Float:
		seconds = obj.value
	default:
		return 0, typeErrorf("expected int or float (got %s)", obj.Type())
	}
	if math.IsNaN(seconds) || seconds < 0 {
		return 0, errz.Newf(errz.ErrRange, "duration must be a non-negative number (got %s)", obj.Inspect())
	}
	nanos := seconds * float64(time.Second)
	if nanos >= float64(MaxDuration) {
		return 0, errz.Newf(errz.ErrRange, "duration %s seconds is too long", obj.Inspect())
	}
	return time.Duration(nanos), nil
}

func AsFunction(obj Object) (*Function, error) {
	fn, ok := obj.(*Function)
	if !ok {
		return nil, typeErrorf("%s object is not callable", obj.Type())
	}
	return fn, nil
}

func typeErrorf(format string, args ...any) error {
	return errz.Newf(errz.ErrType, format, args...)
}
