package object

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float wraps float64 and implements Object.
type Float struct {
	value float64
}

func (f *Float) Type() Type {
	return FLOAT
}

func (f *Float) Value() float64 {
	return f.value
}

// Inspect renders the shortest decimal form that round-trips, e.g. "6.7".
func (f *Float) Inspect() string {
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

func (f *Float) String() string {
	return f.Inspect()
}

func (f *Float) Interface() interface{} {
	return f.value
}

func (f *Float) Equals(other Object) bool {
	if other, ok := other.(*Float); ok {
		return f.value == other.value
	}
	return false
}

func (f *Float) MarshalJSON() ([]byte, error) {
	if math.IsInf(f.value, 0) || math.IsNaN(f.value) {
		return json.Marshal(f.Inspect())
	}
	return json.Marshal(f.value)
}

func NewFloat(value float64) *Float {
	return &Float{value: value}
}
