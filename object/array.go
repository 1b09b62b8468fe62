package object

import (
	"encoding/json"
	"strings"

	"github.com/femira-lang/femira/errz"
)

// Array is an ordered, growable sequence of values.
type Array struct {
	items []Object
}

func (arr *Array) Type() Type {
	return ARRAY
}

func (arr *Array) Inspect() string {
	items := make([]string, 0, len(arr.items))
	for _, item := range arr.items {
		items = append(items, item.Inspect())
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func (arr *Array) String() string {
	return arr.Inspect()
}

func (arr *Array) Interface() interface{} {
	items := make([]interface{}, 0, len(arr.items))
	for _, item := range arr.items {
		items = append(items, item.Interface())
	}
	return items
}

// Equals is always false: arrays have no structural equality.
func (arr *Array) Equals(other Object) bool {
	return false
}

// Len returns the number of slots.
func (arr *Array) Len() int {
	return len(arr.items)
}

// Items returns a copy of the slots.
func (arr *Array) Items() []Object {
	items := make([]Object, len(arr.items))
	copy(items, arr.items)
	return items
}

// Get returns the value at index. An index outside [0, Len) is a range
// error.
func (arr *Array) Get(index int64) (Object, error) {
	if index < 0 || index >= int64(len(arr.items)) {
		return nil, errz.Newf(errz.ErrRange, "array index %d out of range (length %d)", index, len(arr.items))
	}
	return arr.items[index], nil
}

// MaxArrayLength bounds how far Set may grow an array.
const MaxArrayLength = 1 << 24

// Set stores value at index, growing the array with nil slots as needed.
// A negative index, or one that would grow the array beyond
// MaxArrayLength, is a range error.
func (arr *Array) Set(index int64, value Object) error {
	if index < 0 || index >= MaxArrayLength {
		return errz.Newf(errz.ErrRange, "array index %d out of range (maximum length %d)",
			index, MaxArrayLength)
	}
	if n := int(index) + 1; n > len(arr.items) {
		grown := make([]Object, n)
		copy(grown, arr.items)
		for i := len(arr.items); i < n; i++ {
			grown[i] = Nil
		}
		arr.items = grown
	}
	arr.items[index] = value
	return nil
}

// Append adds value at the end.
func (arr *Array) Append(value Object) {
	arr.items = append(arr.items, value)
}

func (arr *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(arr.items)
}

func NewArray(items []Object) *Array {
	if items == nil {
		items = []Object{}
	}
	return &Array{items: items}
}
