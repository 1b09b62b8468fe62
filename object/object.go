// Package object provides the Femira value model.
//
// Values form a closed set of variants. Callers usually type switch on the
// concrete type:
//
//	switch obj := obj.(type) {
//	case *object.Int:
//		// do something with obj.Value()
//	case *object.Array:
//		// do something with obj.Len()
//	}
//
// The Type() method of each object returns the variant name, such as "int"
// or "record".
package object

import (
	"math"
	"sort"
)

// Type of an object as a string.
type Type string

// Type constants
const (
	ARRAY    Type = "array"
	BOOL     Type = "bool"
	FLOAT    Type = "float"
	FUNCTION Type = "function"
	INT      Type = "int"
	NIL      Type = "nil"
	RECORD   Type = "record"
	STRING   Type = "string"
)

var (
	Nil   = &NilType{}
	True  = &Bool{value: true}
	False = &Bool{value: false}
)

// Object is the interface that all Femira values implement.
type Object interface {
	// Type of the object.
	Type() Type

	// Inspect returns a string representation of the given object.
	Inspect() string

	// Interface converts the given object to a native Go value.
	Interface() interface{}

	// Returns true if the given object is equal to this object. Arrays,
	// records and functions are never equal to anything.
	Equals(other Object) bool
}

// Scope is the binding environment a function value is bound to. It is
// implemented by *scope.Scope.
type Scope interface {
	Read(name string) (Object, error)
	Has(name string) bool
}

// Same reports whether a and b are the same binding value: the identical
// reference for arrays, records and functions, or equal payloads for the
// primitive variants.
func Same(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a := a.(type) {
	case *Array, *Record, *Function:
		return a == b
	case *Float:
		// Bitwise, so that NaN is the same as itself.
		other, ok := b.(*Float)
		return ok && math.Float64bits(a.value) == math.Float64bits(other.value)
	}
	return a.Equals(b)
}

// PrintableString returns the text PRINT shows for a value. Strings render
// without quotes; everything else uses Inspect.
func PrintableString(obj Object) string {
	if s, ok := obj.(*String); ok {
		return s.value
	}
	return obj.Inspect()
}

// Keys returns the keys of an object map as a sorted slice of strings.
func Keys(m map[string]Object) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
