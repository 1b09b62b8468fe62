package object

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record maps field names to values.
type Record struct {
	items map[string]Object
}

func (r *Record) Type() Type {
	return RECORD
}

func (r *Record) Inspect() string {
	keys := r.Keys()
	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s: %s", k, r.items[k].Inspect()))
	}
	return "{" + strings.Join(fields, ", ") + "}"
}

func (r *Record) String() string {
	return r.Inspect()
}

func (r *Record) Interface() interface{} {
	result := make(map[string]interface{}, len(r.items))
	for k, v := range r.items {
		result[k] = v.Interface()
	}
	return result
}

// Equals is always false: records have no structural equality.
func (r *Record) Equals(other Object) bool {
	return false
}

// Get returns the field value and whether the field exists.
func (r *Record) Get(key string) (Object, bool) {
	value, ok := r.items[key]
	return value, ok
}

// Set assigns a field.
func (r *Record) Set(key string, value Object) {
	r.items[key] = value
}

// Keys returns the field names, sorted.
func (r *Record) Keys() []string {
	return Keys(r.items)
}

func (r *Record) Len() int {
	return len(r.items)
}

func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.items)
}

func NewRecord(items map[string]Object) *Record {
	if items == nil {
		items = map[string]Object{}
	}
	return &Record{items: items}
}
