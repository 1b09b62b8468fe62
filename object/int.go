package object

import (
	"strconv"
)

// Int wraps int64 and implements Object.
type Int struct {
	value int64
}

const (
	tableMin = -10
	tableMax = 255
)

var intCache = []*Int{}

func init() {
	intCache = make([]*Int, tableMax-tableMin+1)
	for i := 0; i < tableMax-tableMin+1; i++ {
		intCache[i] = &Int{value: int64(i + tableMin)}
	}
}

func (i *Int) Type() Type {
	return INT
}

func (i *Int) Value() int64 {
	return i.value
}

func (i *Int) Inspect() string {
	return strconv.FormatInt(i.value, 10)
}

func (i *Int) String() string {
	return i.Inspect()
}

func (i *Int) Interface() interface{} {
	return i.value
}

func (i *Int) Equals(other Object) bool {
	if other, ok := other.(*Int); ok {
		return i.value == other.value
	}
	return false
}

func (i *Int) MarshalJSON() ([]byte, error) {
	return []byte(i.Inspect()), nil
}

func NewInt(value int64) *Int {
	if value >= tableMin && value <= tableMax {
		return intCache[value-tableMin]
	}
	return &Int{value: value}
}
