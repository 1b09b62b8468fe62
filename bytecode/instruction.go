package bytecode

import (
	"fmt"
	"strconv"

	"github.com/femira-lang/femira/op"
)

// Instruction is an opcode with an optional constant operand.
type Instruction struct {
	Op      op.Code
	Operand any
}

// Make returns an instruction for the given opcode. Untyped int operands
// are normalized to int64 and float32 to float64.
func Make(code op.Code, operand ...any) Instruction {
	instr := Instruction{Op: code}
	if len(operand) > 0 {
		instr.Operand = normalizeOperand(operand[0])
	}
	return instr
}

// HasOperand reports whether the instruction carries an operand.
func (i Instruction) HasOperand() bool {
	return i.Operand != nil
}

// Displacement returns the operand as a jump displacement or call address.
func (i Instruction) Displacement() (int64, bool) {
	d, ok := i.Operand.(int64)
	return d, ok
}

// Name returns the operand as a binding name.
func (i Instruction) Name() (string, bool) {
	s, ok := i.Operand.(string)
	return s, ok
}

// String renders the instruction as "OPCODE operand".
func (i Instruction) String() string {
	if i.Operand == nil && i.Op != op.Push {
		return i.Op.String()
	}
	return fmt.Sprintf("%s %s", i.Op, FormatOperand(i.Operand))
}

// FormatOperand renders a constant operand for listings and traces.
func FormatOperand(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !containsDot(s) {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case *Function:
		return fmt.Sprintf("<fn %s>", v.Name())
	default:
		return fmt.Sprintf("%v", v)
	}
}

func containsDot(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E', 'n', 'N', 'I':
			return true
		}
	}
	return false
}

func normalizeOperand(v any) any {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}
