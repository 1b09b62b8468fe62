// Package op defines the opcodes shared by the Femira compiler and virtual
// machine.
package op

// Code is an integer opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Stack and bindings
	Push  Code = 1
	Write Code = 2
	Read  Code = 3

	// Execution
	Call   Code = 10
	Return Code = 11
	Print  Code = 12
	Wait   Code = 13

	// Arithmetic
	Add Code = 20
	Sub Code = 21
	Mul Code = 22
	Div Code = 23
	Neg Code = 24

	// Logic and comparison
	Eq          Code = 30
	NotEq       Code = 31
	And         Code = 32
	Or          Code = 33
	Not         Code = 34
	Bigger      Code = 35
	Smaller     Code = 36
	BiggerOrEq  Code = 37
	SmallerOrEq Code = 38

	// Jumps
	Jump      Code = 40
	JumpIfNot Code = 41

	// Containers
	NewArray  Code = 50
	NewObject Code = 51
	SetIndex  Code = 52
	ReadIndex Code = 53
)

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string
	// OperandCount is 1 when the instruction requires an operand. CALL
	// takes an optional address operand and reports 0.
	OperandCount int
}

var infos = [...]Info{
	Push:        {Push, "PUSH", 1},
	Write:       {Write, "WRITE", 1},
	Read:        {Read, "READ", 1},
	Call:        {Call, "CALL", 0},
	Return:      {Return, "RETURN", 0},
	Print:       {Print, "PRINT", 0},
	Wait:        {Wait, "WAIT", 0},
	Add:         {Add, "ADD", 0},
	Sub:         {Sub, "SUB", 0},
	Mul:         {Mul, "MUL", 0},
	Div:         {Div, "DIV", 0},
	Neg:         {Neg, "NEG", 0},
	Eq:          {Eq, "EQ", 0},
	NotEq:       {NotEq, "NOTEQ", 0},
	And:         {And, "AND", 0},
	Or:          {Or, "OR", 0},
	Not:         {Not, "NOT", 0},
	Bigger:      {Bigger, "BIGGER", 0},
	Smaller:     {Smaller, "SMALLER", 0},
	BiggerOrEq:  {BiggerOrEq, "BIGGEROREQ", 0},
	SmallerOrEq: {SmallerOrEq, "SMALLEROREQ", 0},
	Jump:        {Jump, "JUMP", 1},
	JumpIfNot:   {JumpIfNot, "JUMPIFNOT", 1},
	NewArray:    {NewArray, "NEWARRAY", 0},
	NewObject:   {NewObject, "NEWOBJECT", 0},
	SetIndex:    {SetIndex, "SETINDEX", 0},
	ReadIndex:   {ReadIndex, "READINDEX", 0},
}

// GetInfo returns information about the given opcode. Unknown opcodes
// report the name "INVALID".
func GetInfo(c Code) Info {
	if int(c) < len(infos) && infos[c].Name != "" {
		return infos[c]
	}
	return Info{Code: c, Name: "INVALID"}
}

// String returns the opcode name, e.g. "JUMPIFNOT".
func (c Code) String() string {
	return GetInfo(c).Name
}

// Valid reports whether the opcode is known.
func (c Code) Valid() bool {
	return int(c) < len(infos) && infos[c].Name != ""
}

// Lookup returns the opcode with the given name.
func Lookup(name string) (Code, bool) {
	for _, info := range infos {
		if info.Name != "" && info.Name == name {
			return info.Code, true
		}
	}
	return Invalid, false
}

// IsJump reports whether the opcode carries a relative displacement.
func (c Code) IsJump() bool {
	return c == Jump || c == JumpIfNot
}
