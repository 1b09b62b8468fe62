// Package bytecode provides immutable representations of compiled Femira
// code.
//
// A [Code] is a flat instruction sequence: the unit the virtual machine
// executes and the unit a function owns. Each [Instruction] pairs an opcode
// with an optional constant operand. Operands are plain Go constants:
//
//   - int64 for integer literals, jump displacements and call addresses
//   - float64 for float literals
//   - string for string literals and WRITE/READ binding names
//   - bool for boolean literals
//   - nil for the null literal
//   - [*Function] for function literals
//
// Codes are created once by the compiler and may be shared across virtual
// machines and goroutines. Use [Marshal] and [Unmarshal] to persist them as
// CBOR images.
package bytecode
