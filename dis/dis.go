// Package dis supports analysis of Femira bytecode by disassembling it.
package dis

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/femira-lang/femira/bytecode"
	"github.com/femira-lang/femira/internal/table"
	"github.com/femira-lang/femira/op"
)

// Instruction is one disassembled instruction.
type Instruction struct {
	// Function is the name of the function whose body contains the
	// instruction; empty for the main sequence.
	Function string `json:"function,omitempty"`

	Offset int     `json:"offset"`
	Name   string  `json:"name"`
	Opcode op.Code `json:"opcode"`

	// Operand is the rendered operand, empty when there is none.
	Operand string `json:"operand,omitempty"`

	// Info annotates jumps with their target offset, function constants
	// with their signature and address calls with the table address.
	Info string `json:"info,omitempty"`

	constant any
}

// Disassemble returns a parsed representation of the given bytecode. The
// bodies of functions pushed by the code follow the instructions of the
// code itself.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	return disassemble(code, "")
}

func disassemble(code *bytecode.Code, function string) ([]Instruction, error) {
	var instructions []Instruction
	var nested []*bytecode.Function
	count := code.InstructionCount()
	for offset, instr := range code.Instructions() {
		if !instr.Op.Valid() {
			return nil, fmt.Errorf("invalid opcode %d at offset %d", instr.Op, offset)
		}
		var info, operand string
		if instr.HasOperand() || instr.Op == op.Push {
			operand = bytecode.FormatOperand(instr.Operand)
		}
		switch instr.Op {
		case op.Jump, op.JumpIfNot:
			d, ok := instr.Displacement()
			if !ok {
				return nil, fmt.Errorf("%s at offset %d has a non-int displacement", instr.Op, offset)
			}
			target := offset + 1 + int(d)
			if target < 0 || target > count {
				return nil, fmt.Errorf("%s at offset %d jumps out of range to %d", instr.Op, offset, target)
			}
			info = fmt.Sprintf("-> %d", target)
		case op.Read, op.Write:
			name, ok := instr.Name()
			if !ok {
				return nil, fmt.Errorf("%s at offset %d has no name operand", instr.Op, offset)
			}
			operand = name
		case op.Call:
			if addr, ok := instr.Displacement(); ok {
				info = fmt.Sprintf("callable %d", addr)
			}
		case op.Push:
			if fn, ok := instr.Operand.(*bytecode.Function); ok {
				info = fn.String()
				nested = append(nested, fn)
			}
		}
		instructions = append(instructions, Instruction{
			Function: function,
			Offset:   offset,
			Name:     instr.Op.String(),
			Opcode:   instr.Op,
			Operand:  operand,
			Info:     info,
			constant: instr.Operand,
		})
	}
	for _, fn := range nested {
		body, err := disassemble(fn.Code(), fn.Name())
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name(), err)
		}
		instructions = append(instructions, body...)
	}
	return instructions, nil
}

var (
	bold    = color.New(color.Bold).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
	cyan    = color.New(color.FgHiCyan).SprintFunc()
)

// Print a table of the given instructions to the given writer. Each
// function body gets its own table under a "function <name>" title.
// Colors follow color.NoColor.
func Print(instructions []Instruction, writer io.Writer) error {
	var lines [][]string
	current := ""
	started := false
	flush := func() error {
		if !started {
			return nil
		}
		if current != "" {
			if _, err := fmt.Fprintf(writer, "\nfunction %s\n", bold(current)); err != nil {
				return err
			}
		}
		err := table.NewTable(writer).
			WithHeader([]string{"OFFSET", "OPCODE", "OPERAND", "INFO"}).
			WithColumnAlignment([]table.Alignment{
				table.AlignRight,
				table.AlignLeft,
				table.AlignLeft,
				table.AlignLeft,
			}).
			WithHeaderAlignment([]table.Alignment{
				table.AlignCenter,
				table.AlignCenter,
				table.AlignCenter,
				table.AlignCenter,
			}).
			WithRows(lines).
			Render()
		lines = nil
		return err
	}
	for i, instr := range instructions {
		if !started || instr.Function != current || (i > 0 && instr.Offset == 0) {
			if err := flush(); err != nil {
				return err
			}
			current = instr.Function
			started = true
		}
		lines = append(lines, []string{
			fmt.Sprintf("%d", instr.Offset),
			bold(instr.Name),
			colorOperand(instr),
			colorInfo(instr.Info),
		})
	}
	return flush()
}

func colorOperand(instr Instruction) string {
	if instr.Operand == "" {
		return ""
	}
	switch instr.constant.(type) {
	case int64, float64:
		return yellow(instr.Operand)
	case string:
		if instr.Opcode == op.Push {
			return green(instr.Operand)
		}
		return cyan(instr.Operand)
	case *bytecode.Function:
		return magenta(instr.Operand)
	default:
		return instr.Operand
	}
}

func colorInfo(info string) string {
	if info == "" {
		return ""
	}
	return cyan(info)
}
