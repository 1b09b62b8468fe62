package bytecode

import (
	"fmt"

	"github.com/femira-lang/femira/op"
	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the version of the serialized bytecode format.
const ImageVersion = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type operandKind uint8

const (
	operandNone operandKind = iota
	operandInt
	operandFloat
	operandString
	operandBool
	operandFunction
)

type image struct {
	Version int       `cbor:"v"`
	Code    *wireCode `cbor:"code"`
}

type wireCode struct {
	Name         string            `cbor:"name,omitempty"`
	Filename     string            `cbor:"file,omitempty"`
	Source       string            `cbor:"src,omitempty"`
	Instructions []wireInstruction `cbor:"ins"`
}

type wireInstruction struct {
	Op       uint8         `cbor:"op"`
	Kind     operandKind   `cbor:"k,omitempty"`
	Int      int64         `cbor:"i,omitempty"`
	Float    float64       `cbor:"f,omitempty"`
	String   string        `cbor:"s,omitempty"`
	Bool     bool          `cbor:"b,omitempty"`
	Function *wireFunction `cbor:"fn,omitempty"`
}

type wireFunction struct {
	Name       string    `cbor:"name"`
	Parameters []string  `cbor:"params,omitempty"`
	Code       *wireCode `cbor:"code"`
}

// Marshal serializes a Code, including nested function bodies, to a
// canonical CBOR image.
func Marshal(code *Code) ([]byte, error) {
	if code == nil {
		return nil, fmt.Errorf("bytecode: cannot marshal nil code")
	}
	wc, err := toWire(code)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(&image{Version: ImageVersion, Code: wc})
}

// Unmarshal deserializes a Code from a CBOR image produced by Marshal.
func Unmarshal(data []byte) (*Code, error) {
	var img image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal image: %w", err)
	}
	if img.Version != ImageVersion {
		return nil, fmt.Errorf("bytecode: unsupported image version %d", img.Version)
	}
	if img.Code == nil {
		return nil, fmt.Errorf("bytecode: image has no code")
	}
	return fromWire(img.Code)
}

func toWire(code *Code) (*wireCode, error) {
	wc := &wireCode{
		Name:         code.name,
		Filename:     code.filename,
		Source:       code.source,
		Instructions: make([]wireInstruction, 0, len(code.instructions)),
	}
	for idx, instr := range code.instructions {
		wi := wireInstruction{Op: uint8(instr.Op)}
		switch v := instr.Operand.(type) {
		case nil:
		case int64:
			wi.Kind, wi.Int = operandInt, v
		case float64:
			wi.Kind, wi.Float = operandFloat, v
		case string:
			wi.Kind, wi.String = operandString, v
		case bool:
			wi.Kind, wi.Bool = operandBool, v
		case *Function:
			body, err := toWire(v.code)
			if err != nil {
				return nil, err
			}
			wi.Kind = operandFunction
			wi.Function = &wireFunction{
				Name:       v.name,
				Parameters: v.parameters,
				Code:       body,
			}
		default:
			return nil, fmt.Errorf("bytecode: unsupported operand %T at offset %d", v, idx)
		}
		wc.Instructions = append(wc.Instructions, wi)
	}
	return wc, nil
}

func fromWire(wc *wireCode) (*Code, error) {
	instrs := make([]Instruction, 0, len(wc.Instructions))
	for idx, wi := range wc.Instructions {
		code := op.Code(wi.Op)
		if !code.Valid() {
			return nil, fmt.Errorf("bytecode: invalid opcode %d at offset %d", wi.Op, idx)
		}
		instr := Instruction{Op: code}
		switch wi.Kind {
		case operandNone:
		case operandInt:
			instr.Operand = wi.Int
		case operandFloat:
			instr.Operand = wi.Float
		case operandString:
			instr.Operand = wi.String
		case operandBool:
			instr.Operand = wi.Bool
		case operandFunction:
			if wi.Function == nil || wi.Function.Code == nil {
				return nil, fmt.Errorf("bytecode: missing function body at offset %d", idx)
			}
			body, err := fromWire(wi.Function.Code)
			if err != nil {
				return nil, err
			}
			instr.Operand = NewFunction(FunctionParams{
				Name:       wi.Function.Name,
				Parameters: wi.Function.Parameters,
				Code:       body,
			})
		default:
			return nil, fmt.Errorf("bytecode: unknown operand kind %d at offset %d", wi.Kind, idx)
		}
		instrs = append(instrs, instr)
	}
	return NewCode(CodeParams{
		Name:         wc.Name,
		Filename:     wc.Filename,
		Source:       wc.Source,
		Instructions: instrs,
	}), nil
}
