package object

import (
	"github.com/femira-lang/femira/errz"
	"github.com/femira-lang/femira/op"
)

// BinaryOp applies an arithmetic, comparison or logical opcode to two
// operands. Arithmetic and ordering accept only int/int and float/float;
// AND and OR accept only bools.
func BinaryOp(code op.Code, left, right Object) (Object, error) {
	switch code {
	case op.Eq:
		return NewBool(left.Equals(right)), nil
	case op.NotEq:
		return NewBool(!left.Equals(right)), nil
	case op.And, op.Or:
		l, lok := left.(*Bool)
		r, rok := right.(*Bool)
		if !lok || !rok {
			return nil, unsupported(code, left, right)
		}
		if code == op.And {
			return NewBool(l.value && r.value), nil
		}
		return NewBool(l.value || r.value), nil
	}
	switch l := left.(type) {
	case *Int:
		if r, ok := right.(*Int); ok {
			return intOp(code, l.value, r.value)
		}
	case *Float:
		if r, ok := right.(*Float); ok {
			return floatOp(code, l.value, r.value)
		}
	}
	return nil, unsupported(code, left, right)
}

// UnaryOp applies NEG or NOT.
func UnaryOp(code op.Code, operand Object) (Object, error) {
	switch code {
	case op.Neg:
		switch v := operand.(type) {
		case *Int:
			return NewInt(-v.value), nil
		case *Float:
			return NewFloat(-v.value), nil
		}
	case op.Not:
		if b, ok := operand.(*Bool); ok {
			return b.Not(), nil
		}
	default:
		return nil, errz.Newf(errz.ErrRuntime, "unknown unary operator: %s", code)
	}
	return nil, errz.Newf(errz.ErrType, "unsupported operand type for %s: %s", code, operand.Type())
}

func intOp(code op.Code, l, r int64) (Object, error) {
	switch code {
	case op.Add:
		return NewInt(l + r), nil
	case op.Sub:
		return NewInt(l - r), nil
	case op.Mul:
		return NewInt(l * r), nil
	case op.Div:
		if r == 0 {
			return nil, errz.New(errz.ErrRange, "division by zero")
		}
		return NewInt(l / r), nil
	case op.Bigger:
		return NewBool(l > r), nil
	case op.Smaller:
		return NewBool(l < r), nil
	case op.BiggerOrEq:
		return NewBool(l >= r), nil
	case op.SmallerOrEq:
		return NewBool(l <= r), nil
	}
	return nil, errz.Newf(errz.ErrRuntime, "unknown binary operator: %s", code)
}

func floatOp(code op.Code, l, r float64) (Object, error) {
	switch code {
	case op.Add:
		return NewFloat(l + r), nil
	case op.Sub:
		return NewFloat(l - r), nil
	case op.Mul:
		return NewFloat(l * r), nil
	case op.Div:
		return NewFloat(l / r), nil
	case op.Bigger:
		return NewBool(l > r), nil
	case op.Smaller:
		return NewBool(l < r), nil
	case op.BiggerOrEq:
		return NewBool(l >= r), nil
	case op.SmallerOrEq:
		return NewBool(l <= r), nil
	}
	return nil, errz.Newf(errz.ErrRuntime, "unknown binary operator: %s", code)
}

func unsupported(code op.Code, left, right Object) error {
	return errz.Newf(errz.ErrType, "unsupported operand types for %s: %s and %s",
		code, left.Type(), right.Type())
}
