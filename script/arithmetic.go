package script

import (
	"math"
	"math/big"
)

// execIntBinary implements ADD/SUB/MUL/DIV/MOD/BAND/BOR/BXOR/BSHL/
// BSHR: pop a then b, push b OP a, checked against the signed 128-bit
// range.
func (in *Interpreter) execIntBinary(op OpCode) error {
	a, err := in.popNumber()
	if err != nil {
		return err
	}
	b, err := in.popNumber()
	if err != nil {
		return err
	}

	var result *big.Int
	switch op {
	case OpADD:
		result = new(big.Int).Add(b, a)
	case OpSUB:
		result = new(big.Int).Sub(b, a)
	case OpMUL:
		result = new(big.Int).Mul(b, a)
	case OpDIV:
		if a.Sign() == 0 {
			return newError(ErrMath, "division by zero")
		}
		result = new(big.Int).Quo(b, a)
	case OpMOD:
		if a.Sign() == 0 {
			return newError(ErrMath, "modulus by zero")
		}
		result = new(big.Int).Rem(b, a)
	case OpBAND:
		result = new(big.Int).And(b, a)
	case OpBOR:
		result = new(big.Int).Or(b, a)
	case OpBXOR:
		result = new(big.Int).Xor(b, a)
	case OpBSHL:
		if a.Sign() < 0 || a.Cmp(big.NewInt(128)) >= 0 {
			return newError(ErrMath, "shift amount out of range")
		}
		result = new(big.Int).Lsh(b, uint(a.Int64()))
	case OpBSHR:
		if a.Sign() < 0 || a.Cmp(big.NewInt(128)) >= 0 {
			return newError(ErrMath, "shift amount out of range")
		}
		result = new(big.Int).Rsh(b, uint(a.Int64()))
	default:
		return newError(ErrInvalidScript, "not an integer binary opcode")
	}

	checked, err := checkedNumberResult(result)
	if err != nil {
		return err
	}
	return in.push(Number(checked))
}

func (in *Interpreter) execIntUnary(f func(*big.Int) (*big.Int, error)) error {
	a, err := in.popNumber()
	if err != nil {
		return err
	}
	result, err := f(a)
	if err != nil {
		return err
	}
	return in.push(Number(result))
}

// execPow implements POW: pop base (top) then exponent (second). The
// exponent must fit a non-negative uint32, matching the checked cast
// the interpreter is grounded on.
func (in *Interpreter) execPow() error {
	base, err := in.popNumber()
	if err != nil {
		return err
	}
	exp, err := in.popNumber()
	if err != nil {
		return err
	}
	if exp.Sign() < 0 || !exp.IsUint64() || exp.Uint64() > math.MaxUint32 {
		return newError(ErrMath, "exponent out of range")
	}
	result, err := checkedNumberResult(new(big.Int).Exp(base, exp, nil))
	if err != nil {
		return err
	}
	return in.push(Number(result))
}

// execIntMinMax implements MIN/MAX over Numbers.
func (in *Interpreter) execIntMinMax(op OpCode) error {
	a, err := in.popNumber()
	if err != nil {
		return err
	}
	b, err := in.popNumber()
	if err != nil {
		return err
	}
	result := a
	switch op {
	case OpMIN:
		if b.Cmp(a) < 0 {
			result = b
		}
	case OpMAX:
		if b.Cmp(a) > 0 {
			result = b
		}
	default:
		return newError(ErrInvalidScript, "not a min/max opcode")
	}
	return in.push(Number(new(big.Int).Set(result)))
}

// execNegAbs implements NEG/ABS, which accept either a Number or a
// Float operand.
func (in *Interpreter) execNegAbs(isAbs bool) error {
	v, err := in.pop()
	if err != nil {
		return err
	}
	switch v.k {
	case kindNumber:
		n := new(big.Int).Set(v.number)
		if isAbs {
			n.Abs(n)
		} else {
			n.Neg(n)
		}
		checked, err := checkedNumberResult(n)
		if err != nil {
			return err
		}
		return in.push(Number(checked))
	case kindFloat:
		f := v.f
		if isAbs {
			f = math.Abs(f)
		} else {
			f = -f
		}
		return in.push(Float(f))
	default:
		return newError(ErrNotANumber, "")
	}
}

// execBooleanBinary implements AND/OR/XOR over Booleans.
func (in *Interpreter) execBooleanBinary(op OpCode) error {
	b, err := in.popBoolean()
	if err != nil {
		return err
	}
	a, err := in.popBoolean()
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case OpAND:
		result = a && b
	case OpOR:
		result = a || b
	case OpXOR:
		result = a != b
	default:
		return newError(ErrInvalidScript, "not a boolean binary opcode")
	}
	return in.push(Boolean(result))
}

// execFloatMinMax implements FMIN/FMAX over Floats.
func (in *Interpreter) execFloatMinMax(op OpCode) error {
	a, err := in.popFloat()
	if err != nil {
		return err
	}
	b, err := in.popFloat()
	if err != nil {
		return err
	}
	var result float64
	switch op {
	case OpFMIN:
		result = math.Min(a, b)
	case OpFMAX:
		result = math.Max(a, b)
	default:
		return newError(ErrInvalidScript, "not a float min/max opcode")
	}
	return in.push(Float(result))
}

// execIntCompare implements LT/GT/LTE/GTE: pop a then b, push b OP a.
func (in *Interpreter) execIntCompare(op OpCode) error {
	a, err := in.popNumber()
	if err != nil {
		return err
	}
	b, err := in.popNumber()
	if err != nil {
		return err
	}
	cmp := b.Cmp(a)
	var result bool
	switch op {
	case OpLT:
		result = cmp < 0
	case OpGT:
		result = cmp > 0
	case OpLTE:
		result = cmp <= 0
	case OpGTE:
		result = cmp >= 0
	default:
		return newError(ErrInvalidScript, "not an integer comparison opcode")
	}
	return in.push(Boolean(result))
}

func (in *Interpreter) execFloatBinary(op OpCode) error {
	a, err := in.popFloat()
	if err != nil {
		return err
	}
	b, err := in.popFloat()
	if err != nil {
		return err
	}

	var result float64
	switch op {
	case OpFADD:
		result = b + a
	case OpFSUB:
		result = b - a
	case OpFMUL:
		result = b * a
	case OpFDIV:
		if a == 0 {
			return newError(ErrMath, "division by zero")
		}
		result = b / a
	case OpFMOD:
		if a == 0 {
			return newError(ErrMath, "modulus by zero")
		}
		result = math.Mod(b, a)
	default:
		return newError(ErrInvalidScript, "not a float binary opcode")
	}
	return in.push(Float(result))
}

func (in *Interpreter) execFloatUnary(op OpCode) error {
	a, err := in.popFloat()
	if err != nil {
		return err
	}

	var result float64
	switch op {
	case OpFLOOR:
		result = math.Floor(a)
	case OpCEIL:
		result = math.Ceil(a)
	case OpROUND:
		result = math.Round(a) // ties away from zero
	case OpROUNDE:
		result = math.RoundToEven(a)
	case OpSQRT:
		if a < 0 {
			return newError(ErrMath, "square root of a negative number")
		}
		result = math.Sqrt(a)
	default:
		return newError(ErrInvalidScript, "not a float unary opcode")
	}
	return in.push(Float(result))
}

// execFloatCompare implements FLT/FGT/FLTE/FGTE: pop a then b, push
// b OP a.
func (in *Interpreter) execFloatCompare(op OpCode) error {
	a, err := in.popFloat()
	if err != nil {
		return err
	}
	b, err := in.popFloat()
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case OpFLT:
		result = b < a
	case OpFGT:
		result = b > a
	case OpFLTE:
		result = b <= a
	case OpFGTE:
		result = b >= a
	default:
		return newError(ErrInvalidScript, "not a float comparison opcode")
	}
	return in.push(Boolean(result))
}
