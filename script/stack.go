package script

import (
	"bytes"
	"math"
	"math/big"
)

// kind discriminates a StackData's active variant.
type kind int

const (
	kindBoolean kind = iota
	kindByte
	kindNumber
	kindFloat
	kindBuffer
)

var (
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// StackData is the tagged union every script stack slot holds: a
// Boolean, a Byte, a signed 128-bit Number, a 64-bit Float, or a
// Buffer. Exactly one of the accessors below is meaningful per value,
// selected by kind.
type StackData struct {
	k      kind
	b      bool
	by     byte
	number *big.Int
	f      float64
	buf    []byte
}

func Boolean(v bool) StackData  { return StackData{k: kindBoolean, b: v} }
func Byte(v byte) StackData     { return StackData{k: kindByte, by: v} }
func Number(v *big.Int) StackData { return StackData{k: kindNumber, number: v} }
func NumberInt64(v int64) StackData { return StackData{k: kindNumber, number: big.NewInt(v)} }
func Float(v float64) StackData { return StackData{k: kindFloat, f: v} }
func Buffer(v []byte) StackData { return StackData{k: kindBuffer, buf: v} }

// Memory returns this value's cost against ScriptSettings.MemoryLimit
// and the pushed-item check against MaxSliceSize.
func (s StackData) Memory() int {
	switch s.k {
	case kindBoolean:
		return 1
	case kindByte, kindNumber, kindFloat:
		return 2
	case kindBuffer:
		return len(s.buf)
	default:
		return 0
	}
}

func inRange128(v *big.Int) bool {
	return v.Cmp(minInt128) >= 0 && v.Cmp(maxInt128) <= 0
}

// AsNumber coerces to a signed 128-bit integer. Boolean maps to 1/0,
// Byte widens, Number passes through, Float requires an exact integer
// value. Buffer never coerces to a number.
func (s StackData) AsNumber() (*big.Int, error) {
	switch s.k {
	case kindBoolean:
		if s.b {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case kindByte:
		return big.NewInt(int64(s.by)), nil
	case kindNumber:
		return s.number, nil
	case kindFloat:
		if s.f != math.Trunc(s.f) || math.IsNaN(s.f) || math.IsInf(s.f, 0) {
			return nil, newError(ErrNotANumber, "float has a fractional part")
		}
		bi, _ := big.NewFloat(s.f).Int(nil)
		return bi, nil
	default:
		return nil, newError(ErrNotANumber, "value is a buffer")
	}
}

// AsFloat coerces to a 64-bit float. Boolean, Byte and Number widen;
// Buffer never coerces.
func (s StackData) AsFloat() (float64, error) {
	switch s.k {
	case kindBoolean:
		if s.b {
			return 1, nil
		}
		return 0, nil
	case kindByte:
		return float64(s.by), nil
	case kindNumber:
		f, _ := new(big.Float).SetInt(s.number).Float64()
		return f, nil
	case kindFloat:
		return s.f, nil
	default:
		return 0, newError(ErrNotAFloat, "value is a buffer")
	}
}

// AsBoolean coerces to a boolean: zero-valued numerics are false, any
// non-zero numeric is true, Buffer never coerces.
func (s StackData) AsBoolean() (bool, error) {
	switch s.k {
	case kindBoolean:
		return s.b, nil
	case kindByte:
		return s.by != 0, nil
	case kindNumber:
		return s.number.Sign() != 0, nil
	case kindFloat:
		return s.f != 0, nil
	default:
		return false, newError(ErrNotABoolean, "value is a buffer")
	}
}

// AsBuffer returns this value's canonical buffer encoding: Boolean is
// one byte (0x01/0x00), Byte is one byte, Number is its big-endian
// two's-complement minimal encoding, Float is its IEEE-754 big-endian
// encoding, Buffer passes through.
func (s StackData) AsBuffer() []byte {
	switch s.k {
	case kindBoolean:
		if s.b {
			return []byte{1}
		}
		return []byte{0}
	case kindByte:
		return []byte{s.by}
	case kindNumber:
		return numberToBytes(s.number)
	case kindFloat:
		var out [8]byte
		bits := math.Float64bits(s.f)
		for i := 0; i < 8; i++ {
			out[7-i] = byte(bits >> (8 * i))
		}
		return out[:]
	case kindBuffer:
		return s.buf
	default:
		return nil
	}
}

func numberToBytes(v *big.Int) []byte {
	if v.Sign() >= 0 {
		b := v.Bytes()
		if len(b) == 0 {
			return []byte{0}
		}
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	}
	// two's complement of the minimal-width magnitude
	mag := new(big.Int).Neg(v)
	nbytes := (new(big.Int).Sub(mag, big.NewInt(1)).BitLen() + 8) / 8
	if nbytes == 0 {
		nbytes = 1
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nbytes*8))
	twos := new(big.Int).Add(mod, v)
	b := twos.Bytes()
	for len(b) < nbytes {
		b = append([]byte{0}, b...)
	}
	return b
}

// Equal implements EQ's cross-kind coercion: Boolean<->Number/Float/Byte
// via true=1,false=0; Number<->Float iff the float is integral and
// matches; Number<->Byte, Float<->Byte are numeric; any pair involving
// a Buffer compares buffer encodings.
func Equal(a, b StackData) (bool, error) {
	if a.k == kindBuffer || b.k == kindBuffer {
		return bytes.Equal(a.AsBuffer(), b.AsBuffer()), nil
	}
	if a.k == kindFloat || b.k == kindFloat {
		af, err := a.AsFloat()
		if err != nil {
			return false, err
		}
		bf, err := b.AsFloat()
		if err != nil {
			return false, err
		}
		return af == bf, nil
	}
	an, err := a.AsNumber()
	if err != nil {
		return false, err
	}
	bn, err := b.AsNumber()
	if err != nil {
		return false, err
	}
	return an.Cmp(bn) == 0, nil
}

func checkedNumberResult(v *big.Int) (*big.Int, error) {
	if !inRange128(v) {
		return nil, newError(ErrMath, "result overflows signed 128-bit range")
	}
	return v, nil
}
