package script

import (
	"math"
	"math/big"

	"rubin.dev/plabble/bitio"
)

// OpCode tags an Opcode's variant.
type OpCode byte

const (
	OpNOP OpCode = iota

	// push family
	OpFALSE
	OpTRUE
	OpPUSH1
	OpPUSH2
	OpPUSH4
	OpPUSHL1
	OpPUSHL2
	OpPUSHL4
	OpPUSHINT
	OpPUSHFLOAT

	// stack manipulation
	OpDUP
	OpDUP2
	OpDUP3
	OpDUP4
	OpDUPN
	OpSWAP
	OpROT
	OpPOP
	OpCOPY
	OpBUBBLE
	OpSINK
	OpCOUNT
	OpTOALT
	OpFROMALT
	OpSWITCH

	// snapshot/restore
	OpSNAPSHOT
	OpRESTORE
	OpCLEAR

	// control flow
	OpIF
	OpELSE
	OpFI
	OpLOOP
	OpPOOL
	OpBREAK
	OpJMP

	// integer arithmetic
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpMOD
	OpPOW
	OpNEG
	OpABS
	OpMIN
	OpMAX

	// bitwise
	OpBAND
	OpBOR
	OpBXOR
	OpBSHL
	OpBSHR
	OpBNOT

	// boolean logic
	OpNOT
	OpAND
	OpOR
	OpXOR

	// float arithmetic
	OpFADD
	OpFSUB
	OpFMUL
	OpFDIV
	OpFMOD
	OpFMIN
	OpFMAX
	OpFLOOR
	OpCEIL
	OpROUND
	OpROUNDE
	OpSQRT

	// comparison
	OpLT
	OpGT
	OpLTE
	OpGTE
	OpFLT
	OpFGT
	OpFLTE
	OpFGTE
	OpEQ
	OpNEQ

	// buffer manipulation
	OpCONCAT
	OpNUMBER
	OpFLOAT
	OpLEN
	OpREVERSE
	OpSLICE
	OpSPLICE

	// termination
	OpRETURN
	OpASSERT

	// sub-evaluation
	OpEVALSUB
	OpEVAL

	// host-deferred
	OpSERVER
	OpSELECT
	OpREAD
	OpWRITE
	OpAPPEND
	OpDELETE
	OpHASH
	OpSIGN
	OpVERIFY
	OpENCRYPT
	OpDECRYPT
	OpTIME
)

// Opcode is a single tagged instruction. Only the field(s) relevant to
// Op are meaningful; push opcodes carry their literal payload inline
// and DUPN carries its count in N. Everything else is a bare tag (any
// other operand, e.g. JMP's address, is popped off the stack at run
// time, not carried here).
type Opcode struct {
	Op    OpCode
	Byte  byte     // PUSH1
	Buf   []byte   // PUSH2, PUSH4, PUSHL1/2/4
	Int   *big.Int // PUSHINT
	Float float64  // PUSHFLOAT
	N     int      // DUPN: replication count, an encode-time literal
}

// OpcodeScript is an ordered instruction sequence.
type OpcodeScript []Opcode

// Bare returns a zero-payload instruction for tag — valid for every
// opcode that carries no inline literal.
func Bare(tag OpCode) Opcode { return Opcode{Op: tag} }

// PushInt builds a PUSHINT instruction.
func PushInt(v int64) Opcode { return Opcode{Op: OpPUSHINT, Int: big.NewInt(v)} }

// PushFloat builds a PUSHFLOAT instruction.
func PushFloat(v float64) Opcode { return Opcode{Op: OpPUSHFLOAT, Float: v} }

// PushByte builds a PUSH1 instruction.
func PushByte(b byte) Opcode { return Opcode{Op: OpPUSH1, Byte: b} }

// PushBufferL builds a length-prefixed PUSHL1 instruction for small
// ad hoc buffers built in tests and simple scripts.
func PushBufferL(b []byte) Opcode { return Opcode{Op: OpPUSHL1, Buf: b} }

// DupN builds a DUPN instruction with an encode-time replication count.
func DupN(n int) Opcode { return Opcode{Op: OpDUPN, N: n} }

// isPush reports whether op is one of the literal-push opcodes —
// used by validate_script's allow_non_push gate.
func (op OpCode) isPush() bool {
	switch op {
	case OpFALSE, OpTRUE, OpPUSH1, OpPUSH2, OpPUSH4, OpPUSHL1, OpPUSHL2, OpPUSHL4, OpPUSHINT, OpPUSHFLOAT:
		return true
	default:
		return false
	}
}

// IsPushOnly reports whether every instruction in the script is a
// push opcode.
func (s OpcodeScript) IsPushOnly() bool {
	for _, op := range s {
		if !op.Op.isPush() {
			return false
		}
	}
	return true
}

// Encode serializes an OpcodeScript: each instruction as a one-byte
// tag followed by its payload, matching the layout EVALSUB/EVAL expect
// to decode back from a popped Buffer.
func Encode(w *bitio.Writer, s OpcodeScript) error {
	w.WriteDynInt(uint64(len(s)))
	for _, op := range s {
		w.WriteFixedUint(uint64(op.Op), 8)
		switch op.Op {
		case OpPUSH1:
			w.WriteFixedUint(uint64(op.Byte), 8)
		case OpPUSH2:
			w.WriteBytes(pad(op.Buf, 2))
		case OpPUSH4:
			w.WriteBytes(pad(op.Buf, 4))
		case OpPUSHL1, OpPUSHL2, OpPUSHL4:
			if err := w.WriteDynLength(op.Buf); err != nil {
				return err
			}
		case OpPUSHINT:
			n := op.Int
			if n == nil {
				n = big.NewInt(0)
			}
			if err := w.WriteDynLength(numberToBytes(n)); err != nil {
				return err
			}
		case OpPUSHFLOAT:
			var out [8]byte
			bits := math.Float64bits(op.Float)
			for i := 0; i < 8; i++ {
				out[7-i] = byte(bits >> (8 * i))
			}
			w.WriteBytes(out[:])
		case OpDUPN:
			w.WriteDynInt(uint64(op.N))
		}
	}
	return nil
}

func pad(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// Decode deserializes an OpcodeScript previously produced by Encode.
func Decode(r *bitio.Reader) (OpcodeScript, error) {
	count, err := r.ReadDynInt()
	if err != nil {
		return nil, err
	}
	out := make(OpcodeScript, 0, count)
	for i := uint64(0); i < count; i++ {
		tag, err := r.ReadFixedUint(8)
		if err != nil {
			return nil, err
		}
		op := Opcode{Op: OpCode(tag)}
		switch op.Op {
		case OpPUSH1:
			b, err := r.ReadFixedUint(8)
			if err != nil {
				return nil, err
			}
			op.Byte = byte(b)
		case OpPUSH2:
			b, err := r.ReadBytes(2)
			if err != nil {
				return nil, err
			}
			op.Buf = b
		case OpPUSH4:
			b, err := r.ReadBytes(4)
			if err != nil {
				return nil, err
			}
			op.Buf = b
		case OpPUSHL1, OpPUSHL2, OpPUSHL4:
			b, err := r.ReadDynLength()
			if err != nil {
				return nil, err
			}
			op.Buf = b
		case OpPUSHINT:
			b, err := r.ReadDynLength()
			if err != nil {
				return nil, err
			}
			op.Int = bytesToNumber(b)
		case OpPUSHFLOAT:
			b, err := r.ReadBytes(8)
			if err != nil {
				return nil, err
			}
			var bits uint64
			for i := 0; i < 8; i++ {
				bits = bits<<8 | uint64(b[i])
			}
			op.Float = math.Float64frombits(bits)
		case OpDUPN:
			n, err := r.ReadDynInt()
			if err != nil {
				return nil, err
			}
			op.N = int(n)
		default:
			if op.Op > OpTIME {
				return nil, bitio.NewError(bitio.ErrInvalidDiscriminator, "unknown opcode tag")
			}
		}
		out = append(out, op)
	}
	return out, nil
}

func bytesToNumber(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	v := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, mod)
	}
	return v
}
