package script

import (
	"math/big"
	"testing"

	"rubin.dev/plabble/bitio"
)

func TestOpcodeEncodeDecodeRoundTrip(t *testing.T) {
	program := OpcodeScript{
		Bare(OpTRUE),
		PushByte(7),
		PushBufferL([]byte("hello")),
		PushInt(-12345),
		PushFloat(3.5),
		DupN(3),
		Bare(OpADD),
		Bare(OpRETURN),
	}

	w := bitio.NewWriter()
	if err := Encode(w, program); err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode(bitio.NewReader(w.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(program) {
		t.Fatalf("got %d instructions, want %d", len(decoded), len(program))
	}
	if decoded[1].Byte != 7 {
		t.Fatalf("PUSH1 byte mismatch: %v", decoded[1])
	}
	if string(decoded[2].Buf) != "hello" {
		t.Fatalf("PUSHL1 buffer mismatch: %v", decoded[2])
	}
	if decoded[3].Int.Cmp(big.NewInt(-12345)) != 0 {
		t.Fatalf("PUSHINT mismatch: %v", decoded[3].Int)
	}
	if decoded[4].Float != 3.5 {
		t.Fatalf("PUSHFLOAT mismatch: %v", decoded[4].Float)
	}
	if decoded[5].N != 3 {
		t.Fatalf("DUPN count mismatch: %v", decoded[5].N)
	}
}

func TestIsPushOnly(t *testing.T) {
	if !(OpcodeScript{Bare(OpTRUE), PushInt(1)}).IsPushOnly() {
		t.Fatalf("expected a push-only script to report true")
	}
	if (OpcodeScript{Bare(OpTRUE), Bare(OpADD)}).IsPushOnly() {
		t.Fatalf("expected a script with a non-push opcode to report false")
	}
}
