package script

import (
	"context"
	"log/slog"
	"testing"

	"rubin.dev/plabble/bitio"
)

func TestOpcodeLimitExceeded(t *testing.T) {
	program := make(OpcodeScript, 101)
	for i := range program {
		program[i] = Bare(OpNOP)
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if err := interp.ValidateScript(); err == nil {
		t.Fatalf("expected validation to fail")
	} else if se, ok := err.(*Error); !ok || se.Code != ErrOpcodeLimitExceeded {
		t.Fatalf("got %v, want OpcodeLimitExceeded", err)
	}
}

func TestExecWithoutReturnYieldsNilResult(t *testing.T) {
	program := OpcodeScript{PushInt(1), PushInt(1), Bare(OpADD), Bare(OpPOP)}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	result, err := interp.Exec()
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if result != nil {
		t.Fatalf("expected a nil result, got %v", result)
	}
}

func TestArithmeticAssertScript(t *testing.T) {
	program := OpcodeScript{
		PushInt(16), PushInt(2), Bare(OpMUL),
		PushInt(32), Bare(OpEQ), Bare(OpASSERT),
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	result, err := interp.Exec()
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if result != nil {
		t.Fatalf("expected a nil result, got %v", result)
	}
	executions, _, _ := interp.Counters()
	if executions != 6 {
		t.Fatalf("executions = %d, want 6", executions)
	}
}

func TestAssertionFailure(t *testing.T) {
	program := OpcodeScript{Bare(OpFALSE), Bare(OpASSERT)}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	_, err := interp.Exec()
	if se, ok := err.(*Error); !ok || se.Code != ErrAssertionFailed {
		t.Fatalf("got %v, want AssertionFailed", err)
	}
}

func TestEvalSubLeavesPushedResultOnParentStack(t *testing.T) {
	child := OpcodeScript{PushByte(9), Bare(OpRETURN)}
	w := bitio.NewWriter()
	if err := Encode(w, child); err != nil {
		t.Fatalf("encode child: %v", err)
	}

	parent := OpcodeScript{
		Opcode{Op: OpPUSHL1, Buf: w.Bytes()},
		Bare(OpEVALSUB),
	}
	interp := New(parent, DefaultScriptSettings(), nil, nil)
	result, err := interp.Exec()
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if result != nil {
		t.Fatalf("parent ran off the end without RETURN, expected nil result")
	}
	top, ok := interp.Top()
	if !ok {
		t.Fatalf("expected a value left on the parent stack")
	}
	if got := top.AsBuffer(); len(got) != 1 || got[0] != 9 {
		t.Fatalf("top = %v, want [9]", got)
	}
}

func TestEvalSubRejectsWhenSandboxedEvalDisallowed(t *testing.T) {
	settings := DefaultScriptSettings()
	settings.AllowSandboxedEval = false
	child := OpcodeScript{Bare(OpTRUE)}
	w := bitio.NewWriter()
	_ = Encode(w, child)
	parent := OpcodeScript{Opcode{Op: OpPUSHL1, Buf: w.Bytes()}, Bare(OpEVALSUB)}
	interp := New(parent, settings, nil, nil)
	if err := interp.ValidateScript(); err == nil {
		t.Fatalf("expected validation to fail")
	}
}

func TestIfElseFiControlFlow(t *testing.T) {
	program := OpcodeScript{
		Bare(OpFALSE),
		Bare(OpIF),
		PushInt(1),
		Bare(OpELSE),
		PushInt(2),
		Bare(OpFI),
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, ok := interp.Top()
	if !ok {
		t.Fatalf("expected a value on the stack")
	}
	n, err := top.AsNumber()
	if err != nil || n.Int64() != 2 {
		t.Fatalf("top = %v, want 2 (else branch)", top)
	}
}

func TestLoopPoolBreak(t *testing.T) {
	// counts down from 3 to 0, breaking when it reaches 0, leaving 0 on
	// the stack.
	program := OpcodeScript{
		PushInt(3), // 0
		Bare(OpLOOP),      // 1
		Bare(OpDUP),       // 2
		PushInt(0),        // 3
		Bare(OpEQ),        // 4
		Bare(OpIF),        // 5
		Bare(OpBREAK),      // 6
		Bare(OpFI),        // 7
		PushInt(1),        // 8
		Bare(OpSUB),       // 9
		Bare(OpPOOL),      // 10
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, ok := interp.Top()
	if !ok {
		t.Fatalf("expected a value on the stack")
	}
	n, err := top.AsNumber()
	if err != nil || n.Int64() != 0 {
		t.Fatalf("top = %v, want 0", top)
	}
}

func TestSwapRot(t *testing.T) {
	program := OpcodeScript{
		PushInt(1), PushInt(2), PushInt(3),
		Bare(OpROT), // -> 2 3 1
		Bare(OpSWAP), // -> 2 1 3
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	n, _ := top.AsNumber()
	if n.Int64() != 3 {
		t.Fatalf("top = %v, want 3", top)
	}
}

func TestToAltFromAlt(t *testing.T) {
	program := OpcodeScript{
		PushInt(42),
		Bare(OpTOALT),
		PushInt(7),
		Bare(OpFROMALT),
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	n, _ := top.AsNumber()
	if n.Int64() != 42 {
		t.Fatalf("top = %v, want 42", top)
	}
	_, err := interp.popNumber() // consumes the 42, exposing the 7 underneath
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	top, ok := interp.Top()
	if !ok {
		t.Fatalf("expected the 7 pushed before FROMALT still underneath")
	}
	n, _ = top.AsNumber()
	if n.Int64() != 7 {
		t.Fatalf("top = %v, want 7", top)
	}
}

func TestSnapshotRestore(t *testing.T) {
	program := OpcodeScript{
		PushInt(1), PushInt(2),
		Bare(OpSNAPSHOT),
		Bare(OpPOP), Bare(OpPOP),
		Bare(OpRESTORE),
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, ok := interp.Top()
	if !ok {
		t.Fatalf("expected the snapshot restored")
	}
	n, _ := top.AsNumber()
	if n.Int64() != 2 {
		t.Fatalf("top = %v, want 2", top)
	}
}

func TestClearDisallowed(t *testing.T) {
	settings := DefaultScriptSettings()
	settings.AllowClear = false
	interp := New(OpcodeScript{Bare(OpCLEAR)}, settings, nil, nil)
	if err := interp.ValidateScript(); err == nil {
		t.Fatalf("expected validation to fail")
	} else if se, ok := err.(*Error); !ok || se.Code != ErrClearNotAllowed {
		t.Fatalf("got %v, want ClearNotAllowed", err)
	}
}

func TestStackUnderflow(t *testing.T) {
	interp := New(OpcodeScript{Bare(OpADD)}, DefaultScriptSettings(), nil, nil)
	_, err := interp.Exec()
	se, ok := err.(*Error)
	if !ok || se.Code != ErrStackUnderflow {
		t.Fatalf("got %v, want StackUnderflow", err)
	}
}

func TestDivisionByZero(t *testing.T) {
	program := OpcodeScript{PushInt(1), PushInt(0), Bare(OpDIV)}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	_, err := interp.Exec()
	se, ok := err.(*Error)
	if !ok || se.Code != ErrMath {
		t.Fatalf("got %v, want MathError", err)
	}
}

func TestBucketActionsWithoutHostFails(t *testing.T) {
	program := OpcodeScript{PushBufferL([]byte("k")), Bare(OpDELETE)}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	_, err := interp.Exec()
	se, ok := err.(*Error)
	if !ok || se.Code != ErrBucketActionsNotAllowed {
		t.Fatalf("got %v, want BucketActionsNotAllowed", err)
	}
}

type memBucketHost struct {
	server bool
	data   map[string][]byte
}

func newMemBucketHost() *memBucketHost { return &memBucketHost{data: map[string][]byte{}} }

func (h *memBucketHost) IsServer() bool          { return h.server }
func (h *memBucketHost) Select(name []byte) error { return nil }
func (h *memBucketHost) Read(key []byte) ([]byte, bool, error) {
	v, ok := h.data[string(key)]
	return v, ok, nil
}
func (h *memBucketHost) Write(key, value []byte) error {
	h.data[string(key)] = append([]byte{}, value...)
	return nil
}
func (h *memBucketHost) Append(key, value []byte) error {
	h.data[string(key)] = append(h.data[string(key)], value...)
	return nil
}
func (h *memBucketHost) Delete(key []byte) error {
	delete(h.data, string(key))
	return nil
}

func TestBucketReadWriteAppend(t *testing.T) {
	host := newMemBucketHost()
	program := OpcodeScript{
		PushBufferL([]byte("k")), PushBufferL([]byte("hello ")), Bare(OpWRITE),
		PushBufferL([]byte("k")), PushBufferL([]byte("world")), Bare(OpAPPEND),
		PushBufferL([]byte("k")), Bare(OpREAD),
	}
	interp := New(program, DefaultScriptSettings(), host, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, ok := interp.Top()
	if !ok {
		t.Fatalf("expected the read value on the stack")
	}
	if got := string(top.AsBuffer()); got != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

type stubCryptoHost struct{}

func (stubCryptoHost) Sign(message []byte) ([]byte, error) { return append([]byte("sig:"), message...), nil }
func (stubCryptoHost) Verify(message, signature, publicKey []byte) (bool, error) {
	return string(signature) == "sig:"+string(message), nil
}
func (stubCryptoHost) Encrypt(plaintext []byte) ([]byte, error) {
	out := append([]byte{}, plaintext...)
	for i := range out {
		out[i] ^= 0xFF
	}
	return out, nil
}
func (stubCryptoHost) Decrypt(ciphertext []byte) ([]byte, error) { return stubCryptoHost{}.Encrypt(ciphertext) }

func TestSignVerifyViaHost(t *testing.T) {
	// Stack order VERIFY expects, bottom to top: public_key, message,
	// signature. DUP keeps a copy of the message on the stack for SIGN
	// to consume while leaving one for VERIFY underneath its signature.
	program := OpcodeScript{
		PushBufferL([]byte("pub")),
		PushBufferL([]byte("msg")),
		Bare(OpDUP),
		Bare(OpSIGN),
		Bare(OpVERIFY),
	}
	interp := New(program, DefaultScriptSettings(), nil, stubCryptoHost{})
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	ok, err := top.AsBoolean()
	if err != nil || !ok {
		t.Fatalf("verify result = %v, %v, want true", ok, err)
	}
}

func TestEncryptDecryptViaHost(t *testing.T) {
	program := OpcodeScript{
		PushBufferL([]byte("plaintext")),
		Bare(OpENCRYPT),
		Bare(OpDECRYPT),
	}
	interp := New(program, DefaultScriptSettings(), nil, stubCryptoHost{})
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	if got := string(top.AsBuffer()); got != "plaintext" {
		t.Fatalf("got %q, want %q", got, "plaintext")
	}
}

func TestMemoryLimitExceeded(t *testing.T) {
	settings := DefaultScriptSettings()
	settings.MemoryLimit = 1
	program := OpcodeScript{PushInt(1), PushInt(2)}
	interp := New(program, settings, nil, nil)
	_, err := interp.Exec()
	se, ok := err.(*Error)
	if !ok || se.Code != ErrMemoryLimitExceeded {
		t.Fatalf("got %v, want MemoryLimitExceeded", err)
	}
}

type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func TestSetLoggerReceivesMemoryLimitWarning(t *testing.T) {
	settings := DefaultScriptSettings()
	settings.MemoryLimit = 1
	program := OpcodeScript{PushInt(1), PushInt(2)}
	interp := New(program, settings, nil, nil)

	h := &recordingHandler{}
	interp.SetLogger(slog.New(h))

	if _, err := interp.Exec(); err == nil {
		t.Fatalf("expected memory limit error")
	}
	if len(h.records) != 1 {
		t.Fatalf("got %d log records, want 1", len(h.records))
	}
	if h.records[0].Message != "script memory limit exceeded" {
		t.Fatalf("unexpected log message: %q", h.records[0].Message)
	}
}

func TestCopyIndexFromBottom(t *testing.T) {
	// stack bottom-to-top: 10, 20, 30. COPY(0) reads the bottom-most
	// item (an array index from the bottom, not an offset from the top).
	program := OpcodeScript{
		PushInt(10), PushInt(20), PushInt(30),
		PushInt(0), Bare(OpCOPY), // -> 10 20 30 10
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	n, _ := top.AsNumber()
	if n.Int64() != 10 {
		t.Fatalf("COPY(0) = %v, want 10 (the bottom-most item)", top)
	}
}

func TestBubbleMovesItemToTop(t *testing.T) {
	program := OpcodeScript{
		PushInt(10), PushInt(20), PushInt(30),
		PushInt(0), Bare(OpBUBBLE), // moves the bottom item (10) to the top
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	n, _ := top.AsNumber()
	if n.Int64() != 10 {
		t.Fatalf("top after BUBBLE(0) = %v, want 10", top)
	}
}

func TestSinkMovesItemToBottom(t *testing.T) {
	program := OpcodeScript{
		PushInt(10), PushInt(20), PushInt(30),
		PushInt(2), Bare(OpSINK), // moves the top item (30) to the bottom
		PushInt(0), Bare(OpCOPY),
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	n, _ := top.AsNumber()
	if n.Int64() != 30 {
		t.Fatalf("bottom-most item after SINK(2) = %v, want 30", top)
	}
}

func TestPowBaseIsTopExponentIsSecond(t *testing.T) {
	// POW's base is the top of the stack, its exponent is the item
	// beneath it: 2 (exponent) then 3 (base) computes 3^2 = 9.
	program := OpcodeScript{PushInt(2), PushInt(3), Bare(OpPOW)}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	n, _ := top.AsNumber()
	if n.Int64() != 9 {
		t.Fatalf("3^2 = %v, want 9", top)
	}
}

func TestMinMaxAndBooleanLogic(t *testing.T) {
	program := OpcodeScript{
		PushInt(5), PushInt(9), Bare(OpMIN), // -> 5
		PushInt(9), Bare(OpMAX),             // -> 9
		Bare(OpFALSE), Bare(OpNOT),           // -> 9 true
		Bare(OpTRUE), Bare(OpAND),            // -> 9 true
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	ok, _ := top.AsBoolean()
	if !ok {
		t.Fatalf("top = %v, want true", top)
	}
}

func TestNeqConcatLenReverseSliceSplice(t *testing.T) {
	program := OpcodeScript{
		PushInt(1), PushInt(2), Bare(OpNEQ), // -> true

		PushBufferL([]byte("ab")), PushBufferL([]byte("cd")), Bare(OpCONCAT), // -> "abcd"
		Bare(OpLEN), // -> 4

		PushBufferL([]byte{1, 2, 3}), Bare(OpREVERSE), // -> [3,2,1]

		PushBufferL([]byte("hello world")),
		PushInt(6), PushInt(5), Bare(OpSLICE), // -> "world"

		PushBufferL([]byte("hello world")),
		PushBufferL([]byte("there")),
		PushInt(6), PushInt(5), Bare(OpSPLICE), // replace offset 5 len 6 (" world") with "there"
	}
	interp := New(program, DefaultScriptSettings(), nil, nil)
	if _, err := interp.Exec(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	top, _ := interp.Top()
	if got := string(top.AsBuffer()); got != "hellothere" {
		t.Fatalf("SPLICE result = %q, want %q", got, "hellothere")
	}
}

func TestExecutionsLimitExceeded(t *testing.T) {
	settings := DefaultScriptSettings()
	settings.ExecutionsLimit = 2
	program := OpcodeScript{Bare(OpNOP), Bare(OpNOP), Bare(OpNOP)}
	interp := New(program, settings, nil, nil)
	_, err := interp.Exec()
	se, ok := err.(*Error)
	if !ok || se.Code != ErrExecutionLimitExceeded {
		t.Fatalf("got %v, want ExecutionLimitExceeded", err)
	}
}
