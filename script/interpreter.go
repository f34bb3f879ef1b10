package script

import (
	"io"
	"log/slog"
	"math/big"

	"rubin.dev/plabble/core"
)

// discardLogger is the default log/slog sink a new Interpreter starts
// with, so SetLogger is optional rather than required.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// BucketHost is supplied by the embedding process to back the
// bucket-manipulating opcodes. It is consulted only when
// ScriptSettings.AllowBucketActions is set; a nil host makes those
// opcodes fail with BucketActionsNotAllowed before any side effect.
type BucketHost interface {
	IsServer() bool
	Select(name []byte) error
	Read(key []byte) (value []byte, ok bool, err error)
	Write(key, value []byte) error
	Append(key, value []byte) error
	Delete(key []byte) error
}

// CryptoHost backs the SIGN/VERIFY/ENCRYPT/DECRYPT opcodes, which need
// key material the script itself never holds. HASH needs no host: it
// is a pure function of its input. A nil host fails those opcodes
// with InvalidScript before any side effect.
type CryptoHost interface {
	Sign(message []byte) (signature []byte, err error)
	Verify(message, signature, publicKey []byte) (bool, error)
	Encrypt(plaintext []byte) (ciphertext []byte, err error)
	Decrypt(ciphertext []byte) (plaintext []byte, err error)
}

// Interpreter executes one OpcodeScript under a ScriptSettings policy.
// Two stacks (main, alt) plus an independently-accounted snapshot
// buffer; use_alt_stack selects which stack is "active" for the
// current instruction. memory tracks the combined cost of every item
// currently resident on either stack: push/pop adjust it, TOALT/
// FROMALT don't (an item merely changes which stack holds it).
type Interpreter struct {
	main     []StackData
	alt      []StackData
	snapshot []StackData

	memory         int
	snapshotMemory int

	useAltStack bool

	settings ScriptSettings
	program  OpcodeScript
	cursor   int

	executions int
	searches   int
	memoryPeak int

	bucketHost BucketHost
	cryptoHost CryptoHost

	logger *slog.Logger
}

// SetLogger directs the interpreter's resource-limit diagnostics to l
// instead of the default discard sink. A nil l is ignored.
func (in *Interpreter) SetLogger(l *slog.Logger) {
	if l != nil {
		in.logger = l
	}
}

// New constructs an interpreter for program under settings. Either
// host may be nil if the embedder grants no such capability.
func New(program OpcodeScript, settings ScriptSettings, bucketHost BucketHost, cryptoHost CryptoHost) *Interpreter {
	return &Interpreter{
		settings:   settings,
		program:    program,
		bucketHost: bucketHost,
		cryptoHost: cryptoHost,
		logger:     discardLogger,
	}
}

// Fork builds a child interpreter for EVALSUB/EVAL: executions,
// searches, memory and memoryPeak all carry over so the parent's
// resource budget continues across the child's run, but stacks,
// snapshot and cursor reset. The child always runs under
// settings.sandboxed() capabilities.
func (in *Interpreter) Fork(subscript OpcodeScript, settings ScriptSettings) *Interpreter {
	child := New(subscript, settings.sandboxed(), in.bucketHost, in.cryptoHost)
	child.logger = in.logger
	child.executions = in.executions
	child.searches = in.searches
	child.memory = in.memory
	child.memoryPeak = in.memoryPeak
	return child
}

// adoptFrom copies a completed child's counters back into the parent,
// per EVALSUB's propagation rule — a straight overwrite, since the
// child inherited the parent's counters as its own starting point.
func (in *Interpreter) adoptFrom(child *Interpreter) {
	in.executions = child.executions
	in.searches = child.searches
	in.memory = child.memory
	in.memoryPeak = child.memoryPeak
}

// ValidateScript checks static policy before execution begins (and
// again for any EVALSUB/EVAL child): non-push opcodes require
// AllowNonPush; the program must not exceed OpcodeLimit; each opcode's
// governing capability must be enabled.
func (in *Interpreter) ValidateScript() error {
	if !in.settings.AllowNonPush && !in.program.IsPushOnly() {
		return newError(ErrNonPushNotAllowed, "")
	}
	if len(in.program) > in.settings.OpcodeLimit {
		return newError(ErrOpcodeLimitExceeded, "")
	}
	for _, op := range in.program {
		if err := in.checkCapability(op.Op); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) checkCapability(op OpCode) error {
	switch op {
	case OpIF, OpELSE, OpFI, OpBREAK:
		if !in.settings.AllowControlFlow {
			return newError(ErrControlFlowNotAllowed, "")
		}
	case OpLOOP, OpPOOL:
		if !in.settings.AllowControlFlow {
			return newError(ErrControlFlowNotAllowed, "")
		}
		if !in.settings.AllowLoop {
			return newError(ErrLoopNotAllowed, "")
		}
	case OpJMP:
		if !in.settings.AllowControlFlow {
			return newError(ErrControlFlowNotAllowed, "")
		}
		if !in.settings.AllowLoop || !in.settings.AllowJump {
			return newError(ErrJumpNotAllowed, "")
		}
	case OpCLEAR:
		if !in.settings.AllowClear {
			return newError(ErrClearNotAllowed, "")
		}
	case OpSERVER, OpSELECT, OpREAD, OpWRITE, OpAPPEND, OpDELETE:
		if !in.settings.AllowBucketActions {
			return newError(ErrBucketActionsNotAllowed, "")
		}
	case OpEVALSUB:
		if !in.settings.AllowSandboxedEval {
			return newError(ErrEvalNotAllowed, "")
		}
	case OpEVAL:
		if !in.settings.AllowEval {
			return newError(ErrEvalNotAllowed, "")
		}
	}
	return nil
}

// active returns a pointer to the currently-active stack, honoring
// use_alt_stack.
func (in *Interpreter) active() *[]StackData {
	if in.useAltStack {
		return &in.alt
	}
	return &in.main
}

// inactive returns a pointer to the stack TOALT/FROMALT move into or
// out of — the one use_alt_stack is NOT currently pointing at.
func (in *Interpreter) inactive() *[]StackData {
	if in.useAltStack {
		return &in.main
	}
	return &in.alt
}

func calculateMemory(stack []StackData) int {
	total := 0
	for _, item := range stack {
		total += item.Memory()
	}
	return total
}

func (in *Interpreter) push(item StackData) error {
	cost := item.Memory()
	if cost > in.settings.MaxSliceSize {
		return newError(ErrSliceLimitExceeded, "")
	}
	stack := in.active()
	if len(*stack)+1 > in.settings.MaxStackItems {
		return newError(ErrStackHeightLimitExceeded, "")
	}
	in.memory += cost
	if in.memory > in.memoryPeak {
		in.memoryPeak = in.memory
	}
	if in.memory > in.settings.MemoryLimit {
		in.logger.Warn("script memory limit exceeded", "memory", in.memory, "limit", in.settings.MemoryLimit)
		return newError(ErrMemoryLimitExceeded, "")
	}
	*stack = append(*stack, item)
	return nil
}

func (in *Interpreter) pop() (StackData, error) {
	stack := in.active()
	if len(*stack) == 0 {
		return StackData{}, underflow(1)
	}
	item := (*stack)[len(*stack)-1]
	*stack = (*stack)[:len(*stack)-1]
	in.memory -= item.Memory()
	return item, nil
}

func (in *Interpreter) popN(n int) ([]StackData, error) {
	stack := in.active()
	if len(*stack) < n {
		return nil, underflow(n - len(*stack))
	}
	out := make([]StackData, n)
	for i := n - 1; i >= 0; i-- {
		item, err := in.pop()
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func (in *Interpreter) popNumber() (*big.Int, error) {
	v, err := in.pop()
	if err != nil {
		return nil, err
	}
	return v.AsNumber()
}

func (in *Interpreter) popFloat() (float64, error) {
	v, err := in.pop()
	if err != nil {
		return 0, err
	}
	return v.AsFloat()
}

func (in *Interpreter) popBoolean() (bool, error) {
	v, err := in.pop()
	if err != nil {
		return false, err
	}
	return v.AsBoolean()
}

func (in *Interpreter) popBuffer() ([]byte, error) {
	v, err := in.pop()
	if err != nil {
		return nil, err
	}
	return v.AsBuffer(), nil
}

// atIndex looks up, without popping, the item at array index n
// counted from the BOTTOM of the active stack (n=0 is the oldest
// item) — the convention COPY/BUBBLE/SINK's popped index argument
// uses.
func (in *Interpreter) atIndex(n int) (StackData, error) {
	stack := in.active()
	if n < 0 || n >= len(*stack) {
		return StackData{}, newError(ErrOutOfBounds, "")
	}
	return (*stack)[n], nil
}

// removeAtIndex detaches the item at array index n from the bottom,
// without touching memory — the item is still on the stack, just
// relocated by the caller.
func (in *Interpreter) removeAtIndex(n int) (StackData, error) {
	stack := in.active()
	if n < 0 || n >= len(*stack) {
		return StackData{}, newError(ErrOutOfBounds, "")
	}
	item := (*stack)[n]
	*stack = append((*stack)[:n], (*stack)[n+1:]...)
	return item, nil
}

// Exec runs the program to completion. A nil result with a nil error
// means the cursor walked past the last instruction without RETURN.
func (in *Interpreter) Exec() ([]byte, error) {
	for {
		done, result, err := in.ExecNext()
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
	}
}

// ExecNext runs a single instruction. done is true once execution has
// finished, either by running off the end of the program (result nil)
// or by RETURN (result the drained buffer).
func (in *Interpreter) ExecNext() (done bool, result []byte, err error) {
	if in.cursor >= len(in.program) {
		return true, nil, nil
	}
	in.executions++
	if in.executions > in.settings.ExecutionsLimit {
		in.logger.Warn("script execution limit exceeded", "executions", in.executions, "limit", in.settings.ExecutionsLimit)
		return false, nil, newError(ErrExecutionLimitExceeded, "")
	}

	op := in.program[in.cursor]
	advance := true

	switch op.Op {
	case OpNOP:
		// no-op

	case OpFALSE:
		err = in.push(Boolean(false))
	case OpTRUE:
		err = in.push(Boolean(true))
	case OpPUSH1:
		err = in.push(Byte(op.Byte))
	case OpPUSH2, OpPUSH4:
		err = in.push(Buffer(append([]byte{}, op.Buf...)))
	case OpPUSHL1, OpPUSHL2, OpPUSHL4:
		err = in.push(Buffer(append([]byte{}, op.Buf...)))
	case OpPUSHINT:
		n := op.Int
		if n == nil {
			n = big.NewInt(0)
		}
		err = in.push(Number(new(big.Int).Set(n)))
	case OpPUSHFLOAT:
		err = in.push(Float(op.Float))

	case OpDUP:
		err = in.execDupTop(1)
	case OpDUP2:
		err = in.execDupTop(2)
	case OpDUP3:
		err = in.execDupTop(3)
	case OpDUP4:
		err = in.execDupTop(4)
	case OpDUPN:
		stack := in.active()
		if len(*stack) < 1 {
			err = underflow(1)
		} else {
			top := (*stack)[len(*stack)-1]
			for i := 0; i < op.N && err == nil; i++ {
				err = in.push(top)
			}
		}

	case OpSWAP:
		stack := in.active()
		n := len(*stack)
		if n < 2 {
			err = underflow(2 - n)
		} else {
			(*stack)[n-1], (*stack)[n-2] = (*stack)[n-2], (*stack)[n-1]
		}

	case OpROT:
		stack := in.active()
		n := len(*stack)
		if n < 3 {
			err = underflow(3 - n)
		} else {
			a, b, c := (*stack)[n-3], (*stack)[n-2], (*stack)[n-1]
			(*stack)[n-3], (*stack)[n-2], (*stack)[n-1] = b, c, a
		}

	case OpPOP:
		_, err = in.pop()

	case OpCOPY:
		var n *big.Int
		n, err = in.popNumber()
		if err == nil {
			var item StackData
			item, err = in.atIndex(int(n.Int64()))
			if err == nil {
				err = in.push(item)
			}
		}

	case OpBUBBLE:
		var n *big.Int
		n, err = in.popNumber()
		if err == nil {
			var item StackData
			item, err = in.removeAtIndex(int(n.Int64()))
			if err == nil {
				stack := in.active()
				*stack = append(*stack, item)
			}
		}

	case OpSINK:
		var n *big.Int
		n, err = in.popNumber()
		if err == nil {
			var item StackData
			item, err = in.removeAtIndex(int(n.Int64()))
			if err == nil {
				stack := in.active()
				*stack = append([]StackData{item}, *stack...)
			}
		}

	case OpCOUNT:
		stack := in.active()
		err = in.push(NumberInt64(int64(len(*stack))))

	case OpTOALT:
		stack := in.active()
		if len(*stack) == 0 {
			err = underflow(1)
		} else {
			item := (*stack)[len(*stack)-1]
			*stack = (*stack)[:len(*stack)-1]
			other := in.inactive()
			*other = append(*other, item)
		}

	case OpFROMALT:
		other := in.inactive()
		if len(*other) == 0 {
			err = underflow(1)
		} else {
			item := (*other)[len(*other)-1]
			*other = (*other)[:len(*other)-1]
			stack := in.active()
			*stack = append(*stack, item)
		}

	case OpSWITCH:
		in.useAltStack = !in.useAltStack

	case OpSNAPSHOT:
		stack := in.active()
		in.snapshotMemory = calculateMemory(*stack)
		in.snapshot = append([]StackData{}, *stack...)

	case OpRESTORE:
		stack := in.active()
		in.memory -= calculateMemory(*stack)
		in.memory += in.snapshotMemory
		*stack = append([]StackData{}, in.snapshot...)
		in.snapshot = nil
		in.snapshotMemory = 0

	case OpCLEAR:
		stack := in.active()
		in.memory -= calculateMemory(*stack)
		*stack = nil

	case OpIF:
		var cond bool
		cond, err = in.popBoolean()
		if err == nil && !cond {
			var dest int
			dest, err = in.search(OpIF, OpFI, OpELSE, noOpcode, false)
			if err == nil {
				in.cursor = dest
			}
		}

	case OpELSE:
		var dest int
		dest, err = in.search(OpIF, OpFI, noOpcode, noOpcode, false)
		if err == nil {
			in.cursor = dest
		}

	case OpFI:
		// no-op; matching IF already validated by structure at parse/search time

	case OpLOOP:
		// no-op marker

	case OpPOOL:
		var dest int
		dest, err = in.search(OpLOOP, OpPOOL, noOpcode, noOpcode, true)
		if err == nil {
			in.cursor = dest
		}

	case OpBREAK:
		var dest int
		dest, err = in.search(OpLOOP, OpPOOL, noOpcode, noOpcode, false)
		if err == nil {
			in.cursor = dest
		}

	case OpJMP:
		var n *big.Int
		n, err = in.popNumber()
		if err == nil {
			addr := int(n.Int64())
			if addr < 0 || addr >= len(in.program) {
				err = newError(ErrOutOfBounds, "")
			} else {
				in.searches += abs(addr - in.cursor)
				if in.searches > in.settings.SearchLimit {
					err = newError(ErrSearchLimitExceeded, "")
				} else {
					in.cursor = addr
					advance = false
				}
			}
		}

	case OpADD, OpSUB, OpMUL, OpDIV, OpMOD, OpBAND, OpBOR, OpBXOR, OpBSHL, OpBSHR:
		err = in.execIntBinary(op.Op)
	case OpPOW:
		err = in.execPow()
	case OpMIN, OpMAX:
		err = in.execIntMinMax(op.Op)
	case OpNEG:
		err = in.execNegAbs(false)
	case OpABS:
		err = in.execNegAbs(true)
	case OpBNOT:
		err = in.execIntUnary(func(a *big.Int) (*big.Int, error) { return checkedNumberResult(new(big.Int).Not(a)) })

	case OpNOT:
		var a bool
		a, err = in.popBoolean()
		if err == nil {
			err = in.push(Boolean(!a))
		}
	case OpAND, OpOR, OpXOR:
		err = in.execBooleanBinary(op.Op)

	case OpFADD, OpFSUB, OpFMUL, OpFDIV, OpFMOD:
		err = in.execFloatBinary(op.Op)
	case OpFMIN, OpFMAX:
		err = in.execFloatMinMax(op.Op)
	case OpFLOOR, OpCEIL, OpROUND, OpROUNDE, OpSQRT:
		err = in.execFloatUnary(op.Op)

	case OpLT, OpGT, OpLTE, OpGTE:
		err = in.execIntCompare(op.Op)
	case OpFLT, OpFGT, OpFLTE, OpFGTE:
		err = in.execFloatCompare(op.Op)

	case OpEQ, OpNEQ:
		var items []StackData
		items, err = in.popN(2)
		if err == nil {
			var eq bool
			eq, err = Equal(items[0], items[1])
			if err == nil {
				if op.Op == OpNEQ {
					eq = !eq
				}
				err = in.push(Boolean(eq))
			}
		}

	case OpCONCAT:
		var items []StackData
		items, err = in.popN(2)
		if err == nil {
			combined := append([]byte{}, items[0].AsBuffer()...)
			combined = append(combined, items[1].AsBuffer()...)
			err = in.push(Buffer(combined))
		}

	case OpNUMBER:
		var n *big.Int
		n, err = in.popNumber()
		if err == nil {
			err = in.push(Number(n))
		}

	case OpFLOAT:
		var f float64
		f, err = in.popFloat()
		if err == nil {
			err = in.push(Float(f))
		}

	case OpLEN:
		var data []byte
		data, err = in.popBuffer()
		if err == nil {
			err = in.push(NumberInt64(int64(len(data))))
		}

	case OpREVERSE:
		var data []byte
		data, err = in.popBuffer()
		if err == nil {
			reversed := make([]byte, len(data))
			for i, b := range data {
				reversed[len(data)-1-i] = b
			}
			err = in.push(Buffer(reversed))
		}

	case OpSLICE:
		err = in.execSlice()

	case OpSPLICE:
		err = in.execSplice()

	case OpRETURN:
		stack := in.active()
		var buf []byte
		for len(*stack) > 0 {
			item, _ := in.pop()
			buf = append(buf, item.AsBuffer()...)
		}
		return true, buf, nil

	case OpASSERT:
		var cond bool
		cond, err = in.popBoolean()
		if err == nil && !cond {
			err = newError(ErrAssertionFailed, "")
		}

	case OpEVALSUB:
		err = in.execEvalSub()
	case OpEVAL:
		err = in.execEval()

	case OpSERVER:
		if in.bucketHost == nil {
			err = newError(ErrBucketActionsNotAllowed, "")
		} else {
			err = in.push(Boolean(in.bucketHost.IsServer()))
		}
	case OpSELECT:
		var name []byte
		name, err = in.popBuffer()
		if err == nil {
			if in.bucketHost == nil {
				err = newError(ErrBucketActionsNotAllowed, "")
			} else {
				err = in.bucketHost.Select(name)
			}
		}
	case OpREAD:
		var key []byte
		key, err = in.popBuffer()
		if err == nil {
			if in.bucketHost == nil {
				err = newError(ErrBucketActionsNotAllowed, "")
			} else {
				var value []byte
				var ok bool
				value, ok, err = in.bucketHost.Read(key)
				if err == nil {
					err = in.push(Boolean(ok))
					if err == nil {
						err = in.push(Buffer(value))
					}
				}
			}
		}
	case OpWRITE:
		var items []StackData
		items, err = in.popN(2)
		if err == nil {
			if in.bucketHost == nil {
				err = newError(ErrBucketActionsNotAllowed, "")
			} else {
				err = in.bucketHost.Write(items[0].AsBuffer(), items[1].AsBuffer())
			}
		}
	case OpAPPEND:
		var items []StackData
		items, err = in.popN(2)
		if err == nil {
			if in.bucketHost == nil {
				err = newError(ErrBucketActionsNotAllowed, "")
			} else {
				err = in.bucketHost.Append(items[0].AsBuffer(), items[1].AsBuffer())
			}
		}
	case OpDELETE:
		var key []byte
		key, err = in.popBuffer()
		if err == nil {
			if in.bucketHost == nil {
				err = newError(ErrBucketActionsNotAllowed, "")
			} else {
				err = in.bucketHost.Delete(key)
			}
		}

	case OpHASH:
		var data []byte
		data, err = in.popBuffer()
		if err == nil {
			err = in.push(Buffer(hash256(data)))
		}

	case OpSIGN:
		var data []byte
		data, err = in.popBuffer()
		if err == nil {
			if in.cryptoHost == nil {
				err = newError(ErrInvalidScript, "no crypto host")
			} else {
				var sig []byte
				sig, err = in.cryptoHost.Sign(data)
				if err == nil {
					err = in.push(Buffer(sig))
				}
			}
		}

	case OpVERIFY:
		var items []StackData
		items, err = in.popN(3)
		if err == nil {
			if in.cryptoHost == nil {
				err = newError(ErrInvalidScript, "no crypto host")
			} else {
				publicKey := items[0].AsBuffer()
				message := items[1].AsBuffer()
				signature := items[2].AsBuffer()
				var ok bool
				ok, err = in.cryptoHost.Verify(message, signature, publicKey)
				if err == nil {
					err = in.push(Boolean(ok))
				}
			}
		}

	case OpENCRYPT:
		var data []byte
		data, err = in.popBuffer()
		if err == nil {
			if in.cryptoHost == nil {
				err = newError(ErrInvalidScript, "no crypto host")
			} else {
				var out []byte
				out, err = in.cryptoHost.Encrypt(data)
				if err == nil {
					err = in.push(Buffer(out))
				}
			}
		}

	case OpDECRYPT:
		var data []byte
		data, err = in.popBuffer()
		if err == nil {
			if in.cryptoHost == nil {
				err = newError(ErrInvalidScript, "no crypto host")
			} else {
				var out []byte
				out, err = in.cryptoHost.Decrypt(data)
				if err == nil {
					err = in.push(Buffer(out))
				}
			}
		}

	case OpTIME:
		err = in.push(NumberInt64(int64(core.Now().Seconds())))

	default:
		err = newError(ErrInvalidScript, "unknown opcode")
	}

	if err != nil {
		return false, nil, err
	}
	if advance {
		in.cursor++
	}
	if in.cursor >= len(in.program) {
		return true, nil, nil
	}
	return false, nil, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Top returns the active stack's top item without popping it, for
// callers that want to inspect a script's terminal state even when it
// ended without RETURN.
func (in *Interpreter) Top() (StackData, bool) {
	stack := in.active()
	if len(*stack) == 0 {
		return StackData{}, false
	}
	return (*stack)[len(*stack)-1], true
}

// Counters reports the run's current resource accounting.
func (in *Interpreter) Counters() (executions, searches, memoryPeak int) {
	return in.executions, in.searches, in.memoryPeak
}

func (in *Interpreter) execDupTop(n int) error {
	stack := in.active()
	if len(*stack) < n {
		return underflow(n - len(*stack))
	}
	items := append([]StackData{}, (*stack)[len(*stack)-n:]...)
	for _, item := range items {
		if err := in.push(item); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execSlice() error {
	items, err := in.popN(3)
	if err != nil {
		return err
	}
	data := items[0].AsBuffer()
	offset, err := items[1].AsNumber()
	if err != nil {
		return err
	}
	length, err := items[2].AsNumber()
	if err != nil {
		return err
	}
	off, ln := offset.Int64(), length.Int64()
	if off < 0 || ln < 0 || off+ln > int64(len(data)) {
		return newError(ErrOutOfBounds, "")
	}
	return in.push(Buffer(append([]byte{}, data[off:off+ln]...)))
}

func (in *Interpreter) execSplice() error {
	items, err := in.popN(4)
	if err != nil {
		return err
	}
	data := append([]byte{}, items[0].AsBuffer()...)
	replacement := items[1].AsBuffer()
	length, err := items[2].AsNumber()
	if err != nil {
		return err
	}
	offset, err := items[3].AsNumber()
	if err != nil {
		return err
	}
	off, ln := offset.Int64(), length.Int64()
	if off < 0 || ln < 0 || off+ln > int64(len(data)) {
		return newError(ErrOutOfBounds, "")
	}
	spliced := append([]byte{}, data[:off]...)
	spliced = append(spliced, replacement...)
	spliced = append(spliced, data[off+ln:]...)
	return in.push(Buffer(spliced))
}
