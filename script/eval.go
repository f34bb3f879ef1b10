package script

import "rubin.dev/plabble/bitio"

// execEvalSub implements EVALSUB: pop a buffer, decode it as a child
// script, validate it, fork a sandboxed child interpreter sharing this
// run's resource budget, run it to completion, and (if it returned a
// value) push that value as a Buffer. The child's counters are
// adopted back into the parent regardless of outcome.
func (in *Interpreter) execEvalSub() error {
	buf, err := in.popBuffer()
	if err != nil {
		return err
	}
	childScript, err := Decode(bitio.NewReader(buf))
	if err != nil {
		return err
	}
	if len(childScript)+len(in.program) > in.settings.OpcodeLimit {
		return newError(ErrOpcodeLimitExceeded, "")
	}

	child := in.Fork(childScript, in.settings)
	if err := child.ValidateScript(); err != nil {
		in.adoptFrom(child)
		return err
	}
	result, err := child.Exec()
	in.adoptFrom(child)
	if err != nil {
		return err
	}
	if result != nil {
		return in.push(Buffer(result))
	}
	return nil
}

// execEval implements EVAL: same validation and size check as
// EVALSUB, but splices the decoded child's instructions into the
// parent program immediately after the current cursor instead of
// running it in an isolated fork — the spliced instructions execute
// under the parent's own (un-sandboxed) capabilities.
func (in *Interpreter) execEval() error {
	buf, err := in.popBuffer()
	if err != nil {
		return err
	}
	childScript, err := Decode(bitio.NewReader(buf))
	if err != nil {
		return err
	}
	if len(childScript)+len(in.program) > in.settings.OpcodeLimit {
		return newError(ErrOpcodeLimitExceeded, "")
	}

	probe := New(childScript, in.settings, in.bucketHost, in.cryptoHost)
	if err := probe.ValidateScript(); err != nil {
		return err
	}

	spliced := make(OpcodeScript, 0, len(in.program)+len(childScript))
	spliced = append(spliced, in.program[:in.cursor+1]...)
	spliced = append(spliced, childScript...)
	spliced = append(spliced, in.program[in.cursor+1:]...)
	in.program = spliced
	return nil
}
