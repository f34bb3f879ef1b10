package script

// noOpcode is a sentinel meaning "no or/stop marker for this search" —
// 255 is outside the real opcode range (OpTIME is the highest).
const noOpcode OpCode = 255

// search walks the cursor one step at a time looking for the
// instruction structurally matching the current one. open/close name
// the forward-sense nesting pair (e.g. IF/FI, LOOP/POOL); in a
// backward search their roles swap, so encountering close increments
// depth and open at depth 0 is the match. or, when not noOpcode,
// matches unconditionally once depth returns to 0 (used by IF to stop
// at an ELSE before reaching FI). stop, when not noOpcode, matches
// immediately regardless of depth. Each step — including the call
// itself — charges one against ScriptSettings.SearchLimit; depth
// exceeding MaxNestingDepth fails MaxDepthExceeded; running off either
// end of the program fails ControlFlowMalformed.
func (in *Interpreter) search(open, close, or, stop OpCode, backwards bool) (int, error) {
	if err := in.chargeSearch(); err != nil {
		return 0, err
	}

	incTok, decTok := open, close
	if backwards {
		incTok, decTok = close, open
	}

	step := 1
	if backwards {
		step = -1
	}

	depth := 0
	cursor := in.cursor
	for {
		cursor += step
		if cursor < 0 || cursor >= len(in.program) {
			return 0, newError(ErrControlFlowMalformed, "")
		}
		if err := in.chargeSearch(); err != nil {
			return 0, err
		}

		tok := in.program[cursor].Op
		if stop != noOpcode && tok == stop {
			return cursor, nil
		}
		if tok == incTok {
			depth++
			if depth > in.settings.MaxNestingDepth {
				return 0, newError(ErrMaxDepthExceeded, "")
			}
			continue
		}
		if or != noOpcode && tok == or && depth == 0 {
			return cursor, nil
		}
		if tok == decTok {
			if depth == 0 {
				return cursor, nil
			}
			depth--
		}
	}
}

func (in *Interpreter) chargeSearch() error {
	in.searches++
	if in.searches > in.settings.SearchLimit {
		return newError(ErrSearchLimitExceeded, "")
	}
	return nil
}
