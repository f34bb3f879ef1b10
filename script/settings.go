package script

// ScriptSettings bounds a run's resource consumption and gates opcode
// categories. Defaults match the original interpreter's defaults; a
// host tightens them for untrusted scripts (EVALSUB always forks with
// AllowEval and AllowSandboxedEval cleared, regardless of the values
// set here).
type ScriptSettings struct {
	ExecutionsLimit  int
	SearchLimit      int
	MemoryLimit      int
	MaxSliceSize     int
	MaxStackItems    int
	MaxNestingDepth  int
	OpcodeLimit      int

	AllowNonPush       bool
	AllowControlFlow   bool
	AllowLoop          bool
	AllowJump          bool
	AllowClear         bool
	AllowBucketActions bool
	AllowEval          bool
	AllowSandboxedEval bool
}

// DefaultScriptSettings returns the permissive defaults a top-level
// script runs under.
func DefaultScriptSettings() ScriptSettings {
	return ScriptSettings{
		ExecutionsLimit: 1000,
		SearchLimit:     256,
		MemoryLimit:     10_000,
		MaxSliceSize:    4_096,
		MaxStackItems:   64,
		MaxNestingDepth: 32,
		OpcodeLimit:     100,

		AllowNonPush:       true,
		AllowControlFlow:   true,
		AllowLoop:          true,
		AllowJump:          true,
		AllowClear:         true,
		AllowBucketActions: true,
		AllowEval:          true,
		AllowSandboxedEval: true,
	}
}

// sandboxed returns a copy suitable for an EVALSUB child: eval
// capabilities cleared so a nested script cannot itself nest further.
func (s ScriptSettings) sandboxed() ScriptSettings {
	s.AllowEval = false
	s.AllowSandboxedEval = false
	return s
}
