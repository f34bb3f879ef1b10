package config

import "testing"

func TestValidateConfigOK(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfigRejectsBadBind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BindAddr = "127.0.0.1"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateConfigRejectsBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateConfigRejectsNegativeScriptLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptMemoryLimit = -1
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestScriptSettingsOverridesOnlyExposedFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptOpcodeLimit = 7
	s := cfg.ScriptSettings()
	if s.OpcodeLimit != 7 {
		t.Fatalf("opcode limit = %d want 7", s.OpcodeLimit)
	}
	if !s.AllowLoop {
		t.Fatalf("expected interpreter default AllowLoop to survive override")
	}
}
