// Package config is the ambient node/process configuration for a
// Plabble server: bind address, storage location, logging, and the
// default resource limits a top-level Opcode Script run starts under.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"rubin.dev/plabble/script"
)

type Config struct {
	BindAddr string `json:"bind_addr"`
	DataDir  string `json:"data_dir"`
	BucketDB string `json:"bucket_db"`
	LogLevel string `json:"log_level"`

	ScriptExecutionsLimit int `json:"script_executions_limit"`
	ScriptMemoryLimit     int `json:"script_memory_limit"`
	ScriptOpcodeLimit     int `json:"script_opcode_limit"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".plabble"
	}
	return filepath.Join(home, ".plabble")
}

func DefaultConfig() Config {
	dataDir := DefaultDataDir()
	defaults := script.DefaultScriptSettings()
	return Config{
		BindAddr:              "0.0.0.0:4950",
		DataDir:               dataDir,
		BucketDB:              filepath.Join(dataDir, "buckets.db"),
		LogLevel:              "info",
		ScriptExecutionsLimit: defaults.ExecutionsLimit,
		ScriptMemoryLimit:     defaults.MemoryLimit,
		ScriptOpcodeLimit:     defaults.OpcodeLimit,
	}
}

// ScriptSettings builds the default top-level script resource limits a
// server applies to an incoming OPCODE request, overriding only the
// three fields this config exposes; every capability flag and every
// other limit keeps the interpreter's own defaults.
func (c Config) ScriptSettings() script.ScriptSettings {
	s := script.DefaultScriptSettings()
	if c.ScriptExecutionsLimit > 0 {
		s.ExecutionsLimit = c.ScriptExecutionsLimit
	}
	if c.ScriptMemoryLimit > 0 {
		s.MemoryLimit = c.ScriptMemoryLimit
	}
	if c.ScriptOpcodeLimit > 0 {
		s.OpcodeLimit = c.ScriptOpcodeLimit
	}
	return s
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	if strings.TrimSpace(cfg.BucketDB) == "" {
		return errors.New("bucket_db is required")
	}
	if err := validateAddr(cfg.BindAddr); err != nil {
		return fmt.Errorf("invalid bind_addr: %w", err)
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.ScriptExecutionsLimit < 0 || cfg.ScriptMemoryLimit < 0 || cfg.ScriptOpcodeLimit < 0 {
		return errors.New("script limits must be >= 0")
	}
	return nil
}

func validateAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("empty address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(port) == "" {
		return errors.New("missing port")
	}
	if strings.Contains(host, " ") {
		return errors.New("invalid host")
	}
	return nil
}
