// Package gconfig carries the VM's compile-time defaults and a
// YAML-loadable host configuration layer, in the spirit of the
// teacher's internal/config package of small free-standing constants.
package gconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is this module's version, set the same way the teacher sets
// config.Version (overridable at build time via -ldflags).
var Version = "0.1.0"

// Default* mirror spec.md's §9 Open Question decisions and §4 bounds,
// gathered in one place the way the teacher gathers its
// InitialStackSize/MaxFrameCount constants in internal/vm/vm.go. They
// seed DefaultLimits() below; gvm.VM applies the resulting Limits to
// the operand stack, register file, and call-depth guard it
// constructs per invocation (internal/gstack.Stack.SetMaxDepth,
// internal/gchunk.Manager.SetMaxRegisters,
// internal/gcontext.Context.SetMaxCallDepth) rather than each of those
// packages hardcoding its own constant.
const (
	DefaultMaxRegisters  = 65536 // spec.md §4.2: 16-bit register index space
	DefaultMaxStackDepth = 65536 // spec.md §9 Open Question: fixed at the register file's width
	DefaultMaxCallDepth  = 4096  // spec.md §4.7: bounded call depth -> StackOverflow
)

// Limits bounds the three resource ceilings a VM invocation enforces
// (spec.md §4.2, §4.3, §4.7). A host may override any of them per
// HostConfig.Limits.
type Limits struct {
	MaxRegisters  int `yaml:"max_registers"`
	MaxStackDepth int `yaml:"max_stack_depth"`
	MaxCallDepth  int `yaml:"max_call_depth"`
}

// DefaultLimits returns the limits enforced when a host does not
// override them.
func DefaultLimits() Limits {
	return Limits{
		MaxRegisters:  DefaultMaxRegisters,
		MaxStackDepth: DefaultMaxStackDepth,
		MaxCallDepth:  DefaultMaxCallDepth,
	}
}

// HostConfig is the set of knobs a host process may override when
// embedding the VM: the default gas limit for an invoke, whether
// disassembly traces are emitted on failure, and the resource Limits
// applied to each invocation. Loaded from YAML, the way the teacher's
// CLI layer reads its own `.funxy.yaml`-style project settings via
// gopkg.in/yaml.v3 (see internal/evaluator/builtins_yaml.go for the
// teacher's own yaml.v3 usage, generalized here from a runtime builtin
// into host-side static configuration).
type HostConfig struct {
	DefaultGasLimit uint64 `yaml:"default_gas_limit"`
	TraceOnFailure  bool   `yaml:"trace_on_failure"`
	CachePath       string `yaml:"cache_path"`
	Limits          Limits `yaml:"limits"`
}

// DefaultHostConfig returns the configuration used when no file is
// present.
func DefaultHostConfig() HostConfig {
	return HostConfig{
		DefaultGasLimit: 1_000_000,
		TraceOnFailure:  true,
		Limits:          DefaultLimits(),
	}
}

// LoadHostConfig reads a YAML host config file, falling back to
// DefaultHostConfig for any field the file doesn't set.
func LoadHostConfig(path string) (HostConfig, error) {
	cfg := DefaultHostConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading host config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing host config %s: %w", path, err)
	}
	return cfg, nil
}
