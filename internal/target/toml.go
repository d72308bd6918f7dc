package target

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type envFile struct {
	Target struct {
		Version        string   `toml:"version"`
		Capabilities   []string `toml:"capabilities"`
		AddressingBits uint8    `toml:"addressing_bits"`
		VectorWidths   []uint32 `toml:"vector_widths"`
	} `toml:"target"`
}

// LoadFile reads a target descriptor from a TOML file. Missing fields
// fall back to the defaults.
func LoadFile(path string) (*Env, error) {
	var cfg envFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("target") {
		return nil, fmt.Errorf("%s: missing [target]", path)
	}
	env := Default()
	if cfg.Target.Version != "" {
		env.Version = cfg.Target.Version
	}
	if len(cfg.Target.Capabilities) > 0 {
		env.Capabilities = cfg.Target.Capabilities
	}
	if cfg.Target.AddressingBits != 0 {
		if cfg.Target.AddressingBits != 32 && cfg.Target.AddressingBits != 64 {
			return nil, fmt.Errorf("%s: addressing_bits must be 32 or 64, got %d", path, cfg.Target.AddressingBits)
		}
		env.AddressingBits = cfg.Target.AddressingBits
	}
	if len(cfg.Target.VectorWidths) > 0 {
		env.VectorWidths = cfg.Target.VectorWidths
	}
	return env, nil
}
