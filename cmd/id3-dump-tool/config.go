package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/simonhull/id3v23/cryptoagent"
)

// id3-dump config.toml key mapping.
type fileConfig struct {
	Strict bool          `toml:"strict"`
	Agents []agentConfig `toml:"agent"`
}

// agentConfig is one [[agent]] table.
type agentConfig struct {
	Owner string `toml:"owner"`
	Kind  string `toml:"kind"`
	Key   string `toml:"key"`
}

type dumpConfig struct {
	Strict bool
	Agents *cryptoagent.Directory
}

func defaultDumpConfig() dumpConfig {
	return dumpConfig{Agents: cryptoagent.NewDirectory()}
}

// loadConfig reads a TOML config with default overlay.
func loadConfig(path string) (dumpConfig, error) {
	cfg := defaultDumpConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return dumpConfig{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return dumpConfig{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("strict") {
		cfg.Strict = raw.Strict
	}
	for i, a := range raw.Agents {
		owner := strings.TrimSpace(a.Owner)
		if owner == "" {
			return dumpConfig{}, fmt.Errorf("load config: agent %d: owner is required", i)
		}
		key, err := cryptoagent.ParseKey(a.Key)
		if err != nil {
			return dumpConfig{}, fmt.Errorf("load config: agent %q: %w", owner, err)
		}
		kind := strings.TrimSpace(a.Kind)
		if kind == "" {
			kind = "secretbox"
		}
		agent, err := cryptoagent.New(kind, key)
		if err != nil {
			return dumpConfig{}, fmt.Errorf("load config: agent %q: %w", owner, err)
		}
		cfg.Agents.Register(owner, agent)
	}
	return cfg, nil
}
