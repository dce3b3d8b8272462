package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oarkflow/xsh"
)

// fileConfig is the CLI-only config document: a flat set of global
// variables pre-registered into the engine's store before the requested
// file runs. The engine itself has no notion of a config file — this is
// purely a convenience the command-line front end layers on top.
type fileConfig struct {
	Vars map[string]any `yaml:"vars"`
}

func loadFileConfig(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, err
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func applyFileConfig(e *xsh.Engine, cfg fileConfig) {
	for name, v := range cfg.Vars {
		e.SetVar(name, xsh.FromInterface(v))
	}
}

func newEngine() *xsh.Engine {
	e := xsh.New()
	e.SetConfig(xsh.Plugin())
	xsh.RegisterBuiltins(e)
	return e
}
