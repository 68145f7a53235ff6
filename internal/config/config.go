// Package config loads gram-grep run configuration files. A run config
// supplies default stages, file filters and hooks; command line flags
// override it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
	"gramgrep/internal/ir"
)

const (
	KindText    = "text"
	KindRegex   = "regex"
	KindGrammar = "grammar"
)

// Stage is one pipeline stage. Pattern is the search text, the regular
// expression or the path of a grammar configuration.
type Stage struct {
	Kind         string `yaml:"kind" toml:"kind"`
	Pattern      string `yaml:"pattern" toml:"pattern"`
	IgnoreCase   bool   `yaml:"ignore_case" toml:"ignore-case"`
	WordRegexp   bool   `yaml:"word_regexp" toml:"word-regexp"`
	Invert       bool   `yaml:"invert" toml:"invert"`
	InvertAll    bool   `yaml:"invert_all" toml:"invert-all"`
	ExtendSearch bool   `yaml:"extend_search" toml:"extend-search"`
	UTF8         bool   `yaml:"utf8" toml:"utf8"`
}

func (s Stage) Flags() ir.Flags {
	return ir.Flags{
		Negate:       s.Invert,
		NegateAll:    s.InvertAll,
		WholeWord:    s.WordRegexp,
		ExtendSearch: s.ExtendSearch,
		Caseless:     s.IgnoreCase,
		Unicode:      s.UTF8,
	}
}

type Hooks struct {
	Startup  string `yaml:"startup" toml:"startup"`
	Shutdown string `yaml:"shutdown" toml:"shutdown"`
	Checkout string `yaml:"checkout" toml:"checkout"`
}

type Config struct {
	Stages     []Stage  `yaml:"stages" toml:"stages"`
	Recursive  bool     `yaml:"recursive" toml:"recursive"`
	Include    []string `yaml:"include" toml:"include"`
	Exclude    []string `yaml:"exclude" toml:"exclude"`
	ExcludeDir []string `yaml:"exclude_dir" toml:"exclude-dir"`
	Hooks      Hooks    `yaml:"hooks" toml:"hooks"`
	Color      string   `yaml:"color" toml:"color"`
	Verbose    int      `yaml:"verbose" toml:"verbose"`
}

// Load reads a .yaml, .yml or .toml run config.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return nil, fmt.Errorf("%s: unsupported config format %q (use .yaml or .toml)", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Color) == "" {
		cfg.Color = "auto"
	}
	for i := range cfg.Stages {
		if cfg.Stages[i].Kind == "" {
			cfg.Stages[i].Kind = KindText
		}
	}
}

func validate(cfg *Config) error {
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", cfg.Color)
	}
	for i, s := range cfg.Stages {
		switch s.Kind {
		case KindText, KindRegex, KindGrammar:
		default:
			return fmt.Errorf("stage %d: unknown kind %q", i+1, s.Kind)
		}
		if s.Pattern == "" {
			return fmt.Errorf("stage %d: pattern is required", i+1)
		}
	}
	return nil
}
