package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/ir"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfigFile(t, "run.yaml", `
stages:
  - kind: regex
    pattern: "[a-z]+"
  - pattern: foo
    ignore_case: true
    word_regexp: true
recursive: true
exclude_dir: [".git"]
hooks:
  checkout: p4 edit $1
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Stages, 2)
	assert.Equal(t, KindRegex, cfg.Stages[0].Kind)
	assert.Equal(t, KindText, cfg.Stages[1].Kind)
	assert.Equal(t, ir.Flags{Caseless: true, WholeWord: true}, cfg.Stages[1].Flags())
	assert.True(t, cfg.Recursive)
	assert.Equal(t, []string{".git"}, cfg.ExcludeDir)
	assert.Equal(t, "p4 edit $1", cfg.Hooks.Checkout)
	assert.Equal(t, "auto", cfg.Color)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfigFile(t, "run.toml", `
include = ["*.go"]
color = "never"

[[stages]]
kind = "grammar"
pattern = "calls.g"
invert-all = true

[hooks]
startup = "echo start"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Stages, 1)
	assert.Equal(t, KindGrammar, cfg.Stages[0].Kind)
	assert.True(t, cfg.Stages[0].Flags().NegateAll)
	assert.Equal(t, []string{"*.go"}, cfg.Include)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, "echo start", cfg.Hooks.Startup)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"format", "run.ini", "x=1"},
		{"kind", "run.yaml", "stages:\n  - kind: fuzzy\n    pattern: x\n"},
		{"pattern", "run.yaml", "stages:\n  - kind: text\n"},
		{"color", "run.yaml", "color: sometimes\n"},
		{"syntax", "run.toml", "stages = [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
