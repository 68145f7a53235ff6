package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/config"
)

const quotedStringConfig = `%%
list: String { match = substr($1, 1, 1); };
%%
%%
"([^"\\]|\\.)*" String
%%
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestStageFlagsKeepOrder(t *testing.T) {
	var list stageList
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	list.register(fs)
	require.NoError(t, fs.Parse([]string{"-i", "-T", "foo", "-E", "[0-9]+", "-v", "-f", "calls.g", "-w"}))
	require.NoError(t, list.finish())

	require.Len(t, list.stages, 3)
	assert.Equal(t, config.Stage{Kind: config.KindText, Pattern: "foo", IgnoreCase: true}, list.stages[0])
	assert.Equal(t, config.Stage{Kind: config.KindRegex, Pattern: "[0-9]+"}, list.stages[1])
	assert.Equal(t, config.Stage{Kind: config.KindGrammar, Pattern: "calls.g", Invert: true, WordRegexp: true}, list.stages[2])
}

func TestModifierWithoutStage(t *testing.T) {
	var list stageList
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	list.register(fs)
	require.NoError(t, fs.Parse([]string{"-i"}))
	assert.Error(t, list.finish())
}

func TestWholeWordSearch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "foobar foo\nfoobar\n")

	stdout, _, err := runCLI(t, "-w", "-T", "foo", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path+"(1):foobar foo\n")
	assert.NotContains(t, stdout, "(2):")
	assert.Contains(t, stdout, "Matches: 1    Matching files: 1    Total files searched: 1")
}

func TestPositionalPattern(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x = 12\ny = 345\n")

	stdout, _, err := runCLI(t, "-o", "[0-9]+", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path+"(1):12\n")
	assert.Contains(t, stdout, path+"(2):345\n")
}

func TestGrammarStage(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "quoted.g", quotedStringConfig)
	path := writeFile(t, dir, "a.txt", `say "hi" now`+"\n")

	stdout, _, err := runCLI(t, "-o", "-f", cfg, path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path+"(1):hi\n")
	assert.Contains(t, stdout, "Matches: 1")
}

func TestCompileErrorExits(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bad.g", "%%\nlist: String { match = $2; };\n%%\n%%\n%%\n")
	path := writeFile(t, dir, "a.txt", "x\n")

	_, stderr, err := runCLI(t, "-f", cfg, path)
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.code)
	assert.Contains(t, stderr, cfg+"(2:")
}

func TestReplacePreviewAndModify(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "one two\nthree\n")

	stdout, _, err := runCLI(t, "-T", "two", "--replace", "2", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path+"(1):one 2\n")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one two\nthree\n", string(data))

	_, _, err = runCLI(t, "-T", "two", "--replace", "2", "--modify", path)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one 2\nthree\n", string(data))
}

func TestCountFilesAndNotSearched(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "foo foo\n")
	writeFile(t, dir, "b.txt", "bar\n")

	stdout, stderr, err := runCLI(t, "-c", "-T", "foo", a, filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Equal(t, a+":2\n", stdout)
	assert.Contains(t, stderr, "Not searched: 1")

	stdout, _, err = runCLI(t, "-l", "-r", "--include", "*.txt", "-T", "foo", dir)
	require.NoError(t, err)
	assert.Equal(t, a+"\n", stdout)
}

func TestRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "Alpha beta\n")
	cfg := writeFile(t, dir, "run.yaml", "stages:\n  - kind: text\n    pattern: alpha\n    ignore_case: true\n")

	stdout, _, err := runCLI(t, "--config", cfg, "-o", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path+"(1):Alpha\n")
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "quoted.g", quotedStringConfig)

	stdout, _, err := runCLI(t, "--dump", "-f", cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "grammar "+cfg)
	assert.Contains(t, stdout, "start: list")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.50s", formatDuration(1500*1e6))
	assert.Equal(t, "250ns", formatDuration(250))
}
