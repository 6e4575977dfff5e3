package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtures = filepath.Join("..", "parser", "testdata")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDumpMatchesGolden(t *testing.T) {
	got, err := run(t, "dump", filepath.Join(fixtures, "stairs.csv"))
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join(fixtures, "stairs.golden.json"))
	require.NoError(t, err)
	assert.Equal(t, string(want), got)
}

func TestDumpToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out.json")
	stdout, err := run(t, "dump", "--output", target, filepath.Join(fixtures, "implicit.csv"))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(fixtures, "implicit.golden.json"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestDumpMissingFile(t *testing.T) {
	_, err := run(t, "dump", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", filepath.Join(fixtures, "implicit.csv"))
	require.NoError(t, err)

	assert.Contains(t, out, "MODE")
	assert.Contains(t, out, "setup")
	assert.Contains(t, out, "(0, 0)")
	assert.Contains(t, out, "diagnostics: 2")
	assert.Contains(t, out, `"zz"`)
}

func TestCheckDirectory(t *testing.T) {
	_, err := run(t, "check", fixtures)
	assert.NoError(t, err)

	_, err = run(t, "check", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestSectionsRejectsUnknownMode(t *testing.T) {
	_, err := run(t, "sections", "--mode", "excavate")
	assert.ErrorContains(t, err, `unknown mode "excavate"`)
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "inspect", filepath.Join(fixtures, "stairs.csv"))
	assert.ErrorContains(t, err, "parse log level")
}
