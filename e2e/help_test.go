//go:build e2e && unix

package main

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpCommand(t *testing.T) {
	t.Parallel()

	// Run directly, not through a PTY, since it exits at once
	cmd := exec.Command(binPath, "--help")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "Help command should run without error")

	output := string(out)
	for _, flag := range []string{"--config", "--people", "--debounce", "--delay", "--grace", "--write-config", "--write-people"} {
		assert.Contains(t, output, flag)
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "peoplesearch.toml")

	cmd := exec.Command(binPath, "--config", path, "--debounce", "250ms", "--write-config")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), path)

	data := readFile(t, path)
	assert.Contains(t, data, "debounce_ms = 250")
	assert.Contains(t, data, "grace_period_ms = 5000")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Parallel()

	cmd := exec.Command(binPath, "--config", filepath.Join(t.TempDir(), "none.toml"), "--log-level", "loud", "--write-config")
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	assert.Contains(t, string(out), "invalid config")
}

func TestWritePeopleDumpsDataset(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "people.toml")

	cmd := exec.Command(binPath, "--config", filepath.Join(dir, "peoplesearch.toml"), "--write-people", path)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
	assert.Contains(t, string(out), "Wrote 4 people")

	data := readFile(t, path)
	assert.Contains(t, data, "[[people]]")
	for _, name := range []string{"Mark", "Ndaru", "Darius", "Nyaga", "Anthony", "Mwalili", "Steve", "Magu"} {
		assert.Contains(t, data, name)
	}
}
