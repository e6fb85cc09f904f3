package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"diagnostics-recorder/engine/config"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DIAG_ENV", "DIAG_SINK_OUTPUT", "DIAG_EXPORT_DIR", "DIAG_SIM_INTERVAL_MS"} {
		t.Setenv(key, "")
	}
	t.Setenv("DIAG_SIM_ENABLED", "true")
}

func TestHeadlessRunFlushesSink(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer

	code := realMain([]string{
		"-config", filepath.Join(dir, "config.json"),
		"-headless",
		"-duration", "50ms",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	require.FileExists(t, filepath.Join(dir, "config.json"))
	require.Contains(t, stdout.String(), "simulator started with 4 sources")
	require.Contains(t, stdout.String(), "entries retained")

	data, err := os.ReadFile(filepath.Join(dir, "external", "logs", "sink.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "simulator started with 4 sources")
}

func TestInvalidConfigExitsNonZero(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.Default()
	cfg.Sink.Env = "staging"
	require.NoError(t, config.SaveConfig(path, cfg))

	var stdout, stderr bytes.Buffer
	code := realMain([]string{"-config", path, "-headless", "-duration", "10ms"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "load config")
	require.Empty(t, stdout.String())
}

func TestBadFlagExitsWithUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, realMain([]string{"-nope"}, &stdout, &stderr))
	require.Contains(t, stderr.String(), "-headless")
}
