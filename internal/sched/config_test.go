package sched

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg := Load("")
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadOverridesAndClamps(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "" +
		"frame_interval_ms: 8\n" +
		"continuous_input_interval_ms: 60\n" +
		"max_interval_ms: 400\n" +
		"heap_initial_capacity: 128\n" +
		"priorities:\n" +
		"  Normal: 4000\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Load(path)
	assert.EqualValues(t, 8, cfg.FrameIntervalMS)
	assert.EqualValues(t, 60, cfg.ContinuousInputIntervalMS)
	assert.EqualValues(t, 400, cfg.MaxIntervalMS)
	assert.Equal(t, 128, cfg.HeapInitialCapacity)
	assert.EqualValues(t, 4000, cfg.timeoutFor(Normal))
	// unaffected levels keep their built-in timeout
	assert.EqualValues(t, 250, cfg.timeoutFor(UserBlocking))
}

func TestLoadClampsNonsenseValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "" +
		"frame_interval_ms: -3\n" +
		"continuous_input_interval_ms: 1\n" +
		"max_interval_ms: 1\n" +
		"heap_initial_capacity: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg := Load(path)
	assert.EqualValues(t, defaultFrameIntervalMS, cfg.FrameIntervalMS)
	assert.EqualValues(t, defaultContinuousInputIntervalMS, cfg.ContinuousInputIntervalMS)
	assert.EqualValues(t, defaultMaxIntervalMS, cfg.MaxIntervalMS)
	assert.Equal(t, defaultHeapInitialCapacity, cfg.HeapInitialCapacity)
}

func TestConfigTimeoutForUnknownOverrideFallsBackToBuiltin(t *testing.T) {
	cfg := defaultConfig()
	assert.EqualValues(t, 10000, cfg.timeoutFor(Low))
}
