package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestLogger_WritesStructuredEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	log.Infof("scheduling %d run(s)", 3)
	out := buf.String()
	require.Contains(t, out, `"level":"info"`)
	require.Contains(t, out, "scheduling 3 run(s)")
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("visible")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "visible")
}

func TestLogger_WithRunAddsField(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Writer: &buf})
	require.NoError(t, err)

	log.WithRun("fpga_top").Info("spawning")
	require.Contains(t, buf.String(), `"run":"fpga_top"`)
}

func TestLogger_WithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Writer: &buf})
	require.NoError(t, err)

	log.WithFields(map[string]any{"operation": "build"}).Info("starting")
	require.Contains(t, buf.String(), `"operation":"build"`)
}

func TestLogger_ErrorIncludesCause(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Writer: &buf})
	require.NoError(t, err)

	log.Error(errors.New("pipe closed"), "reader stopped")
	out := buf.String()
	require.Contains(t, out, "pipe closed")
	require.Contains(t, out, "reader stopped")
}

func TestLogger_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var log *Logger
	require.NotPanics(t, func() {
		log.Info("ignored")
		log.Debugf("ignored %d", 1)
		log.Warn("ignored")
		log.Error(errors.New("ignored"), "ignored")
		_ = log.WithRun("ignored")
		_ = log.WithFields(map[string]any{"k": "v"})
	})
}
