package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), buf
}

// records decodes every JSON line written to buf.
func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestEnrichLogger(t *testing.T) {
	t.Run("adds run and thread", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		EnrichLogger(logger, "run-1", "user:42").Info("hello")

		recs := records(t, buf)
		require.Len(t, recs, 1)
		assert.Equal(t, "run-1", recs[0]["run_id"])
		assert.Equal(t, "user:42", recs[0]["thread_id"])
	})

	t.Run("omits empty thread", func(t *testing.T) {
		logger, buf := newCaptureLogger()
		EnrichLogger(logger, "run-1", "").Info("hello")

		recs := records(t, buf)
		require.Len(t, recs, 1)
		_, ok := recs[0]["thread_id"]
		assert.False(t, ok)
	})

	t.Run("nil logger", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "run-1", "t"))
	})
}

func TestRunLifecycleLogs(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogRunStart(logger, "run-1", "user:1")
	LogRunComplete(logger, "run-1", 12, 3)
	LogRunError(logger, "run-1", errors.New("boom"), 5, "analyze")

	recs := records(t, buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "graph run starting", recs[0]["msg"])
	assert.Equal(t, "user:1", recs[0]["thread_id"])

	assert.Equal(t, "graph run completed", recs[1]["msg"])
	assert.EqualValues(t, 3, recs[1]["nodes_executed"])

	assert.Equal(t, "graph run failed", recs[2]["msg"])
	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "boom", recs[2]["error"])
	assert.Equal(t, "analyze", recs[2]["last_node"])
}

func TestNodeLogs(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogNodeStart(logger, "respond")
	LogNodeComplete(logger, "respond", 1.5)
	LogNodeError(logger, "analyze", errors.New("bad"))

	recs := records(t, buf)
	require.Len(t, recs, 3)
	assert.Equal(t, "DEBUG", recs[0]["level"])
	assert.Equal(t, "respond", recs[1]["node_id"])
	assert.Equal(t, 1.5, recs[1]["duration_ms"])
	assert.Equal(t, "bad", recs[2]["error"])
}

func TestCheckpointLogs(t *testing.T) {
	logger, buf := newCaptureLogger()

	LogCheckpointLoad(logger, "user:1", true, 4)
	LogCheckpoint(logger, "respond", 256)
	LogCheckpointError(logger, "respond", "save", errors.New("disk full"))

	recs := records(t, buf)
	require.Len(t, recs, 3)
	assert.Equal(t, true, recs[0]["found"])
	assert.EqualValues(t, 4, recs[0]["sequence"])
	assert.EqualValues(t, 256, recs[1]["size_bytes"])
	assert.Equal(t, "WARN", recs[2]["level"])
	assert.Equal(t, "save", recs[2]["operation"])
}

func TestLogFunctions_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogRunStart(nil, "r", "t")
		LogRunComplete(nil, "r", 1, 1)
		LogRunError(nil, "r", errors.New("x"), 1, "n")
		LogNodeStart(nil, "n")
		LogNodeComplete(nil, "n", 1)
		LogNodeError(nil, "n", errors.New("x"))
		LogCheckpointLoad(nil, "t", false, 0)
		LogCheckpoint(nil, "n", 1)
		LogCheckpointError(nil, "n", "save", errors.New("x"))
	})
}
