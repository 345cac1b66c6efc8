// Package observability provides logging, metrics and tracing hooks for
// graph runs. Logging goes through log/slog; metrics and spans go through
// OpenTelemetry. Every hook is opt-in and has a no-op counterpart.
package observability

import (
	"log/slog"
)

// EnrichLogger adds run and thread context to a logger.
// threadID is omitted when empty.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", "user:42")
//	enriched.Info("doing work") // includes run_id and thread_id
func EnrichLogger(logger *slog.Logger, runID, threadID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	logger = logger.With(slog.String("run_id", runID))
	if threadID != "" {
		logger = logger.With(slog.String("thread_id", threadID))
	}
	return logger
}

// LogRunStart logs the start of a graph run.
func LogRunStart(logger *slog.Logger, runID, threadID string) {
	if logger == nil {
		return
	}
	logger.Info("graph run starting",
		slog.String("run_id", runID),
		slog.String("thread_id", threadID),
	)
}

// LogRunComplete logs successful graph run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("graph run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_executed", nodeCount),
	)
}

// LogRunError logs graph run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64, lastNode string) {
	if logger == nil {
		return
	}
	logger.Error("graph run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_node", lastNode),
	)
}

// LogNodeStart logs node execution start.
func LogNodeStart(logger *slog.Logger, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("node starting",
		slog.String("node_id", nodeID),
	)
}

// LogNodeComplete logs successful node completion.
func LogNodeComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeError logs node execution error.
func LogNodeError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogCheckpointLoad logs the outcome of loading a thread's checkpoint.
// found is false for a thread with no history.
func LogCheckpointLoad(logger *slog.Logger, threadID string, found bool, sequence int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint loaded",
		slog.String("thread_id", threadID),
		slog.Bool("found", found),
		slog.Int("sequence", sequence),
	)
}

// LogCheckpoint logs checkpoint creation.
func LogCheckpoint(logger *slog.Logger, nodeID string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved",
		slog.String("node_id", nodeID),
		slog.Int("size_bytes", sizeBytes),
	)
}

// LogCheckpointError logs checkpoint failure (non-fatal).
func LogCheckpointError(logger *slog.Logger, nodeID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		slog.String("node_id", nodeID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
