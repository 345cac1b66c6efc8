package flowgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/observability"
)

func captureLogger(t *testing.T) (*slog.Logger, func() []map[string]any) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	read := func() []map[string]any {
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
	return logger, read
}

func messages(records []map[string]any) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r["msg"].(string))
	}
	return out
}

func TestObservability_LogsLifecycle(t *testing.T) {
	logger, read := captureLogger(t)

	_, err := linearTrail(t).Run(testCtx(), Mark{},
		WithObservabilityLogger(logger),
		WithCheckpointing(checkpoint.NewMemoryStore()),
		WithThreadID("user:1"))
	require.NoError(t, err)

	msgs := messages(read())
	assert.Equal(t, "graph run starting", msgs[0])
	assert.Equal(t, "checkpoint loaded", msgs[1])
	assert.Equal(t, "graph run completed", msgs[len(msgs)-1])
	assert.Contains(t, msgs, "node starting")
	assert.Contains(t, msgs, "node completed")
	assert.Contains(t, msgs, "checkpoint saved")
}

func TestObservability_LogsFailure(t *testing.T) {
	logger, read := captureLogger(t)
	compiled, err := NewGraph[Trail, Mark](trailReducer).
		AddNode("bad", failing(errBoom)).
		AddEdge("bad", END).
		SetEntry("bad").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), Mark{}, WithObservabilityLogger(logger))
	require.Error(t, err)

	records := read()
	last := records[len(records)-1]
	assert.Equal(t, "graph run failed", last["msg"])
	assert.Equal(t, "bad", last["last_node"])
}

func TestObservability_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	rec, err := observability.NewMetricsRecorderFromMeter(provider.Meter(observability.MeterName))
	require.NoError(t, err)

	_, err = linearTrail(t).Run(testCtx(), Mark{},
		WithMetricsRecorder(rec),
		WithCheckpointing(checkpoint.NewMemoryStore()),
		WithThreadID("user:1"))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{
		"tutorgraph.node.executions",
		"tutorgraph.node.latency_ms",
		"tutorgraph.graph.runs",
		"tutorgraph.graph.latency_ms",
		"tutorgraph.checkpoint.size_bytes",
		"tutorgraph.checkpoint.loads",
	} {
		assert.True(t, names[want], "missing metric %s", want)
	}
}

func TestObservability_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, err := linearTrail(t).Run(testCtx(), Mark{},
		WithSpanManager(observability.NewSpanManagerFromProvider(tp)))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 4)

	run := spans[3]
	assert.Equal(t, "tutorgraph.run", run.Name)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, "tutorgraph.node."+id, spans[i].Name)
		assert.Equal(t, run.SpanContext.SpanID(), spans[i].Parent.SpanID())
	}
}
