package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider with a manual reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordNodeExecution(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records execution count", func(t *testing.T) {
		m.RecordNodeExecution(ctx, "classify-intent", 50*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.node.executions")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "node_id" && attr.Value.AsString() == "classify-intent" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected to find datapoint for node_id=classify-intent")
	})

	t.Run("records latency", func(t *testing.T) {
		m.RecordNodeExecution(ctx, "generate-artifact", 100*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.node.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		testErr := errors.New("node failed")
		m.RecordNodeExecution(ctx, "failing", 10*time.Millisecond, testErr)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.node.errors")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "node_id" && attr.Value.AsString() == "failing" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected to find error datapoint")
	})
}

func TestRecordGraphRun(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records successful and failed runs", func(t *testing.T) {
		m.RecordGraphRun(ctx, true, 500*time.Millisecond)
		m.RecordGraphRun(ctx, false, 100*time.Millisecond)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.run.count")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.NotEmpty(t, sum.DataPoints)
	})

	t.Run("records run latency", func(t *testing.T) {
		m.RecordGraphRun(ctx, true, 200*time.Millisecond)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.run.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})
}

func TestRecordSnapshot(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records snapshot size", func(t *testing.T) {
		m.RecordSnapshot(ctx, "thread-7", 2048)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.snapshot.size_bytes")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[int64])
		require.True(t, ok, "Expected Histogram[int64] type")
		require.NotEmpty(t, hist.DataPoints)

		found := false
		for _, dp := range hist.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "thread_id" && attr.Value.AsString() == "thread-7" {
					found = true
					assert.Greater(t, dp.Count, uint64(0))
				}
			}
		}
		assert.True(t, found, "Expected to find datapoint for thread-7")
	})
}

func TestRecordModelInvocation(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records calls with schema and success attributes", func(t *testing.T) {
		m.RecordModelInvocation(ctx, "artifact", 300*time.Millisecond, nil)
		m.RecordModelInvocation(ctx, "artifact", 80*time.Millisecond, errors.New("rate limited"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.model.invocations")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")

		var successes, failures int64
		for _, dp := range sum.DataPoints {
			var schema string
			var success bool
			for _, attr := range dp.Attributes.ToSlice() {
				switch attr.Key {
				case "schema":
					schema = attr.Value.AsString()
				case "success":
					success = attr.Value.AsBool()
				}
			}
			if schema != "artifact" {
				continue
			}
			if success {
				successes += dp.Value
			} else {
				failures += dp.Value
			}
		}
		assert.Equal(t, int64(1), successes)
		assert.Equal(t, int64(1), failures)
	})

	t.Run("records invocation latency", func(t *testing.T) {
		m.RecordModelInvocation(ctx, "classify", 40*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "canvasflow.model.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})
}

func TestOtelMetrics_AllMethods(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()

	m.RecordNodeExecution(ctx, "test_node", 25*time.Millisecond, nil)
	m.RecordNodeExecution(ctx, "error_node", 10*time.Millisecond, errors.New("test"))
	m.RecordGraphRun(ctx, true, 100*time.Millisecond)
	m.RecordGraphRun(ctx, false, 50*time.Millisecond)
	m.RecordSnapshot(ctx, "thread-1", 1024)
	m.RecordModelInvocation(ctx, "title", 60*time.Millisecond, nil)

	rm := collectMetrics(t, reader)

	assert.NotNil(t, findMetric(rm, "canvasflow.node.executions"))
	assert.NotNil(t, findMetric(rm, "canvasflow.node.latency_ms"))
	assert.NotNil(t, findMetric(rm, "canvasflow.node.errors"))
	assert.NotNil(t, findMetric(rm, "canvasflow.run.count"))
	assert.NotNil(t, findMetric(rm, "canvasflow.run.latency_ms"))
	assert.NotNil(t, findMetric(rm, "canvasflow.snapshot.size_bytes"))
	assert.NotNil(t, findMetric(rm, "canvasflow.model.invocations"))
	assert.NotNil(t, findMetric(rm, "canvasflow.model.latency_ms"))
}
