package observability

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (m *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *memoryExporter) Shutdown(context.Context) error   { return nil }
func (m *memoryExporter) ForceFlush(context.Context) error { return nil }

func TestOTelHook_ForwardsRecords(t *testing.T) {
	exporter := &memoryExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter)))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(NewOTelHook(provider, "test"))

	logger.Warn().Int("rows", 4).Msg("dataset too small")
	logger.Log().Msg("no level")

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.records, 1)
	assert.Equal(t, "dataset too small", exporter.records[0].Body().AsString())
	assert.Equal(t, otellog.SeverityWarn, exporter.records[0].Severity())
	assert.Contains(t, buf.String(), `"rows":4`)
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, otellog.SeverityDebug, severityFor(zerolog.DebugLevel))
	assert.Equal(t, otellog.SeverityInfo, severityFor(zerolog.InfoLevel))
	assert.Equal(t, otellog.SeverityError, severityFor(zerolog.ErrorLevel))
	assert.Equal(t, otellog.SeverityUndefined, severityFor(zerolog.NoLevel))
}

func TestLoggerFromContext_WithoutSpan(t *testing.T) {
	logger := LoggerFromContext(context.Background())

	assert.NotNil(t, logger)
}

func TestMetrics_NilSafe(t *testing.T) {
	ctx := context.Background()

	assert.NotPanics(t, func() {
		RecordRequestMetric(ctx, nil, "GET", "/health", 200, 0)
		RecordTrainingMetric(ctx, nil, 10, true, true, 0)
		RecordPredictionMetric(ctx, nil, false, false)
		RecordCacheLookup(ctx, nil, true)
	})
}

func TestInitMetrics(t *testing.T) {
	metrics, err := InitMetrics()
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		RecordTrainingMetric(context.Background(), metrics, 10, false, true, 0)
		RecordCacheLookup(context.Background(), metrics, false)
	})
}
