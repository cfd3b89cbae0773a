package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/NaradaAI/narada-go/internal/config"
)

func TestNewLoggerRespectsLevel(t *testing.T) {
	t.Parallel()

	logger := NewLogger(config.LoggerConfig{Level: "warn", Format: "json", ServiceName: "test"})
	require.NotNil(t, logger)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger := NewLogger(config.LoggerConfig{Level: "nonsense", Format: "json"})
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestColorizedLevelEncoder(t *testing.T) {
	t.Parallel()

	colors := config.ColorConfig{Info: "green", Error: "red"}
	enc := newColorizedLevelEncoder(colors)

	sink := &stringArrayEncoder{}
	enc(zapcore.InfoLevel, sink)
	enc(zapcore.ErrorLevel, sink)
	enc(zapcore.DebugLevel, sink) // no color configured

	require.Len(t, sink.values, 3)
	assert.Equal(t, colorGreen+"INFO"+colorReset, sink.values[0])
	assert.Equal(t, colorRed+"ERROR"+colorReset, sink.values[1])
	assert.Equal(t, "DEBUG", sink.values[2])
}

func TestGetLoggerFallback(t *testing.T) {
	// Do not run in parallel: reads the global pointer.
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("fallback logger works") })
}

// stringArrayEncoder captures appended strings for encoder assertions.
type stringArrayEncoder struct {
	zapcore.PrimitiveArrayEncoder
	values []string
}

func (e *stringArrayEncoder) AppendString(s string) { e.values = append(e.values, s) }
