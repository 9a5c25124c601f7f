package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwhiz/internal/logger"
)

func TestModeFromEnv(t *testing.T) {
	tests := []struct {
		trace    string
		endpoint string
		want     Mode
	}{
		{"", "", ModeOff},
		{"stdout", "", ModeStdout},
		{"STDOUT", "", ModeStdout},
		{"otlp", "", ModeOTLP},
		{"", "http://collector:4318", ModeOTLP},
	}
	for _, tt := range tests {
		t.Setenv("QUIZWHIZ_TRACE", tt.trace)
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", tt.endpoint)
		assert.Equal(t, tt.want, ModeFromEnv(), "trace=%q endpoint=%q", tt.trace, tt.endpoint)
	}
}

func TestInitOffIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), ModeOff, "test", logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitStdout(t *testing.T) {
	shutdown, err := Init(context.Background(), ModeStdout, "test", logger.Nop())
	require.NoError(t, err)

	_, span := Tracer("test").Start(context.Background(), "unit")
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}
