package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.SetupWriter(&buf, "PROD", "debug")

	ctx := logging.WithRequestID(context.Background(), "req-123")
	require.Equal(t, "req-123", logging.RequestID(ctx))

	logging.FromContext(ctx).Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "req-123", entry["request_id"])
	require.Equal(t, "hello", entry["message"])
	require.Equal(t, "info", entry["level"])
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	logging.SetupWriter(&buf, "PROD", "info")

	logging.FromContext(context.Background()).Warn().Msg("global")
	require.Contains(t, buf.String(), `"message":"global"`)
	require.Empty(t, logging.RequestID(context.Background()))
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logging.SetupWriter(&buf, "PROD", "warn")

	logging.FromContext(context.Background()).Info().Msg("hidden")
	require.Empty(t, buf.String())
}
