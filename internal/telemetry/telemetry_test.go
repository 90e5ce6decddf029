package telemetry_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/aicp-web/internal/telemetry"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), "", "aicp-web")
	require.NoError(t, err)
	require.Nil(t, p)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestTracer_NotNil(t *testing.T) {
	require.NotNil(t, telemetry.Tracer("apiclient"))
}
