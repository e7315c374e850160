package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roundspecs/hsbs/pkg/config"
)

func TestSetupTracing_SinEndpointEsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.OtelConfig{}, "hsbs-test", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_ConEndpoint(t *testing.T) {
	// el exporter HTTP no conecta al crearse; solo al exportar
	shutdown, err := SetupTracing(context.Background(), config.OtelConfig{Endpoint: "127.0.0.1:1", Insecure: true}, "hsbs-test", "test")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
