package tracing

import (
	"context"
	"testing"

	"github.com/hilthontt/encore/internal/infrastructure/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutExporterIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), configs.AppConfig{Name: "encore"}, configs.TracingConfig{Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), configs.AppConfig{}, configs.TracingConfig{Exporter: "zipkin"})
	assert.Error(t, err)
}
