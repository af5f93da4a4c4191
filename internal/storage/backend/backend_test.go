package backend

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voto/internal/platform/config"
	"voto/internal/platform/metrics"
	"voto/internal/storage"
)

func TestOpenMemory(t *testing.T) {
	logs := &bytes.Buffer{}
	b, err := Open(context.Background(), config.Server{Store: config.StoreMemory}, nil, slog.New(slog.NewTextHandler(logs, nil)))
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &storage.InMemory{}, b.Store)
	assert.Nil(t, b.Health)
	assert.Contains(t, logs.String(), "in-memory store")
}

func TestOpenInstrumentsWhenMetricsGiven(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	b, err := Open(context.Background(), config.Server{Store: config.StoreMemory}, m, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)

	assert.IsType(t, &storage.Instrumented{}, b.Store)
}

func TestOpenUnknownStore(t *testing.T) {
	_, err := Open(context.Background(), config.Server{Store: "etcd"}, nil, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "etcd")
}
