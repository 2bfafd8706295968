package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinShutdownRunsInReverseOrder(t *testing.T) {
	var calls []string
	first := func(context.Context) error { calls = append(calls, "logs"); return nil }
	second := func(context.Context) error { calls = append(calls, "traces"); return errors.New("flush failed") }

	err := JoinShutdown(first, nil, second)(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush failed")
	assert.Equal(t, []string{"traces", "logs"}, calls)
}

func TestNewResourceCarriesServiceName(t *testing.T) {
	res, err := newResource()
	require.NoError(t, err)

	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" {
			found = true
			assert.Equal(t, "pasar-kalikatir", kv.Value.AsString())
		}
	}
	assert.True(t, found)
}
