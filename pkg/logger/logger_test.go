package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithContextAddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(New(&buf, "debug"))
	t.Cleanup(func() { SetDefault(prev) })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, ServiceKey, "invitations")
	InfoContext(ctx, "guest created", "guest_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "guest created", entry["msg"])
	require.Equal(t, "req-1", entry["request_id"])
	require.Equal(t, "invitations", entry["service"])
	require.EqualValues(t, 7, entry["guest_id"])
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info("hidden")
	require.Zero(t, buf.Len())
	l.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}
