package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/logging"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, logging.Options{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("shown", "report_id", "r-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "r-1", entry["report_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel(""))
}

func TestContextLogger(t *testing.T) {
	fallback := logging.Discard()
	assert.Same(t, fallback, logging.FromContextOr(context.Background(), fallback))

	scoped := logging.Discard()
	ctx := logging.ContextWithLogger(context.Background(), scoped)
	assert.Same(t, scoped, logging.FromContext(ctx))
	assert.Same(t, scoped, logging.FromContextOr(ctx, fallback))
}
