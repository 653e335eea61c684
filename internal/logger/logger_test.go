package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestInit_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vfd.log")

	require.NoError(t, Init(Config{Level: "debug", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Init(Config{Level: "INFO", Format: "text", Output: "stdout"}) })

	Debug("probe %s/%s", "bucket", "key")
	With(zap.String("status", "AccessDenied")).Warn("probe failed")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"msg":"probe bucket/key"`)
	assert.Contains(t, out, `"status":"AccessDenied"`)
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vfd.log")

	require.NoError(t, Init(Config{Level: "WARN", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Init(Config{Level: "INFO", Format: "text", Output: "stdout"}) })

	Info("dropped")
	Error("kept")
	require.NoError(t, Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "dropped"))
	assert.Contains(t, string(data), "kept")

	// Unknown levels leave the threshold untouched
	SetLevel("verbose")
	Info("still dropped")
	require.NoError(t, Sync())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "still dropped")
}
