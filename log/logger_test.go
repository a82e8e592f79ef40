package log

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/netservice/errors"
	"github.com/kochabx/netservice/log/writer"
)

func TestLogWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf)

	logger.Info().Str("method", "GET").Msg("request sent")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "request sent", line["message"])
	assert.Contains(t, line, "time")
}

func TestLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, WithLevel(zerolog.WarnLevel))

	logger.Debug().Msg("hidden")
	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn().Err(errors.NoResponse("transport failed")).Msg("shown")
	assert.Contains(t, buf.String(), "NO_RESPONSE")
}

func TestHeaderRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriter(&buf, WithHeaderRedaction())

	logger.Info().
		Interface("headers", map[string]string{
			"Authorization": "Bearer abc.def",
			"Accept":        "application/json",
		}).
		Msg("request sent")

	out := buf.String()
	assert.NotContains(t, out, "abc.def")
	assert.Contains(t, out, `"Authorization":"******"`)
	assert.Contains(t, out, `"Accept":"application/json"`)
	assert.NotNil(t, logger.GetDesensitizeHook())
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Info().Msg("discarded")
	assert.NoError(t, logger.Close())
}

func TestFileLog(t *testing.T) {
	config := FileConfig{
		Filepath:   t.TempDir(),
		Filename:   "test",
		RotateMode: writer.RotateModeSize,
		LumberjackConfig: LumberjackConfig{
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}

	logger, err := NewFile(config)
	require.NoError(t, err)
	defer logger.Close()

	logger.Info().Msg("test file log")
	assert.FileExists(t, filepath.Join(config.Filepath, "test.log"))
}

func TestFileLogDefaults(t *testing.T) {
	c := FileConfig{}
	c.applyDefaults()

	assert.Equal(t, "log", c.Filepath)
	assert.Equal(t, "netservice", c.Filename)
	assert.Equal(t, 100, c.LumberjackConfig.MaxSize)
	assert.Equal(t, 24, c.RotatelogsConfig.MaxAge)
}

func TestGlobalLoggerSkipsDebug(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, G.GetLevel())
	assert.Nil(t, Debug())
	assert.NotNil(t, Info())
}
