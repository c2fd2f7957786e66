package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"wwreviews/internal/core/config"
)

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{
		Level: "info",
		JSON:  true,
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	}, "")
	l.Info("hello", zap.String("k", "v"))
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"hello"`)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestToWriter_TrimsNewlines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	w := ToWriter(zap.New(core), zapcore.WarnLevel)

	n, err := w.Write([]byte("[GIN-debug] route\n"))
	require.NoError(t, err)
	assert.Equal(t, 18, n)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "[GIN-debug] route", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestFromConfig_AddsAppField(t *testing.T) {
	file := filepath.Join(t.TempDir(), "api.log")
	l, cleanup := FromConfig(config.Log{
		Level: "warn",
		File:  config.LogFile{Enable: true, Filename: file},
	}, "wwreviews-api")
	l.Info("dropped")
	l.Warn("kept")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "dropped")
	assert.Contains(t, string(b), `"app":"wwreviews-api"`)
}

func TestMiddleware_LogsAdminChanges(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("uid", uint(3)) }, Middleware(zap.New(core)))
	r.POST("/members/:id/role", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/members", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/members/9/role", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/members", nil))

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "admin change", first.Message)
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	assert.Equal(t, "/members/:id/role", first.ContextMap()["route"])
	assert.EqualValues(t, 3, first.ContextMap()["operator_uid"])
	assert.Equal(t, zapcore.DebugLevel, logs.All()[1].Level)
}
