package logger

import (
	"testing"

	"lms_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, levelFor(&config.Config{Server: config.ServerConfig{Mode: "debug"}}))
	assert.Equal(t, zap.WarnLevel, levelFor(&config.Config{Log: config.LogConfig{Level: "warn"}}))
	assert.Equal(t, zap.InfoLevel, levelFor(&config.Config{Log: config.LogConfig{Level: "bogus"}}))
}

func TestApplyConfigChangesLevel(t *testing.T) {
	SetLevel(zap.InfoLevel)
	ApplyConfig(&config.Config{Log: config.LogConfig{Level: "error"}})
	assert.Equal(t, zap.ErrorLevel, Level())
	SetLevel(zap.InfoLevel)
}

func TestInitLoggerConsoleOnly(t *testing.T) {
	defer func() { Log = zap.NewNop() }()
	InitLogger(&config.Config{Log: config.LogConfig{Level: "info"}})
	assert.NotNil(t, Log)
	Log.Info("hello")
}
