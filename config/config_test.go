package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnfitBeard/prompt-eval/utils"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, 7.0, cfg.OverallThreshold)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, 6, cfg.RetrieveK)
	assert.Equal(t, 3, cfg.MaxCandidates)
	assert.Equal(t, 10*time.Second, cfg.EvalTimeout)
	assert.Equal(t, 30*time.Second, cfg.ImproveTimeout)
	assert.Equal(t, utils.LogLevelWarn, cfg.LogLevel)
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		SetModel("gemini-2.0-pro"),
		SetOverallThreshold(8.5),
		SetMaxRetries(4),
		SetRetrieveK(10),
	)

	assert.Equal(t, "gemini-2.0-pro", cfg.Model)
	assert.Equal(t, 8.5, cfg.OverallThreshold)
	assert.Equal(t, 4, cfg.MaxRetries)
	assert.Equal(t, 10, cfg.RetrieveK)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PROMPTEVAL_THRESHOLD", "6.5")
	t.Setenv("PROMPTEVAL_MAX_RETRIES", "3")
	t.Setenv("PROMPTEVAL_LOG_LEVEL", "DEBUG")
	t.Setenv("PROMPTEVAL_EVAL_TIMEOUT", "7s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 6.5, cfg.OverallThreshold)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
	assert.Equal(t, 7*time.Second, cfg.EvalTimeout)
}

func TestLoadConfigBadLevel(t *testing.T) {
	t.Setenv("PROMPTEVAL_LOG_LEVEL", "LOUD")

	_, err := LoadConfig()
	require.Error(t, err)
}
