package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 3, cfg.Suggest.TopK)
	assert.Equal(t, 4, cfg.Suggest.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Suggest.UpstreamTimeout)
	assert.Equal(t, 90, cfg.Suggest.BaselineConfidence)
	assert.Equal(t, 80, cfg.Suggest.ReviewThreshold)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SUGGEST_TOP_K", "5")
	t.Setenv("SUGGEST_UPSTREAM_TIMEOUT_SECONDS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Suggest.TopK)
	assert.Equal(t, 10*time.Second, cfg.Suggest.UpstreamTimeout)
}

func TestLoadRejectsBadInt(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestValidateRequiresProvider(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.LLM.OpenAIKey = ""
	cfg.LLM.AnthropicKey = ""
	cfg.LLM.OllamaURL = ""
	require.Error(t, cfg.Validate())

	cfg.LLM.OpenAIKey = "sk-test"
	require.NoError(t, cfg.Validate())
}
