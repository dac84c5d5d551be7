// ABOUTME: Tests for conversation config validation and defaults
// ABOUTME: Bound violations must be rejected before a conversation starts

package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return testConfig(10)
}

func TestConfig_ValidPasses(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{
		AI1:           ParticipantConfig{Provider: "anthropic", Model: "claude-sonnet-4-5"},
		AI2:           ParticipantConfig{Provider: "openai", Model: "gpt-4o-mini"},
		InitialPrompt: "hello",
	}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultMessageLimit, cfg.MessageLimit)
	assert.Equal(t, DefaultMaxTokensPerResponse, cfg.MaxTokensPerResponse)
	assert.Equal(t, 0, cfg.MessageDelayMS, "zero delay is a legitimate value")
	assert.NoError(t, cfg.Validate())
}

func TestConfig_RejectsOutOfBoundsLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"message limit too low", func(c *Config) { c.MessageLimit = 0 }},
		{"message limit too high", func(c *Config) { c.MessageLimit = 1001 }},
		{"delay negative", func(c *Config) { c.MessageDelayMS = -1 }},
		{"delay too high", func(c *Config) { c.MessageDelayMS = 60001 }},
		{"max tokens too low", func(c *Config) { c.MaxTokensPerResponse = 49 }},
		{"max tokens too high", func(c *Config) { c.MaxTokensPerResponse = 4001 }},
		{"missing initial prompt", func(c *Config) { c.InitialPrompt = "" }},
		{"missing model", func(c *Config) { c.AI1.Model = "" }},
		{"unknown provider", func(c *Config) { c.AI2.Provider = "skynet" }},
		{"missing provider", func(c *Config) { c.AI1.Provider = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSender_Other(t *testing.T) {
	assert.Equal(t, SenderAI2, SenderAI1.Other())
	assert.Equal(t, SenderAI1, SenderAI2.Other())
	assert.Equal(t, SenderSystem, SenderSystem.Other())
}

func TestState_Terminal(t *testing.T) {
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateError.Terminal())
	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.False(t, StatePaused.Terminal())
}
