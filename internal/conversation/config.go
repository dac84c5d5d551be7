// ABOUTME: Conversation configuration with validated bounds
// ABOUTME: Rejected configs never start a conversation

package conversation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Defaults applied by ApplyDefaults when the caller leaves a field zero.
const (
	DefaultMessageLimit         = 50
	DefaultMessageDelayMS       = 1000
	DefaultMaxTokensPerResponse = 500
)

// ParticipantConfig describes one of the two generation agents.
// Immutable for the conversation's lifetime.
type ParticipantConfig struct {
	Provider string `json:"provider" validate:"required,oneof=anthropic openai"`
	Model    string `json:"model" validate:"required"`
	Persona  string `json:"persona,omitempty"`
}

// Config describes a conversation: the two participants, the seed prompt,
// and the turn/token/delay limits. Validated at creation.
type Config struct {
	AI1                  ParticipantConfig `json:"ai1" validate:"required"`
	AI2                  ParticipantConfig `json:"ai2" validate:"required"`
	InitialPrompt        string            `json:"initial_prompt" validate:"required"`
	MessageLimit         int               `json:"message_limit" validate:"min=1,max=1000"`
	MessageDelayMS       int               `json:"message_delay_ms" validate:"min=0,max=60000"`
	MaxTokensPerResponse int               `json:"max_tokens_per_response" validate:"min=50,max=4000"`
}

// ApplyDefaults fills zero-valued limits with their defaults. A zero delay
// is a legitimate value and is left alone.
func (c *Config) ApplyDefaults() {
	if c.MessageLimit == 0 {
		c.MessageLimit = DefaultMessageLimit
	}
	if c.MaxTokensPerResponse == 0 {
		c.MaxTokensPerResponse = DefaultMaxTokensPerResponse
	}
}

// Validate checks participant fields and limit bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid conversation config: %w", err)
	}
	return nil
}
