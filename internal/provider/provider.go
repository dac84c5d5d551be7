// ABOUTME: Generation service routing turns to the configured provider clients
// ABOUTME: Builds the role-mapped context from the acting participant's perspective

package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parley-dev/parley/internal/conversation"
)

// Role is a chat role in the provider wire format.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-mapped turn handed to a provider client.
type ChatMessage struct {
	Role    Role
	Content string
}

// ChatRequest is the normalized completion request shared by all clients.
type ChatRequest struct {
	Model     string
	System    string
	Messages  []ChatMessage
	MaxTokens int
}

// Client is a single provider's completion API.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Error marks a failed generation call. The orchestrator treats it as
// terminal for the conversation and never retries.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Service implements conversation.Generator over the registered provider
// clients. Unknown providers and client failures surface as *Error.
type Service struct {
	clients map[string]Client
	logger  *slog.Logger
}

// NewService creates a Service with the given provider clients, keyed by
// provider identifier ("anthropic", "openai").
func NewService(clients map[string]Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		clients: clients,
		logger:  logger.With("component", "provider"),
	}
}

// Generate performs one completion for the acting participant.
func (s *Service) Generate(ctx context.Context, req conversation.GenerateRequest) (conversation.GenerateResult, error) {
	client, ok := s.clients[req.Provider]
	if !ok {
		return conversation.GenerateResult{}, &Error{Provider: req.Provider, Err: fmt.Errorf("unknown provider %q", req.Provider)}
	}

	chatReq := ChatRequest{
		Model:     req.Model,
		System:    buildSystemPrompt(req.Speaker, req.Persona),
		Messages:  mapHistory(req.History, req.Speaker),
		MaxTokens: req.MaxTokens,
	}

	text, err := client.Complete(ctx, chatReq)
	if err != nil {
		return conversation.GenerateResult{}, &Error{Provider: req.Provider, Err: err}
	}

	s.logger.Debug("generation complete",
		"provider", req.Provider,
		"model", req.Model,
		"speaker", req.Speaker,
		"history_len", len(req.History))

	return conversation.GenerateResult{
		Text:   text,
		Tokens: countTokens(req.Model, text),
	}, nil
}

// buildSystemPrompt frames the acting participant: identity, persona and
// the house conversational style.
func buildSystemPrompt(speaker conversation.Sender, persona string) string {
	if persona == "" {
		persona = "You are a helpful AI assistant."
	}
	return fmt.Sprintf(`You are %s. %s

You are having a conversation with another AI. Keep your responses conversational,
thoughtful, and engaging. Aim for 1-3 sentences unless the topic requires more depth.`,
		strings.ToUpper(string(speaker)), persona)
}

// mapHistory reinterprets the transcript from the acting participant's
// perspective: its own messages become assistant turns, the other
// participant's become user turns, and system messages are excluded from
// context (they remain in the transcript).
func mapHistory(history []conversation.Message, speaker conversation.Sender) []ChatMessage {
	out := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		switch msg.Sender {
		case conversation.SenderSystem:
			continue
		case speaker:
			out = append(out, ChatMessage{Role: RoleAssistant, Content: msg.Content})
		default:
			out = append(out, ChatMessage{Role: RoleUser, Content: msg.Content})
		}
	}
	return out
}
