// ABOUTME: Tests for provider routing, role mapping and prompt framing
// ABOUTME: Uses a stub Client; no network calls

package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/conversation"
)

type stubClient struct {
	lastReq ChatRequest
	text    string
	err     error
}

func (s *stubClient) Complete(_ context.Context, req ChatRequest) (string, error) {
	s.lastReq = req
	return s.text, s.err
}

func testService(clients map[string]Client) *Service {
	return NewService(clients, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func msg(sender conversation.Sender, content string) conversation.Message {
	return conversation.Message{ID: content, Sender: sender, Content: content, Timestamp: time.Now()}
}

func TestService_UnknownProvider(t *testing.T) {
	svc := testService(map[string]Client{})

	_, err := svc.Generate(t.Context(), conversation.GenerateRequest{Provider: "skynet"})

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "skynet", perr.Provider)
}

func TestService_ClientFailureWrapsProviderError(t *testing.T) {
	stub := &stubClient{err: errors.New("quota exceeded")}
	svc := testService(map[string]Client{"openai": stub})

	_, err := svc.Generate(t.Context(), conversation.GenerateRequest{Provider: "openai", Model: "gpt-4o-mini"})

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "quota exceeded")
}

func TestService_RoleMappingFromSpeakerPerspective(t *testing.T) {
	stub := &stubClient{text: "ok"}
	svc := testService(map[string]Client{"anthropic": stub})

	history := []conversation.Message{
		msg(conversation.SenderAI1, "first"),
		msg(conversation.SenderAI2, "second"),
		msg(conversation.SenderSystem, "Error: nope"),
		msg(conversation.SenderAI1, "third"),
	}

	_, err := svc.Generate(t.Context(), conversation.GenerateRequest{
		Provider:  "anthropic",
		Model:     "claude-sonnet-4-5",
		Speaker:   conversation.SenderAI2,
		History:   history,
		MaxTokens: 500,
	})
	require.NoError(t, err)

	// AI2 is speaking: its own turns map to assistant, AI1's to user,
	// system messages are excluded from context.
	got := stub.lastReq.Messages
	require.Len(t, got, 3)
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "first"}, got[0])
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "second"}, got[1])
	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "third"}, got[2])
}

func TestService_SystemPromptFramesSpeakerAndPersona(t *testing.T) {
	stub := &stubClient{text: "ok"}
	svc := testService(map[string]Client{"openai": stub})

	_, err := svc.Generate(t.Context(), conversation.GenerateRequest{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Speaker:  conversation.SenderAI1,
		Persona:  "a grumpy librarian",
	})
	require.NoError(t, err)

	assert.Contains(t, stub.lastReq.System, "You are AI1.")
	assert.Contains(t, stub.lastReq.System, "a grumpy librarian")
	assert.Contains(t, stub.lastReq.System, "conversation with another AI")
}

func TestService_DefaultPersonaWhenEmpty(t *testing.T) {
	stub := &stubClient{text: "ok"}
	svc := testService(map[string]Client{"openai": stub})

	_, err := svc.Generate(t.Context(), conversation.GenerateRequest{
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Speaker:  conversation.SenderAI2,
	})
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.System, "You are a helpful AI assistant.")
}

func TestService_PassesModelAndTokenBudget(t *testing.T) {
	stub := &stubClient{text: "a reply"}
	svc := testService(map[string]Client{"anthropic": stub})

	result, err := svc.Generate(t.Context(), conversation.GenerateRequest{
		Provider:  "anthropic",
		Model:     "claude-sonnet-4-5",
		Speaker:   conversation.SenderAI1,
		MaxTokens: 750,
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", stub.lastReq.Model)
	assert.Equal(t, 750, stub.lastReq.MaxTokens)
	assert.Equal(t, "a reply", result.Text)
}

func TestCountTokens_KnownAndFallbackEncodings(t *testing.T) {
	n := countTokens("gpt-4", "hello world")
	require.NotNil(t, n)
	assert.Positive(t, *n)

	// Unknown model falls back to cl100k_base rather than giving up.
	n = countTokens("claude-sonnet-4-5", "hello world")
	require.NotNil(t, n)
	assert.Positive(t, *n)
}
