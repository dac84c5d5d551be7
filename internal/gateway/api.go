// ABOUTME: HTTP API handlers for conversations, analytics, exports, and presets
// ABOUTME: Streams conversation events to clients via SSE

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/parley-dev/parley/internal/analytics"
	"github.com/parley-dev/parley/internal/conversation"
	"github.com/parley-dev/parley/internal/export"
)

// CreateConversationRequest is the JSON request body for POST /api/conversations.
// Either a full configuration or a preset ID with optional overrides.
type CreateConversationRequest struct {
	Preset string `json:"preset,omitempty"`
	conversation.Config
}

// CreateConversationResponse is the JSON response for POST /api/conversations.
type CreateConversationResponse struct {
	ConversationID string             `json:"conversation_id"`
	Status         conversation.State `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ControlResponse is the JSON response for pause/resume/stop.
type ControlResponse struct {
	ConversationID string             `json:"conversation_id"`
	Status         conversation.State `json:"status"`
}

// ConversationDetail is the JSON response for GET /api/conversations/{id}.
type ConversationDetail struct {
	ConversationID string                 `json:"conversation_id"`
	Status         conversation.State     `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	Config         conversation.Config    `json:"config"`
	Messages       []conversation.Message `json:"messages"`
	MessageCount   int                    `json:"message_count"`
}

// ConversationSummary is one entry in GET /api/analytics/conversations.
type ConversationSummary struct {
	ConversationID string             `json:"conversation_id"`
	Status         conversation.State `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	MessageCount   int                `json:"message_count"`
	InitialPrompt  string             `json:"initial_prompt"`
}

// handleHealth handles GET /health.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.sendJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// handleCreateConversation handles POST /api/conversations.
// Validates the configuration, registers an orchestrator, and starts its
// loop in the background.
func (g *Gateway) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	cfg, err := g.parseCreateRequest(r.Body)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	orch := conversation.New(uuid.New().String(), *cfg, g.generator, g.logger)
	g.startConversation(orch)

	g.logger.Info("conversation created",
		"conversation_id", orch.ID(),
		"ai1_provider", cfg.AI1.Provider,
		"ai2_provider", cfg.AI2.Provider,
		"message_limit", cfg.MessageLimit,
	)

	g.sendJSON(w, http.StatusCreated, CreateConversationResponse{
		ConversationID: orch.ID(),
		Status:         orch.State(),
		CreatedAt:      orch.CreatedAt(),
	})
}

// parseCreateRequest decodes and validates a creation request, resolving a
// preset when one is named. Override fields in the body win over preset
// values.
func (g *Gateway) parseCreateRequest(body io.Reader) (*conversation.Config, error) {
	var req CreateConversationRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	cfg := req.Config
	if req.Preset != "" {
		p, ok := g.presets.Get(req.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", req.Preset)
		}
		cfg = overridePreset(p.ToConfig(), req.Config)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// overridePreset applies non-zero fields from the request on top of the
// preset's configuration.
func overridePreset(base, override conversation.Config) conversation.Config {
	if override.InitialPrompt != "" {
		base.InitialPrompt = override.InitialPrompt
	}
	if override.MessageLimit != 0 {
		base.MessageLimit = override.MessageLimit
	}
	if override.MessageDelayMS != 0 {
		base.MessageDelayMS = override.MessageDelayMS
	}
	if override.MaxTokensPerResponse != 0 {
		base.MaxTokensPerResponse = override.MaxTokensPerResponse
	}
	if override.AI1.Provider != "" {
		base.AI1 = override.AI1
	}
	if override.AI2.Provider != "" {
		base.AI2 = override.AI2
	}
	return base
}

// handleGetConversation handles GET /api/conversations/{id}.
func (g *Gateway) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	snap := orch.Snapshot()
	g.sendJSON(w, http.StatusOK, ConversationDetail{
		ConversationID: snap.ID,
		Status:         snap.State,
		CreatedAt:      snap.CreatedAt,
		Config:         snap.Config,
		Messages:       snap.Messages,
		MessageCount:   len(snap.Messages),
	})
}

// handlePause handles POST /api/conversations/{id}/pause.
// Pausing is only meaningful while the loop is running.
func (g *Gateway) handlePause(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	if orch.State() != conversation.StateRunning {
		g.sendJSONError(w, http.StatusConflict,
			fmt.Sprintf("cannot pause conversation in state %q", orch.State()))
		return
	}

	orch.Pause()
	g.sendControl(w, orch)
}

// handleResume handles POST /api/conversations/{id}/resume.
func (g *Gateway) handleResume(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	if orch.State().Terminal() {
		g.sendJSONError(w, http.StatusConflict,
			fmt.Sprintf("cannot resume conversation in state %q", orch.State()))
		return
	}

	orch.Resume()
	g.sendControl(w, orch)
}

// handleStop handles POST /api/conversations/{id}/stop.
func (g *Gateway) handleStop(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	orch.Stop()
	g.sendControl(w, orch)
}

// handleStreamEvents handles GET /api/conversations/{id}/events.
// Replays the transcript so far, then streams live events as SSE until the
// conversation reaches a terminal state or the client disconnects.
func (g *Gateway) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	flusher, fok := w.(http.Flusher)
	if !fok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	for ev := range orch.Subscribe(r.Context()) {
		switch ev.Type {
		case conversation.EventMessage:
			g.writeSSEEvent(w, "message", ev.Message)
		case conversation.EventStatusUpdate:
			g.writeSSEEvent(w, "status_update", map[string]string{"status": string(ev.State)})
		}
		flusher.Flush()
	}
}

// handleDownload handles GET /api/conversations/{id}/download.
// Returns the transcript as a JSON attachment.
func (g *Gateway) handleDownload(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	now := time.Now()
	payload := export.BuildJSON(orch.Snapshot(), now)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.JSONFilename(orch.ID(), now)))
	json.NewEncoder(w).Encode(payload)
}

// handleTranscript handles GET /api/conversations/{id}/transcript.
// Returns the transcript rendered as a standalone HTML page.
func (g *Gateway) handleTranscript(w http.ResponseWriter, r *http.Request) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return
	}

	html, err := export.RenderTranscript(orch.Snapshot())
	if err != nil {
		g.logger.Error("failed to render transcript", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleAnalyticsList handles GET /api/analytics/conversations.
// Returns summaries of all known conversations, newest first.
func (g *Gateway) handleAnalyticsList(w http.ResponseWriter, r *http.Request) {
	orchs := g.registry.List()

	summaries := make([]ConversationSummary, 0, len(orchs))
	for _, o := range orchs {
		summaries = append(summaries, ConversationSummary{
			ConversationID: o.ID(),
			Status:         o.State(),
			CreatedAt:      o.CreatedAt(),
			MessageCount:   o.MessageCount(),
			InitialPrompt:  o.Config().InitialPrompt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})

	g.sendJSON(w, http.StatusOK, map[string]any{"conversations": summaries})
}

// handleAnalyticsDetail handles GET /api/analytics/{id}.
func (g *Gateway) handleAnalyticsDetail(w http.ResponseWriter, r *http.Request) {
	report, ok := g.analyticsFor(w, r)
	if !ok {
		return
	}
	g.sendJSON(w, http.StatusOK, report)
}

// handleAnalyticsReport handles GET /api/analytics/{id}/report.
// Returns the analytics rendered as a standalone HTML page.
func (g *Gateway) handleAnalyticsReport(w http.ResponseWriter, r *http.Request) {
	report, ok := g.analyticsFor(w, r)
	if !ok {
		return
	}

	html, err := export.RenderReport(report)
	if err != nil {
		g.logger.Error("failed to render analytics report", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.ReportFilename(report.ConversationID, time.Now())))
	w.Write(html)
}

// analyticsFor resolves the conversation and computes its analytics.
// Conversations without any messages yet cannot be analyzed.
func (g *Gateway) analyticsFor(w http.ResponseWriter, r *http.Request) (analytics.Report, bool) {
	orch, ok := g.lookup(w, r)
	if !ok {
		return analytics.Report{}, false
	}

	snap := orch.Snapshot()
	if len(snap.Messages) == 0 {
		g.sendJSONError(w, http.StatusBadRequest, "conversation has no messages to analyze")
		return analytics.Report{}, false
	}

	return analytics.Analyze(snap.ID, snap.Messages), true
}

// handleListPresets handles GET /api/presets.
func (g *Gateway) handleListPresets(w http.ResponseWriter, r *http.Request) {
	g.sendJSON(w, http.StatusOK, map[string]any{"presets": g.presets.List()})
}

// lookup resolves the {id} path value to an orchestrator, writing a 404
// when it is unknown.
func (g *Gateway) lookup(w http.ResponseWriter, r *http.Request) (*conversation.Orchestrator, bool) {
	orch, err := g.registry.Get(r.PathValue("id"))
	if errors.Is(err, conversation.ErrNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return nil, false
	}
	if err != nil {
		g.logger.Error("failed to look up conversation", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return orch, true
}

func (g *Gateway) sendControl(w http.ResponseWriter, orch *conversation.Orchestrator) {
	g.sendJSON(w, http.StatusOK, ControlResponse{
		ConversationID: orch.ID(),
		Status:         orch.State(),
	})
}

// sendJSON writes a JSON response with the given status code.
func (g *Gateway) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeSSEEvent writes a single SSE event to the response writer.
func (g *Gateway) writeSSEEvent(w http.ResponseWriter, event string, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		g.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", dataJSON)
}
