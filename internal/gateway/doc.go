// Package gateway exposes the conversation engine over HTTP.
//
// # Overview
//
// The gateway wires the conversation registry and the provider service to
// a JSON API and an SSE stream. It owns the HTTP server lifecycle and the
// background context that conversation loops run under.
//
// # Endpoints
//
// Conversations:
//
//	POST /api/conversations              create and start a conversation
//	GET  /api/conversations/{id}         full snapshot with transcript
//	POST /api/conversations/{id}/pause   pause before the next turn
//	POST /api/conversations/{id}/resume  resume a paused conversation
//	POST /api/conversations/{id}/stop    stop permanently
//	GET  /api/conversations/{id}/events  SSE stream of messages and status
//	GET  /api/conversations/{id}/download  JSON export attachment
//	GET  /api/conversations/{id}/transcript  HTML transcript
//
// Analytics:
//
//	GET /api/analytics/conversations     summaries, newest first
//	GET /api/analytics/{id}              full analytics report
//	GET /api/analytics/{id}/report       HTML analytics report
//
// Presets:
//
//	GET /api/presets                     list the preset library
//
// # Event Stream
//
// GET /api/conversations/{id}/events replays the transcript so far as
// "message" events, then streams live events. The stream ends after the
// terminal "status_update" event or when the client disconnects. A
// disconnect cancels only that subscriber, never the conversation.
//
// # Middleware
//
// All /api routes pass through per-client-IP token bucket rate limiting
// with separate budgets for listing, analytics, and export routes, plus
// CORS handling for configured browser origins.
package gateway
