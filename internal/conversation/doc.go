// Package conversation implements the AI-to-AI conversation core: the data
// model, the per-conversation event bus, the turn-taking orchestrator and
// the process-wide registry.
//
// # Orchestrator
//
// Each conversation is owned by exactly one Orchestrator. Its Run loop is
// the sole writer of the message sequence and drives the state machine:
//
//	idle → running → {paused ⇄ running} → {completed, error}
//
// Pause and resume are cooperative: the loop consults a gate between
// turns, never mid-generation, so an in-flight response is never
// discarded. Stop flips the visible state to completed synchronously
// while the loop converges asynchronously: callers observe an immediate
// effect, and the terminal-sink rule in setState keeps the dual write
// consistent.
//
// # Event streaming
//
// Subscribers get a replay of the transcript accumulated so far followed
// by live events in exact publish order. The Bus keeps an unbounded
// ordered buffer with one cursor per subscriber, so slow or disconnecting
// subscribers never lose events or disturb the loop. A stream ends
// cleanly after delivering a terminal status update.
//
// # Registry
//
// The Registry maps conversation ids to orchestrators and sweeps out
// finished conversations once they outlive the retention window. It is an
// explicit object injected into the serving layer, never a global.
package conversation
