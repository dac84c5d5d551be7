// ABOUTME: Builds downloadable artifacts from a conversation snapshot
// ABOUTME: JSON exports carry a version tag so consumers can detect shape changes

package export

import (
	"fmt"
	"time"

	"github.com/parley-dev/parley/internal/conversation"
)

// Version tags the JSON export shape.
const Version = "1.0"

const filenameTimeLayout = "20060102_150405"

// JSONExport is the full downloadable record of one conversation.
type JSONExport struct {
	ConversationID  string                 `json:"conversation_id"`
	Configuration   conversation.Config    `json:"configuration"`
	Status          conversation.State     `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	Messages        []conversation.Message `json:"messages"`
	ExportTimestamp time.Time              `json:"export_timestamp"`
	ExportVersion   string                 `json:"export_version"`
}

// BuildJSON assembles the export payload for a snapshot. Messages are
// never nil so the JSON field is always an array.
func BuildJSON(snap conversation.Snapshot, now time.Time) JSONExport {
	messages := snap.Messages
	if messages == nil {
		messages = []conversation.Message{}
	}
	return JSONExport{
		ConversationID:  snap.ID,
		Configuration:   snap.Config,
		Status:          snap.State,
		CreatedAt:       snap.CreatedAt.UTC(),
		Messages:        messages,
		ExportTimestamp: now.UTC(),
		ExportVersion:   Version,
	}
}

// JSONFilename is the suggested download name for a conversation export.
func JSONFilename(conversationID string, now time.Time) string {
	return fmt.Sprintf("parley_conversation_%s_%s.json",
		shortID(conversationID), now.UTC().Format(filenameTimeLayout))
}

// ReportFilename is the suggested download name for an analytics report.
func ReportFilename(conversationID string, now time.Time) string {
	return fmt.Sprintf("parley_analytics_%s_%s.html",
		shortID(conversationID), now.UTC().Format(filenameTimeLayout))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
