// ABOUTME: Renders conversation transcripts and analytics reports as HTML
// ABOUTME: Content is authored as markdown and converted with goldmark

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/parley-dev/parley/internal/analytics"
	"github.com/parley-dev/parley/internal/conversation"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 54rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a1a; }
h1, h2 { border-bottom: 1px solid #ddd; padding-bottom: 0.3rem; }
blockquote { border-left: 3px solid #888; margin-left: 0; padding-left: 1rem; color: #444; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`

var page = template.Must(template.New("page").Parse(pageTemplate))

type pageData struct {
	Title string
	Body  template.HTML
}

// RenderTranscript produces a standalone HTML page of the conversation.
func RenderTranscript(snap conversation.Snapshot) ([]byte, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# Conversation %s\n\n", shortID(snap.ID))
	fmt.Fprintf(&md, "**Status:** %s  \n", snap.State)
	fmt.Fprintf(&md, "**Started:** %s  \n", snap.CreatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&md, "**Initial prompt:** %s\n\n", snap.Config.InitialPrompt)

	for _, m := range snap.Messages {
		fmt.Fprintf(&md, "## %s · %s\n\n", speakerLabel(m.Sender, snap.Config),
			m.Timestamp.UTC().Format("15:04:05"))
		fmt.Fprintf(&md, "%s\n\n", m.Content)
	}
	if len(snap.Messages) == 0 {
		md.WriteString("_No messages yet._\n")
	}

	return renderPage(fmt.Sprintf("Conversation %s", shortID(snap.ID)), md.String())
}

// RenderReport produces a standalone HTML page of the analytics for one
// conversation.
func RenderReport(report analytics.Report) ([]byte, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# Analytics Report · %s\n\n", shortID(report.ConversationID))

	md.WriteString("## Overview\n\n")
	fmt.Fprintf(&md, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&md, "| Readability (grade level) | %.1f |\n", report.ReadabilityScore)
	fmt.Fprintf(&md, "| Vocabulary richness | %.2f |\n", report.VocabularyRichness)
	fmt.Fprintf(&md, "| Avg response time | %.1fs |\n", report.AvgResponseTimeSeconds)
	if report.Language != "" {
		fmt.Fprintf(&md, "| Language | %s |\n", report.Language)
	}
	md.WriteString("\n")

	if len(report.MessageCounts) > 0 {
		md.WriteString("## Messages per speaker\n\n| Speaker | Messages | Question ratio |\n|---|---|---|\n")
		for _, speaker := range []string{"ai1", "ai2"} {
			if count, ok := report.MessageCounts[speaker]; ok {
				fmt.Fprintf(&md, "| %s | %d | %.0f%% |\n",
					strings.ToUpper(speaker), count, report.QuestionRatio[speaker]*100)
			}
		}
		md.WriteString("\n")
	}

	if len(report.TopicKeywords) > 0 {
		md.WriteString("## Top keywords\n\n")
		for _, kw := range report.TopicKeywords {
			fmt.Fprintf(&md, "- **%s** (%d)\n", kw.Text, kw.Value)
		}
		md.WriteString("\n")
	}

	if len(report.SentimentOverTime) > 0 {
		md.WriteString("## Sentiment over time\n\n| Message | Speaker | Polarity | Subjectivity |\n|---|---|---|---|\n")
		for _, p := range report.SentimentOverTime {
			fmt.Fprintf(&md, "| %d | %s | %+.2f | %.2f |\n",
				p.MessageIndex+1, p.Speaker, p.Polarity, p.Subjectivity)
		}
	}

	return renderPage(fmt.Sprintf("Analytics %s", shortID(report.ConversationID)), md.String())
}

func renderPage(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	var out bytes.Buffer
	if err := page.Execute(&out, pageData{
		Title: title,
		Body:  template.HTML(body.String()),
	}); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return out.Bytes(), nil
}

// speakerLabel names a sender using its configured model for readability.
func speakerLabel(sender conversation.Sender, cfg conversation.Config) string {
	switch sender {
	case conversation.SenderAI1:
		return fmt.Sprintf("AI1 (%s)", cfg.AI1.Model)
	case conversation.SenderAI2:
		return fmt.Sprintf("AI2 (%s)", cfg.AI2.Model)
	default:
		return "System"
	}
}
