// ABOUTME: Linguistic analytics over a finished conversation transcript
// ABOUTME: Pure functions; system messages are excluded from every metric

package analytics

import (
	"sort"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"

	"github.com/parley-dev/parley/internal/conversation"
)

const topKeywordCount = 30

// SentimentPoint is the sentiment of one message, indexed by its position
// in the full transcript.
type SentimentPoint struct {
	MessageIndex int                 `json:"message_index"`
	Polarity     float64             `json:"sentiment_polarity"`
	Subjectivity float64             `json:"sentiment_subjectivity"`
	Speaker      conversation.Sender `json:"speaker"`
}

// WordFrequency is one keyword with its occurrence count.
type WordFrequency struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// Report is the full set of metrics computed over one transcript.
type Report struct {
	ConversationID         string             `json:"conversation_id"`
	SentimentOverTime      []SentimentPoint   `json:"sentiment_over_time"`
	TopicKeywords          []WordFrequency    `json:"topic_keywords"`
	ReadabilityScore       float64            `json:"readability_score"`
	VocabularyRichness     float64            `json:"vocabulary_richness"`
	MessageCounts          map[string]int     `json:"message_counts"`
	AvgResponseTimeSeconds float64            `json:"avg_response_time_seconds"`
	QuestionRatio          map[string]float64 `json:"question_ratio"`
	Language               string             `json:"language"`
}

// Analyze computes every metric for the given transcript. An empty
// transcript yields an empty report rather than an error.
func Analyze(conversationID string, messages []conversation.Message) Report {
	report := Report{
		ConversationID: conversationID,
		MessageCounts:  map[string]int{},
		QuestionRatio:  map[string]float64{},
	}
	if len(messages) == 0 {
		return report
	}

	spoken := lo.Filter(messages, func(m conversation.Message, _ int) bool {
		return m.Sender != conversation.SenderSystem
	})
	allText := strings.Join(lo.Map(spoken, func(m conversation.Message, _ int) string {
		return m.Content
	}), " ")

	report.SentimentOverTime = sentimentOverTime(messages)
	report.TopicKeywords = topKeywords(allText)
	report.ReadabilityScore = fleschKincaidGrade(allText)
	report.VocabularyRichness = typeTokenRatio(allText)
	report.MessageCounts = countBySpeaker(spoken)
	report.AvgResponseTimeSeconds = avgResponseTime(messages)
	report.QuestionRatio = questionRatios(spoken)
	report.Language = dominantLanguage(allText)
	return report
}

// sentimentOverTime scores each non-system message, keeping the index
// into the full transcript so charts line up with the message list.
func sentimentOverTime(messages []conversation.Message) []SentimentPoint {
	var points []SentimentPoint
	for i, m := range messages {
		if m.Sender == conversation.SenderSystem {
			continue
		}
		polarity, subjectivity := scoreSentiment(m.Content)
		points = append(points, SentimentPoint{
			MessageIndex: i,
			Polarity:     polarity,
			Subjectivity: subjectivity,
			Speaker:      m.Sender,
		})
	}
	return points
}

// topKeywords counts non-stopword tokens longer than two characters and
// returns the most frequent, ties broken alphabetically for stable output.
func topKeywords(text string) []WordFrequency {
	tokens := lo.Filter(tokenize(text), func(w string, _ int) bool {
		return len(w) > 2 && !stopwords[w]
	})
	counts := lo.CountValues(tokens)

	freqs := make([]WordFrequency, 0, len(counts))
	for word, count := range counts {
		freqs = append(freqs, WordFrequency{Text: word, Value: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Value != freqs[j].Value {
			return freqs[i].Value > freqs[j].Value
		}
		return freqs[i].Text < freqs[j].Text
	})
	if len(freqs) > topKeywordCount {
		freqs = freqs[:topKeywordCount]
	}
	return freqs
}

// fleschKincaidGrade estimates the US grade level of the text. Clamped to
// zero for degenerate input.
func fleschKincaidGrade(text string) float64 {
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}
	sentences := countSentences(text)
	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	grade := 0.39*(float64(len(words))/float64(sentences)) +
		11.8*(float64(syllables)/float64(len(words))) - 15.59
	if grade < 0 {
		return 0
	}
	return grade
}

// typeTokenRatio is unique words over total words, ignoring one-letter
// tokens.
func typeTokenRatio(text string) float64 {
	tokens := lo.Filter(tokenize(text), func(w string, _ int) bool {
		return len(w) > 1
	})
	if len(tokens) == 0 {
		return 0
	}
	return float64(len(lo.Uniq(tokens))) / float64(len(tokens))
}

func countBySpeaker(spoken []conversation.Message) map[string]int {
	counts := map[string]int{}
	for _, m := range spoken {
		counts[string(m.Sender)]++
	}
	return counts
}

// avgResponseTime averages the gaps between consecutive non-system
// messages.
func avgResponseTime(messages []conversation.Message) float64 {
	var total float64
	var n int
	for i := 1; i < len(messages); i++ {
		prev, cur := messages[i-1], messages[i]
		if prev.Sender == conversation.SenderSystem || cur.Sender == conversation.SenderSystem {
			continue
		}
		if gap := cur.Timestamp.Sub(prev.Timestamp).Seconds(); gap > 0 {
			total += gap
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// questionRatios is the fraction of each speaker's messages that end with
// a question mark.
func questionRatios(spoken []conversation.Message) map[string]float64 {
	totals := map[string]int{}
	questions := map[string]int{}
	for _, m := range spoken {
		speaker := string(m.Sender)
		totals[speaker]++
		if strings.HasSuffix(strings.TrimSpace(m.Content), "?") {
			questions[speaker]++
		}
	}
	ratios := map[string]float64{}
	for speaker, total := range totals {
		ratios[speaker] = float64(questions[speaker]) / float64(total)
	}
	return ratios
}

// dominantLanguage is the ISO 639-1 code of the detected language, empty
// when detection is unreliable.
func dominantLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// tokenize lowercases and splits on anything that is not a letter or
// digit, with apostrophes stripped so contractions stay one token.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\'' || r == '’' {
			return -1
		}
		return r
	}, strings.ToLower(text))

	return strings.FieldsFunc(cleaned, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func countSentences(text string) int {
	n := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

// countSyllables estimates syllables as vowel groups, discounting a
// trailing silent e. Always at least one.
func countSyllables(word string) int {
	vowels := "aeiouy"
	count := 0
	prevVowel := false
	for _, r := range word {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}
	if strings.HasSuffix(word, "e") && count > 1 && !strings.HasSuffix(word, "le") {
		count--
	}
	if count == 0 {
		return 1
	}
	return count
}
