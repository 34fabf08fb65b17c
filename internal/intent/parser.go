// Package intent turns raw speech transcripts into structured meeting
// requests. Parsing is deterministic and total: every input yields a usable
// MeetingIntent, with the confidence label recording how much was recognized.
package intent

import (
	"regexp"
	"strings"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

// FallbackTitle labels intents whose transcript carried no usable title span.
const FallbackTitle = "Untitled Meeting"

// DefaultDurationMinutes applies when no duration phrase is recognized.
const DefaultDurationMinutes = 30

// Parser derives MeetingIntent values from transcripts. The zero clock is the
// wall clock; tests inject a fixed one.
type Parser struct {
	now func() time.Time
}

// NewParser returns a parser bound to the wall clock.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock returns a parser with an injected clock.
func NewParserWithClock(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse maps a transcript to a MeetingIntent. It never fails; unrecognized
// input degrades to a fallback intent with no start time.
func (p *Parser) Parse(transcript string) domain.MeetingIntent {
	text := normalize(transcript)
	now := p.now()

	date, dateOK := matchDate(text, now)
	clock, clockOK := matchTime(text)
	start, confidence := combineMatches(date, dateOK, clock, clockOK, now)

	cut := len(text)
	var claimed []span
	if dateOK {
		claimed = append(claimed, span{date.pos, date.pos + date.length})
		if date.pos < cut {
			cut = date.pos
		}
	}
	if clockOK {
		claimed = append(claimed, span{clock.pos, clock.pos + clock.length})
		if clock.pos < cut {
			cut = clock.pos
		}
	}

	minutes, hasDuration := matchDuration(text, claimed)
	if !hasDuration {
		if clockOK && clock.rangeMinutes > 0 {
			minutes = clock.rangeMinutes
		} else {
			minutes = DefaultDurationMinutes
		}
	}

	return domain.MeetingIntent{
		Title:           extractTitle(text, cut),
		StartTime:       start,
		DurationMinutes: minutes,
		Confidence:      confidence,
		Notes:           strings.TrimSpace(transcript),
	}
}

var (
	whitespaceRE     = regexp.MustCompile(`\s+`)
	trailingFillerRE = regexp.MustCompile(`(?:^|\s)(?:please|okay|ok|thanks|thank you)[.,!?]*$`)
)

func normalize(transcript string) string {
	text := strings.ToLower(strings.TrimSpace(transcript))
	text = whitespaceRE.ReplaceAllString(text, " ")
	for {
		trimmed := trailingFillerRE.ReplaceAllString(text, "")
		trimmed = strings.TrimRight(trimmed, " .,!?")
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

// Trigger phrases that introduce a title span. Ordered; the first match wins.
var triggerREs = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:schedule|set up|book|arrange|plan)\s+(?:(?:a|an|the)\s+)?(?:(?:meeting|call|appointment|event|sync)\s+)?(?:(?:about|with|for|regarding)\s+)?`),
	regexp.MustCompile(`\b(?:meeting|call|appointment)\s+(?:about|with|for|regarding)\s+`),
}

// Words that cannot carry a title on their own.
var titleStopWords = map[string]bool{
	"a": true, "an": true, "the": true, "my": true, "new": true,
	"meeting": true, "call": true, "appointment": true, "event": true,
	"schedule": true, "book": true, "set": true, "up": true,
	"arrange": true, "plan": true,
}

var leadingDropWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"about": true, "with": true, "for": true, "regarding": true,
}

var trailingDropWords = map[string]bool{
	"on": true, "at": true, "for": true, "from": true, "to": true,
	"about": true, "with": true, "in": true, "by": true, "the": true,
	"a": true, "an": true,
}

// extractTitle takes the span after the first trigger phrase up to the first
// recognized date/time phrase, then strips duration phrases and dangling
// words. An empty or stop-word-only residue falls back to a generic label.
func extractTitle(text string, cut int) string {
	start := 0
	for _, re := range triggerREs {
		loc := re.FindStringIndex(text)
		if loc != nil && loc[1] <= cut {
			start = loc[1]
			break
		}
	}
	if start > cut {
		start = cut
	}

	span := stripDurationPhrases(text[start:cut])
	span = strings.Trim(span, " ,.;:!?-")
	words := strings.Fields(span)
	for len(words) > 0 && leadingDropWords[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && trailingDropWords[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return FallbackTitle
	}

	meaningful := false
	for _, word := range words {
		if !titleStopWords[word] {
			meaningful = true
			break
		}
	}
	if !meaningful {
		return FallbackTitle
	}
	return strings.Join(words, " ")
}
