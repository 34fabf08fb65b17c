package deepgram

import (
	"testing"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

func TestUtteranceJoinsFinalSegments(t *testing.T) {
	t.Parallel()

	u := &utterance{}
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "book a sync"})
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "tomorrow at noon"})

	if got := u.text(); got != "book a sync tomorrow at noon" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestUtteranceFallsBackToLatestPartial(t *testing.T) {
	t.Parallel()

	u := &utterance{}
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "book a"})
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "book a sync"})

	if got := u.text(); got != "book a sync" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestUtteranceIgnoresBlankEvents(t *testing.T) {
	t.Parallel()

	u := &utterance{}
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "   "})
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: ""})

	if got := u.text(); got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestUtteranceDropsPartialAlreadyFinalized(t *testing.T) {
	t.Parallel()

	u := &utterance{}
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "plan lunch friday"})
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "friday"})

	if got := u.text(); got != "plan lunch friday" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestUtteranceAppendsDanglingPartial(t *testing.T) {
	t.Parallel()

	u := &utterance{}
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, Text: "move standup"})
	u.observe(domain.TranscriptEvent{Kind: domain.TranscriptKindPartial, Text: "to thursday afternoon"})

	if got := u.text(); got != "move standup to thursday afternoon" {
		t.Fatalf("unexpected text: %q", got)
	}
}
