package deepgram

import (
	"strings"
	"sync"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

// utterance accumulates one capture's transcript events. Finalized segments
// join in arrival order; the newest partial stands in when the stream ends
// before a final lands, so trailing speech is not lost.
type utterance struct {
	mu       sync.Mutex
	segments []string
	latest   string
}

func (u *utterance) observe(event domain.TranscriptEvent) {
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.latest = text
	if event.Kind == domain.TranscriptKindFinal {
		u.segments = append(u.segments, text)
	}
}

func (u *utterance) text() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	joined := strings.TrimSpace(strings.Join(u.segments, " "))
	switch {
	case joined == "":
		return u.latest
	case u.latest == "", strings.HasSuffix(joined, u.latest):
		return joined
	case len(u.latest) > len(joined):
		// A partial that outgrew the finalized text carries speech the
		// stream never finalized.
		return strings.TrimSpace(joined + " " + u.latest)
	default:
		return joined
	}
}
