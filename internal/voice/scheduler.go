package voice

import (
	"context"
	"fmt"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/intent"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

// Scheduler hands captured transcripts to the meeting sink.
type Scheduler struct {
	parser *intent.Parser
	sink   ports.MeetingSink
}

func NewScheduler(parser *intent.Parser, sink ports.MeetingSink) *Scheduler {
	return &Scheduler{parser: parser, sink: sink}
}

// ScheduleResult reports one transcript handoff.
type ScheduleResult struct {
	Intent            domain.MeetingIntent
	Meeting           domain.Meeting
	Scheduled         bool
	NeedsConfirmation bool
}

// Schedule parses the transcript and submits the intent when a start time
// was derived. Intents without one are returned for confirmation instead of
// being submitted; submission failures are not retried here.
func (s *Scheduler) Schedule(ctx context.Context, transcript string) (ScheduleResult, error) {
	parsed := s.parser.Parse(transcript)
	if parsed.StartTime == nil {
		return ScheduleResult{Intent: parsed, NeedsConfirmation: true}, nil
	}

	meeting, err := s.sink.Submit(ctx, parsed)
	if err != nil {
		return ScheduleResult{Intent: parsed}, fmt.Errorf("submit meeting intent: %w", err)
	}
	return ScheduleResult{Intent: parsed, Meeting: meeting, Scheduled: true}, nil
}
