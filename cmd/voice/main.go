// Command voice is a terminal push-to-talk client. Enter toggles the session
// through greeting, capture, and stop; transcripts are parsed and submitted
// to the scheduling API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/bootstrap"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/logger"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/voice"
)

func main() {
	log := logger.Default()
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("voice client failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := &consoleSink{out: os.Stdout, transcripts: make(chan string, 8)}
	services, err := bootstrap.BuildAssistant(log, sink)
	if err != nil {
		return err
	}
	defer services.Session.Close()

	go scheduleLoop(ctx, services.Scheduler, sink.transcripts, os.Stdout)

	fmt.Println("Press Enter to talk, Enter again to stop. Type q to quit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok || line == "q" || line == "quit" {
				return nil
			}
			if err := services.Session.Interact(); err != nil {
				if errors.Is(err, domain.ErrUnsupported) {
					return err
				}
				log.Error("gesture failed", "error", err)
			}
		}
	}
}

func scheduleLoop(ctx context.Context, scheduler *voice.Scheduler, transcripts <-chan string, out io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		case transcript := <-transcripts:
			result, err := scheduler.Schedule(ctx, transcript)
			if err != nil {
				fmt.Fprintf(out, "could not schedule: %v\n", err)
				continue
			}
			if result.NeedsConfirmation {
				fmt.Fprintf(out, "heard %q but no day or time; try again with both.\n", result.Intent.Title)
				continue
			}
			fmt.Fprintf(out, "scheduled %q for %s (%d min)\n",
				result.Meeting.Title,
				result.Meeting.StartTime.Local().Format("Mon Jan 2 15:04"),
				result.Meeting.DurationMinutes)
		}
	}
}

// consoleSink prints session events and hands transcripts to the scheduler
// loop. Transcript forwarding never blocks the session's emit goroutine.
type consoleSink struct {
	out         io.Writer
	transcripts chan string
}

func (s *consoleSink) PhaseChanged(phase domain.Phase, reason domain.PhaseReason) {
	fmt.Fprintf(s.out, "[%s] %s\n", phase, voice.PhaseMessage(phase, reason))
}

func (s *consoleSink) Transcript(text string) {
	fmt.Fprintf(s.out, "heard: %q\n", text)
	select {
	case s.transcripts <- text:
	default:
		fmt.Fprintln(s.out, "scheduler busy; transcript dropped")
	}
}

func (s *consoleSink) SessionError(_ domain.ErrorCode, message string) {
	fmt.Fprintf(s.out, "error: %s\n", message)
}
