package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

const (
	// startupWindow is how long the recorder must survive before the
	// session is considered live. Catches missing devices immediately.
	startupWindow = 250 * time.Millisecond

	// stopGrace is how long a stopped recorder gets to exit after an
	// interrupt before it is killed.
	stopGrace = 1200 * time.Millisecond
)

// Recorder captures raw PCM from the microphone by running an ffmpeg-style
// command that writes s16le audio to stdout.
type Recorder struct {
	command string
}

func NewRecorder(command string) *Recorder {
	if command == "" {
		command = "ffmpeg"
	}
	return &Recorder{command: command}
}

func (r *Recorder) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}

	cmd := exec.CommandContext(ctx, r.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("create recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start audio recorder: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("audio recorder exited before capture started: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, errors.New("audio recorder exited before capture started")
	case <-time.After(startupWindow):
	}

	return &recorderSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type recorderSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *recorderSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *recorderSession) Close() error {
	return s.Stop()
}

func (s *recorderSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(stopGrace):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			if s.stopErr == nil {
				s.stopErr = closeErr
			}
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, strings.TrimSpace(s.stderr.String()))
		}
	})

	return s.stopErr
}

// normalizeStopErr drops the exit error a recorder reports when it is
// interrupted on purpose.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}
