package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

// Player plays encoded audio clips by piping them to an ffplay-style command
// reading from stdin.
type Player struct {
	command string
}

func NewPlayer(command string) *Player {
	if command == "" {
		command = "ffplay"
	}
	return &Player{command: command}
}

func (p *Player) Play(ctx context.Context, clip domain.AudioClip) (ports.Playback, error) {
	if len(clip.Data) == 0 {
		return nil, errors.New("audio clip is empty")
	}

	args := []string{
		"-nodisp",
		"-autoexit",
		"-hide_banner",
		"-loglevel", "error",
		"-i", "-",
	}

	cmd := exec.CommandContext(ctx, p.command, args...)
	cmd.Stdin = bytes.NewReader(clip.Data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start audio player: %w", err)
	}

	pb := &playback{
		process: cmd.Process,
		done:    make(chan struct{}),
	}

	go func() {
		err := cmd.Wait()
		pb.mu.Lock()
		if err != nil && !pb.stopped {
			if stderr.Len() > 0 {
				err = fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
			}
			pb.err = err
		}
		pb.mu.Unlock()
		close(pb.done)
	}()

	return pb, nil
}

type playback struct {
	process *os.Process
	done    chan struct{}

	mu      sync.Mutex
	stopped bool
	err     error

	stopOnce sync.Once
}

func (p *playback) Done() <-chan struct{} { return p.done }

func (p *playback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Stop interrupts the player and waits for it to exit. Exit status from an
// interrupted player is not reported as a playback error.
func (p *playback) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()

		if p.process != nil {
			_ = p.process.Signal(os.Interrupt)
		}

		select {
		case <-p.done:
		case <-time.After(stopGrace):
			if p.process != nil {
				_ = p.process.Kill()
			}
			<-p.done
		}
	})
}
