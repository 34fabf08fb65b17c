package deepgram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"testing"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

func newTestRecognizer(audio *fakeAudioCapture, provider *fakeStreamProvider) *Recognizer {
	return NewRecognizer(audio, provider, RecognizerConfig{
		APIKey:         "dg-key",
		Audio:          ports.AudioConfig{SampleRate: 16000, Channels: 1, InputFormat: "pulse", InputDevice: "default"},
		StreamingGrace: 100 * time.Millisecond,
		IdleTimeout:    time.Second,
	})
}

func awaitOutcome(t *testing.T, c ports.Capture) domain.CaptureOutcome {
	t.Helper()
	select {
	case outcome := <-c.Outcome():
		return outcome
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for capture outcome")
		return domain.CaptureOutcome{}
	}
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRecognizerRequiresAPIKey(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	r := NewRecognizer(audio, newFakeStreamProvider(), RecognizerConfig{APIKey: "   "})

	_, err := r.Start(context.Background())
	if !errors.Is(err, domain.ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", err)
	}
	if audio.startCalls() != 0 {
		t.Fatalf("expected no recorder start, got %d", audio.startCalls())
	}
}

func TestRecognizerTranscribesUtterance(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := newTestRecognizer(audio, provider)

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	stream := provider.waitForSession(t)
	stream.emit(domain.TranscriptKindPartial, "book lunch", false)
	stream.emit(domain.TranscriptKindFinal, "book lunch tomorrow at noon", true)

	outcome := awaitOutcome(t, c)
	if outcome.Err != nil {
		t.Fatalf("unexpected outcome error: %v", outcome.Err)
	}
	if outcome.Transcript != "book lunch tomorrow at noon" {
		t.Fatalf("unexpected transcript: %q", outcome.Transcript)
	}

	gotAudio := audio.lastConfig()
	if gotAudio.SampleRate != 16000 || gotAudio.Channels != 1 || gotAudio.InputFormat != "pulse" {
		t.Fatalf("unexpected audio config: %+v", gotAudio)
	}
	gotStream := provider.lastConfig()
	if gotStream.Encoding != "linear16" || !gotStream.InterimResults || gotStream.SampleRate != 16000 {
		t.Fatalf("unexpected streaming config: %+v", gotStream)
	}

	waitUntil(t, "recorder stop", func() bool { return audio.session.stopCalls() > 0 })
	waitUntil(t, "stream close", func() bool { return stream.closeCalls() > 0 })
}

func TestRecognizerPumpsAudioChunks(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := newTestRecognizer(audio, provider)

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	stream := provider.waitForSession(t)

	audio.session.feed([]byte("chunk-one"))
	audio.session.feed([]byte("chunk-two"))
	waitUntil(t, "chunks forwarded", func() bool { return len(stream.sentChunks()) == 2 })

	sent := stream.sentChunks()
	if string(sent[0]) != "chunk-one" || string(sent[1]) != "chunk-two" {
		t.Fatalf("unexpected chunks: %q %q", sent[0], sent[1])
	}

	stream.emit(domain.TranscriptKindFinal, "done", true)
	awaitOutcome(t, c)
}

func TestRecognizerIdleTimeoutWithoutSpeech(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := NewRecognizer(audio, provider, RecognizerConfig{
		APIKey:         "dg-key",
		IdleTimeout:    40 * time.Millisecond,
		StreamingGrace: 100 * time.Millisecond,
	})

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	provider.waitForSession(t)

	outcome := awaitOutcome(t, c)
	if !errors.Is(outcome.Err, domain.ErrNoSpeech) {
		t.Fatalf("expected no-speech error, got %v", outcome.Err)
	}
}

func TestRecognizerIdleTimeoutKeepsLastPartial(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := NewRecognizer(audio, provider, RecognizerConfig{
		APIKey:         "dg-key",
		IdleTimeout:    40 * time.Millisecond,
		StreamingGrace: 100 * time.Millisecond,
	})

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	stream := provider.waitForSession(t)
	stream.emit(domain.TranscriptKindPartial, "schedule standup", false)

	outcome := awaitOutcome(t, c)
	if outcome.Err != nil {
		t.Fatalf("unexpected outcome error: %v", outcome.Err)
	}
	if outcome.Transcript != "schedule standup" {
		t.Fatalf("unexpected transcript: %q", outcome.Transcript)
	}
}

func TestRecognizerStopSettlesStopped(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := newTestRecognizer(audio, provider)

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	provider.waitForSession(t)

	c.Stop()
	c.Stop()

	outcome := awaitOutcome(t, c)
	if !outcome.Stopped {
		t.Fatalf("expected stopped outcome, got %+v", outcome)
	}
	waitUntil(t, "recorder stop", func() bool { return audio.session.stopCalls() > 0 })
}

func TestRecognizerStopReleasesStalledStream(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	stream := newStalledStreamSession()
	r := NewRecognizer(audio, &stalledStreamProvider{session: stream}, RecognizerConfig{
		APIKey:         "dg-key",
		StreamingGrace: 100 * time.Millisecond,
		IdleTimeout:    time.Second,
	})

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	audio.session.feed([]byte("pcm"))
	waitUntil(t, "pump to enter send", func() bool { return stream.sendCalls() > 0 })

	c.Stop()

	outcome := awaitOutcome(t, c)
	if !outcome.Stopped {
		t.Fatalf("expected stopped outcome, got %+v", outcome)
	}
	if stream.closeCalls() == 0 {
		t.Fatalf("expected the stream to be force closed")
	}
}

func TestRecognizerContextCancelSettlesStopped(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := newTestRecognizer(audio, provider)

	ctx, cancel := context.WithCancel(context.Background())
	c, err := r.Start(ctx)
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	provider.waitForSession(t)

	cancel()

	outcome := awaitOutcome(t, c)
	if !outcome.Stopped {
		t.Fatalf("expected stopped outcome, got %+v", outcome)
	}
}

func TestRecognizerMissingRecorderIsUnsupported(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	audio.startErr = &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}
	r := newTestRecognizer(audio, newFakeStreamProvider())

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	outcome := awaitOutcome(t, c)
	if !errors.Is(outcome.Err, domain.ErrUnsupported) {
		t.Fatalf("expected unsupported error, got %v", outcome.Err)
	}
}

func TestRecognizerRecorderFailureIsDenied(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	audio.startErr = errors.New("device busy")
	r := newTestRecognizer(audio, newFakeStreamProvider())

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	outcome := awaitOutcome(t, c)
	if !errors.Is(outcome.Err, domain.ErrCaptureDenied) {
		t.Fatalf("expected denied error, got %v", outcome.Err)
	}
}

func TestRecognizerStreamStartFailureStopsRecorder(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	provider.startErr = fmt.Errorf("dial transcription stream: %w: %w", domain.ErrCaptureDenied, errors.New("connection refused"))
	r := newTestRecognizer(audio, provider)

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	outcome := awaitOutcome(t, c)
	if !errors.Is(outcome.Err, domain.ErrCaptureDenied) {
		t.Fatalf("expected denied error, got %v", outcome.Err)
	}
	waitUntil(t, "recorder stop", func() bool { return audio.session.stopCalls() > 0 })
}

func TestRecognizerStreamFailureSurfacesDenied(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := newTestRecognizer(audio, provider)

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	stream := provider.waitForSession(t)
	stream.fail(fmt.Errorf("%w: read: connection reset", domain.ErrCaptureDenied))

	outcome := awaitOutcome(t, c)
	if !errors.Is(outcome.Err, domain.ErrCaptureDenied) {
		t.Fatalf("expected denied error, got %v", outcome.Err)
	}
}

func TestRecognizerStreamEndWithFinalsDeliversTranscript(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioCapture()
	provider := newFakeStreamProvider()
	r := newTestRecognizer(audio, provider)

	c, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	stream := provider.waitForSession(t)
	stream.emit(domain.TranscriptKindFinal, "cancel my afternoon", false)
	stream.finish()

	outcome := awaitOutcome(t, c)
	if outcome.Err != nil {
		t.Fatalf("unexpected outcome error: %v", outcome.Err)
	}
	if outcome.Transcript != "cancel my afternoon" {
		t.Fatalf("unexpected transcript: %q", outcome.Transcript)
	}
}

type fakeAudioCapture struct {
	mu       sync.Mutex
	session  *fakeAudioSession
	startErr error
	calls    int
	gotCfg   ports.AudioConfig
}

func newFakeAudioCapture() *fakeAudioCapture {
	return &fakeAudioCapture{session: newFakeAudioSession()}
}

func (f *fakeAudioCapture) Start(_ context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCfg = cfg
	if f.startErr != nil {
		return nil, f.startErr
	}
	return f.session, nil
}

func (f *fakeAudioCapture) startCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAudioCapture) lastConfig() ports.AudioConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotCfg
}

type fakeAudioSession struct {
	mu     sync.Mutex
	chunks chan []byte
	closed bool
	stops  int
}

func newFakeAudioSession() *fakeAudioSession {
	return &fakeAudioSession{chunks: make(chan []byte, 16)}
}

func (s *fakeAudioSession) feed(chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.chunks <- chunk
}

func (s *fakeAudioSession) Read(p []byte) (int, error) {
	chunk, ok := <-s.chunks
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (s *fakeAudioSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	if !s.closed {
		s.closed = true
		close(s.chunks)
	}
	return nil
}

func (s *fakeAudioSession) Close() error { return s.Stop() }

func (s *fakeAudioSession) stopCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type fakeStreamProvider struct {
	mu       sync.Mutex
	startErr error
	sessions chan *fakeStreamSession
	gotCfg   ports.StreamingConfig
}

func newFakeStreamProvider() *fakeStreamProvider {
	return &fakeStreamProvider{sessions: make(chan *fakeStreamSession, 4)}
}

func (f *fakeStreamProvider) StartStreaming(_ context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	f.mu.Lock()
	f.gotCfg = cfg
	err := f.startErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s := newFakeStreamSession()
	f.sessions <- s
	return s, nil
}

func (f *fakeStreamProvider) lastConfig() ports.StreamingConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotCfg
}

func (f *fakeStreamProvider) waitForSession(t *testing.T) *fakeStreamSession {
	t.Helper()
	select {
	case s := <-f.sessions:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for streaming session")
		return nil
	}
}

type fakeStreamSession struct {
	mu        sync.Mutex
	events    chan domain.TranscriptEvent
	sent      [][]byte
	closes    int
	err       error
	done      chan struct{}
	finished  bool
	closeSend int
}

func newFakeStreamSession() *fakeStreamSession {
	return &fakeStreamSession{
		events: make(chan domain.TranscriptEvent, 16),
		done:   make(chan struct{}),
	}
}

func (s *fakeStreamSession) emit(kind domain.TranscriptKind, text string, speechFinal bool) {
	s.events <- domain.TranscriptEvent{Kind: kind, Text: text, IsSpeechFinal: speechFinal}
}

func (s *fakeStreamSession) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.finish()
}

func (s *fakeStreamSession) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	s.finished = true
	close(s.events)
	close(s.done)
}

func (s *fakeStreamSession) SendAudio(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return errors.New("stream finished")
	}
	s.sent = append(s.sent, chunk)
	return nil
}

func (s *fakeStreamSession) CloseSend() error {
	s.mu.Lock()
	s.closeSend++
	s.mu.Unlock()
	s.finish()
	return nil
}

func (s *fakeStreamSession) Events() <-chan domain.TranscriptEvent { return s.events }

func (s *fakeStreamSession) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeStreamSession) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	s.finish()
	return nil
}

func (s *fakeStreamSession) sentChunks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *fakeStreamSession) closeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type stalledStreamProvider struct {
	session *stalledStreamSession
}

func (p *stalledStreamProvider) StartStreaming(_ context.Context, _ ports.StreamingConfig) (ports.StreamingSession, error) {
	return p.session, nil
}

// stalledStreamSession mirrors the live session's write contract after its
// write loop has died: SendAudio parks until the session is closed, and Wait
// settles only once Close runs.
type stalledStreamSession struct {
	mu     sync.Mutex
	events chan domain.TranscriptEvent
	done   chan struct{}
	sends  int
	closes int
	closed bool
}

func newStalledStreamSession() *stalledStreamSession {
	return &stalledStreamSession{
		events: make(chan domain.TranscriptEvent),
		done:   make(chan struct{}),
	}
}

func (s *stalledStreamSession) SendAudio(_ []byte) error {
	s.mu.Lock()
	s.sends++
	s.mu.Unlock()
	<-s.done
	return errors.New("stream closed")
}

func (s *stalledStreamSession) CloseSend() error { return nil }

func (s *stalledStreamSession) Events() <-chan domain.TranscriptEvent { return s.events }

func (s *stalledStreamSession) Wait() error {
	<-s.done
	return nil
}

func (s *stalledStreamSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if !s.closed {
		s.closed = true
		close(s.done)
		close(s.events)
	}
	return nil
}

func (s *stalledStreamSession) sendCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends
}

func (s *stalledStreamSession) closeCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}
