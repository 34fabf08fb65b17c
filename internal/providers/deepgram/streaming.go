package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/config"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
)

const (
	defaultAPIBase = "https://api.deepgram.com/v1"
	defaultModel   = "nova-2"
)

// Provider implements ports.TranscriptionProvider against Deepgram's live
// transcription websocket. Start and stream failures carry the domain capture
// sentinels, so callers classify them with errors.Is instead of re-wrapping.
type Provider struct {
	cfg config.DeepgramConfig
	log *slog.Logger
}

func NewProvider(cfg config.DeepgramConfig, log *slog.Logger) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{cfg: cfg, log: log}
}

func (p *Provider) StartStreaming(ctx context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY is not configured: %w", domain.ErrUnsupported)
	}

	endpoint, err := listenURL(p.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, headers)
	if err != nil {
		return nil, fmt.Errorf("dial transcription stream: %w: %w", domain.ErrCaptureDenied, err)
	}
	p.log.Debug("transcription stream connected",
		"model", p.cfg.Model, "sample_rate", cfg.SampleRate, "channels", cfg.Channels)

	session := &listenSession{
		conn:     conn,
		log:      p.log,
		events:   make(chan domain.TranscriptEvent, 64),
		frames:   make(chan []byte, 32),
		sendDone: make(chan struct{}),
		done:     make(chan struct{}),
	}

	session.wg.Add(2)
	go session.readResults()
	go session.writeFrames()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
		session.log.Debug("transcription stream closed")
	}()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

// listenSession is one live websocket to the /listen endpoint. A read loop
// and a write loop share the connection; events and done close only after
// both loops have exited, so Wait and Close observe the final fault.
type listenSession struct {
	conn *websocket.Conn
	log  *slog.Logger

	events   chan domain.TranscriptEvent
	frames   chan []byte
	sendDone chan struct{}
	done     chan struct{}

	wg sync.WaitGroup

	faultMu  sync.Mutex
	faultErr error

	closeSendOnce sync.Once
	closeOnce     sync.Once
}

// SendAudio queues one frame for the write loop. It blocks while the frame
// buffer is full and returns once the send side or the whole session is
// closed; a sender parked here is always released by Close.
func (s *listenSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	select {
	case <-s.sendDone:
		return errors.New("audio stream is already closed")
	default:
	}

	frame := append([]byte(nil), chunk...)
	select {
	case s.frames <- frame:
		return nil
	case <-s.sendDone:
		return errors.New("audio stream is already closed")
	case <-s.done:
		if err := s.fault(); err != nil {
			return err
		}
		return errors.New("session closed")
	}
}

// CloseSend half-closes the session: buffered frames still go out, followed
// by the CloseStream message that asks the service to flush final results.
func (s *listenSession) CloseSend() error {
	s.closeSendOnce.Do(func() { close(s.sendDone) })
	return nil
}

func (s *listenSession) Events() <-chan domain.TranscriptEvent {
	return s.events
}

func (s *listenSession) Wait() error {
	<-s.done
	return s.fault()
}

func (s *listenSession) Close() error {
	s.closeOnce.Do(func() {
		_ = s.CloseSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.fault()
}

func (s *listenSession) fault() error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	return s.faultErr
}

// record keeps the first fault of the session. A normal websocket close is
// not a fault; everything else is classified as a denied capture here, at the
// provider boundary, so the recognizer only adds context.
func (s *listenSession) record(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if s.faultErr == nil {
		s.faultErr = fmt.Errorf("%w: %w", domain.ErrCaptureDenied, err)
		s.log.Warn("transcription stream fault", "error", err)
	}
}

func (s *listenSession) writeFrames() {
	defer s.wg.Done()

	for {
		select {
		case frame := <-s.frames:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.record(fmt.Errorf("send audio frame: %w", err))
				return
			}
		case <-s.sendDone:
			s.flushFrames()
			return
		}
	}
}

// flushFrames drains whatever was buffered before the send side closed, then
// tells the service the utterance is over.
func (s *listenSession) flushFrames() {
	for {
		select {
		case frame := <-s.frames:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				s.record(fmt.Errorf("send audio frame: %w", err))
				return
			}
		default:
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
				s.record(fmt.Errorf("finish stream: %w", err))
			}
			return
		}
	}
}

func (s *listenSession) readResults() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.record(fmt.Errorf("read transcription result: %w", err))
			return
		}

		var result listenResult
		if err := json.Unmarshal(payload, &result); err != nil {
			continue
		}

		if strings.EqualFold(result.Type, "Error") {
			message := strings.TrimSpace(result.Message)
			if message == "" {
				message = "transcription service returned an unknown error"
			}
			// An empty speech-final event tells the recognizer to wrap up;
			// Wait then reports the recorded fault.
			s.publish(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, IsSpeechFinal: true})
			s.record(errors.New(message))
			return
		}

		text := result.transcript()
		if text == "" {
			continue
		}

		event := domain.TranscriptEvent{Text: text, IsSpeechFinal: result.SpeechFinal}
		if result.IsFinal || result.SpeechFinal {
			event.Kind = domain.TranscriptKindFinal
		} else {
			event.Kind = domain.TranscriptKindPartial
		}
		s.publish(event)
	}
}

// publish never blocks the read loop; if the consumer is gone or the buffer
// is full the event is dropped.
func (s *listenSession) publish(event domain.TranscriptEvent) {
	select {
	case s.events <- event:
	case <-s.done:
	default:
	}
}

// listenResult is the slice of Deepgram's live response the session consumes.
// Streaming results carry the channel at the top level; batch-shaped payloads
// nest channels under results, so both are checked.
type listenResult struct {
	Type        string        `json:"type"`
	Message     string        `json:"message"`
	IsFinal     bool          `json:"is_final"`
	SpeechFinal bool          `json:"speech_final"`
	Channel     resultChannel `json:"channel"`
	Results     struct {
		Channels []resultChannel `json:"channels"`
	} `json:"results"`
}

type resultChannel struct {
	Alternatives []resultAlternative `json:"alternatives"`
}

type resultAlternative struct {
	Transcript string `json:"transcript"`
}

func (r listenResult) transcript() string {
	if len(r.Channel.Alternatives) > 0 {
		if text := strings.TrimSpace(r.Channel.Alternatives[0].Transcript); text != "" {
			return text
		}
	}
	if len(r.Results.Channels) > 0 && len(r.Results.Channels[0].Alternatives) > 0 {
		return strings.TrimSpace(r.Results.Channels[0].Alternatives[0].Transcript)
	}
	return ""
}

// listenURL builds the websocket endpoint from the provider and stream
// settings, swapping the configured HTTP scheme for its websocket
// counterpart.
func listenURL(providerCfg config.DeepgramConfig, streamCfg ports.StreamingConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = defaultAPIBase
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	endpoint, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid transcription API base URL: %w", err)
	}

	if streamCfg.Encoding == "" {
		streamCfg.Encoding = "linear16"
	}
	if streamCfg.SampleRate <= 0 {
		streamCfg.SampleRate = 16000
	}
	if streamCfg.Channels <= 0 {
		streamCfg.Channels = 1
	}

	query := endpoint.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", streamCfg.Encoding)
	query.Set("sample_rate", strconv.Itoa(streamCfg.SampleRate))
	query.Set("channels", strconv.Itoa(streamCfg.Channels))
	query.Set("interim_results", strconv.FormatBool(streamCfg.InterimResults))
	query.Set("smart_format", strconv.FormatBool(providerCfg.SmartFormat))
	if providerCfg.Language != "" {
		query.Set("language", providerCfg.Language)
	}
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}
