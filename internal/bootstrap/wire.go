// Package bootstrap assembles the runtime dependency graphs for the API
// server and the voice assistant client.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/audio"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/auth"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/client"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/config"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/intent"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/ports"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/providers/deepgram"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/providers/elevenlabs"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/server"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/storage"
	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/voice"
)

// AssistantServices is the assembled client-side graph: a session driving
// greeting playback and speech capture, and a scheduler turning transcripts
// into meetings through the API.
type AssistantServices struct {
	Session   *voice.Session
	Scheduler *voice.Scheduler
	Config    config.Config
}

func BuildAssistant(log *slog.Logger, events ports.EventSink) (AssistantServices, error) {
	cfg, err := config.Load()
	if err != nil {
		return AssistantServices{}, fmt.Errorf("load config: %w", err)
	}

	recognizer := deepgram.NewRecognizer(
		audio.NewRecorder(cfg.Audio.RecorderCommand),
		deepgram.NewProvider(cfg.Deepgram, log),
		deepgram.RecognizerConfig{
			APIKey: cfg.Deepgram.APIKey,
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			ChunkSize:      cfg.Audio.ChunkSize,
			StreamingGrace: cfg.Audio.StreamingGrace,
			IdleTimeout:    cfg.Deepgram.IdleTimeout,
		},
	)

	api := client.New(client.Config{
		BaseURL: cfg.Client.APIBaseURL,
		Token:   cfg.Client.Token,
		Timeout: cfg.Client.Timeout,
	})

	return AssistantServices{
		Session:   voice.NewSession(recognizer, audio.NewPlayer(cfg.Audio.PlayerCommand), api, events),
		Scheduler: voice.NewScheduler(intent.NewParser(), api),
		Config:    cfg,
	}, nil
}

// ServerServices is the assembled API server graph.
type ServerServices struct {
	Server *server.Server
	Store  *storage.Store
	Config config.Config
}

func BuildServer(log *slog.Logger) (ServerServices, error) {
	cfg, err := config.Load()
	if err != nil {
		return ServerServices{}, fmt.Errorf("load config: %w", err)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return ServerServices{}, fmt.Errorf("open storage: %w", err)
	}

	srv := server.New(server.Deps{
		Config: cfg,
		Log:    log,
		Store:  store,
		Tokens: auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Parser: intent.NewParser(),
		Synth: elevenlabs.NewClient(elevenlabs.Config{
			APIKey:     cfg.ElevenLabs.APIKey,
			APIBaseURL: cfg.ElevenLabs.APIBaseURL,
			VoiceID:    cfg.ElevenLabs.VoiceID,
			Model:      cfg.ElevenLabs.Model,
		}),
	})

	return ServerServices{Server: srv, Store: store, Config: cfg}, nil
}
