package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config stores runtime configuration for both the API server and the voice
// client. Values come from environment variables with defaults that match a
// local development setup.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Deepgram   DeepgramConfig
	ElevenLabs ElevenLabsConfig
	Audio      AudioConfig
	Client     ClientConfig
}

type ServerConfig struct {
	Host            string        `env:"HOST" env-default:"0.0.0.0"`
	Port            int           `env:"PORT" env-default:"5000"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173,http://127.0.0.1:5173"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" env-default:"smartmeet.db"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET_KEY" env-default:"change-me-too"`
	TokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"12h"`
}

type DeepgramConfig struct {
	APIKey      string        `env:"DEEPGRAM_API_KEY"`
	APIBaseURL  string        `env:"DEEPGRAM_API_BASE" env-default:"https://api.deepgram.com/v1"`
	Model       string        `env:"DEEPGRAM_MODEL" env-default:"nova-2"`
	Language    string        `env:"DEEPGRAM_LANGUAGE"`
	SmartFormat bool          `env:"DEEPGRAM_SMART_FORMAT" env-default:"true"`
	IdleTimeout time.Duration `env:"DEEPGRAM_IDLE_TIMEOUT" env-default:"10s"`
}

type ElevenLabsConfig struct {
	APIKey     string `env:"ELEVENLABS_API_KEY"`
	APIBaseURL string `env:"ELEVENLABS_API_BASE" env-default:"https://api.elevenlabs.io"`
	VoiceID    string `env:"ELEVENLABS_VOICE_ID" env-default:"pNInz6obpgDQGcFmaJgB"`
	Model      string `env:"ELEVENLABS_MODEL" env-default:"eleven_multilingual_v2"`
}

type AudioConfig struct {
	RecorderCommand string        `env:"SMARTMEET_FFMPEG_COMMAND" env-default:"ffmpeg"`
	PlayerCommand   string        `env:"SMARTMEET_FFPLAY_COMMAND" env-default:"ffplay"`
	InputFormat     string        `env:"SMARTMEET_AUDIO_INPUT_FORMAT" env-default:"pulse"`
	InputDevice     string        `env:"SMARTMEET_AUDIO_INPUT_DEVICE" env-default:"default"`
	SampleRate      int           `env:"SMARTMEET_SAMPLE_RATE" env-default:"16000"`
	Channels        int           `env:"SMARTMEET_CHANNELS" env-default:"1"`
	ChunkSize       int           `env:"SMARTMEET_AUDIO_CHUNK_SIZE" env-default:"4096"`
	StreamingGrace  time.Duration `env:"SMARTMEET_STREAMING_GRACE" env-default:"1s"`
}

type ClientConfig struct {
	APIBaseURL string        `env:"SMARTMEET_API_URL" env-default:"http://localhost:5000"`
	Token      string        `env:"SMARTMEET_TOKEN"`
	Timeout    time.Duration `env:"SMARTMEET_HTTP_TIMEOUT" env-default:"15s"`
}

// Load resolves configuration from environment variables. Out-of-range values
// fall back to their defaults rather than failing.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "smartmeet.db"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Deepgram.IdleTimeout <= 0 {
		cfg.Deepgram.IdleTimeout = 10 * time.Second
	}
	if cfg.Audio.RecorderCommand == "" {
		cfg.Audio.RecorderCommand = "ffmpeg"
	}
	if cfg.Audio.PlayerCommand == "" {
		cfg.Audio.PlayerCommand = "ffplay"
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if cfg.Audio.StreamingGrace < 0 {
		cfg.Audio.StreamingGrace = time.Second
	}
	if cfg.Client.Timeout <= 0 {
		cfg.Client.Timeout = 15 * time.Second
	}

	return cfg, nil
}
