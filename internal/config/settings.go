package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the process configuration of the transcription server
type Settings struct {
	Env           string                `yaml:"env"`
	Server        ServerSettings        `yaml:"server"`
	Transcription TranscriptionSettings `yaml:"transcription"`
	Media         MediaSettings         `yaml:"media"`
	Session       SessionSettings       `yaml:"session"`
	Redis         RedisSettings         `yaml:"redis"`
	Log           LogSettings           `yaml:"log"`
}

type ServerSettings struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
}

type TranscriptionSettings struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	Language string        `yaml:"language"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type MediaSettings struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
	WorkDir     string `yaml:"work_dir"`
}

type SessionSettings struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
}

type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogSettings struct {
	Level string `yaml:"level"`
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() *Settings {
	return &Settings{
		Env: "production",
		Server: ServerSettings{
			Host:        "0.0.0.0",
			Port:        8501,
			MaxUploadMB: 200,
		},
		Transcription: TranscriptionSettings{
			Provider: ProviderOpenAI,
			Language: "pt",
			Timeout:  10 * time.Minute,
		},
		Media: MediaSettings{
			FFmpegPath:  "ffmpeg",
			FFprobePath: "ffprobe",
			WorkDir:     filepath.Join(os.TempDir(), "app-transcript"),
		},
		Session: SessionSettings{
			Backend: BackendMemory,
			TTL:     12 * time.Hour,
		},
		Log: LogSettings{Level: "info"},
	}
}

// LoadSettings merges defaults, the optional YAML file at path and the
// TRANSCRIPT_* environment overrides, in that order
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return s, nil
}

func (s *Settings) applyEnv() error {
	setString(&s.Env, "TRANSCRIPT_ENV")
	setString(&s.Server.Host, "TRANSCRIPT_HOST")
	setString(&s.Transcription.Provider, "TRANSCRIPT_PROVIDER")
	setString(&s.Transcription.Model, "TRANSCRIPT_MODEL")
	setString(&s.Transcription.Language, "TRANSCRIPT_LANGUAGE")
	setString(&s.Transcription.BaseURL, "TRANSCRIPT_BASE_URL")
	setString(&s.Media.WorkDir, "TRANSCRIPT_WORK_DIR")
	setString(&s.Media.FFmpegPath, "FFMPEG_PATH")
	setString(&s.Media.FFprobePath, "FFPROBE_PATH")
	setString(&s.Session.Backend, "TRANSCRIPT_SESSION_BACKEND")
	setString(&s.Redis.Addr, "REDIS_ADDR")
	setString(&s.Redis.Password, "REDIS_PASSWORD")
	setString(&s.Log.Level, "TRANSCRIPT_LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("TRANSCRIPT_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRANSCRIPT_PORT %q: %w", v, err)
		}
		s.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("TRANSCRIPT_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TRANSCRIPT_TIMEOUT %q: %w", v, err)
		}
		s.Transcription.Timeout = d
	}
	return nil
}

// Development reports whether logs and gin run in development mode
func (s *Settings) Development() bool {
	return s.Env == "development" || s.Env == "dev"
}

// Addr is the listen address of the HTTP server
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Server.Host, s.Server.Port)
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
