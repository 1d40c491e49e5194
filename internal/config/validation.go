package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported transcription providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Supported session cache backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, provider string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", provider)
	}

	switch provider {
	case ProviderOpenAI:
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OPENAI_API_KEY format: too short")
		}
	case ProviderGemini:
		if !strings.HasPrefix(apiKey, "AIza") {
			return fmt.Errorf("invalid GEMINI_API_KEY format: must start with 'AIza'")
		}
		if len(apiKey) < 30 {
			return fmt.Errorf("invalid GEMINI_API_KEY format: too short")
		}
	}

	return nil
}

// ValidateURL validates URL format. An empty URL is allowed and means the
// provider default.
func ValidateURL(url string, name string) error {
	if url == "" {
		return nil
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}
	return nil
}

// ValidatePort validates port number
func ValidatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

// Validate checks the settings after defaults, file and environment are merged
func (s *Settings) Validate() error {
	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	if s.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}

	switch s.Transcription.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown transcription provider %q (want %s or %s)", s.Transcription.Provider, ProviderOpenAI, ProviderGemini)
	}
	if strings.TrimSpace(s.Transcription.Language) == "" {
		return fmt.Errorf("transcription.language is required")
	}
	if err := ValidateTimeout(s.Transcription.Timeout, "transcription"); err != nil {
		return err
	}
	if err := ValidateURL(s.Transcription.BaseURL, "transcription"); err != nil {
		return err
	}

	switch s.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if s.Redis.Addr == "" {
			return fmt.Errorf("redis session backend requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown session backend %q", s.Session.Backend)
	}
	if s.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}

	if s.Media.WorkDir == "" {
		return fmt.Errorf("media.work_dir is required")
	}
	return nil
}
