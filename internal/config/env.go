package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds the transcription service credentials loaded from environment
type APIKeys struct {
	OpenAI string
	Gemini string
}

// LoadEnv loads environment variables from a .env file if one exists.
// Variables already set in the process environment win.
func LoadEnv() (string, error) {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return "", fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			return envPath, nil
		}
	}

	return "", nil
}

// GetAPIKeys retrieves and validates API keys from environment variables
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Gemini: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, ProviderOpenAI); err != nil {
			return nil, err
		}
	}
	if apiKeys.Gemini != "" {
		if err := ValidateAPIKey(apiKeys.Gemini, ProviderGemini); err != nil {
			return nil, err
		}
	}

	return apiKeys, nil
}

// For returns the key of the given provider
func (k *APIKeys) For(provider string) string {
	switch provider {
	case ProviderGemini:
		return k.Gemini
	default:
		return k.OpenAI
	}
}

// RequireAPIKey fails when the selected provider has no credential.
// The server must not start without one.
func RequireAPIKey(apiKeys *APIKeys, provider string) error {
	if apiKeys.For(provider) != "" {
		return nil
	}
	name := "OPENAI_API_KEY"
	if provider == ProviderGemini {
		name = "GEMINI_API_KEY"
	}
	return fmt.Errorf("transcription provider %q requires %s - set it in the environment or a .env file", provider, name)
}

// InitializeConfig loads the environment and settings and checks the
// credential of the configured provider
func InitializeConfig(settingsPath string) (*Settings, *APIKeys, error) {
	if _, err := LoadEnv(); err != nil {
		return nil, nil, fmt.Errorf("failed to load environment: %w", err)
	}

	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, nil, err
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get API keys: %w", err)
	}
	if err := RequireAPIKey(apiKeys, settings.Transcription.Provider); err != nil {
		return nil, nil, err
	}

	return settings, apiKeys, nil
}
