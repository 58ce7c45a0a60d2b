package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the interview gateway service
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Groq LLM API configuration (OpenAI-style chat completions)
	GroqAPIKey  string `envconfig:"GROQ_API_KEY" required:"true"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	GroqModel   string `envconfig:"GROQ_MODEL" default:"llama3-8b-8192"`
	GroqTimeout int    `envconfig:"GROQ_TIMEOUT" default:"30"` // seconds

	// Interviewer sampling parameters. These are deployment constants,
	// not user-tunable per session.
	LLMTemperature float64 `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	LLMMaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"500"`

	// Deepgram speech configuration. Optional: when the API key is unset
	// the gateway runs with speech capture unsupported and typed input only.
	DeepgramAPIKey     string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel      string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"` // nova-2, enhanced, base
	DeepgramLanguage   string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`  // Language code (en, es, fr, etc.)
	DeepgramSpeakModel string `envconfig:"DEEPGRAM_SPEAK_MODEL" default:"aura-asteria-en"`

	// Speech playback configuration. The reply is handed to the
	// synthesizer a short beat after the transcript update so synthesized
	// speech does not race the UI.
	SpeakDelayMs int     `envconfig:"SPEAK_DELAY_MS" default:"500"`
	SpeechRate   float64 `envconfig:"SPEECH_RATE" default:"0.9"`
	SpeechPitch  float64 `envconfig:"SPEECH_PITCH" default:"1.0"`
	SpeechVolume float64 `envconfig:"SPEECH_VOLUME" default:"0.8"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // Log level: debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate required fields
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}

	return &cfg, nil
}

// SpeechCaptureEnabled reports whether server-side speech capture is
// configured for this deployment.
func (c *Config) SpeechCaptureEnabled() bool {
	return c.DeepgramAPIKey != ""
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
