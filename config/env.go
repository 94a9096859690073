package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// memory | firestore | supabase
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	GCPProjectID   string `env:"GCP_PROJECT"`
	SupabaseURL    string `env:"SUPABASE_URL"`
	SupabaseKey    string `env:"SUPABASE_KEY"`

	// Empty secret means tokens are parsed without signature verification (local dev only).
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	// openai | anthropic | huggingface | gemini | none
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey      string `env:"OPENAI_API_KEY"`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	AnthropicAPIKey   string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel    string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-haiku-20240307"`
	HuggingFaceAPIKey string `env:"HUGGINGFACE_API_KEY"`
	HuggingFaceModel  string `env:"HUGGINGFACE_MODEL" envDefault:"mistralai/Mistral-7B-Instruct-v0.2"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	NotifyFrom   string `env:"NOTIFY_FROM" envDefault:"Loop <reminders@pingchain.app>"`
	// user_id:email pairs, comma separated. Users without an entry get log-only reminders.
	NotifyRecipients map[string]string `env:"NOTIFY_RECIPIENTS"`

	ReminderDispatchSchedule string        `env:"REMINDER_DISPATCH_SCHEDULE" envDefault:"* * * * *"`
	PlatformPollMinutes      int           `env:"PLATFORM_POLL_MINUTES" envDefault:"5"`
	ContextCacheSize         int           `env:"CONTEXT_CACHE_SIZE" envDefault:"512"`
	ContextCacheTTL          time.Duration `env:"CONTEXT_CACHE_TTL" envDefault:"2m"`
}

// Load environment variables and handle errors
func LoadEnv() {
	err := godotenv.Load()

	if err != nil {
		Logger.Warn("Error loading .env file, will use environment variables instead:", err)
		// Don't call Fatal here - continue execution
	}
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	LoadEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.StorageBackend {
	case "memory":
	case "firestore":
		if cfg.GCPProjectID == "" {
			return nil, fmt.Errorf("GCP_PROJECT is required for the firestore backend")
		}
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.PlatformPollMinutes <= 0 {
		cfg.PlatformPollMinutes = 5
	}
	if cfg.PlatformPollMinutes > 59 {
		return nil, fmt.Errorf("PLATFORM_POLL_MINUTES must be between 1 and 59, got %d", cfg.PlatformPollMinutes)
	}

	return &cfg, nil
}
