package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"
)

// LLM provider names.
const (
	ProviderStatic    = "static"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Graph topologies.
const (
	TopologyDesigned = "designed"
	TopologyMinimal  = "minimal"
)

// ErrInvalidSettings is wrapped by every Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the typed configuration of the tutor CLI.
type Settings struct {
	DatabaseURL string      `yaml:"database_url" json:"database_url"`
	SQLitePath  string      `yaml:"sqlite_path,omitempty" json:"sqlite_path,omitempty"`
	LogLevel    string      `yaml:"log_level" json:"log_level"`
	LogFormat   string      `yaml:"log_format" json:"log_format"`
	LogFile     string      `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	Topology    string      `yaml:"topology" json:"topology"`
	LLM         LLMSettings `yaml:"llm" json:"llm"`
}

// LLMSettings selects and tunes the reply generator.
type LLMSettings struct {
	Provider   string        `yaml:"provider" json:"provider"`
	Model      string        `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey     string        `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	MaxTokens  int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
}

// Defaults returns settings with every field at its default.
func Defaults() Settings {
	return Settings{
		LogLevel:  "info",
		LogFormat: "text",
		Topology:  TopologyDesigned,
		LLM: LLMSettings{
			Provider:   ProviderStatic,
			MaxTokens:  512,
			Timeout:    30 * time.Second,
			MaxRetries: 2,
		},
	}
}

// FromConfig reads Settings out of a Config, keeping defaults for absent keys.
func FromConfig(c Config) Settings {
	d := Defaults()
	llm := c.Section("llm")
	return Settings{
		DatabaseURL: c.String("database_url", d.DatabaseURL),
		SQLitePath:  c.String("sqlite_path", d.SQLitePath),
		LogLevel:    c.String("log_level", d.LogLevel),
		LogFormat:   c.String("log_format", d.LogFormat),
		LogFile:     c.String("log_file", d.LogFile),
		Topology:    c.String("topology", d.Topology),
		LLM: LLMSettings{
			Provider:   llm.String("provider", d.LLM.Provider),
			Model:      llm.String("model", d.LLM.Model),
			APIKey:     llm.String("api_key", d.LLM.APIKey),
			MaxTokens:  llm.Int("max_tokens", d.LLM.MaxTokens),
			Timeout:    llm.Duration("timeout", d.LLM.Timeout),
			MaxRetries: llm.Int("max_retries", d.LLM.MaxRetries),
		},
	}
}

// ApplyEnv overlays environment variables found by lookup.
// Provider API keys are only taken for the selected provider.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("DATABASE_URL"); ok {
		s.DatabaseURL = v
	}
	if v, ok := lookup("TUTOR_LOG_LEVEL"); ok && v != "" {
		s.LogLevel = v
	}
	if v, ok := lookup("TUTOR_LLM_PROVIDER"); ok && v != "" {
		s.LLM.Provider = v
	}

	keyVar := ""
	switch s.LLM.Provider {
	case ProviderAnthropic:
		keyVar = "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		keyVar = "OPENAI_API_KEY"
	}
	if keyVar != "" {
		if v, ok := lookup(keyVar); ok && v != "" {
			s.LLM.APIKey = v
		}
	}
}

// Load reads settings from path (skipped when empty) and the process
// environment, then validates them.
func Load(path string) (Settings, error) {
	s := Defaults()
	if path != "" {
		c, err := FromFile(path)
		if err != nil {
			return Settings{}, err
		}
		s = FromConfig(c)
	}
	s.ApplyEnv(os.LookupEnv)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks enumerated fields. All problems are reported together.
func (s Settings) Validate() error {
	var errs []error
	if _, err := s.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if s.LogFormat != "text" && s.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%w: log_format %q", ErrInvalidSettings, s.LogFormat))
	}
	if s.Topology != TopologyDesigned && s.Topology != TopologyMinimal {
		errs = append(errs, fmt.Errorf("%w: topology %q", ErrInvalidSettings, s.Topology))
	}
	switch s.LLM.Provider {
	case ProviderStatic:
	case ProviderAnthropic, ProviderOpenAI:
		if s.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("%w: llm provider %s needs an api key", ErrInvalidSettings, s.LLM.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: llm provider %q", ErrInvalidSettings, s.LLM.Provider))
	}
	if s.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: llm max_tokens must be > 0", ErrInvalidSettings))
	}
	if s.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%w: llm max_retries must be >= 0", ErrInvalidSettings))
	}
	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (s Settings) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return lvl, fmt.Errorf("%w: log_level %q", ErrInvalidSettings, s.LogLevel)
	}
	return lvl, nil
}

// Redacted returns a copy safe to print: secrets are masked.
func (s Settings) Redacted() Settings {
	if s.LLM.APIKey != "" {
		s.LLM.APIKey = "****"
	}
	if s.DatabaseURL != "" {
		s.DatabaseURL = redactDSN(s.DatabaseURL)
	}
	return s
}

func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
