package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tutorgraph/pkg/config"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults_Valid(t *testing.T) {
	s := config.Defaults()
	require.NoError(t, s.Validate())
	assert.Equal(t, config.ProviderStatic, s.LLM.Provider)
	assert.Equal(t, config.TopologyDesigned, s.Topology)
	assert.Empty(t, s.DatabaseURL)
}

func TestFromConfig(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
database_url: postgresql://u:p@db/tutor
log_format: json
topology: minimal
llm:
  provider: openai
  model: gpt-4o-mini
  timeout: 5s
  max_retries: 0
`))
	require.NoError(t, err)

	s := config.FromConfig(cfg)

	assert.Equal(t, "postgresql://u:p@db/tutor", s.DatabaseURL)
	assert.Equal(t, "json", s.LogFormat)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, config.TopologyMinimal, s.Topology)
	assert.Equal(t, "openai", s.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", s.LLM.Model)
	assert.Equal(t, 5*time.Second, s.LLM.Timeout)
	assert.Equal(t, 0, s.LLM.MaxRetries)
	assert.Equal(t, 512, s.LLM.MaxTokens)
}

func TestApplyEnv(t *testing.T) {
	t.Run("overlays", func(t *testing.T) {
		s := config.Defaults()
		s.ApplyEnv(envMap(map[string]string{
			"DATABASE_URL":       "postgresql://x@y/z",
			"TUTOR_LOG_LEVEL":    "debug",
			"TUTOR_LLM_PROVIDER": "anthropic",
			"ANTHROPIC_API_KEY":  "sk-ant",
			"OPENAI_API_KEY":     "sk-oa",
		}))

		assert.Equal(t, "postgresql://x@y/z", s.DatabaseURL)
		assert.Equal(t, "debug", s.LogLevel)
		assert.Equal(t, "anthropic", s.LLM.Provider)
		assert.Equal(t, "sk-ant", s.LLM.APIKey)
	})

	t.Run("key only for selected provider", func(t *testing.T) {
		s := config.Defaults()
		s.ApplyEnv(envMap(map[string]string{"ANTHROPIC_API_KEY": "sk-ant"}))
		assert.Empty(t, s.LLM.APIKey)
	})

	t.Run("empty DATABASE_URL clears file value", func(t *testing.T) {
		s := config.Defaults()
		s.DatabaseURL = "postgresql://from/file"
		s.ApplyEnv(envMap(map[string]string{"DATABASE_URL": ""}))
		assert.Empty(t, s.DatabaseURL)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Settings)
		msg    string
	}{
		{"bad level", func(s *config.Settings) { s.LogLevel = "loud" }, "log_level"},
		{"bad format", func(s *config.Settings) { s.LogFormat = "xml" }, "log_format"},
		{"bad topology", func(s *config.Settings) { s.Topology = "mesh" }, "topology"},
		{"bad provider", func(s *config.Settings) { s.LLM.Provider = "cohere" }, "llm provider"},
		{"missing key", func(s *config.Settings) { s.LLM.Provider = config.ProviderOpenAI }, "needs an api key"},
		{"zero tokens", func(s *config.Settings) { s.LLM.MaxTokens = 0 }, "max_tokens"},
		{"negative retries", func(s *config.Settings) { s.LLM.MaxRetries = -1 }, "max_retries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.Defaults()
			tt.mutate(&s)
			err := s.Validate()
			require.ErrorIs(t, err, config.ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tutor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))
	t.Setenv("TUTOR_LOG_LEVEL", "")
	t.Setenv("TUTOR_LLM_PROVIDER", "")
	t.Setenv("DATABASE_URL", "")

	s, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", s.LogLevel)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRedacted(t *testing.T) {
	s := config.Defaults()
	s.DatabaseURL = "postgresql://user:secret@db:5432/tutor"
	s.LLM.APIKey = "sk-live"

	r := s.Redacted()

	assert.NotContains(t, r.DatabaseURL, "secret")
	assert.Contains(t, r.DatabaseURL, "user")
	assert.Equal(t, "****", r.LLM.APIKey)
	assert.Equal(t, "sk-live", s.LLM.APIKey, "original untouched")
}
