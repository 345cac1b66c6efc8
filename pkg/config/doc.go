/*
Package config loads tutor settings.

Config wraps a map[string]any decoded from YAML or JSON and offers typed
accessors that fall back to a default when a key is missing or has the
wrong type. Section descends into nested maps:

	cfg, err := config.FromFile("tutor.yaml")
	model := cfg.Section("llm").String("model", "")

Settings is the typed view the CLI works with. Load reads an optional file,
then overlays environment variables:

	DATABASE_URL        durable checkpoint store DSN
	TUTOR_LOG_LEVEL     debug, info, warn, error
	TUTOR_LLM_PROVIDER  static, anthropic, openai
	ANTHROPIC_API_KEY   key for the anthropic provider
	OPENAI_API_KEY      key for the openai provider

Config is safe for concurrent reads.
*/
package config
