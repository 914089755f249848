package config

// LLMConfig configures the opaque InvokeLLM capability's default provider.
// The invocation contract itself (prompt, model, timeout) -> (response,
// latency) lives outside this module; this only selects defaults passed to it.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic, openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}
