package config

// EmbeddingConfig configures the dense-vector embedding provider consumed
// optionally by the semantic index's hybrid scorer. The index itself treats
// the embedding function as opaque; this only selects which provider backs it.
type EmbeddingConfig struct {
	// Provider: "ollama" (local) or "genai" (cloud). Empty disables the dense path.
	Provider string `yaml:"provider" json:"provider"`

	OllamaEndpoint string `yaml:"ollama_endpoint" json:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model" json:"ollama_model"`

	GenAIAPIKey string `yaml:"genai_api_key" json:"genai_api_key"`
	GenAIModel  string `yaml:"genai_model" json:"genai_model"`

	TaskType string `yaml:"task_type" json:"task_type"`
}
