package ai

// FactoryConfig holds the inputs to construct a client without leaking
// provider details.
type FactoryConfig struct {
	// BaseURL of an OpenAI-compatible chat-completions endpoint.
	BaseURL string
	APIKey  string
	// Defaults
	Model          string
	Temperature    float64
	MaxTokens      int
	TimeoutSeconds float64
}

// NewClient returns a chat-completions client. All supported planning and
// scoring backends speak the OpenAI wire format, so the base URL decides the
// provider.
func NewClient(cfg FactoryConfig) Client {
	return newOpenAIClient(cfg)
}
