package llm

import (
	"context"
	"time"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the full response text
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// CompleteStream sends one prompt and returns a lazy chunk sequence.
	// The stream is forward-only and cannot be restarted.
	CompleteStream(ctx context.Context, req CompletionRequest) (Stream, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one model call
type CompletionRequest struct {
	// Prompt is the user-role message content
	Prompt string

	// SystemPrompt is an optional system-role message
	SystemPrompt string

	// Model is the specific model variant to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float32
}

// Completion contains the model's response
type Completion struct {
	// Text is the response content, whitespace-trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Stream is a forward-only sequence of response text chunks.
// Recv returns io.EOF when the upstream source signals completion.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// APIKey for OpenAI-compatible/Anthropic endpoints
	APIKey string

	// BaseURL for custom endpoints (Groq, Ollama, proxies)
	BaseURL string

	// Timeout for API requests
	Timeout time.Duration

	// MaxTokens default for response generation
	MaxTokens int

	// Temperature default for sampling
	Temperature float32
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   30 * time.Second,
		MaxTokens: 1600,
	}
}
