package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// OllamaProvider implements the Provider interface for Ollama local models
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     Config
}

// Ollama API structures
type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`

	// Token counts (only present when done=true)
	PromptEvalCount int `json:"prompt_eval_count,omitempty"`
	EvalCount       int `json:"eval_count,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second // Local models can be slower
	}

	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks if Ollama is running by listing local models
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	url := fmt.Sprintf("%s/api/tags", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (request creation): %v\n", err)
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (connection to %s): %v\n", p.baseURL, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Ollama availability check failed (HTTP %d from %s)\n", resp.StatusCode, p.baseURL)
		return false
	}

	return true
}

// Complete sends one prompt through the generate API
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if req.Model == "" {
		return nil, &FatalError{Provider: p.Name(), Model: req.Model,
			Err: fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")}
	}

	httpResp, err := p.do(ctx, p.apiRequest(req, false))
	if err != nil {
		return nil, classifyNetwork(p.Name(), req.Model, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifyNetwork(p.Name(), req.Model, fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyStatus(p.Name(), req.Model, httpResp.StatusCode,
			ollamaErrorFromBody(httpResp.StatusCode, respBody))
	}

	var resp ollamaResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &FatalError{Provider: p.Name(), Model: req.Model,
			Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	text := strings.TrimSpace(resp.Response)

	// Ollama reports counts only for some models; estimate when absent
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(req.Prompt) + len(text)) / 4
	}

	return &Completion{
		Text:       text,
		Model:      resp.Model,
		TokensUsed: tokensUsed,
	}, nil
}

// CompleteStream opens a streaming generate call (NDJSON lines)
func (p *OllamaProvider) CompleteStream(ctx context.Context, req CompletionRequest) (Stream, error) {
	if req.Model == "" {
		return nil, &FatalError{Provider: p.Name(), Model: req.Model,
			Err: fmt.Errorf("ollama model must be specified")}
	}

	httpResp, err := p.do(ctx, p.apiRequest(req, true))
	if err != nil {
		return nil, classifyNetwork(p.Name(), req.Model, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		defer func() { _ = httpResp.Body.Close() }()
		respBody, _ := io.ReadAll(httpResp.Body)
		return nil, classifyStatus(p.Name(), req.Model, httpResp.StatusCode,
			ollamaErrorFromBody(httpResp.StatusCode, respBody))
	}

	return &ollamaStream{body: httpResp.Body, scanner: bufio.NewScanner(httpResp.Body)}, nil
}

func (p *OllamaProvider) apiRequest(req CompletionRequest, stream bool) ollamaRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	return ollamaRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: stream,
		System: req.SystemPrompt,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  maxTokens,
		},
	}
}

func (p *OllamaProvider) do(ctx context.Context, apiReq ollamaRequest) (*http.Response, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", p.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	return p.httpClient.Do(httpReq)
}

func ollamaErrorFromBody(status int, respBody []byte) error {
	var apiErr ollamaError
	if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("API error (%d): %s", status, apiErr.Error)
	}
	return fmt.Errorf("API error (%d): %s", status, string(respBody))
}

// ollamaStream parses the NDJSON response stream into text chunks
type ollamaStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func (s *ollamaStream) Recv() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		var chunk ollamaResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}

		if chunk.Done && chunk.Response == "" {
			return "", io.EOF
		}
		return chunk.Response, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *ollamaStream) Close() error {
	return s.body.Close()
}
