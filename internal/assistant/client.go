package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o"
	defaultTimeout = 60 * time.Second
)

// Client provides access to the OpenAI chat completions API. The persona
// analyzer uses it to turn a conversation transcript into a structured
// insight document.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets a custom model
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint (used by tests)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new OpenAI API client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Temperature float64 `json:"temperature"`
}

// GenerateJSON sends a completion request in JSON mode and returns the
// raw object the model produced. Callers decode and validate it against
// their own schema; a response that fails their validation must be
// surfaced, not coerced.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	log.Printf("[Assistant] GenerateJSON started model=%s prompt_length=%d", c.model, len(prompt))

	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
	}
	reqBody.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Assistant] GenerateJSON failed: send request err=%v", err)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleError(resp)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := result.Choices[0].Message.Content
	log.Printf("[Assistant] GenerateJSON completed response_length=%d", len(content))
	return json.RawMessage(content), nil
}

// APIError represents an error from the OpenAI API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAI API error (status %d): %s", e.StatusCode, e.Message)
}

// handleError processes error responses from the API
func (c *Client) handleError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	// Truncate for logging if too long
	logBody := bodyStr
	if len(logBody) > 500 {
		logBody = logBody[:500] + "..."
	}
	log.Printf("[Assistant] API Error status=%d body=%s", resp.StatusCode, logBody)

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    bodyStr,
	}
}
