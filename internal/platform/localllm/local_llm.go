package localllm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"fooddb/internal/platform/gemini"
)

const (
	DefaultURL   = "http://localhost:1234/v1/chat/completions"
	DefaultModel = "gemma-3-12b-it:2"
)

// Client represents a client for an OpenAI-compatible local LLM server.
type Client struct {
	client *resty.Client
	apiURL string
	model  string
}

// NewClient creates a new client for the local LLM.
func NewClient(apiURL, model string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	client := resty.New().SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Client{client: client, apiURL: apiURL, model: model}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string    `json:"role"`
	Content []Content `json:"content"`
}

// Content represents the content of a message.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message ResponseMessage `json:"message"`
}

type ResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateContent sends a single user prompt and returns the first choice.
func (c *Client) GenerateContent(ctx context.Context, text string) (string, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: []Content{{Type: "text", Text: text}},
			},
		},
		Temperature: 0,
		MaxTokens:   2048,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(reqBody).
		Post(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode())
	}

	var llmResp Response
	if err := json.Unmarshal(resp.Body(), &llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}
	return llmResp.Choices[0].Message.Content, nil
}

// Translate translates text between two language codes using the same
// prompt as the Gemini backend.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	out, err := c.GenerateContent(ctx, gemini.Prompt(text, from, to))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	out = gemini.CleanReply(out)
	if out == "" {
		return "", fmt.Errorf("no content found in response")
	}
	return out, nil
}
