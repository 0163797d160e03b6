package llm

import (
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

const (
	defaultOpenAIURL = "https://api.openai.com/v1"
	geminiOpenAIURL  = "https://generativelanguage.googleapis.com/v1beta/openai"
)

// OpenAI speaks the OpenAI chat-completions protocol. It also serves
// any OpenAI-compatible gateway via CRITIC_LLM_BASE_URL.
type OpenAI struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAI creates an OpenAI provider. Requires OPENAI_API_KEY.
func NewOpenAI(model string) (*OpenAI, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, &AuthError{Message: "OPENAI_API_KEY environment variable is not set"}
	}
	baseURL := os.Getenv("CRITIC_LLM_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIURL
	}
	return &OpenAI{
		name:    "openai",
		apiKey:  key,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// NewGemini creates a provider for Gemini's OpenAI-compatible endpoint.
// Accepts GEMINI_API_KEY with OPENAI_API_KEY as a fallback.
func NewGemini(model string) (*OpenAI, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, &AuthError{Message: "GEMINI_API_KEY environment variable is not set"}
	}
	baseURL := os.Getenv("CRITIC_LLM_BASE_URL")
	if baseURL == "" {
		baseURL = geminiOpenAIURL
	}
	return &OpenAI{
		name:    "gemini",
		apiKey:  key,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}, nil
}

func (o *OpenAI) Name() string { return o.name }

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	body := openaiRequest{
		Model: o.model,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}
	if req.JSONObject {
		body.ResponseFormat = &openaiResponseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := o.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	httpResp, err := o.client.Do(httpReq)
	if err != nil {
		return "", &TransientError{Message: "sending request", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", &TransientError{Message: "reading response", Err: err}
	}

	if err := classifyStatus(httpResp.StatusCode, respBody); err != nil {
		return "", err
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty model response")
	}
	return result.Choices[0].Message.Content, nil
}

// classifyStatus maps an HTTP status to the retry taxonomy.
func classifyStatus(status int, body []byte) error {
	switch {
	case status == 200:
		return nil
	case status == 429:
		return &RateLimitError{Message: strings.TrimSpace(string(body))}
	case status == 401 || status == 403:
		return &AuthError{Message: string(body)}
	case status == 408 || status >= 500:
		return &TransientError{Message: fmt.Sprintf("API error (status %d): %s", status, string(body))}
	default:
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}
}

type openaiRequest struct {
	Model          string                `json:"model"`
	Messages       []openaiMessage       `json:"messages"`
	MaxTokens      int                   `json:"max_tokens"`
	Temperature    *float64              `json:"temperature,omitempty"`
	ResponseFormat *openaiResponseFormat `json:"response_format,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}
