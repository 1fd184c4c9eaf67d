// Package llm calls an OpenAI-compatible chat completions endpoint and
// decodes structured JSON answers.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyResponse = errors.New("llm returned no content")
	ErrDisabled      = errors.New("llm endpoint is not configured")
)

const (
	defaultTimeout = 60 * time.Second
	schemaName     = "result"
)

// Invoker produces a structured result for prompt, shaped by schema.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, schema map[string]any, out any) error
}

type Client struct {
	api   *openai.Client
	model string
}

// NewClient targets endpoint, the API base URL including any version prefix
// (for example https://api.openai.com/v1). An empty endpoint yields a client
// whose calls return ErrDisabled.
func NewClient(endpoint, model, apiKey string) *Client {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return &Client{model: model}
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = endpoint
	cfg.HTTPClient = &http.Client{Timeout: defaultTimeout}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Invoke sends prompt and decodes the model's JSON answer into out. A nil
// schema asks for any JSON object.
func (c *Client) Invoke(ctx context.Context, prompt string, schema map[string]any, out any) error {
	if c == nil || c.api == nil {
		return ErrDisabled
	}

	format, err := responseFormat(schema)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          c.model,
		Messages:       []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		ResponseFormat: format,
	})
	log.Ctx(ctx).Debug().
		Err(err).
		Dur("duration", time.Since(start)).
		Msg("LLM call completed")
	if err != nil {
		if status := statusCode(err); status != 0 {
			return fmt.Errorf("llm returned status %d: %w", status, err)
		}
		return fmt.Errorf("call llm: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode structured llm output: %w", err)
	}
	return nil
}

func responseFormat(schema map[string]any) (*openai.ChatCompletionResponseFormat, error) {
	if schema == nil {
		return &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}, nil
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("encode llm schema: %w", err)
	}
	return &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   schemaName,
			Schema: json.RawMessage(raw),
			Strict: true,
		},
	}, nil
}

// statusCode extracts the HTTP status from go-openai errors, or 0.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
