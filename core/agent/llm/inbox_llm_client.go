package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// Client implements out.CompletionClient on the OpenAI API. Calls run
// through a circuit breaker; while the breaker is open every call fails
// fast with out.ErrLLMUnavailable so the analysis pipeline can fall
// back to rules instead of stacking timeouts.
type Client struct {
	client      *openai.Client
	model       string
	embedModel  openai.EmbeddingModel
	maxTokens   int
	temperature float32
	timeout     time.Duration
	breaker     *gobreaker.CircuitBreaker
	configured  bool
}

type ClientConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float64
	Timeout        time.Duration
}

const (
	DefaultModel      = "gpt-4o-mini"
	DefaultEmbedModel = "text-embedding-ada-002"
)

// embeddingModelFromName resolves a configured model name to the
// client library's embedding enum. Unrecognized names fall back to
// ada-002 rather than sending an Unknown model.
func embeddingModelFromName(name string) openai.EmbeddingModel {
	if name == "" {
		name = DefaultEmbedModel
	}
	var model openai.EmbeddingModel
	_ = model.UnmarshalText([]byte(name))
	if model == openai.Unknown {
		return openai.AdaEmbeddingV2
	}
	return model
}

func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	embedModel := embeddingModelFromName(cfg.EmbeddingModel)
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		embedModel:  embedModel,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		timeout:     timeout,
		breaker:     breaker,
		configured:  cfg.APIKey != "",
	}
}

func (c *Client) execute(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if !c.configured {
		return "", fmt.Errorf("no API key: %w", out.ErrLLMUnavailable)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return fn(callCtx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("circuit open: %w", out.ErrLLMUnavailable)
		}
		return "", err
	}
	return result.(string), nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.execute(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.execute(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
}

func (c *Client) Embedding(ctx context.Context, text string) ([]float32, error) {
	if !c.configured {
		return nil, fmt.Errorf("no API key: %w", out.ErrLLMUnavailable)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Model: c.embedModel,
			Input: []string{text},
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 {
			return nil, fmt.Errorf("empty embedding response")
		}
		return resp.Data[0].Embedding, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("circuit open: %w", out.ErrLLMUnavailable)
		}
		return nil, err
	}
	return result.([]float32), nil
}
