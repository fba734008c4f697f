package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// FallbackAnswer is substituted when the gateway call succeeds but the body
// carries no usable answer. A degraded answer beats no answer.
const FallbackAnswer = "দুঃখিত, এই মুহূর্তে পূর্ণ উত্তর তৈরি করা গেল না। অনুগ্রহ করে প্রশ্নটি একটু ভিন্নভাবে আবার করুন, অথবা নিকটস্থ কৃষি সম্প্রসারণ অফিসে যোগাযোগ করুন।"

// GatewayConfig configures the answer gateway client.
type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Gateway issues one non-streaming chat completion per question against an
// OpenAI-compatible endpoint and interprets HTTP outcomes into the domain
// error taxonomy. It performs no retries; rate limiting is surfaced to the
// caller rather than hidden behind backoff.
type Gateway struct {
	config GatewayConfig
	client *openai.Client
}

// NewGateway creates a gateway client with defaults applied.
func NewGateway(config GatewayConfig) (*Gateway, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gateway API key is required")
	}
	if config.Model == "" {
		config.Model = openai.GPT3Dot5Turbo
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1000
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Gateway{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Complete sends the system prompt and question and returns the answer.
// fallback is true when a 2xx response carried no usable content and the
// canned answer was substituted; that still counts as a successful call.
func (g *Gateway) Complete(ctx context.Context, systemPrompt, question string) (string, bool, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: float32(g.config.Temperature),
		Stream:      false,
	})
	if err != nil {
		return "", false, classify(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return FallbackAnswer, true, nil
	}

	return resp.Choices[0].Message.Content, false, nil
}

// classify maps a go-openai error into the domain taxonomy.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return byStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return byStatus(reqErr.HTTPStatusCode, err)
	}

	// No HTTP response at all.
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func byStatus(status int, err error) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	default:
		return fmt.Errorf("%v: %w", err, &UpstreamError{Status: status})
	}
}
