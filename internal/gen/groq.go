package gen

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
)

// groqProvider talks to the Groq OpenAI-compatible completion endpoint.
type groqProvider struct {
	client *openai.Client
	apiKey string
}

// NewGroqProvider creates the Groq backend. baseURL points at the
// OpenAI-compatible API root, e.g. https://api.groq.com/openai/v1.
func NewGroqProvider(apiKey, baseURL string) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &groqProvider{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
	}
}

func (p *groqProvider) Name() ProviderName {
	return ProviderGroq
}

func (p *groqProvider) IsAvailable() bool {
	return p.apiKey != ""
}

func (p *groqProvider) Models() []string {
	return []string{ModelLlama70B, ModelLlama8B, ModelMixtral, ModelGemma}
}

func (p *groqProvider) Complete(ctx context.Context, model string, req domain.GenerationRequest) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		Temperature: req.Temperature,
	}

	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", classifyGroqError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyGroqError maps API failures onto the sentinel errors the registry
// keys its retry decisions on.
func classifyGroqError(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("groq completion: %w", err)
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, apiErr.Message)
	case http.StatusBadRequest, http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrBadModel, apiErr.Message)
	default:
		return fmt.Errorf("groq completion: %w", err)
	}
}

var _ Provider = (*groqProvider)(nil)
