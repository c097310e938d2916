package gen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jbplumbing/autopost/internal/core/domain"
	apperrors "github.com/jbplumbing/autopost/internal/core/errors"
)

// geminiProvider is the last-resort backend behind the Groq tiers.
type geminiProvider struct {
	client *genai.Client
	apiKey string
}

// NewGeminiProvider creates the Gemini backend.
func NewGeminiProvider(ctx context.Context, apiKey string) (Provider, error) {
	if apiKey == "" {
		return &geminiProvider{}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &geminiProvider{client: client, apiKey: apiKey}, nil
}

func (p *geminiProvider) Name() ProviderName {
	return ProviderGemini
}

func (p *geminiProvider) IsAvailable() bool {
	return p.apiKey != "" && p.client != nil
}

func (p *geminiProvider) Models() []string {
	return []string{ModelGeminiPro, ModelGeminiFlash15, ModelGeminiPro15}
}

func (p *geminiProvider) Complete(ctx context.Context, model string, req domain.GenerationRequest) (string, error) {
	genModel := p.client.GenerativeModel(model)
	genModel.SetTemperature(req.Temperature)

	if req.JSONMode {
		genModel.ResponseMIMEType = "application/json"
	}

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(req.Prompt)))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", apperrors.ErrEmptyCompletion
	}

	return text, nil
}

// Close releases the underlying client.
func (p *geminiProvider) Close() error {
	if p.client == nil {
		return nil
	}

	return p.client.Close()
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini completion: %w", err)
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", apperrors.ErrRateLimited, apiErr.Message)
	case http.StatusBadRequest, http.StatusNotFound:
		return fmt.Errorf("%w: %s", apperrors.ErrBadModel, apiErr.Message)
	default:
		return fmt.Errorf("gemini completion: %w", err)
	}
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result.WriteString(string(text))
			}
		}
	}

	return result.String()
}

// sanitizeUTF8 drops invalid byte sequences the API rejects.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, "")
}

var _ Provider = (*geminiProvider)(nil)
