// Package gen produces Korean post content through a ranked chain of model
// backends. Each content class walks its tier chain with a per-tier retry
// budget; rate-limit errors are retried, bad-model errors skip straight to
// the next tier.
package gen

import (
	"context"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// ProviderName identifies a model backend.
type ProviderName string

// Provider name constants.
const (
	ProviderGroq   ProviderName = "groq"
	ProviderGemini ProviderName = "gemini"
	ProviderMock   ProviderName = "mock"
)

// Groq model tiers, best first.
const (
	ModelLlama70B = "llama-3.3-70b-versatile"
	ModelLlama8B  = "llama-3.1-8b-instant"
	ModelMixtral  = "mixtral-8x7b-32768"
	ModelGemma    = "gemma2-9b-it"
)

// Gemini model tiers, best first. Only the first appears in the class
// chains; the rest serve as trailing fallbacks via Models.
const (
	ModelGeminiPro     = "gemini-2.0-flash"
	ModelGeminiFlash15 = "gemini-1.5-flash"
	ModelGeminiPro15   = "gemini-1.5-pro"
)

// Provider is a single model backend.
type Provider interface {
	// Name returns the backend identifier.
	Name() ProviderName

	// IsAvailable reports whether the backend is configured.
	IsAvailable() bool

	// Models returns the backend's model tiers, best first.
	Models() []string

	// Complete runs one completion attempt against the named model.
	Complete(ctx context.Context, model string, req domain.GenerationRequest) (string, error)
}

// ModelRef points at one tier of a class chain.
type ModelRef struct {
	Provider ProviderName
	Model    string
}

// defaultClassChains maps each content class to its preferred tier order.
// Title and body go through the strongest models; alt text and hashtags
// start on the cheap tiers since short output needs no reasoning depth.
func defaultClassChains() map[domain.ContentClass][]ModelRef {
	full := []ModelRef{
		{Provider: ProviderGroq, Model: ModelLlama70B},
		{Provider: ProviderGroq, Model: ModelLlama8B},
		{Provider: ProviderGroq, Model: ModelMixtral},
		{Provider: ProviderGroq, Model: ModelGemma},
		{Provider: ProviderGemini, Model: ModelGeminiPro},
	}

	cheap := []ModelRef{
		{Provider: ProviderGroq, Model: ModelLlama8B},
		{Provider: ProviderGroq, Model: ModelGemma},
		{Provider: ProviderGemini, Model: ModelGeminiPro},
	}

	return map[domain.ContentClass][]ModelRef{
		domain.ClassTitle: full,
		domain.ClassBody:  full,
		domain.ClassAlt:   cheap,
		domain.ClassTags:  cheap,
	}
}
