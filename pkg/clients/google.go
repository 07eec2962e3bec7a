package clients

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/sophon-ai/sophon-agent/pkg/config"
)

// newGoogleLLM builds a Gemini-backed client for entries that set
// provider: google in the model configuration.
func newGoogleLLM(cfg config.ModelConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google provider requires an api_key")
	}
	return googleai.New(context.Background(),
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
}
