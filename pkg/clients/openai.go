package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/sophon-ai/sophon-agent/pkg/config"
)

var (
	// ErrModelInvocation reports that a model call failed after exhausting
	// its retry budget.
	ErrModelInvocation = errors.New("model invocation failed")

	// ErrMalformedOutput reports that a structured generation call returned
	// output that does not match the expected schema.
	ErrMalformedOutput = errors.New("model returned malformed structured output")
)

// Model wraps a langchaingo LLM together with its configured generation
// parameters. It is safe for concurrent use.
type Model struct {
	name string
	llm  llms.Model
	cfg  config.ModelConfig
}

// newModel constructs the underlying client described by the named config
// entry. Entries default to an OpenAI-compatible endpoint; provider: google
// selects Gemini instead.
func newModel(name string, cfg config.ModelConfig) (*Model, error) {
	var (
		llm llms.Model
		err error
	)
	switch cfg.Provider {
	case "", "openai":
		llm, err = newOpenAILLM(cfg)
	case "google":
		llm, err = newGoogleLLM(cfg)
	default:
		return nil, fmt.Errorf("unknown provider %q for model %q", cfg.Provider, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init model %q: %w", name, err)
	}
	return &Model{name: name, llm: llm, cfg: cfg}, nil
}

func newOpenAILLM(cfg config.ModelConfig) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

// Name returns the configuration name this model was built from.
func (m *Model) Name() string { return m.name }

// GenerateText produces a free-text completion for the prompt. When the
// model entry enables streaming and stream is non-nil, generated tokens are
// forwarded to it as they arrive; the full completion is still returned.
func (m *Model) GenerateText(ctx context.Context, prompt string, stream func(chunk string)) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(*m.cfg.Temperature)}
	if *m.cfg.Streaming && stream != nil {
		opts = append(opts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			stream(string(chunk))
			return nil
		}))
	}

	content, err := m.generateWithRetry(ctx, prompt, opts, nil)
	if err != nil {
		return "", err
	}
	// Non-streaming entries deliver the completion as a single chunk so
	// consumers see the content exactly once either way.
	if !*m.cfg.Streaming && stream != nil {
		stream(content)
	}
	return content, nil
}

// GenerateStructured produces a completion in JSON mode and unmarshals it
// into out. Shape mismatches surface as ErrMalformedOutput.
func (m *Model) GenerateStructured(ctx context.Context, prompt string, out any) error {
	opts := []llms.CallOption{
		llms.WithTemperature(*m.cfg.Temperature),
		llms.WithJSONMode(),
	}

	_, err := m.generateWithRetry(ctx, prompt, opts, func(content string) error {
		if err := json.Unmarshal([]byte(content), out); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		return nil
	})
	return err
}

// generateWithRetry attempts to generate content and validates it using the
// provided function. It retries up to the configured max_retries if the LLM
// call fails or the validator rejects the output.
func (m *Model) generateWithRetry(ctx context.Context, prompt string, opts []llms.CallOption, validator func(string) error) (string, error) {
	attempts := *m.cfg.MaxRetries + 1
	var lastErr error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			slog.Warn("retrying model generation", "model", m.name, "attempt", i+1, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Second * time.Duration(i)):
			}
		}

		resp, err := m.llm.GenerateContent(ctx, []llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		}, opts...)
		if err != nil {
			lastErr = fmt.Errorf("llm generation failed: %w", err)
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("llm returned no choices")
			continue
		}

		content := resp.Choices[0].Content
		if validator != nil {
			if err := validator(content); err != nil {
				lastErr = err
				continue
			}
		}
		return content, nil
	}

	return "", fmt.Errorf("%w: model %q failed after %d attempts: %w", ErrModelInvocation, m.name, attempts, lastErr)
}
