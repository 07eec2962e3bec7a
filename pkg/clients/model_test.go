package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/sophon-ai/sophon-agent/pkg/config"
)

// scriptedLLM returns fixed content, forwarding it in two pieces when the
// caller installed a streaming func.
type scriptedLLM struct {
	content string
}

func (s *scriptedLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var co llms.CallOptions
	for _, o := range options {
		o(&co)
	}
	if co.StreamingFunc != nil {
		half := len(s.content) / 2
		if err := co.StreamingFunc(ctx, []byte(s.content[:half])); err != nil {
			return nil, err
		}
		if err := co.StreamingFunc(ctx, []byte(s.content[half:])); err != nil {
			return nil, err
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s.content}}}, nil
}

func (s *scriptedLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return s.content, nil
}

func scriptedModel(content string, streaming bool) *Model {
	temperature := config.DefaultTemperature
	retries := 0
	return &Model{
		name: "basic",
		llm:  &scriptedLLM{content: content},
		cfg: config.ModelConfig{
			Model:       "scripted",
			Temperature: &temperature,
			MaxRetries:  &retries,
			Streaming:   &streaming,
		},
	}
}

func TestGenerateTextNonStreamingDeliversContent(t *testing.T) {
	m := scriptedModel("the full answer", false)

	var chunks []string
	got, err := m.GenerateText(context.Background(), "prompt", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "the full answer", got)
	// With streaming off the completion still reaches the callback, as one
	// whole chunk.
	assert.Equal(t, []string{"the full answer"}, chunks)
}

func TestGenerateTextStreamingForwardsChunks(t *testing.T) {
	m := scriptedModel("the full answer", true)

	var chunks []string
	got, err := m.GenerateText(context.Background(), "prompt", func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, "the full answer", got)
	require.Len(t, chunks, 2)
	// Tokens arrive incrementally and are not repeated as a final chunk.
	assert.Equal(t, "the full answer", chunks[0]+chunks[1])
}

func TestGenerateTextNilStream(t *testing.T) {
	m := scriptedModel("the full answer", false)

	got, err := m.GenerateText(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, "the full answer", got)
}
