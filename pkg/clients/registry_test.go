package clients

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophon-ai/sophon-agent/pkg/config"
)

func writeModelConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testModelConfig = `
llms:
  basic:
    model: gpt-4o-mini
    api_key: test-key
  custom:
    provider: openai
    model: local-model
    base_url: http://localhost:11434/v1
    api_key: test-key
`

func TestRegistryCachesModels(t *testing.T) {
	path := writeModelConfig(t, testModelConfig)
	registry := NewRegistry(config.NewModelLoader(path))

	first, err := registry.Get("basic")
	require.NoError(t, err)

	second, err := registry.Get("basic")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRegistryUnknownModel(t *testing.T) {
	path := writeModelConfig(t, testModelConfig)
	registry := NewRegistry(config.NewModelLoader(path))

	_, err := registry.Get("nonexistent")
	assert.Error(t, err)
}

func TestRegistryUnknownProvider(t *testing.T) {
	path := writeModelConfig(t, `
llms:
  broken:
    provider: carrier-pigeon
    model: some-model
    api_key: test-key
`)
	registry := NewRegistry(config.NewModelLoader(path))

	_, err := registry.Get("broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestRegistryReloadDropsCache(t *testing.T) {
	path := writeModelConfig(t, testModelConfig)
	registry := NewRegistry(config.NewModelLoader(path))

	first, err := registry.Get("basic")
	require.NoError(t, err)

	registry.Reload()

	second, err := registry.Get("basic")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}
