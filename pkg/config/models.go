package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration reports an unreadable, invalid, or incomplete model
// configuration file.
var ErrConfiguration = errors.New("invalid model configuration")

// Defaults applied to a named model entry when the field is absent from the
// configuration file.
const (
	DefaultTemperature = 0.7
	DefaultMaxRetries  = 2
)

// ModelConfig describes the connection parameters of one named model entry
// in conf.yaml.
type ModelConfig struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float64 `yaml:"temperature"`
	MaxRetries  *int     `yaml:"max_retries"`
	Streaming   *bool    `yaml:"streaming"`
}

type modelFile struct {
	LLMs map[string]ModelConfig `yaml:"llms"`
}

// ModelLoader reads the model configuration file once and caches the parsed
// result. Reload discards the cache so the next read hits the file again.
type ModelLoader struct {
	path string

	mu     sync.Mutex
	parsed *modelFile
}

// NewModelLoader creates a loader for the given conf.yaml path. The file is
// not read until first use.
func NewModelLoader(path string) *ModelLoader {
	return &ModelLoader{path: path}
}

func (l *ModelLoader) load() (*modelFile, error) {
	if l.parsed != nil {
		return l.parsed, nil
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: file unreadable: %v", ErrConfiguration, err)
	}

	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	if len(f.LLMs) == 0 {
		return nil, fmt.Errorf("%w: no 'llms' section found in %s", ErrConfiguration, l.path)
	}

	l.parsed = &f
	return l.parsed, nil
}

// Get returns the named model entry with defaults filled in for absent
// fields.
func (l *ModelLoader) Get(name string) (ModelConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.load()
	if err != nil {
		return ModelConfig{}, err
	}

	cfg, ok := f.LLMs[name]
	if !ok {
		return ModelConfig{}, fmt.Errorf("model %q not found, available: %v", name, keysOf(f.LLMs))
	}

	if cfg.Temperature == nil {
		t := DefaultTemperature
		cfg.Temperature = &t
	}
	if cfg.MaxRetries == nil {
		r := DefaultMaxRetries
		cfg.MaxRetries = &r
	}
	if cfg.Streaming == nil {
		s := false
		cfg.Streaming = &s
	}
	return cfg, nil
}

// Names lists the configured model names.
func (l *ModelLoader) Names() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.load()
	if err != nil {
		return nil, err
	}
	return keysOf(f.LLMs), nil
}

// Reload drops the cached file content.
func (l *ModelLoader) Reload() {
	l.mu.Lock()
	l.parsed = nil
	l.mu.Unlock()
}

func keysOf(m map[string]ModelConfig) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
