package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration for the research agent. Values come
// from the environment; per-request overrides take precedence at run time.
type Config struct {
	Port                   string
	DatabaseURL            string
	ModelConfigPath        string
	NumberOfInitialQueries int
	MaxResearchLoops       int
	SearchEngines          []string
	MaxSearchResults       int
	TavilyAPIKey           string
}

func Load() *Config {
	return &Config{
		Port:                   getEnv("PORT", "8000"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		ModelConfigPath:        getEnv("MODEL_CONFIG_PATH", "conf.yaml"),
		NumberOfInitialQueries: getEnvAsInt("NUMBER_OF_INITIAL_QUERIES", 3),
		MaxResearchLoops:       getEnvAsInt("MAX_RESEARCH_LOOPS", 2),
		SearchEngines:          getEnvAsList("SEARCH_ENGINES", []string{"tavily", "duckduckgo", "arxiv"}),
		MaxSearchResults:       getEnvAsInt("MAX_SEARCH_RESULTS", 5),
		TavilyAPIKey:           getEnv("TAVILY_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
