package server

import "github.com/sophon-ai/sophon-agent/pkg/agent"

// DefaultThreadID asks the server to generate a fresh run identifier.
const DefaultThreadID = "__default__"

// ChatMessage is one entry of the incoming conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat/stream. Zero-valued overrides
// fall back to the server configuration.
type ChatRequest struct {
	Messages               []ChatMessage `json:"messages"`
	ThreadID               string        `json:"thread_id"`
	NumberOfInitialQueries int           `json:"number_of_initial_queries"`
	MaxResearchLoops       int           `json:"max_research_loops"`
	SearchEngines          []string      `json:"search_engines"`
	MaxSearchResults       int           `json:"max_search_results"`
}

func (r *ChatRequest) toState(threadID string) *agent.State {
	messages := make([]agent.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		messages = append(messages, agent.Message{Role: m.Role, Content: m.Content})
	}
	return &agent.State{
		ThreadID:          threadID,
		Messages:          messages,
		InitialQueryCount: r.NumberOfInitialQueries,
		MaxResearchLoops:  r.MaxResearchLoops,
		SearchEngines:     r.SearchEngines,
		MaxSearchResults:  r.MaxSearchResults,
	}
}
