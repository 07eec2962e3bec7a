package agent

import (
	"fmt"
	"strings"
)

// Message roles accepted in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResearchTopic derives the topic string from the conversation history. A
// single message is taken verbatim; longer histories are rendered as
// "<Role>: <content>" lines in original order.
func ResearchTopic(messages []Message) string {
	if len(messages) == 1 {
		return messages[0].Content
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		role := "User"
		if m.Role == RoleAssistant {
			role = "Assistant"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, m.Content))
	}
	return strings.Join(lines, "\n")
}

// SourceRecord is one gathered source candidate. Content is truncated to a
// snippet at collection time; the full result content is never persisted.
type SourceRecord struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

const snippetLimit = 200

// truncateSnippet caps content at snippetLimit characters, marking the cut
// with a trailing ellipsis.
func truncateSnippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLimit {
		return content
	}
	return string(runes[:snippetLimit]) + "..."
}

// State is the run-scoped aggregate mutated across loop iterations. It is
// owned exclusively by one run and must not be shared across runs; the
// controller is the only writer once the loop starts.
type State struct {
	ThreadID string    `json:"thread_id"`
	Messages []Message `json:"messages"`

	Topic           string         `json:"topic"`
	Locale          string         `json:"locale"`
	QueriesRun      []string       `json:"queries_run"`
	Narratives      []string       `json:"narratives"`
	SourcesGathered []SourceRecord `json:"sources_gathered"`
	LoopCount       int            `json:"loop_count"`
	IsSufficient    bool           `json:"is_sufficient"`
	FinalAnswer     string         `json:"final_answer,omitempty"`

	// Transient reflection output, consumed by the controller.
	KnowledgeGap    string   `json:"-"`
	FollowUpQueries []string `json:"-"`

	// Per-run overrides; zero values fall back to configuration defaults.
	InitialQueryCount int      `json:"-"`
	MaxResearchLoops  int      `json:"-"`
	SearchEngines     []string `json:"-"`
	MaxSearchResults  int      `json:"-"`
}

// searchQuery pairs a query string with its fan-out id. Ids are assigned by
// enumeration order and never reset within a run.
type searchQuery struct {
	ID    int
	Query string
}

// queryList is the structured-generation schema for query synthesis.
type queryList struct {
	Queries []string `json:"queries"`
	Locale  string   `json:"locale"`
}

// reflectionResult is the structured-generation schema for reflection.
type reflectionResult struct {
	IsSufficient    bool     `json:"is_sufficient"`
	KnowledgeGap    string   `json:"knowledge_gap"`
	FollowUpQueries []string `json:"follow_up_queries"`
}
