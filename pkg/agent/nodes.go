package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sophon-ai/sophon-agent/pkg/config"
	"github.com/sophon-ai/sophon-agent/pkg/search"
)

// Node names, also exposed through the workflow topology.
const (
	nodeGenerateQuery = "generate_query"
	nodeWebResearch   = "web_research"
	nodeReflection    = "reflection"
	nodeFinalize      = "finalize_answer"
)

// defaultModel is the configuration name used for all generation calls.
const defaultModel = "basic"

// topResultsCap limits how many merged results are rendered into the
// research prompt. All results still become source candidates.
const topResultsCap = 10

// Generator is the opaque language-model capability the agent depends on.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, stream func(chunk string)) (string, error)
	GenerateStructured(ctx context.Context, prompt string, out any) error
}

// ModelResolver returns a model handle by configuration name. Resolution is
// expected to be a cheap cached lookup; the agent calls it per node.
type ModelResolver func(name string) (Generator, error)

// Searcher fans one query out to the enabled search engines and returns the
// merged results. Satisfied by *search.Aggregator.
type Searcher interface {
	Search(ctx context.Context, query string, engines []string, maxResults int) []search.Result
}

// Agent runs the iterative research workflow.
type Agent struct {
	cfg    *config.Config
	search Searcher
	models ModelResolver
	logger *slog.Logger
}

// New creates a research agent with the given collaborators.
func New(cfg *config.Config, searcher Searcher, models ModelResolver) *Agent {
	return &Agent{cfg: cfg, search: searcher, models: models, logger: slog.Default()}
}

// SetLogger overrides the agent's logger, e.g. with a run-scoped handler.
func (a *Agent) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}

// generateQuery expands the research topic into the initial batch of search
// queries and detects the target locale. A model failure or a short query
// list is fatal to the run.
func (a *Agent) generateQuery(ctx context.Context, st *State, em *emitter) ([]searchQuery, error) {
	n := st.InitialQueryCount
	if n <= 0 {
		n = a.cfg.NumberOfInitialQueries
	}

	model, err := a.models(defaultModel)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model: %w", err)
	}

	prompt := fmt.Sprintf(queryWriterInstructions, n, CurrentDate(), st.Topic)

	var out queryList
	if err := model.GenerateStructured(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("failed to generate queries: %w", err)
	}
	if len(out.Queries) < n {
		return nil, fmt.Errorf("query synthesis returned %d queries, want %d", len(out.Queries), n)
	}

	st.Locale = out.Locale

	args, _ := json.Marshal(out)
	msgID := em.nextMessageID()
	em.toolCalls(nodeGenerateQuery, msgID, ToolCall{ID: msgID, Name: "generate_queries", Args: string(args)})

	queries := make([]searchQuery, 0, len(out.Queries))
	for i, q := range out.Queries {
		queries = append(queries, searchQuery{ID: i, Query: q})
	}
	a.logger.Info("generated queries", "count", len(queries), "locale", st.Locale)
	return queries, nil
}

// workerBatch is the immutable result of one web research task. The
// controller merges each batch as a unit after the round joins.
type workerBatch struct {
	query     string
	narrative string
	sources   []SourceRecord
	err       error
}

// webResearch runs one search query end to end: aggregate provider results,
// summarize the top hits into a research narrative, and collect every
// result with a URL as a source candidate.
func (a *Agent) webResearch(ctx context.Context, q searchQuery, st *State, em *emitter) workerBatch {
	engines := st.SearchEngines
	if len(engines) == 0 {
		engines = a.cfg.SearchEngines
	}
	maxResults := st.MaxSearchResults
	if maxResults <= 0 {
		maxResults = a.cfg.MaxSearchResults
	}

	callID := fmt.Sprintf("search-%d", q.ID)
	args, _ := json.Marshal(map[string]any{"query": q.Query, "engines": engines})
	msgID := em.nextMessageID()
	em.toolCalls(nodeWebResearch, msgID, ToolCall{ID: callID, Name: "web_search"})
	em.toolCallChunk(nodeWebResearch, msgID, callID, string(args))

	results := a.search.Search(ctx, q.Query, engines, maxResults)
	em.toolCallResult(nodeWebResearch, em.nextMessageID(), callID, fmt.Sprintf("%d results", len(results)))

	var block strings.Builder
	block.WriteString("\n\n搜索结果:\n")
	for i, r := range results {
		if i >= topResultsCap {
			break
		}
		fmt.Fprintf(&block, "%d. %s\n%s\n来源: %s\n\n", i+1, r.Title, r.Content, r.URL)
	}
	prompt := fmt.Sprintf(webSearcherInstructions, CurrentDate(), st.Topic, q.Query, strings.Join(engines, ", ")) + block.String()

	model, err := a.models(defaultModel)
	if err != nil {
		return workerBatch{query: q.Query, err: fmt.Errorf("failed to resolve model: %w", err)}
	}

	narrativeID := em.nextMessageID()
	text, err := model.GenerateText(ctx, prompt, func(chunk string) {
		em.messageChunk(nodeWebResearch, narrativeID, chunk)
	})
	if err != nil {
		return workerBatch{query: q.Query, err: fmt.Errorf("research generation failed for query %q: %w", q.Query, err)}
	}

	var sources []SourceRecord
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		sources = append(sources, SourceRecord{URL: r.URL, Title: r.Title, Content: truncateSnippet(r.Content)})
	}

	return workerBatch{query: q.Query, narrative: text, sources: sources}
}

// reflect judges the sufficiency of the gathered narratives and, when they
// fall short, proposes follow-up queries. The loop counter tracks
// reflections performed, so it is incremented before the model call.
func (a *Agent) reflect(ctx context.Context, st *State, em *emitter) error {
	st.LoopCount++

	model, err := a.models(defaultModel)
	if err != nil {
		return fmt.Errorf("failed to resolve model: %w", err)
	}

	prompt := fmt.Sprintf(reflectionInstructions, CurrentDate(), st.Topic, strings.Join(st.Narratives, "\n\n---\n\n"))

	var out reflectionResult
	if err := model.GenerateStructured(ctx, prompt, &out); err != nil {
		return fmt.Errorf("reflection failed: %w", err)
	}

	st.IsSufficient = out.IsSufficient
	st.KnowledgeGap = out.KnowledgeGap
	st.FollowUpQueries = out.FollowUpQueries

	args, _ := json.Marshal(out)
	msgID := em.nextMessageID()
	em.toolCalls(nodeReflection, msgID, ToolCall{ID: msgID, Name: "reflect", Args: string(args)})

	a.logger.Info("reflection complete", "loop", st.LoopCount, "sufficient", st.IsSufficient, "follow_ups", len(st.FollowUpQueries))
	return nil
}

// finalizeAnswer synthesizes the narratives into the final answer and keeps
// only the sources whose URL appears verbatim in the generated text. The
// match is literal substring containment; URLs differing by trailing slash
// or scheme will not match.
func (a *Agent) finalizeAnswer(ctx context.Context, st *State, em *emitter) error {
	model, err := a.models(defaultModel)
	if err != nil {
		return fmt.Errorf("failed to resolve model: %w", err)
	}

	locale := st.Locale
	if locale == "" {
		locale = "en-US"
	}
	prompt := fmt.Sprintf(answerInstructions, locale, CurrentDate(), st.Topic, strings.Join(st.Narratives, "\n---\n\n"))

	msgID := em.nextMessageID()
	text, err := model.GenerateText(ctx, prompt, func(chunk string) {
		em.messageChunk(nodeFinalize, msgID, chunk)
	})
	if err != nil {
		return fmt.Errorf("failed to finalize answer: %w", err)
	}

	var cited []SourceRecord
	for _, s := range st.SourcesGathered {
		if s.URL != "" && strings.Contains(text, s.URL) {
			cited = append(cited, s)
		}
	}

	st.FinalAnswer = text
	st.SourcesGathered = cited
	st.Messages = append(st.Messages, Message{Role: RoleAssistant, Content: text})

	a.logger.Info("answer finalized", "length", len(text), "cited_sources", len(cited))
	return nil
}
