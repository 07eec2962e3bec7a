package server

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sophon-ai/sophon-agent/pkg/agent"
	"github.com/sophon-ai/sophon-agent/pkg/config"
	"github.com/sophon-ai/sophon-agent/pkg/database"
)

// Service runs research workflows, either streamed to a caller or as
// persisted background runs.
type Service struct {
	DB     *database.PostgresDB
	Cfg    *config.Config
	Search agent.Searcher
	Models agent.ModelResolver
}

func NewService(db *database.PostgresDB, cfg *config.Config, searcher agent.Searcher, models agent.ModelResolver) *Service {
	return &Service{
		DB:     db,
		Cfg:    cfg,
		Search: searcher,
		Models: models,
	}
}

func (s *Service) newAgent() *agent.Agent {
	return agent.New(s.Cfg, s.Search, s.Models)
}

// chanSink bridges agent events onto a channel.
type chanSink chan agent.Event

func (c chanSink) Send(ev agent.Event) { c <- ev }

// Stream executes the research workflow for the given state, yielding
// events as they are produced. A run-fatal error is yielded as the terminal
// element after the event stream ends.
func (s *Service) Stream(ctx context.Context, st *agent.State) iter.Seq2[agent.Event, error] {
	return func(yield func(agent.Event, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		events := make(chan agent.Event, 64)
		done := make(chan error, 1)

		go func() {
			done <- s.newAgent().Run(ctx, st, chanSink(events))
			close(events)
		}()

		for ev := range events {
			if !yield(ev, nil) {
				// Consumer went away; unblock the producer and let the
				// canceled run wind down.
				go func() {
					for range events {
					}
				}()
				return
			}
		}

		if err := <-done; err != nil {
			slog.Error("research run failed", "thread_id", st.ThreadID, "error", err)
			yield(agent.Event{ThreadID: st.ThreadID}, err)
		}
	}
}

// Run is a persisted background research run.
type Run struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	Status    string          `json:"status"`
	Answer    *string         `json:"answer,omitempty"`
	Sources   json.RawMessage `json:"sources,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Config    json.RawMessage `json:"config"`
}

// CreateRunRequest is the body of POST /api/research.
type CreateRunRequest struct {
	Topic                  string   `json:"topic"`
	NumberOfInitialQueries int      `json:"number_of_initial_queries"`
	MaxResearchLoops       int      `json:"max_research_loops"`
	SearchEngines          []string `json:"search_engines"`
	MaxSearchResults       int      `json:"max_search_results"`
}

func (s *Service) CreateRun(ctx context.Context, req CreateRunRequest) (*Run, error) {
	configJSON, _ := json.Marshal(map[string]interface{}{
		"number_of_initial_queries": req.NumberOfInitialQueries,
		"max_research_loops":        req.MaxResearchLoops,
		"search_engines":            req.SearchEngines,
		"max_search_results":        req.MaxSearchResults,
	})

	runID := uuid.New()
	query := `
		INSERT INTO research_runs (id, topic, status, config)
		VALUES ($1, $2, 'pending', $3)
		RETURNING id, topic, status, created_at, updated_at
	`

	run := &Run{Config: configJSON}
	err := s.DB.Pool.QueryRow(ctx, query, runID, req.Topic, configJSON).Scan(
		&run.ID, &run.Topic, &run.Status, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	go s.runWorker(run.ID, req)

	return run, nil
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, topic, status, answer, sources, created_at, updated_at, config
		FROM research_runs
		WHERE id = $1
	`
	run := &Run{}
	err := s.DB.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Topic, &run.Status, &run.Answer, &run.Sources, &run.CreatedAt, &run.UpdatedAt, &run.Config,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (s *Service) ListRuns(ctx context.Context) ([]Run, error) {
	query := `
		SELECT id, topic, status, answer, sources, created_at, updated_at, config
		FROM research_runs
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := s.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Topic, &run.Status, &run.Answer, &run.Sources, &run.CreatedAt, &run.UpdatedAt, &run.Config); err != nil {
			slog.Error("failed to scan run row", "error", err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (s *Service) GetRunLogs(ctx context.Context, runID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, timestamp, level, message, metadata
		FROM research_logs
		WHERE run_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			slog.Error("failed to scan log row", "run_id", runID, "error", err)
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *Service) runWorker(runID uuid.UUID, req CreateRunRequest) {
	ctx := context.Background()

	_, _ = s.DB.Pool.Exec(ctx, "UPDATE research_runs SET status = 'running', updated_at = NOW() WHERE id = $1", runID)

	dbLogger := slog.New(NewDBLogHandler(s.DB, runID))

	ag := s.newAgent()
	ag.SetLogger(dbLogger)

	st := &agent.State{
		ThreadID:          runID.String(),
		Messages:          []agent.Message{{Role: agent.RoleUser, Content: req.Topic}},
		InitialQueryCount: req.NumberOfInitialQueries,
		MaxResearchLoops:  req.MaxResearchLoops,
		SearchEngines:     req.SearchEngines,
		MaxSearchResults:  req.MaxSearchResults,
	}

	if err := ag.Run(ctx, st, nil); err != nil {
		s.failRun(ctx, runID, fmt.Sprintf("research failed: %v", err))
		return
	}

	sourcesJSON, err := json.Marshal(st.SourcesGathered)
	if err != nil {
		dbLogger.Error("failed to marshal sources", "error", err)
		sourcesJSON = []byte("[]")
	}

	_, err = s.DB.Pool.Exec(ctx,
		"UPDATE research_runs SET status = 'completed', answer = $2, sources = $3, state = $4, updated_at = NOW() WHERE id = $1",
		runID, st.FinalAnswer, sourcesJSON, mustMarshalState(st))
	if err != nil {
		dbLogger.Error("failed to save final answer", "error", err)
	}
}

func mustMarshalState(st *agent.State) []byte {
	data, err := json.Marshal(st)
	if err != nil {
		return []byte("{}")
	}
	return data
}

func (s *Service) failRun(ctx context.Context, runID uuid.UUID, reason string) {
	dbLogger := slog.New(NewDBLogHandler(s.DB, runID))
	dbLogger.Error(reason)

	_, _ = s.DB.Pool.Exec(ctx, "UPDATE research_runs SET status = 'failed', updated_at = NOW() WHERE id = $1", runID)
}
