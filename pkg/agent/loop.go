package agent

import (
	"context"
	"sync"
)

// Run executes the research workflow for one state: synthesize queries, fan
// out web research, reflect, and either loop or finalize. The state must be
// owned exclusively by this run. Events are streamed to sink, which may be
// nil.
//
// Worker failures are isolated to their task; errors returned here come
// from query synthesis, reflection, or finalization and mean the run
// produced no answer.
func (a *Agent) Run(ctx context.Context, st *State, sink EventSink) error {
	em := newEmitter(sink, st.ThreadID)

	st.Topic = ResearchTopic(st.Messages)
	a.logger.Info("starting research run", "thread_id", st.ThreadID, "topic", st.Topic)

	queries, err := a.generateQuery(ctx, st, em)
	if err != nil {
		return err
	}

	maxLoops := st.MaxResearchLoops
	if maxLoops <= 0 {
		maxLoops = a.cfg.MaxResearchLoops
	}

	for {
		a.runRound(ctx, queries, st, em)

		if err := a.reflect(ctx, st, em); err != nil {
			return err
		}

		// The loop is forcibly cut off at the budget even when evidence
		// remains insufficient.
		if st.IsSufficient || st.LoopCount >= maxLoops {
			break
		}
		if len(st.FollowUpQueries) == 0 {
			a.logger.Warn("reflection reported a gap but proposed no follow-up queries, finalizing")
			break
		}

		// Follow-up ids continue from the number of queries ran so far.
		numberOfRanQueries := len(st.QueriesRun)
		next := make([]searchQuery, 0, len(st.FollowUpQueries))
		for i, q := range st.FollowUpQueries {
			next = append(next, searchQuery{ID: numberOfRanQueries + i, Query: q})
		}
		st.FollowUpQueries = nil
		queries = next
	}

	return a.finalizeAnswer(ctx, st, em)
}

// runRound dispatches one web research task per query and merges every
// task's batch after the full join. Tasks share no mutable state; each
// batch is appended as a unit, in completion order. A failed task still
// contributes its query to the ran-query count so follow-up ids stay
// consistent.
func (a *Agent) runRound(ctx context.Context, queries []searchQuery, st *State, em *emitter) {
	batches := make(chan workerBatch, len(queries))

	var wg sync.WaitGroup
	for _, q := range queries {
		wg.Add(1)
		go func(q searchQuery) {
			defer wg.Done()
			batches <- a.webResearch(ctx, q, st, em)
		}(q)
	}
	wg.Wait()
	close(batches)

	for b := range batches {
		st.QueriesRun = append(st.QueriesRun, b.query)
		if b.err != nil {
			a.logger.Error("web research task failed", "query", b.query, "error", b.err)
			continue
		}
		st.Narratives = append(st.Narratives, b.narrative)
		st.SourcesGathered = append(st.SourcesGathered, b.sources...)
	}
}
