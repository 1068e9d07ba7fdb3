package harness

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/sqljudge/internal/cache"
	"github.com/leapstack-labs/sqljudge/internal/consensus"
)

// Producer obtains the candidate answers for one question. The credential
// identifies which execution/generation credential the calling worker owns.
type Producer interface {
	Produce(ctx context.Context, q Question, credential string) ([]*consensus.Candidate, error)
}

// SQLProducer executes the question's pre-generated candidate queries
// through the result cache. A candidate whose execution fails still comes
// back valid, carrying the error-sentinel table; generation-level validity
// was decided upstream.
type SQLProducer struct {
	Cache *cache.Cache
}

// Produce implements Producer.
func (p *SQLProducer) Produce(ctx context.Context, q Question, _ string) ([]*consensus.Candidate, error) {
	cands := make([]*consensus.Candidate, 0, len(q.Candidates))
	for i, spec := range q.Candidates {
		cands = append(cands, &consensus.Candidate{
			Source:  spec.Source,
			Attempt: i,
			SQL:     spec.SQL,
			Table:   p.Cache.Execute(ctx, q.Store, spec.SQL),
		})
	}
	return cands, nil
}

// Generator is the external generation collaborator: it turns a question
// (plus feedback from the previous failed attempt) into a candidate query.
type Generator interface {
	Generate(ctx context.Context, q Question, credential, feedback string) (sql string, err error)
}

// GeneratorProducer drives a Generator for a fixed number of rollouts. Each
// rollout retries generation a bounded number of times, strictly
// sequentially, because every retry feeds on the previous failure.
type GeneratorProducer struct {
	Generator Generator
	Cache     *cache.Cache

	// Rollouts is how many independent candidates to produce.
	Rollouts int

	// Retries bounds the sequential attempts within one rollout.
	Retries int
}

// Produce implements Producer.
func (p *GeneratorProducer) Produce(ctx context.Context, q Question, credential string) ([]*consensus.Candidate, error) {
	rollouts := p.Rollouts
	if rollouts <= 0 {
		rollouts = 1
	}
	retries := p.Retries
	if retries <= 0 {
		retries = 1
	}

	cands := make([]*consensus.Candidate, 0, rollouts)
	for r := 0; r < rollouts; r++ {
		cands = append(cands, p.rollout(ctx, q, credential, r, retries))
	}
	return cands, nil
}

func (p *GeneratorProducer) rollout(ctx context.Context, q Question, credential string, attempt, retries int) *consensus.Candidate {
	feedback := ""
	lastErr := "generation produced no query"
	for i := 0; i < retries; i++ {
		sqlText, err := p.Generator.Generate(ctx, q, credential, feedback)
		if err != nil {
			lastErr = err.Error()
			feedback = fmt.Sprintf("attempt %d failed: %s", i+1, lastErr)
			continue
		}

		t := p.Cache.Execute(ctx, q.Store, sqlText)
		if t.IsErrorTable() {
			lastErr = t.ErrorMessage()
			feedback = fmt.Sprintf("attempt %d produced a query that failed to execute: %s\nquery: %s", i+1, lastErr, sqlText)
			continue
		}

		return &consensus.Candidate{
			Source:  credential,
			Attempt: attempt,
			SQL:     sqlText,
			Table:   t,
		}
	}
	return &consensus.Candidate{Source: credential, Attempt: attempt, Err: lastErr}
}
