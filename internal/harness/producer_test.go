package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator replays a fixed sequence of generation outcomes and
// records the feedback it was given.
type scriptedGenerator struct {
	queries   []string
	errs      []error
	call      int
	feedbacks []string
}

func (g *scriptedGenerator) Generate(_ context.Context, _ Question, _ string, feedback string) (string, error) {
	g.feedbacks = append(g.feedbacks, feedback)
	i := g.call
	g.call++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	return g.queries[i], nil
}

func TestSQLProducerExecutesAllCandidates(t *testing.T) {
	c, cfg := newTestCache(t)
	p := &SQLProducer{Cache: c}

	q := Question{
		Store: cfg,
		Candidates: []CandidateSpec{
			{Source: "a", SQL: "SELECT name FROM users"},
			{Source: "b", SQL: "SELECT broken FROM nowhere"},
		},
	}

	cands, err := p.Produce(context.Background(), q, "")
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.True(t, cands[0].Valid())
	assert.Equal(t, 3, cands[0].Table.NumRows())

	// Execution failure still yields a valid candidate carrying the
	// sentinel table; validity was decided at generation time.
	assert.True(t, cands[1].Valid())
	assert.True(t, cands[1].Table.IsErrorTable())
}

func TestGeneratorProducerRetriesWithFeedback(t *testing.T) {
	c, cfg := newTestCache(t)

	gen := &scriptedGenerator{
		queries: []string{"", "SELECT bad FROM nowhere", "SELECT name FROM users"},
		errs:    []error{errors.New("model overloaded"), nil, nil},
	}
	p := &GeneratorProducer{Generator: gen, Cache: c, Rollouts: 1, Retries: 3}

	q := Question{Store: cfg, Text: "list users"}
	cands, err := p.Produce(context.Background(), q, "key-1")
	require.NoError(t, err)
	require.Len(t, cands, 1)

	require.True(t, cands[0].Valid())
	assert.Equal(t, "SELECT name FROM users", cands[0].SQL)
	assert.Equal(t, "key-1", cands[0].Source)

	// Each retry sees feedback derived from the previous failure.
	require.Len(t, gen.feedbacks, 3)
	assert.Empty(t, gen.feedbacks[0])
	assert.Contains(t, gen.feedbacks[1], "model overloaded")
	assert.Contains(t, gen.feedbacks[2], "SELECT bad FROM nowhere")
}

func TestGeneratorProducerExhaustsRetries(t *testing.T) {
	c, cfg := newTestCache(t)

	gen := &scriptedGenerator{
		queries: []string{"SELECT bad FROM nowhere", "SELECT bad FROM nowhere"},
	}
	p := &GeneratorProducer{Generator: gen, Cache: c, Rollouts: 1, Retries: 2}

	cands, err := p.Produce(context.Background(), Question{Store: cfg}, "key-1")
	require.NoError(t, err)
	require.Len(t, cands, 1)

	assert.False(t, cands[0].Valid())
	assert.NotEmpty(t, cands[0].Err)
}
