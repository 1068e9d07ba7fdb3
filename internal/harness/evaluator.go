package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqljudge/internal/cache"
	"github.com/leapstack-labs/sqljudge/internal/compare"
	"github.com/leapstack-labs/sqljudge/internal/consensus"
	"github.com/leapstack-labs/sqljudge/internal/table"
)

// Defaults for evaluation orchestration.
const (
	DefaultQuestionTimeout      = 3 * time.Minute
	DefaultWorkersPerCredential = 3
)

// Result is the aggregated outcome of one question's evaluation.
type Result struct {
	QuestionID string
	Question   string

	Outcome    Outcome
	Diagnostic string

	// SelectedSource and SelectedSQL identify the consensus pick.
	SelectedSource string
	SelectedSQL    string

	// Judges holds the per-judge verdict for the selected candidate.
	Judges map[string]bool

	// UpperBound reports, per judge, whether any valid candidate matched
	// the reference (how well a perfect selector could have done).
	UpperBound map[string]bool

	// RefMatches counts the valid candidates whose table matched the
	// reference under the tolerant judge.
	RefMatches int

	ValidCount   int
	InvalidCount int

	// CandidateTimedOut marks a selected candidate whose execution came
	// back as the timed-out sentinel.
	CandidateTimedOut bool

	Elapsed time.Duration
}

// Options configures an Evaluator.
type Options struct {
	Cache      *cache.Cache
	Comparator *compare.Comparator
	Producer   Producer
	Logger     *slog.Logger

	// QuestionTimeout is the hard wall-clock budget for one question.
	QuestionTimeout time.Duration

	// Credentials are the execution credentials workers are assigned from,
	// round-robin. May be empty.
	Credentials []string

	// WorkersPerCredential multiplies the credential count into the worker
	// pool size.
	WorkersPerCredential int

	// Strategy and Predicate name the consensus configuration.
	Strategy  string
	Predicate string

	// Seed fixes the tie-break RNG. Zero uses the default seed.
	Seed int64
}

// Evaluator runs question batches through a bounded worker pool.
type Evaluator struct {
	cache      *cache.Cache
	comparator *compare.Comparator
	producer   Producer
	logger     *slog.Logger
	timeout    time.Duration
	creds      []string
	multiplier int
	strategy   string
	predicate  string
	seed       int64
}

// New creates an Evaluator.
func New(opts Options) (*Evaluator, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("evaluator requires a cache")
	}
	if opts.Producer == nil {
		return nil, fmt.Errorf("evaluator requires a candidate producer")
	}
	comparator := opts.Comparator
	if comparator == nil {
		comparator = compare.New(compare.Options{Logger: opts.Logger})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := opts.QuestionTimeout
	if timeout <= 0 {
		timeout = DefaultQuestionTimeout
	}
	multiplier := opts.WorkersPerCredential
	if multiplier <= 0 {
		multiplier = DefaultWorkersPerCredential
	}
	seed := opts.Seed
	if seed == 0 {
		seed = consensus.DefaultSeed
	}
	return &Evaluator{
		cache:      opts.Cache,
		comparator: comparator,
		producer:   opts.Producer,
		logger:     logger,
		timeout:    timeout,
		creds:      opts.Credentials,
		multiplier: multiplier,
		strategy:   opts.Strategy,
		predicate:  opts.Predicate,
		seed:       seed,
	}, nil
}

// Workers returns the bounded pool size: credentials × multiplier.
func (e *Evaluator) Workers() int {
	n := len(e.creds)
	if n == 0 {
		n = 1
	}
	return n * e.multiplier
}

// EvaluateAll runs every question through the worker pool. Each question
// always produces a Result; failures are tagged outcomes, never batch
// aborts.
func (e *Evaluator) EvaluateAll(ctx context.Context, questions []Question) []Result {
	e.logger.Info("starting evaluation", "questions", len(questions), "workers", e.Workers())

	results := make([]Result, len(questions))

	g := new(errgroup.Group)
	g.SetLimit(e.Workers())
	for i, q := range questions {
		cred := ""
		if len(e.creds) > 0 {
			cred = e.creds[i%len(e.creds)]
		}
		g.Go(func() error {
			results[i] = e.evaluateWithTimeout(ctx, q, cred)
			return nil
		})
	}
	_ = g.Wait()

	e.logger.Info("evaluation finished", "questions", len(questions))
	return results
}

// evaluateWithTimeout supervises one question under the hard wall-clock
// budget. On expiry the worker goroutine is abandoned (its context is
// cancelled) and the question is recorded as Timeout, never left pending.
func (e *Evaluator) evaluateWithTimeout(ctx context.Context, q Question, cred string) Result {
	qctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	ch := make(chan Result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- Result{
					QuestionID: q.ID,
					Question:   q.Text,
					Outcome:    OutcomeComparisonError,
					Diagnostic: fmt.Sprintf("evaluation panicked: %v", r),
				}
			}
		}()
		ch <- e.evaluate(qctx, q, cred)
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		res.Elapsed = time.Since(start)
		return res
	case <-timer.C:
		cancel()
		e.logger.Warn("question exceeded its time budget", "question", q.ID, "timeout", e.timeout)
		return Result{
			QuestionID: q.ID,
			Question:   q.Text,
			Outcome:    OutcomeTimeout,
			Diagnostic: fmt.Sprintf("evaluation exceeded %s", e.timeout),
			Elapsed:    time.Since(start),
		}
	}
}

// evaluate runs the full per-question flow: reference execution, candidate
// production, consensus selection, judging, and upper-bound sweep.
func (e *Evaluator) evaluate(ctx context.Context, q Question, cred string) Result {
	res := Result{
		QuestionID: q.ID,
		Question:   q.Text,
		Judges:     make(map[string]bool),
		UpperBound: make(map[string]bool),
	}

	ref := e.cache.Execute(ctx, q.Store, q.ReferenceSQL)
	if ref.IsErrorTable() {
		res.Outcome = OutcomeQueryError
		res.Diagnostic = "reference query failed: " + ref.ErrorMessage()
		return res
	}

	cands, err := e.producer.Produce(ctx, q, cred)
	if err != nil {
		res.Outcome = OutcomeQueryError
		res.Diagnostic = fmt.Sprintf("failed to produce candidates: %v", err)
		return res
	}
	valid := consensus.Valids(cands)
	res.ValidCount = len(valid)
	res.InvalidCount = len(cands) - len(valid)

	pred, ok := consensus.PredicateByName(e.predicate, e.comparator, q.Category, q.Text)
	if !ok {
		res.Outcome = OutcomeComparisonError
		res.Diagnostic = fmt.Sprintf("unknown consensus predicate %q", e.predicate)
		return res
	}
	strategy, err := consensus.NewStrategy(e.strategy, pred, rand.New(rand.NewSource(e.seed)))
	if err != nil {
		res.Outcome = OutcomeComparisonError
		res.Diagnostic = err.Error()
		return res
	}

	selected, err := strategy.Select(valid)
	if err != nil {
		if errors.Is(err, consensus.ErrNoCandidates) {
			res.Outcome = OutcomeQueryError
			res.Diagnostic = firstFailure(cands)
			return res
		}
		res.Outcome = OutcomeComparisonError
		res.Diagnostic = err.Error()
		return res
	}
	res.SelectedSource = selected.Source
	res.SelectedSQL = selected.SQL
	res.CandidateTimedOut = selected.Table.IsTimeoutTable()

	tolerant, cmpErr := e.judgeSafely(func() bool {
		return e.comparator.Compare(ref, selected.Table, q.Category, q.Text, q.ReferenceSQL, selected.SQL)
	})
	bag, _ := e.judgeSafely(func() bool { return compare.BagEqual(ref, selected.Table) })
	multi, _ := e.judgeSafely(func() bool { return compare.ColumnMultisetMatch(selected.Table, ref) })
	res.Judges[JudgeTolerant] = tolerant
	res.Judges[JudgeBag] = bag
	res.Judges[JudgeMultiset] = multi

	e.sweepUpperBounds(&res, ref, q, valid)

	if cmpErr != "" {
		res.Outcome = OutcomeComparisonError
		res.Diagnostic = cmpErr
		return res
	}
	if tolerant {
		res.Outcome = OutcomeMatch
	} else {
		res.Outcome = OutcomeNoMatch
	}
	return res
}

// sweepUpperBounds checks every valid candidate against the reference so
// reports can separate selector quality from generation quality.
func (e *Evaluator) sweepUpperBounds(res *Result, ref *table.Table, q Question, valid []*consensus.Candidate) {
	for _, c := range valid {
		tolerant, _ := e.judgeSafely(func() bool {
			return e.comparator.Compare(ref, c.Table, q.Category, q.Text, q.ReferenceSQL, c.SQL)
		})
		if tolerant {
			res.RefMatches++
			res.UpperBound[JudgeTolerant] = true
		}
		if bag, _ := e.judgeSafely(func() bool { return compare.BagEqual(ref, c.Table) }); bag {
			res.UpperBound[JudgeBag] = true
		}
		if multi, _ := e.judgeSafely(func() bool { return compare.ColumnMultisetMatch(c.Table, ref) }); multi {
			res.UpperBound[JudgeMultiset] = true
		}
	}
}

// judgeSafely runs one comparison, converting a panic into a diagnostic
// instead of letting it abort the question.
func (e *Evaluator) judgeSafely(f func() bool) (verdict bool, errText string) {
	defer func() {
		if r := recover(); r != nil {
			verdict = false
			errText = fmt.Sprintf("comparison failed: %v", r)
		}
	}()
	return f(), ""
}

// firstFailure surfaces the first invalid candidate's error detail.
func firstFailure(cands []*consensus.Candidate) string {
	for _, c := range cands {
		if !c.Valid() && c.Err != "" {
			return c.Err
		}
	}
	return "no usable candidate produced"
}
