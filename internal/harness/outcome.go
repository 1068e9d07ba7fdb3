package harness

// Outcome tags how one question's evaluation concluded. "Could not
// evaluate" outcomes are kept distinct from NoMatch: a wrong answer and a
// failed evaluation are different signals.
type Outcome string

const (
	// OutcomeMatch: the selected candidate matched the reference.
	OutcomeMatch Outcome = "match"

	// OutcomeNoMatch: evaluation completed and the answer was wrong.
	OutcomeNoMatch Outcome = "no_match"

	// OutcomeQueryError: no usable candidate, or the reference query
	// itself failed (which invalidates the whole question).
	OutcomeQueryError Outcome = "query_error"

	// OutcomeComparisonError: the equivalence evaluation itself failed.
	OutcomeComparisonError Outcome = "comparison_error"

	// OutcomeTimeout: the question exceeded its wall-clock budget.
	OutcomeTimeout Outcome = "timeout"
)

// Judge names for the per-result verdict map.
const (
	JudgeTolerant = "tolerant"
	JudgeBag      = "bag"
	JudgeMultiset = "multiset"
)
