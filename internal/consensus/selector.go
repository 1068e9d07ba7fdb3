package consensus

import (
	"errors"
	"fmt"
	"math/rand"
)

// DefaultSeed is the tie-break seed used when the caller does not supply a
// random source of its own.
const DefaultSeed = 12345

// ErrNoCandidates distinguishes "there was nothing to select from" from a
// selected-but-wrong answer.
var ErrNoCandidates = errors.New("no candidates to select from")

// Strategy picks one candidate from a pool.
type Strategy interface {
	Name() string
	Select(cands []*Candidate) (*Candidate, error)
}

// DefaultRand returns a fresh random source with the fixed default seed.
func DefaultRand() *rand.Rand {
	return rand.New(rand.NewSource(DefaultSeed))
}

// NewStrategy builds a strategy by name: "frequency", "size", "density" or
// "random". pred is only used by the frequency strategy; rng may be nil to
// use the default seed.
func NewStrategy(name string, pred Predicate, rng *rand.Rand) (Strategy, error) {
	if rng == nil {
		rng = DefaultRand()
	}
	switch name {
	case "frequency", "":
		if pred == nil {
			return nil, fmt.Errorf("frequency strategy requires a predicate")
		}
		return &Frequency{Pred: pred, RNG: rng}, nil
	case "size":
		return &Size{RNG: rng}, nil
	case "density":
		return &Density{RNG: rng}, nil
	case "random":
		return &Random{RNG: rng}, nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", name)
	}
}

// Frequency scores each candidate by how many of the others agree with it
// under the configured predicate, then picks from the highest-consensus
// group.
type Frequency struct {
	Pred Predicate
	RNG  *rand.Rand
}

// Name implements Strategy.
func (s *Frequency) Name() string { return "frequency" }

// Select implements Strategy.
func (s *Frequency) Select(cands []*Candidate) (*Candidate, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}

	consensus := make([]float64, len(cands))
	agreed := false
	for i := 0; i < len(cands); i++ {
		for j := i + 1; j < len(cands); j++ {
			if cands[i].Table == nil || cands[j].Table == nil {
				continue
			}
			if s.Pred(cands[i], cands[j]) {
				consensus[i]++
				consensus[j]++
				agreed = true
			}
		}
	}

	// With no agreement anywhere the scores carry no signal; fall back to
	// the whole pool.
	if !agreed {
		return pick(s.RNG, cands), nil
	}
	return pick(s.RNG, argmaxPool(cands, consensus)), nil
}

// Size favors the candidate with the largest output (cell count); a missing
// table scores below any real one.
type Size struct {
	RNG *rand.Rand
}

// Name implements Strategy.
func (s *Size) Name() string { return "size" }

// Select implements Strategy.
func (s *Size) Select(cands []*Candidate) (*Candidate, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	scores := make([]float64, len(cands))
	for i, c := range cands {
		if c.Table == nil {
			scores[i] = -1
			continue
		}
		scores[i] = float64(c.Table.Size())
	}
	return pick(s.RNG, argmaxPool(cands, scores)), nil
}

// Density favors the candidate with the heaviest cells: serialized payload
// bytes divided by cell count.
type Density struct {
	RNG *rand.Rand
}

// Name implements Strategy.
func (s *Density) Name() string { return "density" }

// Select implements Strategy.
func (s *Density) Select(cands []*Candidate) (*Candidate, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	scores := make([]float64, len(cands))
	for i, c := range cands {
		if c.Table == nil || c.Table.Size() == 0 {
			scores[i] = -1
			continue
		}
		scores[i] = float64(c.Table.SerializedSize()) / float64(c.Table.Size())
	}
	return pick(s.RNG, argmaxPool(cands, scores)), nil
}

// Random picks uniformly from the pool.
type Random struct {
	RNG *rand.Rand
}

// Name implements Strategy.
func (s *Random) Name() string { return "random" }

// Select implements Strategy.
func (s *Random) Select(cands []*Candidate) (*Candidate, error) {
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	return pick(s.RNG, cands), nil
}

// argmaxPool returns all candidates whose score equals the maximum.
func argmaxPool(cands []*Candidate, scores []float64) []*Candidate {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	var pool []*Candidate
	for i, c := range cands {
		if scores[i] == max {
			pool = append(pool, c)
		}
	}
	return pool
}

// pick breaks ties uniformly using the injected source.
func pick(rng *rand.Rand, pool []*Candidate) *Candidate {
	if len(pool) == 1 {
		return pool[0]
	}
	return pool[rng.Intn(len(pool))]
}
