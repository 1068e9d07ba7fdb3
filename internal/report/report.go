// Package report aggregates evaluation results into a run summary:
// per-outcome counts, per-judge accuracy and upper bounds, per-source
// breakdown, and the per-question match-count distribution.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/sqljudge/internal/harness"
)

// SourceStats breaks selection down by generation source.
type SourceStats struct {
	Selected int `json:"selected"`
	Matched  int `json:"matched"`
}

// Summary is the aggregated report for one run.
type Summary struct {
	RunID     string    `json:"run_id"`
	Dataset   string    `json:"dataset"`
	StartedAt time.Time `json:"started_at"`

	TotalQuestions int `json:"total_questions"`

	// Outcomes counts questions per tagged outcome. Errors and timeouts
	// stay separate from no_match: "wrong" and "could not evaluate" are
	// different signals.
	Outcomes map[harness.Outcome]int `json:"outcomes"`

	// JudgeHits counts, per judge, questions whose selected candidate
	// matched; JudgeAccuracy is the same as a fraction of all questions.
	JudgeHits     map[string]int     `json:"judge_hits"`
	JudgeAccuracy map[string]float64 `json:"judge_accuracy"`

	// UpperBoundHits counts questions where any valid candidate matched.
	UpperBoundHits     map[string]int     `json:"upper_bound_hits"`
	UpperBoundAccuracy map[string]float64 `json:"upper_bound_accuracy"`

	// CandidateTimeouts counts selected candidates whose execution hit the
	// query timeout sentinel.
	CandidateTimeouts int `json:"candidate_timeouts"`

	// PerSource breaks selections down by generation source.
	PerSource map[string]SourceStats `json:"per_source"`

	// MatchDistribution maps "number of valid candidates agreeing with the
	// reference" to how many questions had that count.
	MatchDistribution map[int]int `json:"match_distribution"`
}

// Build aggregates results into a Summary.
func Build(dataset string, results []harness.Result) *Summary {
	s := &Summary{
		RunID:              uuid.NewString(),
		Dataset:            dataset,
		StartedAt:          time.Now().UTC(),
		TotalQuestions:     len(results),
		Outcomes:           make(map[harness.Outcome]int),
		JudgeHits:          make(map[string]int),
		JudgeAccuracy:      make(map[string]float64),
		UpperBoundHits:     make(map[string]int),
		UpperBoundAccuracy: make(map[string]float64),
		PerSource:          make(map[string]SourceStats),
		MatchDistribution:  make(map[int]int),
	}

	for _, r := range results {
		s.Outcomes[r.Outcome]++
		for judge, hit := range r.Judges {
			if hit {
				s.JudgeHits[judge]++
			}
		}
		for judge, hit := range r.UpperBound {
			if hit {
				s.UpperBoundHits[judge]++
			}
		}
		if r.CandidateTimedOut {
			s.CandidateTimeouts++
		}
		if r.SelectedSource != "" {
			stats := s.PerSource[r.SelectedSource]
			stats.Selected++
			if r.Outcome == harness.OutcomeMatch {
				stats.Matched++
			}
			s.PerSource[r.SelectedSource] = stats
		}
		s.MatchDistribution[r.RefMatches]++
	}

	if s.TotalQuestions > 0 {
		for judge, hits := range s.JudgeHits {
			s.JudgeAccuracy[judge] = float64(hits) / float64(s.TotalQuestions)
		}
		for judge, hits := range s.UpperBoundHits {
			s.UpperBoundAccuracy[judge] = float64(hits) / float64(s.TotalQuestions)
		}
	}
	return s
}

// WriteJSON writes the summary to path.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// sortedJudges returns judge names in stable order for rendering.
func sortedJudges(m map[string]int) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
