package report

import (
	"fmt"
	"io"
	"sort"

	prettytable "github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/sqljudge/internal/harness"
)

// Render writes a human-readable summary.
func (s *Summary) Render(w io.Writer) {
	fmt.Fprintf(w, "Run %s (dataset %q, %d questions)\n\n", s.RunID, s.Dataset, s.TotalQuestions)

	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(prettytable.StyleLight)
	t.AppendHeader(prettytable.Row{"Outcome", "Count"})
	for _, o := range []harness.Outcome{
		harness.OutcomeMatch,
		harness.OutcomeNoMatch,
		harness.OutcomeQueryError,
		harness.OutcomeComparisonError,
		harness.OutcomeTimeout,
	} {
		t.AppendRow(prettytable.Row{string(o), s.Outcomes[o]})
	}
	t.Render()

	fmt.Fprintln(w)
	jt := prettytable.NewWriter()
	jt.SetOutputMirror(w)
	jt.SetStyle(prettytable.StyleLight)
	jt.AppendHeader(prettytable.Row{"Judge", "Hits", "Accuracy", "Upper bound"})
	for _, judge := range sortedJudges(s.JudgeHits) {
		jt.AppendRow(prettytable.Row{
			judge,
			s.JudgeHits[judge],
			fmt.Sprintf("%.1f%%", s.JudgeAccuracy[judge]*100),
			fmt.Sprintf("%.1f%%", s.UpperBoundAccuracy[judge]*100),
		})
	}
	jt.Render()

	if len(s.PerSource) > 0 {
		fmt.Fprintln(w)
		st := prettytable.NewWriter()
		st.SetOutputMirror(w)
		st.SetStyle(prettytable.StyleLight)
		st.AppendHeader(prettytable.Row{"Source", "Selected", "Matched"})
		sources := make([]string, 0, len(s.PerSource))
		for src := range s.PerSource {
			sources = append(sources, src)
		}
		sort.Strings(sources)
		for _, src := range sources {
			stats := s.PerSource[src]
			st.AppendRow(prettytable.Row{src, stats.Selected, stats.Matched})
		}
		st.Render()
	}

	if len(s.MatchDistribution) > 0 {
		fmt.Fprintln(w)
		counts := make([]int, 0, len(s.MatchDistribution))
		for n := range s.MatchDistribution {
			counts = append(counts, n)
		}
		sort.Ints(counts)
		dt := prettytable.NewWriter()
		dt.SetOutputMirror(w)
		dt.SetStyle(prettytable.StyleLight)
		dt.AppendHeader(prettytable.Row{"Candidates matching reference", "Questions"})
		for _, n := range counts {
			dt.AppendRow(prettytable.Row{n, s.MatchDistribution[n]})
		}
		dt.Render()
	}

	if s.CandidateTimeouts > 0 {
		fmt.Fprintf(w, "\n%d selected candidate(s) hit the query execution timeout\n", s.CandidateTimeouts)
	}
}
