// Package harness orchestrates batch evaluation: it obtains reference and
// candidate tables for each question, runs consensus selection and the
// equivalence judges, and converts every failure into a tagged outcome so
// that one bad question never aborts the batch.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqljudge/internal/store"
)

// CandidateSpec is one pre-generated candidate answer for a question.
type CandidateSpec struct {
	// Source names the generation source that produced this candidate.
	Source string `yaml:"source"`

	// SQL is the candidate query to execute against the question's store.
	SQL string `yaml:"sql"`
}

// Question is one evaluation item.
type Question struct {
	ID           string          `yaml:"id"`
	Text         string          `yaml:"question"`
	Category     string          `yaml:"category"`
	Store        store.Config    `yaml:"store"`
	ReferenceSQL string          `yaml:"reference_sql"`
	Candidates   []CandidateSpec `yaml:"candidates"`
}

// QuestionSet is the on-disk format of an evaluation batch.
type QuestionSet struct {
	// Dataset labels the batch in reports.
	Dataset string `yaml:"dataset"`

	// Store is the default store, applied to questions that don't set one.
	Store store.Config `yaml:"store"`

	Questions []Question `yaml:"questions"`
}

// LoadQuestions reads a question set from a YAML file and applies the
// batch-level store default.
func LoadQuestions(path string) (*QuestionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question set: %w", err)
	}

	var set QuestionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse question set: %w", err)
	}

	for i := range set.Questions {
		q := &set.Questions[i]
		if q.Store.Type == "" {
			q.Store = set.Store
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if q.ReferenceSQL == "" {
			return nil, fmt.Errorf("question %s has no reference_sql", q.ID)
		}
	}
	return &set, nil
}
