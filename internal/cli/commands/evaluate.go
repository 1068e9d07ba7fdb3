package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqljudge/internal/compare"
	"github.com/leapstack-labs/sqljudge/internal/harness"
	"github.com/leapstack-labs/sqljudge/internal/report"
)

// EvaluateOptions holds options for the evaluate command.
type EvaluateOptions struct {
	Output  string
	NoWrite bool
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand() *cobra.Command {
	opts := &EvaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate QUESTIONS_FILE",
		Short: "Evaluate a question set and report consensus accuracy",
		Long: `Run a batch of questions through the evaluation harness.

For each question the reference query and every candidate query are
executed (through the result cache), a consensus candidate is selected,
and the equivalence judges score it against the reference. The run
summary is rendered to stdout and written to the results directory.`,
		Example: `  # Evaluate with the default frequency strategy
  sqljudge evaluate questions.yaml

  # Size-based selection, bag-equality agreement
  sqljudge evaluate questions.yaml --strategy size --predicate bag

  # Reproducible tie-breaks
  sqljudge evaluate questions.yaml --seed 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the JSON summary to this path instead of the results directory")
	cmd.Flags().BoolVar(&opts.NoWrite, "no-write", false, "Skip writing the JSON summary")

	return cmd
}

func runEvaluate(cmd *cobra.Command, questionsFile string, opts *EvaluateOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cc.Cfg

	set, err := harness.LoadQuestions(questionsFile)
	if err != nil {
		return err
	}
	for i := range set.Questions {
		if set.Questions[i].Store.Type == "" {
			set.Questions[i].Store = cfg.Store
		}
	}
	if len(set.Questions) == 0 {
		return fmt.Errorf("question set %s contains no questions", questionsFile)
	}

	comparator := compare.New(compare.Options{
		NumericTolerance: cfg.NumericTolerance,
		RoundDecimals:    cfg.RoundDecimals,
		NumericThreshold: cfg.NumericThreshold,
		Logger:           cc.Logger,
	})

	eval, err := harness.New(harness.Options{
		Cache:                cc.Cache,
		Comparator:           comparator,
		Producer:             &harness.SQLProducer{Cache: cc.Cache},
		Logger:               cc.Logger,
		QuestionTimeout:      time.Duration(cfg.QuestionTimeoutSeconds) * time.Second,
		Credentials:          cfg.Credentials,
		WorkersPerCredential: cfg.WorkersPerCredential,
		Strategy:             cfg.Strategy,
		Predicate:            cfg.Predicate,
		Seed:                 cfg.Seed,
	})
	if err != nil {
		return err
	}

	cc.Logger.Info("starting evaluation",
		"dataset", set.Dataset,
		"questions", len(set.Questions),
		"workers", eval.Workers(),
		"strategy", cfg.Strategy,
		"predicate", cfg.Predicate)

	results := eval.EvaluateAll(cmd.Context(), set.Questions)
	summary := report.Build(set.Dataset, results)
	summary.Render(cmd.OutOrStdout())

	if opts.NoWrite {
		return nil
	}
	outPath := opts.Output
	if outPath == "" {
		if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
		outPath = filepath.Join(cfg.ResultsDir, fmt.Sprintf("run-%s.json", summary.RunID))
	}
	if err := summary.WriteJSON(outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSummary written to %s\n", outPath)
	return nil
}
