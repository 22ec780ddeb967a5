package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mBrond/chat-medicamentos/internal/app"
	"github.com/mBrond/chat-medicamentos/internal/evaluation"
)

var (
	evalGuardrails evaluation.GuardrailConfig
	evalVerbose    bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <golden.json>",
	Short: "Score resolution quality against a golden query set",
	Long: "Resolves every golden query against the configured dataset and reports recall, " +
		"reciprocal rank, match type accuracy and not-found counts, overall and per intent. " +
		"Exits non-zero when a threshold is missed.",
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	f := evalCmd.Flags()
	f.Float64Var(&evalGuardrails.MinRecall, "min-recall", 0, "minimum average recall")
	f.Float64Var(&evalGuardrails.MinMRR, "min-mrr", 0, "minimum mean reciprocal rank")
	f.Float64Var(&evalGuardrails.MinMatchTypeAccuracy, "min-match-type-accuracy", 0, "minimum match type accuracy")
	f.IntVar(&evalGuardrails.MaxErrors, "max-errors", 0, "queries allowed to fail with an error")
	f.IntVar(&evalGuardrails.MaxFalseNotFound, "max-false-not-found", 0, "answerable queries allowed to return not found")
	f.BoolVarP(&evalVerbose, "verbose", "v", false, "list failing queries")
}

func runEval(cmd *cobra.Command, args []string) error {
	queries, err := evaluation.LoadGoldenQueries(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(app.Options{SkipDirectory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := evaluation.NewRunner(a.Resolution).Run(cmd.Context(), queries)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonFlag {
		if err := writeJSON(out, summary); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, formatSummary(summary, evalVerbose))
	}

	if violations := evaluation.NewGuardrails(evalGuardrails).Violations(summary); len(violations) > 0 {
		return fmt.Errorf("evaluation below thresholds: %s", strings.Join(violations, "; "))
	}
	return nil
}
