package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/praxy/internal/discovery"
	"github.com/dotcommander/praxy/internal/output"
	"github.com/dotcommander/praxy/internal/service"
)

var scoreUser string

var scoreCmd = &cobra.Command{
	Use:   "score <file>...",
	Short: "Score one or more practice session files",
	Long: `The score command grades practice session files and prints the feedback.

A session file is YAML or JSON. Its kind is "call" or "rca"; when omitted it
is inferred from the fields present.

Cold call:
  kind: call
  scenario_id: cfo-budget-freeze
  outcome: partial            # success | partial | failure
  duration_seconds: 140
  transcript:
    - role: user
      content: Hi Priya, this is Sam from Brightline...

Root-cause analysis:
  kind: rca
  case_id: checkout-timeouts
  submitted_root_cause: Database connection pool exhausted under load
  submitted_reasoning: ...
  five_whys: [...]`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreUser, "user", "u", "", "Learner id to record results under")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		paths    []string
		failures []output.Failure
	)
	for _, arg := range args {
		abs, err := discovery.ValidateFilePath(arg)
		if err != nil {
			failures = append(failures, output.Failure{Path: arg, Error: err.Error()})
			continue
		}
		paths = append(paths, abs)
	}

	items := a.svc.ScoreFiles(cmd.Context(), service.Session{UserID: scoreUser}, paths)
	summary := output.NewSummary(items)
	summary.Failures = append(failures, summary.Failures...)
	return report(cmd.OutOrStdout(), summary)
}
