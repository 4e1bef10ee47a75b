package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
	"github.com/dotcommander/praxy/internal/store"
)

var (
	historyUser   string
	historyDomain string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored results, newest first",
	Long: `The history command lists results saved by earlier score, batch or serve
runs. It requires a result store (store.dsn or PRAXY_STORE_DSN).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "Only show results for this learner")
	historyCmd.Flags().StringVarP(&historyDomain, "domain", "d", "", "Only show results for this domain (call|rca)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultLimit, "Maximum number of results")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyDomain != "" {
		if _, err := scoring.RubricFor(scoring.Domain(historyDomain)); err != nil {
			return err
		}
	}

	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.svc.History(cmd.Context(), store.Filter{
		UserID: historyUser,
		Domain: scoring.Domain(historyDomain),
		Limit:  historyLimit,
	})
	if errors.Is(err, service.ErrNoStore) {
		return fmt.Errorf("%w: set store.dsn to keep results", err)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if cfg.Format == "json" {
		if records == nil {
			records = []store.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No results yet.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %-4s %-28s %3d/100 (%s)  %s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Domain, r.Subject,
			r.Score, scoring.TierFromScore(r.Score), r.ID)
	}
	return nil
}
