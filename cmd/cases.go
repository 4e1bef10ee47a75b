package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dotcommander/praxy/internal/output"
	"github.com/dotcommander/praxy/internal/scenarios"
)

var casesCmd = &cobra.Command{
	Use:     "cases",
	Aliases: []string{"case"},
	Short:   "List root-cause analysis cases",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := scenarios.Default()
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), reg.ListCases(), func(w io.Writer) {
			output.PrintCases(w, reg.ListCases())
		})
	},
}

var caseShowCmd = &cobra.Command{
	Use:   "show <id|level>",
	Short: "Show a case brief",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := scenarios.Default()
		if err != nil {
			return err
		}
		c, ok := reg.GetCase(args[0])
		if !ok {
			return fmt.Errorf("case %q: %w", args[0], scenarios.ErrNotFound)
		}
		return printCatalog(cmd.OutOrStdout(), c, func(w io.Writer) {
			output.PrintCase(w, c)
		})
	},
}

func init() {
	casesCmd.AddCommand(caseShowCmd)
	rootCmd.AddCommand(casesCmd)
}
