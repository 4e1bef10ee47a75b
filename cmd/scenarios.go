package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dotcommander/praxy/internal/output"
	"github.com/dotcommander/praxy/internal/scenarios"
)

var scenariosCmd = &cobra.Command{
	Use:     "scenarios",
	Aliases: []string{"scenario"},
	Short:   "List cold-call practice scenarios",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := scenarios.Default()
		if err != nil {
			return err
		}
		return printCatalog(cmd.OutOrStdout(), reg.ListScenarios(), func(w io.Writer) {
			output.PrintScenarios(w, reg.ListScenarios())
		})
	},
}

var scenarioShowCmd = &cobra.Command{
	Use:   "show <id|level>",
	Short: "Show one scenario with its tips",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := scenarios.Default()
		if err != nil {
			return err
		}
		s, ok := reg.GetScenario(args[0])
		if !ok {
			return fmt.Errorf("scenario %q: %w", args[0], scenarios.ErrNotFound)
		}
		return printCatalog(cmd.OutOrStdout(), s, func(w io.Writer) {
			output.PrintScenario(w, s)
		})
	},
}

var scenarioAgentCmd = &cobra.Command{
	Use:   "agent <level>",
	Short: "Print the voice-agent id for a level",
	Long: `Print the voice-agent id used for a difficulty level. Levels without a
scenario of their own use the level 1 agent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("level must be an integer: %q", args[0])
		}
		reg, err := scenarios.Default()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reg.AgentID(level))
		return nil
	},
}

func init() {
	scenariosCmd.AddCommand(scenarioShowCmd, scenarioAgentCmd)
	rootCmd.AddCommand(scenariosCmd)
}

// printCatalog writes v as JSON when --format json is set, otherwise it
// calls the console printer
func printCatalog(w io.Writer, v any, console func(io.Writer)) error {
	if cfg.Format != "json" {
		console(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
