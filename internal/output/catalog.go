package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/praxy/internal/scenarios"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

func difficultyStyle(d string) lipgloss.Style {
	switch d {
	case scenarios.DifficultyBeginner:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	case scenarios.DifficultyIntermediate:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
}

// PrintScenarios lists cold-call scenarios one per line
func PrintScenarios(w io.Writer, list []scenarios.ScenarioMeta) {
	for _, s := range list {
		fmt.Fprintf(w, "%d  %-24s %s  %s\n",
			s.Level, s.ID, difficultyStyle(s.Difficulty).Render(fmt.Sprintf("%-12s", s.Difficulty)),
			dimStyle.Render(fmt.Sprintf("%s, %s", s.ProspectRole, s.Company)))
	}
}

// PrintScenario shows one scenario with its tips
func PrintScenario(w io.Writer, s scenarios.ScenarioMeta) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("Level %d:", s.Level)), s.ID)
	fmt.Fprintf(w, "  Prospect:   %s, %s at %s\n", s.ProspectName, s.ProspectRole, s.Company)
	fmt.Fprintf(w, "  Objective:  %s\n", s.Objective)
	fmt.Fprintf(w, "  Difficulty: %s\n", difficultyStyle(s.Difficulty).Render(s.Difficulty))
	printTips(w, s.Tips)
}

// PrintCases lists root-cause cases one per line
func PrintCases(w io.Writer, list []scenarios.CaseMeta) {
	for _, c := range list {
		fmt.Fprintf(w, "%d  %-24s %s  %s\n",
			c.Level, c.ID, difficultyStyle(c.Difficulty).Render(fmt.Sprintf("%-12s", c.Difficulty)),
			dimStyle.Render(c.Title))
	}
}

// PrintCase shows one case brief. The reference answer is never printed.
func PrintCase(w io.Writer, c scenarios.CaseMeta) {
	fmt.Fprintf(w, "%s %s\n", titleStyle.Render(fmt.Sprintf("Level %d:", c.Level)), c.Title)
	fmt.Fprintf(w, "  Company:    %s\n", c.Company)
	fmt.Fprintf(w, "  Difficulty: %s\n", difficultyStyle(c.Difficulty).Render(c.Difficulty))
	fmt.Fprintf(w, "\n  %s\n", c.Brief)
	printTips(w, c.Tips)
}

func printTips(w io.Writer, tips []string) {
	if len(tips) == 0 {
		return
	}
	fmt.Fprintf(w, "\n  %s\n", titleStyle.Render("Tips"))
	for _, tip := range tips {
		fmt.Fprintf(w, "  - %s\n", tip)
	}
}
