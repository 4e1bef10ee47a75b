package output

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
)

const barWidth = 20

// ConsoleFormatter formats output for console display
type ConsoleFormatter struct {
	quiet    bool
	verbose  bool
	colorize bool
	w        io.Writer
}

// NewConsoleFormatter creates a new ConsoleFormatter writing to w (stdout when nil)
func NewConsoleFormatter(quiet, verbose bool, w io.Writer) *ConsoleFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleFormatter{
		quiet:    quiet,
		verbose:  verbose,
		colorize: true,
		w:        w,
	}
}

// Format prints every report followed by a short summary
func (f *ConsoleFormatter) Format(summary *Summary) error {
	for _, failure := range summary.Failures {
		f.printFailure(failure)
	}
	if f.quiet {
		return nil
	}

	for i, report := range summary.Reports {
		if i > 0 {
			fmt.Fprintln(f.w)
		}
		f.printReport(report)
	}

	f.printSummary(summary)
	return nil
}

func (f *ConsoleFormatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// tierColor maps a tier letter to a terminal color
func tierColor(tier string) string {
	switch tier {
	case "A":
		return "10" // green
	case "B":
		return "12" // blue
	case "C":
		return "11" // yellow
	default:
		return "9" // red
	}
}

func (f *ConsoleFormatter) printReport(report service.Report) {
	res := report.Result
	tier := res.Tier()
	status := "✓"
	if res.Score < scoring.GoodScore {
		status = "✗"
	}

	header := f.style(tierColor(tier)).Bold(true)
	subject := report.Subject
	if subject == "" {
		subject = "(no scenario)"
	}
	fmt.Fprintf(f.w, "%s %s  %s  %s\n",
		header.Render(status),
		subject,
		f.style("7").Render(string(report.Domain)),
		header.Render(fmt.Sprintf("%d/100 (%s)", res.Score, tier)))

	labelWidth := 0
	for _, d := range res.Dimensions {
		labelWidth = max(labelWidth, len(d.Label))
	}
	for _, d := range res.Dimensions {
		fmt.Fprintf(f.w, "    %-*s %s %2d/%-2d", labelWidth, d.Label, f.bar(d.Score, d.Max), d.Score, d.Max)
		if d.Comment != "" {
			fmt.Fprintf(f.w, "  %s", f.style("7").Render(d.Comment))
		}
		fmt.Fprintln(f.w)
	}

	if res.Overall != "" {
		fmt.Fprintf(f.w, "\n    %s\n", res.Overall)
	}
	if res.Message != "" {
		fmt.Fprintf(f.w, "    %s\n", f.style("14").Italic(true).Render(res.Message))
	}
	if res.TopTip != "" {
		fmt.Fprintf(f.w, "    %s %s\n", f.style("11").Bold(true).Render("Tip:"), res.TopTip)
	}
	if f.verbose && report.ID != "" {
		fmt.Fprintf(f.w, "    %s\n", f.style("8").Render("id "+report.ID))
	}
}

// bar renders score/max as a fixed-width meter
func (f *ConsoleFormatter) bar(score, maxScore int) string {
	filled := 0
	if maxScore > 0 {
		filled = int(math.Round(float64(score) / float64(maxScore) * barWidth))
	}
	filled = min(max(filled, 0), barWidth)
	return f.style("10").Render(strings.Repeat("█", filled)) +
		f.style("8").Render(strings.Repeat("░", barWidth-filled))
}

func (f *ConsoleFormatter) printFailure(failure Failure) {
	fmt.Fprintf(f.w, "%s %s: %s\n", f.style("9").Render("✗"), failure.Path, failure.Error)
}

// printSummary prints totals when more than one session was involved
func (f *ConsoleFormatter) printSummary(summary *Summary) {
	total := len(summary.Reports) + len(summary.Failures)
	if total <= 1 {
		return
	}

	line := fmt.Sprintf("%d/%d scored, %d good, average %.1f",
		len(summary.Reports), total, summary.Passed(), summary.Average())
	if !summary.StartTime.IsZero() {
		line += fmt.Sprintf(" (%v)", time.Since(summary.StartTime).Round(time.Millisecond))
	}
	fmt.Fprintf(f.w, "\n%s\n", f.style("15").Bold(true).Render(line))
}
