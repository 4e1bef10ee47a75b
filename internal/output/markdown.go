package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct {
	verbose    bool
	outputFile string
	w          io.Writer
}

// NewMarkdownFormatter creates a new MarkdownFormatter
func NewMarkdownFormatter(verbose bool, outputFile string, w io.Writer) *MarkdownFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &MarkdownFormatter{
		verbose:    verbose,
		outputFile: outputFile,
		w:          w,
	}
}

// Format writes the summary as a Markdown document
func (f *MarkdownFormatter) Format(summary *Summary) error {
	var builder strings.Builder

	builder.WriteString("# Praxy Practice Report\n\n")
	builder.WriteString(fmt.Sprintf("**Generated:** %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	builder.WriteString("## Summary\n\n")
	builder.WriteString("| Metric | Value |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| Sessions | %d |\n", len(summary.Reports)+len(summary.Failures)))
	builder.WriteString(fmt.Sprintf("| Scored | %d |\n", len(summary.Reports)))
	builder.WriteString(fmt.Sprintf("| Good (%d+) | %d |\n", scoring.GoodScore, summary.Passed()))
	builder.WriteString(fmt.Sprintf("| Average | %.1f |\n", summary.Average()))
	if len(summary.Failures) > 0 {
		builder.WriteString(fmt.Sprintf("| Failed | %d |\n", len(summary.Failures)))
	}
	builder.WriteString("\n")

	if len(summary.Reports) == 0 && len(summary.Failures) == 0 {
		builder.WriteString("*No sessions found to score.*\n")
	}

	for _, report := range summary.Reports {
		f.writeReport(&builder, report)
	}

	if len(summary.Failures) > 0 {
		builder.WriteString("## Not scored\n\n")
		for _, failure := range summary.Failures {
			builder.WriteString(fmt.Sprintf("- `%s`: %s\n", failure.Path, failure.Error))
		}
		builder.WriteString("\n")
	}

	return writeOutput(f.w, f.outputFile, []byte(builder.String()))
}

func (f *MarkdownFormatter) writeReport(builder *strings.Builder, report service.Report) {
	res := report.Result
	subject := report.Subject
	if subject == "" {
		subject = "Unnamed session"
	}
	builder.WriteString(fmt.Sprintf("## %s (%s)\n\n", subject, report.Domain))
	builder.WriteString(fmt.Sprintf("**Score:** %d/100 (tier %s)\n\n", res.Score, res.Tier()))

	builder.WriteString("| Dimension | Score | Comment |\n")
	builder.WriteString("|-----------|-------|---------|\n")
	for _, d := range res.Dimensions {
		builder.WriteString(fmt.Sprintf("| %s | %d/%d | %s |\n", d.Label, d.Score, d.Max, escapeCell(d.Comment)))
	}
	builder.WriteString("\n")

	if res.Overall != "" {
		builder.WriteString(res.Overall + "\n\n")
	}
	if res.Message != "" {
		builder.WriteString(fmt.Sprintf("> %s\n\n", res.Message))
	}
	if res.TopTip != "" {
		builder.WriteString(fmt.Sprintf("**Top tip:** %s\n\n", res.TopTip))
	}
	if f.verbose && report.ID != "" {
		builder.WriteString(fmt.Sprintf("<sub>id %s</sub>\n\n", report.ID))
	}
}

// escapeCell keeps a comment inside one table cell
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
