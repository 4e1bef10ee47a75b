package outputters

import (
	"fmt"
	"io"
	"time"

	"github.com/dotcommander/praxy/internal/config"
	"github.com/dotcommander/praxy/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
	w      io.Writer
}

// NewOutputter creates a new Outputter writing to w unless the config names an output file
func NewOutputter(config *config.Config, w io.Writer) *Outputter {
	return &Outputter{
		config: config,
		w:      w,
	}
}

// Formatter returns the formatter for format
func (o *Outputter) Formatter(format string) (output.Formatter, error) {
	switch format {
	case "console":
		return output.NewConsoleFormatter(o.config.Quiet, o.config.Verbose, o.w), nil
	case "json":
		return output.NewJSONFormatter(true, o.config.Output, o.w), nil
	case "markdown":
		return output.NewMarkdownFormatter(o.config.Verbose, o.config.Output, o.w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Format formats the summary using the given format
func (o *Outputter) Format(summary *output.Summary, format string) error {
	if summary.StartTime.IsZero() {
		summary.StartTime = time.Now()
	}

	formatter, err := o.Formatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(summary)
}
