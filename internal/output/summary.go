package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
)

// Formatter renders a scoring summary
type Formatter interface {
	Format(summary *Summary) error
}

// Failure is a session that could not be scored
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary collects the reports of one command invocation
type Summary struct {
	Reports   []service.Report
	Failures  []Failure
	StartTime time.Time
}

// NewSummary builds a summary from batch items
func NewSummary(items []service.BatchItem) *Summary {
	s := &Summary{StartTime: time.Now()}
	for _, item := range items {
		if item.Err != nil {
			s.Failures = append(s.Failures, Failure{Path: item.Path, Error: item.Err.Error()})
			continue
		}
		s.Reports = append(s.Reports, item.Report)
	}
	return s
}

// Average returns the mean score of all reports, or 0 without reports
func (s *Summary) Average() float64 {
	if len(s.Reports) == 0 {
		return 0
	}
	total := 0
	for _, r := range s.Reports {
		total += r.Result.Score
	}
	return float64(total) / float64(len(s.Reports))
}

// Passed counts reports at or above the good-score threshold
func (s *Summary) Passed() int {
	n := 0
	for _, r := range s.Reports {
		if r.Result.Score >= scoring.GoodScore {
			n++
		}
	}
	return n
}

// writeOutput writes data to outputFile when set, otherwise to w
func writeOutput(w io.Writer, outputFile string, data []byte) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("error writing output file: %w", err)
		}
		return nil
	}
	if w == nil {
		w = os.Stdout
	}
	_, err := w.Write(data)
	return err
}
