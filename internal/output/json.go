package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dotcommander/praxy/internal/service"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	indent     bool
	outputFile string
	w          io.Writer
}

// NewJSONFormatter creates a new JSONFormatter. When outputFile is empty the
// report goes to w (stdout when nil).
func NewJSONFormatter(indent bool, outputFile string, w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{
		indent:     indent,
		outputFile: outputFile,
		w:          w,
	}
}

// JSONReport represents the complete JSON report structure
type JSONReport struct {
	Header   JSONHeader       `json:"header"`
	Summary  JSONSummary      `json:"summary"`
	Results  []service.Report `json:"results"`
	Failures []Failure        `json:"failures,omitempty"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	Total    int     `json:"total"`
	Scored   int     `json:"scored"`
	Failed   int     `json:"failed"`
	Good     int     `json:"good"`
	Average  float64 `json:"average"`
	Duration string  `json:"duration,omitempty"`
}

// Version is stamped into JSON report headers
var Version = "dev"

// Format writes the summary as a JSON document
func (f *JSONFormatter) Format(summary *Summary) error {
	report := JSONReport{
		Header: JSONHeader{
			Tool:      "praxy",
			Version:   Version,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		Summary: JSONSummary{
			Total:   len(summary.Reports) + len(summary.Failures),
			Scored:  len(summary.Reports),
			Failed:  len(summary.Failures),
			Good:    summary.Passed(),
			Average: summary.Average(),
		},
		Results:  summary.Reports,
		Failures: summary.Failures,
	}
	if report.Results == nil {
		report.Results = []service.Report{}
	}
	if !summary.StartTime.IsZero() {
		report.Summary.Duration = time.Since(summary.StartTime).Round(time.Millisecond).String()
	}

	var (
		data []byte
		err  error
	)
	if f.indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	return writeOutput(f.w, f.outputFile, append(data, '\n'))
}
