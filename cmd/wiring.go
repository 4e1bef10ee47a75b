package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/dotcommander/praxy/internal/config"
	"github.com/dotcommander/praxy/internal/cue"
	"github.com/dotcommander/praxy/internal/llm"
	"github.com/dotcommander/praxy/internal/logging"
	"github.com/dotcommander/praxy/internal/metrics"
	"github.com/dotcommander/praxy/internal/output"
	"github.com/dotcommander/praxy/internal/outputters"
	"github.com/dotcommander/praxy/internal/scenarios"
	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
	"github.com/dotcommander/praxy/internal/store"
)

// errFailures signals that some sessions could not be scored. The failures
// have already been printed, so Execute only needs the exit code.
var errFailures = errors.New("some sessions could not be scored")

// app holds the long-lived pieces built from the configuration
type app struct {
	svc     *service.Service
	metrics *metrics.Metrics
	store   *store.SQLStore
}

func buildApp(cfg *config.Config) (*app, error) {
	reg, err := scenarios.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	client := llm.New(llm.Config{
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Endpoint:    cfg.AI.Endpoint,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}, llm.WithLogger(logging.New("llm")))

	m := metrics.New()
	scoringOpts := []scoring.Option{
		scoring.WithCompleter(client),
		scoring.WithObserver(m),
		scoring.WithLogger(logging.New("scoring")),
	}
	if cfg.AI.Validate {
		v := cue.NewValidator()
		if err := v.LoadSchemas(); err != nil {
			return nil, fmt.Errorf("load schemas: %w", err)
		}
		scoringOpts = append(scoringOpts, scoring.WithValidator(v))
	}

	a := &app{metrics: m}
	svcOpts := []service.Option{service.WithConcurrency(cfg.Concurrency)}
	if cfg.Store.Enabled() {
		st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.store = st
		svcOpts = append(svcOpts, service.WithStore(st))
	}
	a.svc = service.New(reg, scoringOpts, svcOpts...)
	return a, nil
}

func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// report prints a summary in the configured format and turns failures
// into errFailures
func report(w io.Writer, summary *output.Summary) error {
	if err := outputters.NewOutputter(cfg, w).Format(summary, cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	if len(summary.Failures) > 0 {
		return errFailures
	}
	return nil
}
