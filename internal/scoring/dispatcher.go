package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dotcommander/praxy/internal/logging"
	"github.com/dotcommander/praxy/internal/scenarios"
)

// Source records which path produced a result
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Reason explains why the fallback scorer was used
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoCredential Reason = "no_credential"
	ReasonTransport    Reason = "transport"
	ReasonStatus       Reason = "status"
	ReasonMalformed    Reason = "malformed"
	ReasonInvalidShape Reason = "invalid_shape"
)

// Completer sends a single prompt to a chat-completion model
type Completer interface {
	// Available reports whether a credential is configured
	Available() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// Validator checks raw AI output against the result schema for a domain
type Validator interface {
	Validate(domain string, data []byte) error
}

// Observer receives one notification per scored submission
type Observer interface {
	ObserveScoring(domain string, source Source, reason Reason, elapsed time.Duration)
}

// Strategy is the domain-specific half of a dispatcher
type Strategy[In any] struct {
	Rubric   Rubric
	Prompt   func(In) string
	Fallback func(In) Result
}

// Evaluation is a result plus how it was produced. Only Result is meant for learners.
type Evaluation struct {
	Result Result
	Source Source
	Reason Reason
}

// Option configures a Dispatcher
type Option func(*options)

type options struct {
	completer Completer
	validator Validator
	observer  Observer
	logger    *slog.Logger
}

// WithCompleter sets the AI provider. Without one every submission is scored by the fallback.
func WithCompleter(c Completer) Option {
	return func(o *options) { o.completer = c }
}

// WithValidator enables shape validation of AI output
func WithValidator(v Validator) Option {
	return func(o *options) { o.validator = v }
}

// WithObserver reports every evaluation, e.g. to metrics
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger overrides the component logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Dispatcher tries the AI provider once and falls back to the deterministic
// scorer on any failure. It holds no per-request state and is safe for
// concurrent use.
type Dispatcher[In any] struct {
	strategy  Strategy[In]
	completer Completer
	validator Validator
	observer  Observer
	logger    *slog.Logger
}

// NewDispatcher builds a dispatcher for a strategy
func NewDispatcher[In any](s Strategy[In], opts ...Option) *Dispatcher[In] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.New("scoring")
	}
	return &Dispatcher[In]{
		strategy:  s,
		completer: o.completer,
		validator: o.validator,
		observer:  o.observer,
		logger:    logger.With(slog.String("domain", string(s.Rubric.Domain))),
	}
}

// NewCallDispatcher scores cold calls. reg may be nil; it only enriches the prompt.
func NewCallDispatcher(reg *scenarios.Registry, opts ...Option) *Dispatcher[CallInput] {
	return NewDispatcher(Strategy[CallInput]{
		Rubric: CallRubric,
		Prompt: func(in CallInput) string {
			if reg != nil {
				if s, ok := reg.GetScenario(in.ScenarioID); ok {
					return BuildCallPrompt(in, &s)
				}
			}
			return BuildCallPrompt(in, nil)
		},
		Fallback: ScoreCallFallback,
	}, opts...)
}

// NewRCADispatcher scores root-cause submissions. reg may be nil.
func NewRCADispatcher(reg *scenarios.Registry, opts ...Option) *Dispatcher[RCAInput] {
	return NewDispatcher(Strategy[RCAInput]{
		Rubric: RCARubric,
		Prompt: func(in RCAInput) string {
			if reg != nil && in.CaseID != "" {
				if c, ok := reg.GetCase(in.CaseID); ok {
					return BuildRCAPrompt(in, &c)
				}
			}
			return BuildRCAPrompt(in, nil)
		},
		Fallback: ScoreRCAFallback,
	}, opts...)
}

// Score returns a well-formed result for in. It never fails.
func (d *Dispatcher[In]) Score(ctx context.Context, in In) Result {
	return d.Evaluate(ctx, in).Result
}

// Evaluate scores in and reports which path produced the result
func (d *Dispatcher[In]) Evaluate(ctx context.Context, in In) Evaluation {
	start := time.Now()
	ev := d.evaluate(ctx, in)
	if d.observer != nil {
		d.observer.ObserveScoring(string(d.strategy.Rubric.Domain), ev.Source, ev.Reason, time.Since(start))
	}
	return ev
}

func (d *Dispatcher[In]) evaluate(ctx context.Context, in In) Evaluation {
	if d.completer == nil || !d.completer.Available() {
		d.logger.Debug("no AI credential configured, using fallback scorer")
		return d.fallback(in, ReasonNoCredential)
	}

	text, err := d.completer.Complete(ctx, d.strategy.Prompt(in))
	if err != nil {
		reason := ReasonTransport
		var statusErr interface{ HTTPStatus() int }
		if errors.As(err, &statusErr) {
			reason = ReasonStatus
		}
		d.logger.Warn("AI scoring request failed, using fallback scorer",
			slog.String("reason", string(reason)), slog.Any("error", err))
		return d.fallback(in, reason)
	}

	data := []byte(StripCodeFence(text))
	if !json.Valid(data) {
		d.logger.Warn("AI scoring returned malformed JSON, using fallback scorer",
			slog.String("reason", string(ReasonMalformed)), slog.Int("bytes", len(data)))
		return d.fallback(in, ReasonMalformed)
	}

	if d.validator != nil {
		if err := d.validator.Validate(string(d.strategy.Rubric.Domain), data); err != nil {
			d.logger.Warn("AI scoring returned an unexpected shape, using fallback scorer",
				slog.String("reason", string(ReasonInvalidShape)), slog.Any("error", err))
			return d.fallback(in, ReasonInvalidShape)
		}
	}

	res, err := d.strategy.Rubric.Decode(data)
	if err != nil {
		d.logger.Warn("AI scoring result could not be decoded, using fallback scorer",
			slog.String("reason", string(ReasonMalformed)), slog.Any("error", fmt.Errorf("decode: %w", err)))
		return d.fallback(in, ReasonMalformed)
	}
	return Evaluation{Result: res, Source: SourceAI}
}

func (d *Dispatcher[In]) fallback(in In, reason Reason) Evaluation {
	return Evaluation{Result: d.strategy.Fallback(in), Source: SourceFallback, Reason: reason}
}

// StripCodeFence removes a markdown code fence (```json ... ``` or ``` ... ```)
// wrapped around model output
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
