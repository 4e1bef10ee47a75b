// Package service scores practice sessions on behalf of a learner and keeps
// their history.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dotcommander/praxy/internal/logging"
	"github.com/dotcommander/praxy/internal/scenarios"
	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/store"
	"github.com/dotcommander/praxy/internal/submission"
)

var (
	// ErrUnknownCase is returned when an RCA submission names a case that
	// does not exist and carries no reference answer of its own
	ErrUnknownCase = errors.New("unknown case")

	// ErrNoStore is returned by history lookups when persistence is disabled
	ErrNoStore = errors.New("result store is not configured")
)

// Session identifies the learner a request is made for. An empty UserID is
// an anonymous learner; results are still scored and stored.
type Session struct {
	UserID string
}

// Report is a scored session as shown to the learner
type Report struct {
	ID        string
	UserID    string
	Domain    scoring.Domain
	Subject   string
	Result    scoring.Result
	CreatedAt time.Time

	// Source and Reason record how Result was produced. They are stored and
	// counted but never serialized for the learner.
	Source scoring.Source
	Reason scoring.Reason
}

// MarshalJSON renders the result wire shape plus identifying fields
func (r Report) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Result)
	if err != nil {
		return nil, err
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	for key, value := range map[string]any{
		"id":         r.ID,
		"domain":     r.Domain,
		"subject":    r.Subject,
		"created_at": r.CreatedAt,
	} {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		wire[key] = raw
	}
	return json.Marshal(wire)
}

// Service scores submissions. It is safe for concurrent use.
type Service struct {
	registry    *scenarios.Registry
	call        *scoring.Dispatcher[scoring.CallInput]
	rca         *scoring.Dispatcher[scoring.RCAInput]
	store       store.Store
	concurrency int
	logger      *slog.Logger
	newID       func() string
	now         func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithStore persists every report
func WithStore(s store.Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithConcurrency bounds batch fan-out
func WithConcurrency(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.concurrency = n
		}
	}
}

// WithLogger overrides the component logger
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// New creates a Service. scoringOpts configure both dispatchers.
func New(reg *scenarios.Registry, scoringOpts []scoring.Option, opts ...Option) *Service {
	svc := &Service{
		registry:    reg,
		call:        scoring.NewCallDispatcher(reg, scoringOpts...),
		rca:         scoring.NewRCADispatcher(reg, scoringOpts...),
		concurrency: 4,
		newID:       func() string { return uuid.NewString() },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = logging.New("service")
	}
	return svc
}

// ScoreCall scores a cold call
func (s *Service) ScoreCall(ctx context.Context, sess Session, in scoring.CallInput) (Report, error) {
	ev := s.call.Evaluate(ctx, in)
	return s.record(ctx, sess, scoring.DomainCall, in.ScenarioID, ev)
}

// ScoreRCA scores a root-cause submission. When CaseID is set and the
// reference answer is empty it is filled in from the case catalog.
func (s *Service) ScoreRCA(ctx context.Context, sess Session, in scoring.RCAInput) (Report, error) {
	if in.CaseID != "" && in.CorrectRootCause == "" {
		c, ok := s.lookupCase(in.CaseID)
		if !ok {
			return Report{}, fmt.Errorf("%w: %s", ErrUnknownCase, in.CaseID)
		}
		in.CorrectRootCause = c.RootCause
		if in.CorrectReasoning == "" {
			in.CorrectReasoning = c.Reasoning
		}
	}
	ev := s.rca.Evaluate(ctx, in)
	return s.record(ctx, sess, scoring.DomainRCA, in.CaseID, ev)
}

func (s *Service) lookupCase(id string) (scenarios.CaseMeta, bool) {
	if s.registry == nil {
		return scenarios.CaseMeta{}, false
	}
	return s.registry.GetCase(id)
}

// ScoreDocument validates and scores a parsed submission file. The
// document's user applies when the session is anonymous.
func (s *Service) ScoreDocument(ctx context.Context, sess Session, doc *submission.Document) (Report, error) {
	if err := submission.Validate(doc); err != nil {
		return Report{}, err
	}
	if sess.UserID == "" {
		sess.UserID = doc.User
	}
	switch doc.Kind {
	case scoring.DomainRCA:
		return s.ScoreRCA(ctx, sess, doc.RCA)
	default:
		return s.ScoreCall(ctx, sess, doc.Call)
	}
}

func (s *Service) record(ctx context.Context, sess Session, domain scoring.Domain, subject string, ev scoring.Evaluation) (Report, error) {
	report := Report{
		ID:        s.newID(),
		UserID:    sess.UserID,
		Domain:    domain,
		Subject:   subject,
		Result:    ev.Result,
		CreatedAt: s.now().UTC(),
		Source:    ev.Source,
		Reason:    ev.Reason,
	}

	if s.store == nil {
		return report, nil
	}
	data, err := json.Marshal(report.Result)
	if err != nil {
		return Report{}, fmt.Errorf("encode result: %w", err)
	}
	err = s.store.Save(ctx, store.Record{
		ID:        report.ID,
		UserID:    report.UserID,
		Domain:    domain,
		Subject:   subject,
		Score:     report.Result.Score,
		Source:    report.Source,
		Result:    data,
		CreatedAt: report.CreatedAt,
	})
	if err != nil {
		// the learner still gets their feedback
		s.logger.Warn("failed to persist scoring result", slog.String("id", report.ID), slog.Any("error", err))
	}
	return report, nil
}

// BatchItem is the outcome of scoring one file in a batch
type BatchItem struct {
	Path   string
	Report Report
	Err    error
}

// ScoreFiles parses and scores session files concurrently. Results keep the
// order of paths; a bad file fails only its own item.
func (s *Service) ScoreFiles(ctx context.Context, sess Session, paths []string) []BatchItem {
	items := make([]BatchItem, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			items[i].Path = path
			doc, err := submission.ParseFile(path)
			if err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Report, items[i].Err = s.ScoreDocument(ctx, sess, doc)
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// ScoreBatch scores already parsed documents concurrently, preserving order
func (s *Service) ScoreBatch(ctx context.Context, sess Session, docs []*submission.Document) []BatchItem {
	items := make([]BatchItem, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			items[i].Path = doc.Path
			items[i].Report, items[i].Err = s.ScoreDocument(ctx, sess, doc)
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// History lists stored results, newest first
func (s *Service) History(ctx context.Context, f store.Filter) ([]store.Record, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, f)
}

// Get returns a stored result by id
func (s *Service) Get(ctx context.Context, id string) (store.Record, error) {
	if s.store == nil {
		return store.Record{}, ErrNoStore
	}
	return s.store.Get(ctx, id)
}

// Registry returns the scenario catalog the service scores against
func (s *Service) Registry() *scenarios.Registry {
	return s.registry
}
