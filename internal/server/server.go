// Package server exposes the scoring service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dotcommander/praxy/internal/logging"
	"github.com/dotcommander/praxy/internal/metrics"
	"github.com/dotcommander/praxy/internal/scoring"
	"github.com/dotcommander/praxy/internal/service"
	"github.com/dotcommander/praxy/internal/store"
	"github.com/dotcommander/praxy/internal/submission"
)

// UserHeader carries the learner id set by the identity proxy in front of us
const UserHeader = "X-Praxy-User"

// maxBodySize bounds submission payloads; transcripts are the largest
const maxBodySize = 1 << 20

// Server wires HTTP routes to the scoring service
type Server struct {
	app     *fiber.App
	svc     *service.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New builds the fiber app. m may be nil, which disables /metrics.
func New(svc *service.Service, m *metrics.Metrics) *Server {
	s := &Server{
		svc:     svc,
		metrics: m,
		logger:  logging.New("server"),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "praxy",
		BodyLimit:             maxBodySize,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(s.observe)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api")
	api.Get("/scenarios", s.listScenarios)
	api.Get("/scenarios/:id", s.getScenario)
	api.Get("/scenarios/:level/agent", s.getAgent)
	api.Get("/cases", s.listCases)
	api.Get("/cases/:id", s.getCase)
	api.Post("/score/call", s.scoreCall)
	api.Post("/score/rca", s.scoreRCA)
	api.Get("/results", s.listResults)
	api.Get("/results/:id", s.getResult)

	if s.metrics != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(s.metrics.Handler()))
	}
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// observe logs each request and counts it by route pattern
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := s.app.ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	status := c.Response().StatusCode()
	route := c.Route().Path
	s.metrics.ObserveRequest(route, status)
	s.logger.Debug("request",
		slog.String("method", c.Method()),
		slog.String("route", route),
		slog.Int("status", status),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		code = ferr.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func session(c *fiber.Ctx) service.Session {
	return service.Session{UserID: c.Get(UserHeader)}
}

func (s *Server) listScenarios(c *fiber.Ctx) error {
	return c.JSON(s.svc.Registry().ListScenarios())
}

func (s *Server) getScenario(c *fiber.Ctx) error {
	sc, ok := s.svc.Registry().GetScenario(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "scenario not found: "+c.Params("id"))
	}
	return c.JSON(sc)
}

func (s *Server) getAgent(c *fiber.Ctx) error {
	level, err := strconv.Atoi(c.Params("level"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "level must be an integer")
	}
	return c.JSON(fiber.Map{"level": level, "agent_id": s.svc.Registry().AgentID(level)})
}

func (s *Server) listCases(c *fiber.Ctx) error {
	return c.JSON(s.svc.Registry().ListCases())
}

func (s *Server) getCase(c *fiber.Ctx) error {
	cs, ok := s.svc.Registry().GetCase(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "case not found: "+c.Params("id"))
	}
	return c.JSON(cs)
}

func (s *Server) scoreCall(c *fiber.Ctx) error {
	doc := &submission.Document{Kind: scoring.DomainCall}
	if err := json.Unmarshal(c.Body(), &doc.Call); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return s.score(c, doc)
}

func (s *Server) scoreRCA(c *fiber.Ctx) error {
	doc := &submission.Document{Kind: scoring.DomainRCA}
	if err := json.Unmarshal(c.Body(), &doc.RCA); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	return s.score(c, doc)
}

func (s *Server) score(c *fiber.Ctx, doc *submission.Document) error {
	report, err := s.svc.ScoreDocument(c.UserContext(), session(c), doc)
	switch {
	case submission.IsValidationError(err), errors.Is(err, service.ErrUnknownCase):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	return c.JSON(report)
}

func (s *Server) listResults(c *fiber.Ctx) error {
	f := store.Filter{
		UserID: c.Query("user", c.Get(UserHeader)),
		Domain: scoring.Domain(c.Query("domain")),
		Limit:  c.QueryInt("limit", store.DefaultLimit),
	}
	if f.Domain != "" {
		if _, err := scoring.RubricFor(f.Domain); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	records, err := s.svc.History(c.UserContext(), f)
	if errors.Is(err, service.ErrNoStore) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	if err != nil {
		return err
	}
	if records == nil {
		records = []store.Record{}
	}
	return c.JSON(records)
}

func (s *Server) getResult(c *fiber.Ctx) error {
	record, err := s.svc.Get(c.UserContext(), c.Params("id"))
	switch {
	case errors.Is(err, service.ErrNoStore):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "result not found: "+c.Params("id"))
	case err != nil:
		return err
	}
	return c.JSON(record)
}
