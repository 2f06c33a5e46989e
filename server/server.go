// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the answer pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/poiesic/stockbrief/core"
	"github.com/poiesic/stockbrief/orchestrator"
)

// ErrAnswererRequired is returned when no answerer is provided.
var ErrAnswererRequired = errors.New("answerer required")

// Answerer answers a single query.
type Answerer interface {
	Answer(ctx context.Context, query string) (*core.OrchestrationResult, error)
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query string `json:"query"`
}

// AskResponse is the body returned by POST /ask.
type AskResponse struct {
	Response      string   `json:"response"`
	Degraded      bool     `json:"degraded"`
	Identifier    string   `json:"identifier"`
	Source        string   `json:"source"`
	Clarification bool     `json:"clarification"`
	RequestID     string   `json:"request_id"`
	Unavailable   []string `json:"unavailable,omitempty"`
}

// Server is the HTTP front end.
type Server struct {
	echo     *echo.Echo
	answerer Answerer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a Server with routes and middleware registered.
func New(answerer Answerer, opts ...Option) (*Server, error) {
	if answerer == nil {
		return nil, ErrAnswererRequired
	}

	s := &Server{
		answerer: answerer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				s.logger.InfoContext(ctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				s.logger.ErrorContext(ctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"err", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.POST("/ask", s.handleAsk)
	e.GET("/health", s.handleHealth)

	s.echo = e
	return s, nil
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	result, err := s.answerer.Answer(c.Request().Context(), req.Query)
	if err != nil {
		if errors.Is(err, orchestrator.ErrAnswerCancelled) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "request cancelled"})
		}
		s.logger.Error("answer failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, NewAskResponse(result))
}

// NewAskResponse converts an orchestration result to its wire form.
func NewAskResponse(result *core.OrchestrationResult) AskResponse {
	return AskResponse{
		Response:      result.Narrative,
		Degraded:      result.Degraded,
		Identifier:    result.Identifier.String(),
		Source:        string(result.Source),
		Clarification: result.Clarification,
		RequestID:     result.RequestID,
		Unavailable:   result.Unavailable,
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
