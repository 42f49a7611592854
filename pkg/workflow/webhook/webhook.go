// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package webhook exposes one workflow over HTTP. POST / runs the workflow
// with the JSON request body as initial data and returns the run outcome;
// GET /healthz is a liveness probe. The workflow source is parsed and
// validated per request so edits to the backing file take effect on reload
// by the caller.
package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MauricioPerera/a2e-lang/pkg/workflow/engine"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/parser"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/retry"
	"github.com/MauricioPerera/a2e-lang/pkg/workflow/validator"
)

// Server serves one workflow over HTTP.
type Server struct {
	source string
	policy retry.Policy
	sleep  func(time.Duration)
	log    *zap.Logger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithRetryPolicy overrides the retry policy for triggered runs.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Server) { s.policy = p }
}

// WithSleep replaces the sleep function for triggered runs.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Server) { s.sleep = sleep }
}

// WithLogger attaches a zap logger for request-level diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a Server for the given workflow source.
func New(source string, opts ...Option) *Server {
	s := &Server{
		source: source,
		policy: retry.APIRetry,
		sleep:  time.Sleep,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.POST("/", s.trigger)
	router.GET("/healthz", s.health)
	s.router = router

	return s
}

// Router exposes the underlying gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.log.Info("webhook server listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "endpoint": "workflow webhook"})
}

func (s *Server) trigger(c *gin.Context) {
	input := map[string]interface{}{}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading request body"})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body"})
			return
		}
	}

	wf, err := parser.Parse(s.source)
	if err != nil {
		s.log.Error("workflow source does not parse", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if errs := validator.New().Validate(wf); len(errs) > 0 {
		details := make([]string, len(errs))
		for i, e := range errs {
			details[i] = e.Error()
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": details,
		})
		return
	}

	eng := engine.New(
		engine.WithRetryPolicy(s.policy),
		engine.WithInput(input),
		engine.WithSleep(s.sleep),
		engine.WithLogger(s.log),
	)
	result := eng.Execute(wf)

	response := gin.H{
		"success": result.Success,
		"data":    result.Data,
	}
	if result.Log != nil {
		response["log"] = result.Log
	}
	if result.Error != "" {
		response["error"] = result.Error
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	s.log.Info("workflow triggered",
		zap.String("run_id", result.RunID),
		zap.Bool("success", result.Success))
	c.JSON(status, response)
}
