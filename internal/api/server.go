// Package api serves the AIF operations over HTTP. Request and response
// bodies are raw AIF files; reports and errors are JSON.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samcharles93/aif/internal/logger"
	"github.com/samcharles93/aif/internal/metrics"
	"github.com/samcharles93/aif/internal/ops"
	"github.com/samcharles93/aif/internal/report"
	"github.com/samcharles93/aif/internal/version"
	"github.com/samcharles93/aif/pkg/aif"
)

type Config struct {
	Log     logger.Logger
	Metrics *metrics.Metrics
	// Gatherer backs GET /metrics. The endpoint is not registered when nil.
	Gatherer prometheus.Gatherer
	// MaxBodyBytes caps uploaded files. Zero selects 64 MiB.
	MaxBodyBytes int64
}

type Server struct {
	log      logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	maxBody  int64
}

func NewServer(cfg Config) *Server {
	s := &Server{
		log:      cfg.Log,
		metrics:  cfg.Metrics,
		gatherer: cfg.Gatherer,
		maxBody:  cfg.MaxBodyBytes,
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.maxBody <= 0 {
		s.maxBody = defaultBodyLimit
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID(s.log))

	e.GET("/healthz", s.handleHealth)
	if s.gatherer != nil {
		h := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
		e.GET("/metrics", func(c *echo.Context) error {
			h.ServeHTTP(c.Response(), c.Request())
			return nil
		})
	}

	e.POST("/v1/info", s.handleInfo)
	e.POST("/v1/brighten", s.operation(ops.OpBrighten))
	e.POST("/v1/convert", s.operation(ops.OpConvertColor))
	e.POST("/v1/compress", s.operation(ops.OpCompress))
	e.POST("/v1/decompress", s.operation(ops.OpDecompress))
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, HealthResponse{Status: "ok", Version: version.String()})
}

func (s *Server) handleInfo(c *echo.Context) error {
	start := time.Now()
	body, err := readBody(c, s.maxBody)
	if err != nil {
		return writeError(c, err)
	}
	f, err := aif.Parse(body)
	if err != nil {
		s.metrics.Observe(ops.OpInfo.String(), ops.Outcome(err), int64(len(body)), 0, time.Since(start))
		return writeError(c, err)
	}
	s.metrics.Observe(ops.OpInfo.String(), metrics.ResultOK, int64(len(body)), 0, time.Since(start))

	name := c.QueryParam("name")
	if name == "" {
		name = "-"
	}
	return writeJSON(c, http.StatusOK, report.New(name, f.Report()))
}

// operation returns the handler for one mutating stage. The response body
// is the resulting AIF file.
func (s *Server) operation(op ops.Operation) echo.HandlerFunc {
	return func(c *echo.Context) error {
		p, err := queryParams(c, op)
		if err != nil {
			return writeError(c, err)
		}
		body, err := readBody(c, s.maxBody)
		if err != nil {
			return writeError(c, err)
		}

		start := time.Now()
		out, err := ops.Apply(op, body, p)
		s.metrics.Observe(op.String(), ops.Outcome(err), int64(len(body)), int64(len(out)), time.Since(start))
		if err != nil {
			logger.FromContext(c.Request().Context()).Debug("operation rejected", "op", op.String(), "error", err)
			return writeError(c, err)
		}
		return c.Blob(http.StatusOK, mimeAIF, out)
	}
}

func queryParams(c *echo.Context, op ops.Operation) (ops.Params, error) {
	var p ops.Params
	switch op {
	case ops.OpBrighten:
		raw := c.QueryParam("amount")
		if raw == "" {
			return p, newInvalidRequest("amount is required")
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, newInvalidRequest(fmt.Sprintf("amount %q is not an integer", raw))
		}
		p.Amount = n
	case ops.OpConvertColor:
		raw := c.QueryParam("format")
		if raw == "" {
			return p, newInvalidRequest("format is required")
		}
		f, err := aif.ParsePixelFormat(raw)
		if err != nil {
			return p, err
		}
		p.Format = f
	}
	return p, p.Validate(op)
}
