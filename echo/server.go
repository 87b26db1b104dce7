// Package echo exposes the oracle over HTTP with labstack/echo.
package echo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/lawofone"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds graceful shutdown once the run context is done.
const ShutdownTimeout = 5 * time.Second

// Server serves ask and search endpoints backed by an Oracle.
type Server struct {
	e        *echo.Echo
	oracle   *lawofone.Oracle
	stats    lawofone.CorpusStats
	logger   *slog.Logger
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	answers  *prometheus.CounterVec
}

// NewServer creates a Server. stats is reported by /api/stats.
func NewServer(oracle *lawofone.Oracle, stats lawofone.CorpusStats, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		e:        echo.New(),
		oracle:   oracle,
		stats:    stats,
		logger:   logger,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ra_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ra_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ra_answers_total",
			Help: "Answers given by kind.",
		}, []string{"kind"}),
	}
	s.registry.MustRegister(s.requests, s.latency, s.answers)

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.HTTPErrorHandler = s.handleError
	s.e.Use(middleware.Recover())
	s.e.Use(s.observe)

	s.e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	s.e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.e.Group("/api")
	api.GET("/ask", s.handleAsk)
	api.GET("/search", s.handleSearch)
	api.GET("/stats", s.handleStats)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return s.e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// AskResponse is the body returned by /api/ask.
type AskResponse struct {
	Answer string `json:"answer"`
	Kind   string `json:"kind"`
}

// SearchResult is one ranked match returned by /api/search.
type SearchResult struct {
	Source string          `json:"source"`
	Score  int             `json:"score"`
	Result lawofone.Result `json:"result"`
}

// SearchResponse is the body returned by /api/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(c echo.Context) error {
	q, err := queryParam(c)
	if err != nil {
		return err
	}
	answer := s.oracle.Answer(q)
	s.answers.WithLabelValues(string(answer.Kind)).Inc()
	return c.JSON(http.StatusOK, AskResponse{Answer: answer.Text, Kind: string(answer.Kind)})
}

func (s *Server) handleSearch(c echo.Context) error {
	q, err := queryParam(c)
	if err != nil {
		return err
	}
	resp := SearchResponse{Query: q, Results: []SearchResult{}}
	for _, r := range s.oracle.Search(q) {
		resp.Results = append(resp.Results, SearchResult{Source: r.Source().String(), Score: r.Score(), Result: r})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.stats)
}

// queryParam returns the q parameter or EINVALID when it is blank.
func queryParam(c echo.Context) (string, error) {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return "", lawofone.Errorf(lawofone.EINVALID, "query parameter q is required")
	}
	return q, nil
}

// observe records request metrics and logs each request.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		begin := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		code := c.Response().Status
		s.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		s.latency.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		s.logger.Debug("http request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", code,
			"duration", time.Since(begin),
		)
		return nil
	}
}

// handleError maps application and echo errors to JSON replies.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := lawofone.ErrorMessage(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		switch lawofone.ErrorCode(err) {
		case lawofone.EINVALID:
			code = http.StatusBadRequest
		case lawofone.ENOTFOUND:
			code = http.StatusNotFound
		}
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error("http error", "path", c.Request().URL.Path, "error", err)
	}
	_ = c.JSON(code, ErrorResponse{Error: msg})
}
