// Package httpapi exposes the backtest core over HTTP: POST /api/backtests
// runs a job to completion, GET /api/backtests/stream streams the ordered
// lifecycle events over server-sent events, and GET /api/backtests/template
// returns a worked strategy source example.
package httpapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"backtestlab/internal/orchestrate"
	"backtestlab/internal/sandbox"
)

// Server wraps the gin engine driving the backtest core.
type Server struct {
	addr         string
	orchestrator *orchestrate.Orchestrator
	router       *gin.Engine
}

// New builds a Server bound to addr with its routes registered, ready to Run.
func New(addr string, orch *orchestrate.Orchestrator) *Server {
	if addr == "" {
		addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{addr: addr, orchestrator: orch, router: router}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api/backtests")
	api.POST("", s.handleRun)
	api.GET("/stream", s.handleStream)
	api.GET("/template", s.handleTemplate)
}

// Run starts the HTTP listener, blocking until it exits.
func (s *Server) Run() error {
	return s.router.Run(s.addr)
}

type runRequest struct {
	StrategySource string   `json:"strategy_source" binding:"required"`
	UniverseID     string   `json:"universe_id"`
	CustomTickers  []string `json:"custom_tickers"`
	StartDate      string   `json:"start_date" binding:"required"`
	EndDate        string   `json:"end_date" binding:"required"`
	InitialCapital float64  `json:"initial_capital"`
	PositionSize   float64  `json:"position_size"`
	MaxPositions   int      `json:"max_positions"`
	Commission     float64  `json:"commission"`
	Slippage       float64  `json:"slippage"`
	Interval       string   `json:"interval"`
	UniverseLimit  int      `json:"universe_limit"`
	SampleTrades   int      `json:"sample_trades"`
}

func (r runRequest) toConfig() (orchestrate.BacktestConfig, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return orchestrate.BacktestConfig{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := parseDate(r.EndDate)
	if err != nil {
		return orchestrate.BacktestConfig{}, fmt.Errorf("end_date: %w", err)
	}
	cfg := orchestrate.BacktestConfig{
		StrategySource: r.StrategySource,
		UniverseID:     r.UniverseID,
		CustomTickers:  r.CustomTickers,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: r.InitialCapital,
		PositionSize:   r.PositionSize,
		MaxPositions:   r.MaxPositions,
		Commission:     r.Commission,
		Slippage:       r.Slippage,
		Interval:       r.Interval,
		UniverseLimit:  r.UniverseLimit,
		SampleTradesK:  r.SampleTrades,
	}
	applyRequestDefaults(&cfg)
	return cfg, nil
}

func applyRequestDefaults(cfg *orchestrate.BacktestConfig) {
	if cfg.UniverseID == "" {
		cfg.UniverseID = "sp500"
	}
	if cfg.Interval == "" {
		cfg.Interval = "1d"
	}
	if cfg.PositionSize <= 0 {
		cfg.PositionSize = 1.0
	}
	if cfg.InitialCapital <= 0 {
		cfg.InitialCapital = 100000
	}
}

// handleRun runs one backtest to completion and returns the aggregate.
func (s *Server) handleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := s.orchestrator.Run(c.Request.Context(), cfg)
	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": result.Message})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleStream streams the ordered lifecycle event sequence as
// server-sent events.
func (s *Server) handleStream(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg, err := req.toConfig()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	events := s.orchestrator.RunStreaming(c.Request.Context(), cfg)
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("", ev)
		return true
	})
}

func (s *Server) handleTemplate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"strategy_source": sandbox.Template()})
}
