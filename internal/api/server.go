// Package api serves the desk's read view over HTTP and streams state over a websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/maheshnellore19-collab/AI-Trader/internal/desk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/paper"
	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
	"github.com/maheshnellore19-collab/AI-Trader/internal/risk"
	"github.com/maheshnellore19-collab/AI-Trader/internal/signal"
)

// Desk is the controller surface the API reads from.
type Desk interface {
	State() desk.State
	History() []plan.TradePlan
	Account() paper.Snapshot
	Gate() risk.Gate
	Evaluate(signal.FeatureSet) (signal.Signal, error)
	Subscribe(func(desk.State)) func()
}

// Server bundles the gin engine and websocket hub for one desk.
type Server struct {
	desk   Desk
	hub    *Hub
	log    zerolog.Logger
	engine *gin.Engine
}

// NewServer builds the router. Stream or Run connects the hub to desk updates.
func NewServer(d Desk, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	s := &Server{desk: d, hub: NewHub(log), log: log, engine: engine}
	RegisterRoutes(engine, s)
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Stream forwards desk state to websocket clients until ctx is cancelled.
func (s *Server) Stream(ctx context.Context) {
	unsubscribe := s.desk.Subscribe(func(st desk.State) {
		payload, err := json.Marshal(st)
		if err != nil {
			s.log.Warn().Err(err).Msg("marshal state")
			return
		}
		s.hub.Broadcast(payload)
	})
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	go s.hub.Run(ctx)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.Stream(ctx)

	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("api up")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// RegisterRoutes mounts the read API and websocket stream on r.
func RegisterRoutes(r *gin.Engine, s *Server) {
	api := r.Group("/api")

	api.GET("/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.desk.State())
	})

	api.GET("/signal", func(c *gin.Context) {
		st := s.desk.State()
		c.JSON(http.StatusOK, gin.H{"features": st.Features, "signal": st.Signal, "ts": st.UpdatedAt})
	})

	api.GET("/plan", func(c *gin.Context) {
		st := s.desk.State()
		if st.Plan == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no open plan"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": st.Plan, "mark": st.Mark, "unrealized_pnl": st.Unrealized})
	})

	api.GET("/history", func(c *gin.Context) {
		history := s.desk.History()
		if history == nil {
			history = []plan.TradePlan{}
		}
		c.JSON(http.StatusOK, history)
	})

	api.GET("/risk", func(c *gin.Context) {
		st := s.desk.State()
		gate := s.desk.Gate()
		start, end := gate.Session.Window()
		c.JSON(http.StatusOK, gin.H{
			"limits":  gate.Limits,
			"session": gin.H{"entry_not_before": start, "square_off": end},
			"day_pnl": st.DayPnL,
			"blocked": st.Blocked,
			"account": s.desk.Account(),
		})
	})

	api.POST("/evaluate", func(c *gin.Context) {
		var features signal.FeatureSet
		if err := c.ShouldBindJSON(&features); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sig, err := s.desk.Evaluate(features)
		switch {
		case errors.Is(err, signal.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, sig)
		}
	})

	r.GET("/ws", func(c *gin.Context) {
		initial, err := json.Marshal(s.desk.State())
		if err != nil {
			initial = nil
		}
		s.hub.Serve(c.Writer, c.Request, initial)
	})
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}
