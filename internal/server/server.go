// Package server exposes nesting over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/engine"
	"github.com/piwi3910/AutoNestCut/internal/model"
	"github.com/piwi3910/AutoNestCut/internal/project"
	"github.com/piwi3910/AutoNestCut/internal/report"
)

// Request limits for POST /api/nest. Nesting time grows with the number of
// part instances, so the total quantity is capped along with the body size.
const (
	MaxRequestBytes = 1 << 20
	MaxPartCount    = 10000
)

// MaterialLister is the part of the materials store the API reads.
type MaterialLister interface {
	List(ctx context.Context) ([]model.StockMaterial, error)
}

// Server serves the HTTP API. Settings are the base every request's job
// settings are merged over.
type Server struct {
	settings  model.Settings
	materials MaterialLister
	logger    *zap.Logger
}

// New creates a server. materials may be nil, in which case the settings
// catalog is listed instead.
func New(settings model.Settings, materials MaterialLister, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{settings: settings, materials: materials, logger: logger}
}

// NestResponse is the body returned by POST /api/nest.
type NestResponse struct {
	Job        string           `json:"job"`
	TotalParts int              `json:"total_parts"`
	Result     model.NestResult `json:"result"`
	Report     report.Report    `json:"report"`
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	api := r.Group("/api")
	api.GET("/materials", s.handleMaterials)
	api.POST("/nest", s.handleNest)
	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMaterials(c *gin.Context) {
	if s.materials != nil {
		list, err := s.materials.List(c.Request.Context())
		if err != nil {
			s.logger.Error("failed to list materials", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"materials": list})
		return
	}

	list := make([]model.StockMaterial, 0, len(s.settings.StockMaterials))
	for _, name := range s.settings.MaterialNames() {
		m, _ := s.settings.StockFor(name)
		list = append(list, m)
	}
	c.JSON(http.StatusOK, gin.H{"materials": list})
}

func (s *Server) handleNest(c *gin.Context) {
	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge,
				gin.H{"error": fmt.Sprintf("request body exceeds %d bytes", MaxRequestBytes)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	job, err := project.DecodeJob(data, s.settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	total := 0
	for _, pq := range job.Parts {
		total += max(pq.Quantity, 0)
		if total > MaxPartCount {
			c.JSON(http.StatusBadRequest,
				gin.H{"error": fmt.Sprintf("job requests more than %d parts", MaxPartCount)})
			return
		}
	}

	waste := 0.0
	if q := c.Query("waste_percent"); q != "" {
		waste, err = strconv.ParseFloat(q, 64)
		if err != nil || waste < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "waste_percent must be a non-negative number"})
			return
		}
	}

	parts := job.PartsByMaterial()
	result, err := engine.New(job.Settings, s.logger).Nest(parts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	placed := engine.AssignDisplayIDs(result.Boards)

	rep := report.Generate(result)
	if waste > 0 {
		rep = rep.WithEstimates(parts, job.Settings.KerfWidth, waste)
	}

	c.JSON(http.StatusOK, NestResponse{
		Job:        job.Name,
		TotalParts: placed,
		Result:     result,
		Report:     rep,
	})
}
