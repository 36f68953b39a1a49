package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agenthands/basket/internal/config"
	"github.com/agenthands/basket/internal/core"
	"github.com/agenthands/basket/internal/core/graph"
	"github.com/agenthands/basket/internal/core/model"
	"github.com/agenthands/basket/internal/core/search"
)

type Server struct {
	Basket *core.Basket
	Config *config.Config

	logger   *zap.Logger
	gatherer prometheus.Gatherer
}

// NewServer wraps a basket service. gatherer backs /metrics; nil uses the
// default registry.
func NewServer(basket *core.Basket, cfg *config.Config, logger *zap.Logger, gatherer prometheus.Gatherer) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		Basket:   basket,
		Config:   cfg,
		logger:   logger,
		gatherer: gatherer,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	r.POST("/transactions", s.AddTransactions)
	r.GET("/stats", s.Stats)
	r.GET("/items", s.Items)

	items := r.Group("/items/:item")
	items.GET("/neighbors", s.Neighbors)
	items.GET("/bought-with", s.BoughtWith)
	items.GET("/associations", s.Associations)
	items.GET("/bfs", s.BFS)
	items.GET("/dfs", s.DFS)

	r.GET("/bundles", s.Bundles)
	r.GET("/pairs", s.Pairs)
	r.GET("/communities", s.Communities)
	r.POST("/export", s.Export)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// fail maps service errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNoSnapshot), errors.Is(err, core.ErrNoDriver):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// intQuery reads an integer query parameter, falling back to def when it is
// absent.
func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": " + raw})
		return 0, false
	}
	return v, true
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type AddTransactionsRequest struct {
	Transactions []model.Transaction `json:"transactions" binding:"required"`
	Append       bool                `json:"append"`
}

func (s *Server) AddTransactions(c *gin.Context) {
	var req AddTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	rebuild := s.Basket.Rebuild
	if req.Append {
		rebuild = s.Basket.Append
	}
	snap, err := rebuild(c.Request.Context(), req.Transactions)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, snap.Info(s.Config.Query.Limit))
}

func (s *Server) Stats(c *gin.Context) {
	info, err := s.Basket.Stats()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) Items(c *gin.Context) {
	items, err := s.Basket.Items()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) Neighbors(c *gin.Context) {
	neighbors, err := s.Basket.Neighbors(c.Param("item"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": c.Param("item"), "neighbors": neighbors})
}

func (s *Server) BoughtWith(c *gin.Context) {
	minFrequency, ok := intQuery(c, "min_frequency", s.Config.Query.MinFrequency)
	if !ok {
		return
	}
	limit, ok := intQuery(c, "limit", s.Config.Query.Limit)
	if !ok {
		return
	}

	assocs, err := s.Basket.ItemsBoughtWith(c.Param("item"), minFrequency, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": c.Param("item"), "bought_with": assocs})
}

func (s *Server) Associations(c *gin.Context) {
	n, ok := intQuery(c, "n", s.Config.Query.Limit)
	if !ok {
		return
	}
	maxDepth, ok := intQuery(c, "max_depth", s.Config.Query.MaxDepth)
	if !ok {
		return
	}

	assocs, err := s.Basket.TopAssociations(c.Param("item"), n, maxDepth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": c.Param("item"), "associations": assocs})
}

func (s *Server) BFS(c *gin.Context) {
	maxDepth, ok := intQuery(c, "max_depth", search.Unbounded)
	if !ok {
		return
	}

	depths, err := s.Basket.BFS(c.Param("item"), maxDepth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": c.Param("item"), "depths": depths})
}

func (s *Server) DFS(c *gin.Context) {
	maxDepth, ok := intQuery(c, "max_depth", search.Unbounded)
	if !ok {
		return
	}

	order, err := s.Basket.DFS(c.Param("item"), maxDepth)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": c.Param("item"), "order": order})
}

func (s *Server) Bundles(c *gin.Context) {
	n, ok := intQuery(c, "n", s.Config.Query.TopBundles)
	if !ok {
		return
	}

	bundles, err := s.Basket.TopBundles(n)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bundles": bundles})
}

func (s *Server) Pairs(c *gin.Context) {
	minFrequency, ok := intQuery(c, "min_frequency", s.Config.Query.MinFrequency)
	if !ok {
		return
	}

	pairs, err := s.Basket.FrequentPairs(minFrequency)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": pairs})
}

func (s *Server) Communities(c *gin.Context) {
	communities, err := s.Basket.Communities(c.Query("algorithm"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"communities": communities})
}

func (s *Server) Export(c *gin.Context) {
	res, err := s.Basket.Export(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
