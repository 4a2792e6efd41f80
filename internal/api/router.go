// Package api exposes the catalog service over HTTP.
package api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/lukman83/sheetgen/internal/metrics"
	"github.com/rs/cors"
)

//go:embed web/index.html
var indexHTML []byte

type Options struct {
	Version string
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

type Server struct {
	svc     *catalog.Service
	version string
}

// NewRouter builds the gin engine wrapped in a permissive CORS handler.
func NewRouter(svc *catalog.Service, opts Options) http.Handler {
	s := &Server{svc: svc, version: opts.Version}

	r := gin.New()
	r.Use(gin.Recovery(), observe)
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}

	r.GET("/", s.index)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if opts.MCP != nil {
		r.Any("/mcp", gin.WrapH(opts.MCP))
	}

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.POST("/search", s.search)
		api.POST("/generate", s.generate)
		api.GET("/products", s.listProducts)
		api.GET("/products/:id", s.getProduct)
		api.DELETE("/products/:id", s.deleteProduct)
		api.GET("/sheets", s.listSheets)
		api.DELETE("/sheets/:id", s.deleteSheet)
		api.GET("/export", s.exportAll)
		api.GET("/export/:id", s.exportProduct)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	return c.Handler(r)
}

// observe records request counts and latency per route.
func observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.version,
	})
}
