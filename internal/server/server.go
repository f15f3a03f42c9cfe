package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/agenthands/archivegraph/internal/config"
	"github.com/agenthands/archivegraph/internal/core"
)

type Server struct {
	Service *core.Service
	Config  config.ServerConfig
}

func NewServer(svc *core.Service, cfg config.ServerConfig) *Server {
	return &Server{
		Service: svc,
		Config:  cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(), Metrics())

	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/graph/related", s.RelatedNodes)
		api.GET("/graph/relations", s.RelationsOfType)
		api.GET("/graph/people", s.PeopleNetwork)
		api.POST("/query-builder", s.QueryBuilder)
		api.GET("/taxonomy", s.Taxonomy)
	}

	return r
}

// Handler returns the router wrapped in the CORS policy.
func (s *Server) Handler() http.Handler {
	origins := s.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		Debug:          false,
	}).Handler(s.SetupRouter())
}
