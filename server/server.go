package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"
	"github.com/krau/lesionscan/inference"
	"github.com/krau/lesionscan/preprocess"
)

type Options struct {
	Decode preprocess.DecodeOptions
	// RateLimitPerMinute limits requests per client IP. Zero disables it.
	RateLimitPerMinute int
}

type Server struct {
	engine *inference.Engine
	opts   Options
}

func New(engine *inference.Engine, opts Options) *Server {
	return &Server{engine: engine, opts: opts}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(), gin.Recovery())
	r.POST("/predict", s.PredictHandler)
	r.GET("/health", s.HealthHandler)
	r.GET("/catalog", s.CatalogHandler)
	return r
}

// Handler returns the router, wrapped in the per-IP rate limiter when one
// is configured.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.Router()
	if s.opts.RateLimitPerMinute > 0 {
		h = httprate.LimitByIP(s.opts.RateLimitPerMinute, time.Minute)(h)
	}
	return h
}
