// Package server sets up the HTTP router, middleware, and request handlers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jannisai/llmsdk"
	"github.com/jannisai/llmsdk/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP router and all dependencies the handlers need.
type Server struct {
	router chi.Router
	cfg    *config.Config
	client *llm.Client
}

// New creates a Server, wires up routes and middleware, and returns it
// ready to use as an http.Handler. client is the already-configured
// unified LLM client — its provider/API-key registration happens in
// main, built from cfg.Providers.
func New(cfg *config.Config, client *llm.Client) *Server {
	s := &Server{cfg: cfg, client: client}
	s.routes()
	return s
}

// routes builds the chi router with all middleware and route definitions.
func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Server.WriteTimeout))

	r.Get("/health", s.handleHealth)
	r.Post("/v1/chat/completions", s.handleChatCompletions)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
}

// ServeHTTP makes Server satisfy the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
