package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/pdfstruct/internal/analyze"
	"github.com/dgallion1/pdfstruct/internal/config"
	"github.com/dgallion1/pdfstruct/internal/layout"
	"github.com/dgallion1/pdfstruct/internal/pathstore"
	"github.com/dgallion1/pdfstruct/internal/pipeline"
	"github.com/dgallion1/pdfstruct/internal/store"
)

// Version is reported by the MCP endpoint.
const Version = "0.3.0"

// Deps are the services the HTTP layer calls into.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Analyzer     *analyze.Analyzer
	Store        *store.Store
	Pathstore    *pathstore.Client // nil when publishing is disabled
	LayoutStats  *layout.Stats
	LayoutMode   string
}

// Server is the HTTP API server for pdfstruct.
type Server struct {
	router chi.Router
	deps   Deps
	mcp    *mcp.Server
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deps: deps,
		log:  log,
		cfg:  cfg,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "pdfstruct", Version: Version}, nil)
	deps.Analyzer.RegisterMCP(s.mcp)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	if s.cfg.UIEnabled {
		r.Get("/", s.handleUIIndex)
		r.Post("/ui/analyze", s.handleUIAnalyze)
		r.Get("/ui/analyses/{id}", s.handleUIAnalysis)
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/analyze/batch", s.handleBatchAnalyze)
		r.Get("/api/analyze/{jobID}/status", s.handleAnalyzeStatus)
		r.Get("/api/stats/layout", s.handleLayoutStats)

		r.Get("/api/analyses", s.handleListAnalyses)
		r.Get("/api/analyses/{id}", s.handleGetAnalysis)
		r.Delete("/api/analyses/{id}", s.handleDeleteAnalysis)

		mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)
		r.Handle("/mcp", mcpHandler)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
