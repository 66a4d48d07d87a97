package server

import (
	"net/http"

	"github.com/agentstation/designlib/internal/server/handlers"
	"github.com/agentstation/designlib/internal/server/middleware"
	"github.com/agentstation/designlib/internal/server/response"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()
	h := handlers.New(s.catalog, s.broker, s.wsHub, s.upgrader, s.logger, s.config.MaxUploadBytes)
	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)

	mux.HandleFunc("GET "+prefix+"/files", h.HandleListFiles)
	mux.HandleFunc("POST "+prefix+"/files", h.HandleUpload)
	mux.HandleFunc("DELETE "+prefix+"/files", h.HandleDeleteAll)
	mux.HandleFunc("GET "+prefix+"/files/{name}", h.HandleDownload)
	mux.HandleFunc("DELETE "+prefix+"/files/{name}", h.HandleDelete)
	mux.HandleFunc("PUT "+prefix+"/files/{name}/category", h.HandleRecategorize)

	mux.HandleFunc("GET "+prefix+"/stats", h.HandleStats)
	mux.HandleFunc("GET "+prefix+"/activity", h.HandleActivity)
	mux.HandleFunc("GET "+prefix+"/verify", h.HandleVerify)
	mux.HandleFunc("POST "+prefix+"/verify/reindex", h.HandleReindex)

	mux.HandleFunc("POST "+prefix+"/mirror/push", h.HandleMirrorPush)
	mux.HandleFunc("GET "+prefix+"/mirror/status", h.HandleMirrorStatus)

	mux.HandleFunc("GET "+prefix+"/events/ws", h.HandleWebSocket)

	mux.HandleFunc(prefix+"/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "no route for "+r.Method+" "+r.URL.Path, "")
	})
}

// applyMiddleware wraps handler with the middleware chain. The request ID is
// assigned first so every later layer can log it.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	chain := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
	}
	if len(s.config.CORSOrigins) > 0 {
		cfg := middleware.DefaultCORSConfig()
		cfg.AllowedOrigins = s.config.CORSOrigins
		chain = append(chain, middleware.CORS(cfg))
	}
	chain = append(chain, middleware.BodyLimit(s.config.MaxUploadBytes))
	return middleware.Chain(chain...)(handler)
}
