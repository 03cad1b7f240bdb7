package server

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

const welcome = "Welcome to Repo Explainer!"

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", gzhttp.GzipHandler(http.HandlerFunc(s.handleRoot)))
	mux.Handle("GET /health", gzhttp.GzipHandler(http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /{owner}/{repo}", gzhttp.GzipHandler(s.rateLimited(http.HandlerFunc(s.handleExplain))))
	mux.Handle("GET /ws/{owner}/{repo}", s.rateLimited(http.HandlerFunc(s.handleWebSocket)))
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, welcome, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"cache":  s.cache != nil,
	}, http.StatusOK)
}
