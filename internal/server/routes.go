package server

import (
	"net/http"
)

// RouteHandler is a function type for HTTP handlers
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers
type MethodRouter map[string]RouteHandler

// RouteByMethod routes requests based on HTTP method
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	handler(w, r)
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		RouteByMethod(w, r, MethodRouter{http.MethodGet: s.handleRoot})
	})

	mux.HandleFunc("/analyze", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{http.MethodPost: s.handleAnalyze})
	})

	mux.HandleFunc("/send-telegram", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{http.MethodPost: s.handleSendTelegram})
	})

	// Charts are written under <static>/charts and served from here.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.deps.StaticDir))))

	return mux
}
