package server

import (
	"net/http"
	"os"
	"strings"
)

// SPAMiddleware wraps an http.Handler to serve the dashboard single page app.
// API routes, health and metrics pass through; everything else serves static
// files with index.html as the client-side routing fallback.
func SPAMiddleware(next http.Handler, staticPath, indexPath string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") ||
			r.URL.Path == "/healthz" ||
			r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		path := staticPath + r.URL.Path

		// SPA routes share a single entry point
		if r.URL.Path == "/" || r.URL.Path == "/admin" || r.URL.Path == "/dashboard" {
			http.ServeFile(w, r, indexPath)
			return
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, indexPath)
			return
		}

		http.FileServer(http.Dir(staticPath)).ServeHTTP(w, r)
	})
}
