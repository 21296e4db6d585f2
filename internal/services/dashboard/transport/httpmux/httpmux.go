// Package httpmux assembles the dashboard's root mux from its parts.
package httpmux

import (
	"io/fs"
	"net/http"

	routepath "github.com/donde/ticketdesk/internal/services/dashboard/routepath"
)

// MountStatic serves staticFS under /static/ with long-lived caching.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS) {
	if rootMux == nil || staticFS == nil {
		return
	}
	fileServer := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(staticFS)))
	rootMux.Handle(routepath.StaticPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	}))
}

// MountOperational wires the liveness probe and the metrics endpoint.
func MountOperational(rootMux *http.ServeMux, metricsHandler http.Handler) {
	if rootMux == nil {
		return
	}
	rootMux.HandleFunc(routepath.Healthz, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if metricsHandler != nil {
		rootMux.Handle(routepath.Metrics, metricsHandler)
	}
}

// MountDashboardRoutes mounts the session-protected dashboard under the root path.
func MountDashboardRoutes(rootMux *http.ServeMux, dashboard http.Handler) {
	if rootMux == nil || dashboard == nil {
		return
	}
	rootMux.Handle(routepath.Root, dashboard)
}
