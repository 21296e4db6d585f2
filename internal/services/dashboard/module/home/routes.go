package home

import (
	"net/http"

	routepath "github.com/donde/ticketdesk/internal/services/dashboard/routepath"
)

// Service defines home page handlers consumed by this route module.
type Service interface {
	HandleHome(w http.ResponseWriter, r *http.Request)
	HandleServerMap(w http.ResponseWriter, r *http.Request)
	HandleRawTickets(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires the home page and its panels into the provided mux.
//
// The root pattern matches every unclaimed path, so only "/" itself reaches
// HandleHome.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Root, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != routepath.Root {
			http.NotFound(w, r)
			return
		}
		service.HandleHome(w, r)
	})
	mux.HandleFunc(routepath.ServerMap, service.HandleServerMap)
	mux.HandleFunc(routepath.TicketsRaw, service.HandleRawTickets)
}
