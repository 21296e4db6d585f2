package logs

import (
	"net/http"

	routepath "github.com/donde/ticketdesk/internal/services/dashboard/routepath"
)

// Service defines admin log handlers consumed by this route module.
type Service interface {
	HandleAdminLogs(w http.ResponseWriter, r *http.Request)
}

// RegisterRoutes wires the admin activity log into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.AdminLogs, service.HandleAdminLogs)
}
