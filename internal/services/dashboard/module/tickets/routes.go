package tickets

import (
	"net/http"
	"strings"

	routepath "github.com/donde/ticketdesk/internal/services/dashboard/routepath"
	sharedroute "github.com/donde/ticketdesk/internal/services/shared/route"
)

// Service defines ticket route handlers consumed by this route module.
type Service interface {
	HandleTicketsPage(w http.ResponseWriter, r *http.Request)
	HandleTicketsTable(w http.ResponseWriter, r *http.Request)
	HandleTicketDetail(w http.ResponseWriter, r *http.Request, ticketID string)
	HandleTicketMessages(w http.ResponseWriter, r *http.Request, ticketID string)
	HandleTicketReply(w http.ResponseWriter, r *http.Request, ticketID string)
	HandleTicketClose(w http.ResponseWriter, r *http.Request, ticketID string)
}

type ticketRoute struct {
	segment string
	handle  func(Service, http.ResponseWriter, *http.Request, string)
}

var ticketSubroutes = []ticketRoute{
	{segment: routepath.TicketMessagesSegment, handle: Service.HandleTicketMessages},
	{segment: routepath.TicketReplySegment, handle: Service.HandleTicketReply},
	{segment: routepath.TicketCloseSegment, handle: Service.HandleTicketClose},
}

// RegisterRoutes wires ticket routes into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	mux.HandleFunc(routepath.Tickets, service.HandleTicketsPage)
	mux.HandleFunc(routepath.TicketsTable, service.HandleTicketsTable)
	mux.HandleFunc(routepath.TicketsPrefix, func(w http.ResponseWriter, r *http.Request) {
		HandleTicketPath(w, r, service)
	})
}

// HandleTicketPath parses ticket subroutes and dispatches to service handlers.
func HandleTicketPath(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	if sharedroute.RedirectTrailingSlash(w, r) {
		return
	}

	parts := sharedroute.SplitPathParts(strings.TrimPrefix(r.URL.Path, routepath.TicketsPrefix))
	switch len(parts) {
	case 1:
		service.HandleTicketDetail(w, r, parts[0])
		return
	case 2:
		for _, route := range ticketSubroutes {
			if parts[1] == route.segment {
				route.handle(service, w, r, parts[0])
				return
			}
		}
	}
	http.NotFound(w, r)
}
