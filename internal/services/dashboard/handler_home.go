package dashboard

import (
	"net/http"

	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/templates"
	sharedhtmx "github.com/donde/ticketdesk/internal/services/shared/htmx"
)

// HandleHome renders the server map and raw ticket panels.
func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	page := h.pageContext(lang, loc, r)
	h.renderPage(w, r, page, loc.Sprintf("title.home"), templates.HomePage(page))
}

// HandleServerMap renders the server map panel fragment.
func (h *Handler) HandleServerMap(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	ctx, cancel := backendContext(r)
	defer cancel()

	raw, err := h.backend.ServerMap(ctx, operator(r).Token)
	view := templates.JSONPanelView{}
	if err != nil {
		msg, ok := h.backendFailure(w, r, loc, backend.OperationServerMap, err)
		if !ok {
			return
		}
		view.Error = msg
	} else {
		view.Body = prettyJSON(raw)
	}
	sharedhtmx.RenderFragment(w, r, templates.JSONPanel(view))
}

// HandleRawTickets renders the raw ticket conversations panel fragment.
func (h *Handler) HandleRawTickets(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	ctx, cancel := backendContext(r)
	defer cancel()

	raw, err := h.backend.TicketsRaw(ctx, operator(r).Token)
	view := templates.JSONPanelView{}
	if err != nil {
		msg, ok := h.backendFailure(w, r, loc, backend.OperationListTickets, err)
		if !ok {
			return
		}
		view.Error = msg
	} else {
		view.Body = prettyJSON(raw)
	}
	sharedhtmx.RenderFragment(w, r, templates.JSONPanel(view))
}
