package dashboard

import (
	"net/http"

	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/templates"
)

// HandleAdminLogs renders the admin activity log.
func (h *Handler) HandleAdminLogs(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	ctx, cancel := backendContext(r)
	defer cancel()

	view := templates.LogsPageView{Empty: loc.Sprintf("logs.empty")}
	entries, err := h.backend.AdminLogs(ctx, operator(r).Token)
	if err != nil {
		msg, ok := h.backendFailure(w, r, loc, backend.OperationAdminLogs, err)
		if !ok {
			return
		}
		view.Error = msg
	} else {
		view.Rows = buildLogRows(entries, lang, h.now(), loc)
	}
	page := h.pageContext(lang, loc, r)
	h.renderPage(w, r, page, loc.Sprintf("title.logs"), templates.LogsPage(view, page))
}
