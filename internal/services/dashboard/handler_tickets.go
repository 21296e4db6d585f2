package dashboard

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/routepath"
	"github.com/donde/ticketdesk/internal/services/dashboard/templates"
	sharedhtmx "github.com/donde/ticketdesk/internal/services/shared/htmx"
	"golang.org/x/text/message"
)

// HandleTicketsPage renders the ticket list.
func (h *Handler) HandleTicketsPage(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	table, ok := h.ticketTable(w, r, loc)
	if !ok {
		return
	}
	view := templates.TicketsPageView{
		Flash: closedFlash(loc, r.URL.Query().Get(routepath.ClosedParam)),
		Table: table,
	}
	page := h.pageContext(lang, loc, r)
	h.renderPage(w, r, page, loc.Sprintf("title.tickets"), templates.TicketsPage(view, page))
}

// closedTicketID bounds what the close confirmation may echo back.
var closedTicketID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// closedFlash localizes the close confirmation for the ticket named in the
// query. Anything that is not a ticket id renders no flash.
func closedFlash(loc *message.Printer, ticketID string) string {
	ticketID = strings.TrimSpace(ticketID)
	if !closedTicketID.MatchString(ticketID) {
		return ""
	}
	return loc.Sprintf("ticket.closed", ticketID)
}

// HandleTicketsTable renders the polled ticket list fragment.
func (h *Handler) HandleTicketsTable(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	table, ok := h.ticketTable(w, r, loc)
	if !ok {
		return
	}
	sharedhtmx.RenderFragment(w, r, templates.TicketTable(table))
}

func (h *Handler) ticketTable(w http.ResponseWriter, r *http.Request, loc *message.Printer) (templates.TicketTableView, bool) {
	ctx, cancel := backendContext(r)
	defer cancel()

	view := templates.TicketTableView{Empty: loc.Sprintf("tickets.empty")}
	tickets, err := h.backend.ListTickets(ctx, operator(r).Token)
	if err != nil {
		msg, ok := h.backendFailure(w, r, loc, backend.OperationListTickets, err)
		if !ok {
			return view, false
		}
		view.Error = msg
		return view, true
	}
	view.Rows = buildTicketRows(tickets, loc)
	return view, true
}

// HandleTicketDetail renders the chat view of one ticket.
func (h *Handler) HandleTicketDetail(w http.ResponseWriter, r *http.Request, ticketID string) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	view, ok := h.ticketDetail(w, r, loc, ticketID)
	if !ok {
		return
	}
	h.renderTicketDetail(w, r, lang, loc, view)
}

// HandleTicketMessages renders the polled chat fragment.
func (h *Handler) HandleTicketMessages(w http.ResponseWriter, r *http.Request, ticketID string) {
	loc, _ := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead) {
		return
	}
	view, ok := h.ticketDetail(w, r, loc, ticketID)
	if !ok {
		return
	}
	if view.NotFound {
		view.Messages.Error = view.Error
	}
	sharedhtmx.RenderFragment(w, r, templates.TicketMessages(view.Messages))
}

// HandleTicketReply sends an operator reply. HTMX callers get the refreshed
// chat fragment; form posts are redirected back to the chat.
func (h *Handler) HandleTicketReply(w http.ResponseWriter, r *http.Request, ticketID string) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodPost) {
		return
	}
	if !requireSameOrigin(w, r, loc) {
		return
	}

	var notice, failure string
	reply := strings.TrimSpace(r.FormValue("message"))
	if reply == "" {
		failure = loc.Sprintf("ticket.reply_required")
	} else {
		ctx, cancel := backendContext(r)
		_, err := h.backend.SendReply(ctx, operator(r).Token, ticketID, reply)
		cancel()
		if err != nil {
			if _, ok := h.backendFailure(w, r, loc, backend.OperationSendReply, err); !ok {
				return
			}
			failure = loc.Sprintf("ticket.reply_failed")
		} else {
			notice = loc.Sprintf("ticket.reply_sent")
		}
	}

	if !sharedhtmx.IsHTMXRequest(r) && failure == "" {
		http.Redirect(w, r, routepath.Ticket(ticketID), http.StatusSeeOther)
		return
	}

	view, ok := h.ticketDetail(w, r, loc, ticketID)
	if !ok {
		return
	}
	view.Messages.Notice = notice
	if failure != "" {
		view.Messages.Error = failure
	}
	if sharedhtmx.IsHTMXRequest(r) {
		sharedhtmx.RenderFragment(w, r, templates.TicketMessages(view.Messages))
		return
	}
	h.renderTicketDetail(w, r, lang, loc, view)
}

// HandleTicketClose closes a ticket and returns to the list with a confirmation.
func (h *Handler) HandleTicketClose(w http.ResponseWriter, r *http.Request, ticketID string) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodPost) {
		return
	}
	if !requireSameOrigin(w, r, loc) {
		return
	}

	ctx, cancel := backendContext(r)
	_, err := h.backend.CloseTicket(ctx, operator(r).Token, ticketID)
	cancel()
	if err != nil {
		if _, ok := h.backendFailure(w, r, loc, backend.OperationCloseTicket, err); !ok {
			return
		}
		view, ok := h.ticketDetail(w, r, loc, ticketID)
		if !ok {
			return
		}
		if !view.NotFound {
			view.Error = loc.Sprintf("ticket.close_failed")
		}
		h.renderTicketDetail(w, r, lang, loc, view)
		return
	}
	sharedhtmx.Redirect(w, r, routepath.TicketsClosed(ticketID), http.StatusSeeOther)
}

// ticketDetail loads the ticket and builds its chat view. It returns false
// when the request was already answered with a login redirect.
func (h *Handler) ticketDetail(w http.ResponseWriter, r *http.Request, loc *message.Printer, ticketID string) (templates.TicketDetailView, bool) {
	view := templates.TicketDetailView{
		ID:    ticketID,
		Title: loc.Sprintf("title.ticket", ticketID),
		Messages: templates.TicketMessagesView{
			TicketID: ticketID,
			Empty:    loc.Sprintf("ticket.no_messages"),
		},
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	ticket, err := h.backend.Ticket(ctx, operator(r).Token, ticketID)
	if err != nil {
		if errors.Is(err, backend.ErrTicketNotFound) {
			view.NotFound = true
			view.Error = loc.Sprintf("ticket.not_found", ticketID)
			return view, true
		}
		msg, ok := h.backendFailure(w, r, loc, backend.OperationListTickets, err)
		if !ok {
			return view, false
		}
		view.Messages.Error = msg
		return view, true
	}

	view.Status = ticket.Status
	view.Closed = ticket.Closed()
	view.Messages.Messages = buildMessageViews(ticket.Messages, h.backend.ResolveAttachmentURL)
	view.Attachments = buildTicketAttachments(ticket.Attachments, h.backend.ResolveAttachmentURL)
	return view, true
}

func (h *Handler) renderTicketDetail(w http.ResponseWriter, r *http.Request, lang string, loc *message.Printer, view templates.TicketDetailView) {
	page := h.pageContext(lang, loc, r)
	h.renderPage(w, r, page, view.Title, templates.TicketDetailPage(view, page))
}
