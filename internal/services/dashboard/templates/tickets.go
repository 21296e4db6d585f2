package templates

// ticketTablePoll is the HTMX trigger that refreshes the ticket list.
const ticketTablePoll = "every 5s"

// TicketsPageView provides data for the ticket list page.
type TicketsPageView struct {
	// Flash is a one-shot confirmation, e.g. after closing a ticket.
	Flash string
	Table TicketTableView
}

// TicketTableView is the polled ticket list fragment.
type TicketTableView struct {
	Rows []TicketRow
	// Empty is shown when Rows is empty and there is no error.
	Empty string
	Error string
}

// TicketRow represents one entry of the ticket list.
type TicketRow struct {
	ID         string
	URL        string
	Label      string
	Status     string
	Closed     bool
	CountLabel string
	Preview    string
}

func statusBadgeClass(closed bool) string {
	if closed {
		return "badge-closed"
	}
	return "badge-open"
}
