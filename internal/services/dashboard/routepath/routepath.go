// Package routepath names every dashboard URL.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root         = "/"
	StaticPrefix = "/static/"
	Healthz      = "/healthz"
	Metrics      = "/metrics"
)

const (
	Login  = "/login"
	Logout = "/logout"
)

const (
	ServerMap  = "/server-map"
	TicketsRaw = "/tickets/raw"
)

const (
	Tickets       = "/tickets"
	TicketsTable  = "/tickets/table"
	TicketsPrefix = "/tickets/"
)

// Ticket subroute segments.
const (
	TicketMessagesSegment = "messages"
	TicketReplySegment    = "reply"
	TicketCloseSegment    = "close"
)

const (
	AdminLogs = "/admin/logs"
)

// ClosedParam names the ticket whose close confirmation the list shows once.
const ClosedParam = "closed"

func Ticket(ticketID string) string {
	return Tickets + "/" + escapeSegment(ticketID)
}

func TicketMessages(ticketID string) string {
	return Ticket(ticketID) + "/" + TicketMessagesSegment
}

func TicketReply(ticketID string) string {
	return Ticket(ticketID) + "/" + TicketReplySegment
}

func TicketClose(ticketID string) string {
	return Ticket(ticketID) + "/" + TicketCloseSegment
}

// TicketsClosed returns the ticket list URL that confirms ticketID was closed.
func TicketsClosed(ticketID string) string {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return Tickets
	}
	return Tickets + "?" + url.Values{ClosedParam: []string{ticketID}}.Encode()
}

func escapeSegment(raw string) string {
	return url.PathEscape(strings.TrimSpace(raw))
}
