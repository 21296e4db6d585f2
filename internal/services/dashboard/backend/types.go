package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StatusClosed is the status value the backend assigns to closed tickets.
const StatusClosed = "CLOSED"

// AuthorAdmin marks messages written by an operator.
const AuthorAdmin = "ADMIN"

// TicketID is a ticket identifier decoded from either a JSON string or number.
type TicketID string

// UnmarshalJSON accepts "123", 123 and null.
func (id *TicketID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("decode ticket id: %w", err)
		}
		*id = TicketID(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode ticket id: %w", err)
	}
	*id = TicketID(number.String())
	return nil
}

func (id TicketID) String() string {
	return string(id)
}

// Message is one chat message inside a ticket.
type Message struct {
	Author      string   `json:"author"`
	Content     string   `json:"content"`
	Attachments []string `json:"attachments"`
}

// IsAdmin reports whether the message was written by an operator.
func (m Message) IsAdmin() bool {
	return m.Author == AuthorAdmin
}

// Attachment is an entry of the ticket-level attachment index.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Ticket is a support conversation as served by GET /tickets.
type Ticket struct {
	ID          TicketID     `json:"ticket_id"`
	Status      string       `json:"status"`
	Count       int          `json:"count"`
	LastMessage string       `json:"last_message"`
	Messages    []Message    `json:"messages"`
	Attachments []Attachment `json:"attachments"`
}

// Closed reports whether the ticket status is CLOSED, ignoring case.
func (t Ticket) Closed() bool {
	return strings.EqualFold(strings.TrimSpace(t.Status), StatusClosed)
}

// AdminLogEntry is one record of the admin activity log.
type AdminLogEntry struct {
	Admin    string   `json:"admin"`
	Action   string   `json:"action"`
	TicketID TicketID `json:"ticket_id"`
	Time     string   `json:"time"`
	Message  string   `json:"message"`
}

// ReplyResult is the backend answer to POST /send_reply.
type ReplyResult struct {
	DiscordStatus int `json:"discord_status"`
}

// CloseResult is the backend answer to POST /close_ticket.
type CloseResult struct {
	Status   string   `json:"status"`
	TicketID TicketID `json:"ticket_id"`
}

// Health is the backend answer to GET /.
type Health struct {
	Status string `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type ticketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type adminLogsResponse struct {
	Logs []AdminLogEntry `json:"logs"`
}

type replyRequest struct {
	TicketID string `json:"ticket_id"`
	Message  string `json:"message"`
}

type closeRequest struct {
	TicketID string `json:"ticket_id"`
}
