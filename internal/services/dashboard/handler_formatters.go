package dashboard

import (
	"encoding/json"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/routepath"
	"github.com/donde/ticketdesk/internal/services/dashboard/templates"
	"github.com/dustin/go-humanize"
	"github.com/tidwall/pretty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// previewLimit caps the last-message preview in the ticket list.
	previewLimit = 80
	// logTimeLayout renders admin log timestamps.
	logTimeLayout = "2006-01-02 15:04:05 MST"
)

// backendTimeLayouts are tried in order; the backend writes naive UTC times.
var backendTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func buildTicketRows(tickets []backend.Ticket, loc *message.Printer) []templates.TicketRow {
	rows := make([]templates.TicketRow, 0, len(tickets))
	for _, ticket := range tickets {
		id := ticket.ID.String()
		rows = append(rows, templates.TicketRow{
			ID:         id,
			URL:        routepath.Ticket(id),
			Label:      loc.Sprintf("tickets.label", id),
			Status:     ticket.Status,
			Closed:     ticket.Closed(),
			CountLabel: loc.Sprintf("tickets.count", ticket.Count),
			Preview:    truncateText(ticket.LastMessage, previewLimit),
		})
	}
	return rows
}

func buildMessageViews(messages []backend.Message, resolve func(string) string) []templates.MessageView {
	views := make([]templates.MessageView, 0, len(messages))
	for _, msg := range messages {
		view := templates.MessageView{
			Author:  msg.Author,
			Content: msg.Content,
			Admin:   msg.IsAdmin(),
		}
		for _, attachment := range msg.Attachments {
			resolved := resolve(attachment)
			if resolved == "" {
				continue
			}
			view.Attachments = append(view.Attachments, templates.AttachmentLink{
				Name: path.Base(attachment),
				URL:  resolved,
			})
		}
		views = append(views, view)
	}
	return views
}

func buildTicketAttachments(attachments []backend.Attachment, resolve func(string) string) []templates.AttachmentLink {
	links := make([]templates.AttachmentLink, 0, len(attachments))
	for _, attachment := range attachments {
		resolved := resolve(attachment.URL)
		if resolved == "" {
			continue
		}
		name := strings.TrimSpace(attachment.Filename)
		if name == "" {
			name = path.Base(attachment.URL)
		}
		links = append(links, templates.AttachmentLink{Name: name, URL: resolved})
	}
	return links
}

func buildLogRows(entries []backend.AdminLogEntry, lang string, now time.Time, loc *message.Printer) []templates.LogRow {
	rows := make([]templates.LogRow, 0, len(entries))
	englishUI := isEnglish(lang)
	for _, entry := range entries {
		row := templates.LogRow{
			Action:   entry.Action,
			Time:     entry.Time,
			TicketID: entry.TicketID.String(),
			Message:  entry.Message,
		}
		if parsed, ok := parseBackendTime(entry.Time); ok {
			row.Time = parsed.Format(logTimeLayout)
			if englishUI {
				row.Relative = humanize.RelTime(parsed, now, "ago", "from now")
			}
		}
		if admin := strings.TrimSpace(entry.Admin); admin != "" {
			row.By = loc.Sprintf("logs.by", admin)
		}
		rows = append(rows, row)
	}
	return rows
}

// parseBackendTime parses RFC 3339 or naive ISO-8601 timestamps; naive values are UTC.
func parseBackendTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range backendTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// isEnglish reports whether lang is an English tag; relative times are only
// rendered in English.
func isEnglish(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "en"
}

// prettyJSON indents raw JSON for display; invalid input is returned as-is.
func prettyJSON(raw []byte) string {
	if !json.Valid(raw) {
		return string(raw)
	}
	return strings.TrimSpace(string(pretty.PrettyOptions(raw, &pretty.Options{Indent: "  ", Width: 80})))
}

func truncateText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + "..."
}
