package templates

// ticketMessagesPoll is the HTMX trigger that refreshes an open chat.
const ticketMessagesPoll = "every 4s"

// TicketDetailView provides data for the ticket chat page.
type TicketDetailView struct {
	ID     string
	Title  string
	Status string
	Closed bool
	// NotFound replaces the chat with Error when the ticket is unknown.
	NotFound    bool
	Error       string
	Messages    TicketMessagesView
	Attachments []AttachmentLink
}

// TicketMessagesView is the polled chat fragment.
type TicketMessagesView struct {
	TicketID string
	Messages []MessageView
	// Empty is shown when there are no messages.
	Empty string
	// Notice and Error are one-shot results of the last reply.
	Notice string
	Error  string
}

// MessageView is one chat bubble.
type MessageView struct {
	Author      string
	Content     string
	Admin       bool
	Attachments []AttachmentLink
}

// AttachmentLink is a resolved attachment URL.
type AttachmentLink struct {
	Name string
	URL  string
}

func messageSideClass(admin bool) string {
	if admin {
		return "message-admin"
	}
	return "message-user"
}
