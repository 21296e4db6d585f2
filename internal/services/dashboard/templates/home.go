package templates

// JSONPanelView is the body of a raw JSON panel.
type JSONPanelView struct {
	// Body is pretty-printed JSON.
	Body  string
	Error string
}

const (
	serverMapPanelID  = "server-map"
	rawTicketsPanelID = "raw-tickets"
)
