package templates

// LogsPageView provides data for the admin activity log.
type LogsPageView struct {
	Rows  []LogRow
	Empty string
	Error string
}

// LogRow represents one admin log entry.
type LogRow struct {
	Action string
	// Time is the absolute localized time; Relative is e.g. "3 minutes ago".
	Time     string
	Relative string
	TicketID string
	Message  string
	// By is the localized "by <admin>" suffix, empty when unknown.
	By string
}

func logTimeLabel(row LogRow) string {
	if row.Relative == "" {
		return row.Time
	}
	return row.Time + " (" + row.Relative + ")"
}

func quotedMessage(message string) string {
	return "“" + message + "”"
}
