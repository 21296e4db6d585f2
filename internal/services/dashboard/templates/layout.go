package templates

import "github.com/donde/ticketdesk/internal/services/dashboard/routepath"

// htmxScriptURL pins the HTMX release the fragments are written against.
const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4"

type navLink struct {
	path string
	key  string
}

var navLinks = []navLink{
	{path: routepath.Root, key: "nav.home"},
	{path: routepath.Tickets, key: "nav.tickets"},
	{path: routepath.AdminLogs, key: "nav.logs"},
}

func pageTitle(loc Localizer, title string) string {
	return title + " · " + T(loc, "core.admin_title")
}
