// Package dashboard serves the support-ticket admin dashboard.
//
// Pages are rendered on the server and refreshed with HTMX fragments. Every
// piece of ticket data comes from the external ticket backend; the dashboard
// itself only keeps operator sessions, which map an HttpOnly cookie to the
// backend bearer token.
package dashboard
