// Package backend is the REST client for the ticket backend.
//
// The backend owns authentication, ticket storage and Discord delivery; this
// package only issues requests with the operator's bearer token and decodes
// the JSON it gets back. Failures are classified so handlers can choose
// between a login redirect and an inline message.
package backend
