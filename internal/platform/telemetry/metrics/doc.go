// Package metrics exposes Prometheus instrumentation for the dashboard.
//
// Two families are recorded:
//
//   - ticketdesk_backend_request_duration_seconds: latency of each REST call
//     to the ticket backend, labelled by operation and outcome.
//   - ticketdesk_http_requests_total: dashboard HTTP responses by method and
//     status code.
//
// Each Metrics value owns its registry so tests can inspect it in isolation.
package metrics
