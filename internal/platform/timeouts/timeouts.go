// Package timeouts collects the durations shared by the dashboard process so
// they are defined once.
package timeouts

import "time"

// BackendRequest caps a single REST call from the dashboard to the ticket backend.
const BackendRequest = 5 * time.Second

// BackendProbe caps the startup health probe against the ticket backend.
const BackendProbe = 2 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown limits how long pending spans may take to flush on exit.
const TelemetryShutdown = 5 * time.Second
