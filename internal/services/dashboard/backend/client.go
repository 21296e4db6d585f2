package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/donde/ticketdesk/internal/platform/telemetry/metrics"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/donde/ticketdesk/internal/services/dashboard/backend"

// Backend operation names used for spans and metrics.
const (
	OperationLogin       = "login"
	OperationListTickets = "list_tickets"
	OperationSendReply   = "send_reply"
	OperationCloseTicket = "close_ticket"
	OperationAdminLogs   = "admin_logs"
	OperationServerMap   = "server_map"
	OperationHealth      = "health"
)

// maxResponseBody caps decoded response sizes.
const maxResponseBody = 16 << 20

// Observer records backend call latency.
type Observer interface {
	ObserveBackend(operation, outcome string, elapsed time.Duration)
}

// Config holds the inputs for a backend client.
type Config struct {
	// BaseURL is the backend origin, e.g. http://localhost:8081.
	BaseURL string
	// AttachmentBaseURL is the browser-facing origin for attachment paths.
	// It defaults to BaseURL.
	AttachmentBaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Observer receives one observation per call. Optional.
	Observer Observer
}

// Client issues REST calls to the ticket backend.
type Client struct {
	baseURL           string
	attachmentBaseURL string
	httpClient        *http.Client
	observer          Observer
	tracer            trace.Tracer
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	baseURL, err := normalizeOrigin(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	attachmentBaseURL := baseURL
	if strings.TrimSpace(cfg.AttachmentBaseURL) != "" {
		attachmentBaseURL, err = normalizeOrigin(cfg.AttachmentBaseURL)
		if err != nil {
			return nil, fmt.Errorf("attachment base url: %w", err)
		}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:           baseURL,
		attachmentBaseURL: attachmentBaseURL,
		httpClient:        httpClient,
		observer:          cfg.Observer,
		tracer:            otel.Tracer(tracerName),
	}, nil
}

func normalizeOrigin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("host is required")
	}
	return strings.TrimRight(raw, "/"), nil
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login exchanges operator credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, OperationLogin, http.MethodPost, "/login", "", loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.AccessToken)
	if token == "" {
		return "", &StatusError{Operation: OperationLogin, StatusCode: http.StatusOK, Body: "missing access_token"}
	}
	return token, nil
}

// ListTickets returns every ticket known to the backend.
func (c *Client) ListTickets(ctx context.Context, token string) ([]Ticket, error) {
	var resp ticketsResponse
	if err := c.do(ctx, OperationListTickets, http.MethodGet, "/tickets", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Tickets == nil {
		return []Ticket{}, nil
	}
	return resp.Tickets, nil
}

// TicketsRaw returns the tickets member of the list payload exactly as the
// backend sent it. A missing or null member yields an empty array.
func (c *Client) TicketsRaw(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, OperationListTickets, http.MethodGet, "/tickets", token, nil, &raw); err != nil {
		return nil, err
	}
	tickets := gjson.GetBytes(raw, "tickets")
	if !tickets.Exists() || tickets.Type == gjson.Null {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(tickets.Raw), nil
}

// Ticket returns the ticket whose id matches ticketID.
//
// The backend has no per-ticket endpoint, so the full list is fetched.
func (c *Client) Ticket(ctx context.Context, token, ticketID string) (Ticket, error) {
	tickets, err := c.ListTickets(ctx, token)
	if err != nil {
		return Ticket{}, err
	}
	ticket, ok := FindTicket(tickets, ticketID)
	if !ok {
		return Ticket{}, ErrTicketNotFound
	}
	return ticket, nil
}

// FindTicket returns the ticket with the given id.
func FindTicket(tickets []Ticket, ticketID string) (Ticket, bool) {
	ticketID = strings.TrimSpace(ticketID)
	for _, ticket := range tickets {
		if ticket.ID.String() == ticketID {
			return ticket, true
		}
	}
	return Ticket{}, false
}

// SendReply posts an operator reply to a ticket.
func (c *Client) SendReply(ctx context.Context, token, ticketID, message string) (ReplyResult, error) {
	var resp ReplyResult
	err := c.do(ctx, OperationSendReply, http.MethodPost, "/send_reply", token, replyRequest{
		TicketID: ticketID,
		Message:  message,
	}, &resp)
	if err != nil {
		return ReplyResult{}, err
	}
	return resp, nil
}

// CloseTicket marks a ticket closed.
func (c *Client) CloseTicket(ctx context.Context, token, ticketID string) (CloseResult, error) {
	var resp CloseResult
	err := c.do(ctx, OperationCloseTicket, http.MethodPost, "/close_ticket", token, closeRequest{TicketID: ticketID}, &resp)
	if err != nil {
		return CloseResult{}, err
	}
	return resp, nil
}

// AdminLogs returns the admin activity log in backend order.
func (c *Client) AdminLogs(ctx context.Context, token string) ([]AdminLogEntry, error) {
	var resp adminLogsResponse
	if err := c.do(ctx, OperationAdminLogs, http.MethodGet, "/admin_logs", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Logs == nil {
		return []AdminLogEntry{}, nil
	}
	return resp.Logs, nil
}

// ServerMap returns the raw server map JSON.
//
// When the payload is an object with a servers member, only that member is
// returned.
func (c *Client) ServerMap(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, OperationServerMap, http.MethodGet, "/server_map", token, nil, &raw); err != nil {
		return nil, err
	}
	if servers := gjson.GetBytes(raw, "servers"); servers.Exists() {
		return json.RawMessage(servers.Raw), nil
	}
	return raw, nil
}

// Health calls the unauthenticated backend root.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var resp Health
	if err := c.do(ctx, OperationHealth, http.MethodGet, "/", "", nil, &resp); err != nil {
		return Health{}, err
	}
	return resp, nil
}

// ResolveAttachmentURL returns the browser URL for an attachment path.
// Absolute http(s) URLs are returned unchanged.
func (c *Client) ResolveAttachmentURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	lower := strings.ToLower(path)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return path
	}
	return c.attachmentBaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, body any, out any) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := c.tracer.Start(ctx, "backend."+operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	started := time.Now()
	defer func() {
		outcome := outcomeFor(err)
		if c.observer != nil {
			c.observer.ObserveBackend(operation, outcome, time.Since(started))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w: %w", operation, ErrUnavailable, ctxErr)
		}
		return fmt.Errorf("%s: %w: %w", operation, ErrUnavailable, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%s: %w: read response: %w", operation, ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", operation, ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(bytes.TrimSpace(respBody)),
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		respBody = []byte("{}")
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrUnauthorized):
		return metrics.OutcomeUnauthorized
	case errors.Is(err, ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
