package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/donde/ticketdesk/internal/platform/telemetry/metrics"
	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
	dashboardsqlite "github.com/donde/ticketdesk/internal/services/dashboard/storage/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

const (
	testHost       = "dashboard.test"
	testOrigin     = "http://" + testHost
	testBackendURL = "http://backend.test"
	testToken      = "backend-token"
)

type replyCall struct {
	token    string
	ticketID string
	message  string
}

type fakeBackend struct {
	mu sync.Mutex

	loginToken string
	loginErr   error
	tickets    []backend.Ticket
	ticketsRaw json.RawMessage
	ticketsErr error
	replyErr   error
	closeErr   error
	logs       []backend.AdminLogEntry
	logsErr    error
	serverMap  json.RawMessage
	mapErr     error

	replies []replyCall
	closed  []string
	tokens  []string
}

func (f *fakeBackend) record(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
}

func (f *fakeBackend) Login(_ context.Context, username, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.loginToken, nil
}

func (f *fakeBackend) ListTickets(_ context.Context, token string) ([]backend.Ticket, error) {
	f.record(token)
	if f.ticketsErr != nil {
		return nil, f.ticketsErr
	}
	return f.tickets, nil
}

func (f *fakeBackend) TicketsRaw(_ context.Context, token string) (json.RawMessage, error) {
	f.record(token)
	if f.ticketsErr != nil {
		return nil, f.ticketsErr
	}
	if f.ticketsRaw != nil {
		return f.ticketsRaw, nil
	}
	return json.Marshal(f.tickets)
}

func (f *fakeBackend) Ticket(ctx context.Context, token, ticketID string) (backend.Ticket, error) {
	tickets, err := f.ListTickets(ctx, token)
	if err != nil {
		return backend.Ticket{}, err
	}
	ticket, ok := backend.FindTicket(tickets, ticketID)
	if !ok {
		return backend.Ticket{}, backend.ErrTicketNotFound
	}
	return ticket, nil
}

func (f *fakeBackend) SendReply(_ context.Context, token, ticketID, message string) (backend.ReplyResult, error) {
	f.mu.Lock()
	f.replies = append(f.replies, replyCall{token: token, ticketID: ticketID, message: message})
	f.mu.Unlock()
	if f.replyErr != nil {
		return backend.ReplyResult{}, f.replyErr
	}
	return backend.ReplyResult{DiscordStatus: http.StatusOK}, nil
}

func (f *fakeBackend) CloseTicket(_ context.Context, token, ticketID string) (backend.CloseResult, error) {
	f.record(token)
	f.mu.Lock()
	f.closed = append(f.closed, ticketID)
	f.mu.Unlock()
	if f.closeErr != nil {
		return backend.CloseResult{}, f.closeErr
	}
	return backend.CloseResult{Status: backend.StatusClosed, TicketID: backend.TicketID(ticketID)}, nil
}

func (f *fakeBackend) AdminLogs(_ context.Context, token string) ([]backend.AdminLogEntry, error) {
	f.record(token)
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs, nil
}

func (f *fakeBackend) ServerMap(_ context.Context, token string) (json.RawMessage, error) {
	f.record(token)
	if f.mapErr != nil {
		return nil, f.mapErr
	}
	return f.serverMap, nil
}

func (f *fakeBackend) ResolveAttachmentURL(path string) string {
	return testBackendURL + "/" + strings.TrimLeft(path, "/")
}

func (f *fakeBackend) BaseURL() string {
	return testBackendURL
}

type testEnv struct {
	handler http.Handler
	backend *fakeBackend
	store   *dashboardsqlite.Store
	now     time.Time
}

func newTestEnv(t *testing.T, fake *fakeBackend, opts ...func(*HandlerConfig)) *testEnv {
	t.Helper()
	store, err := dashboardsqlite.Open(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now().UTC().Truncate(time.Second)
	cfg := HandlerConfig{
		Backend:    fake,
		Sessions:   store,
		Metrics:    metrics.New(),
		LoginRate:  rate.Inf,
		LoginBurst: 100,
		Now:        func() time.Time { return now },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return &testEnv{handler: handler, backend: fake, store: store, now: now}
}

// signIn stores a live session and returns its cookie.
func (e *testEnv) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	session := storage.Session{
		ID:        "session-1",
		Token:     testToken,
		Username:  "admin",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}
	if err := e.store.PutSession(context.Background(), session); err != nil {
		t.Fatalf("put session: %v", err)
	}
	return &http.Cookie{Name: sessionCookieName, Value: session.ID}
}

type requestOption func(*http.Request)

func withCookie(cookie *http.Cookie) requestOption {
	return func(r *http.Request) { r.AddCookie(cookie) }
}

func withHTMX() requestOption {
	return func(r *http.Request) { r.Header.Set("HX-Request", "true") }
}

func withOrigin(origin string) requestOption {
	return func(r *http.Request) { r.Header.Set("Origin", origin) }
}

func (e *testEnv) do(method, target string, form url.Values, opts ...requestOption) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, "http://"+testHost+target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, "http://"+testHost+target, nil)
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func requireBody(t *testing.T, rec *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
}

func sampleTickets() []backend.Ticket {
	return []backend.Ticket{
		{
			ID:          "42",
			Status:      "OPEN",
			Count:       2,
			LastMessage: "thanks",
			Messages: []backend.Message{
				{Author: "customer", Content: "my order is late", Attachments: []string{"attachments/42/receipt.png"}},
				{Author: backend.AuthorAdmin, Content: "checking now"},
			},
			Attachments: []backend.Attachment{{Filename: "receipt.png", URL: "/attachments/42/receipt.png"}},
		},
		{ID: "43", Status: "CLOSED", Count: 1, LastMessage: strings.Repeat("x", 120)},
	}
}

func TestNewHandlerRequiresCollaborators(t *testing.T) {
	if _, err := NewHandler(HandlerConfig{}); err == nil {
		t.Fatal("expected error without backend")
	}
	if _, err := NewHandler(HandlerConfig{Backend: &fakeBackend{}}); err == nil {
		t.Fatal("expected error without session store")
	}
}

func TestRequireSessionRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	for _, target := range []string{"/", "/tickets", "/tickets/42", "/admin/logs", "/server-map"} {
		rec := env.do(http.MethodGet, target, nil)
		if rec.Code != http.StatusFound {
			t.Fatalf("%s status = %d, want 302", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("%s location = %q", target, loc)
		}
	}

	rec := env.do(http.MethodGet, "/tickets/table", nil, withHTMX())
	if rec.Code != http.StatusOK || rec.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("htmx redirect = %d %q", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}

func TestRequireSessionClearsStaleCookie(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	rec := env.do(http.MethodGet, "/tickets", nil, withCookie(&http.Cookie{Name: sessionCookieName, Value: "gone"}))
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	cleared := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("expected stale session cookie to be cleared")
	}
}

func TestOperationalRoutesSkipSession(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	rec := env.do(http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	rec = env.do(http.MethodGet, "/static/dashboard.css", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("static status = %d", rec.Code)
	}
	rec = env.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	requireBody(t, rec, "ticketdesk_http_requests_total")
}

func TestLoginPage(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})

	rec := env.do(http.MethodGet, "/login", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, `name="username"`, `name="password"`, `<title>Admin Login`)
	if strings.Contains(rec.Body.String(), `action="/logout"`) {
		t.Fatal("login page should not show logout")
	}
}

func TestLoginPageRedirectsSignedInOperator(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/login", nil, withCookie(cookie))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginSuccessStoresSession(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	expiry := env.now.Add(3 * time.Hour).Truncate(time.Second)
	env.backend.loginToken = signedToken(t, expiry)

	form := url.Values{"username": {"admin"}, "password": {"12345"}}
	rec := env.do(http.MethodPost, "/login", form, withOrigin(testOrigin))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q body = %s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	session, err := env.store.GetSession(context.Background(), cookie.Value)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session.Token != env.backend.loginToken || session.Username != "admin" {
		t.Fatalf("session = %+v", session)
	}
	if !session.ExpiresAt.Equal(expiry) {
		t.Fatalf("expires_at = %s, want %s", session.ExpiresAt, expiry)
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		loginErr error
		form     url.Values
		want     string
	}{
		{name: "wrong credentials", loginErr: fmt.Errorf("login: %w", backend.ErrUnauthorized), form: url.Values{"username": {"admin"}, "password": {"nope"}}, want: "Login failed"},
		{name: "unreachable", loginErr: fmt.Errorf("login: %w", backend.ErrUnavailable), form: url.Values{"username": {"admin"}, "password": {"12345"}}, want: "Server not running at " + testBackendURL},
		{name: "server error", loginErr: &backend.StatusError{Operation: "login", StatusCode: 500}, form: url.Values{"username": {"admin"}, "password": {"12345"}}, want: "Login failed"},
		{name: "missing fields", form: url.Values{"username": {"admin"}}, want: "Username and password are required."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeBackend{loginErr: tc.loginErr})
			rec := env.do(http.MethodPost, "/login", tc.form, withOrigin(testOrigin))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			requireBody(t, rec, tc.want, `value="admin"`)
			for _, c := range rec.Result().Cookies() {
				if c.Name == sessionCookieName {
					t.Fatal("failed login must not set a session cookie")
				}
			}
		})
	}
}

func TestLoginRejectsCrossOrigin(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{loginToken: "t"})

	form := url.Values{"username": {"admin"}, "password": {"12345"}}
	if rec := env.do(http.MethodPost, "/login", form, withOrigin("http://evil.test")); rec.Code != http.StatusForbidden {
		t.Fatalf("cross origin status = %d, want 403", rec.Code)
	}
	if rec := env.do(http.MethodPost, "/login", form); rec.Code != http.StatusForbidden {
		t.Fatalf("missing origin status = %d, want 403", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{loginErr: backend.ErrUnauthorized}, func(cfg *HandlerConfig) {
		cfg.LoginRate = rate.Every(time.Hour)
		cfg.LoginBurst = 1
	})

	form := url.Values{"username": {"admin"}, "password": {"bad"}}
	requireBody(t, env.do(http.MethodPost, "/login", form, withOrigin(testOrigin)), "Login failed")
	requireBody(t, env.do(http.MethodPost, "/login", form, withOrigin(testOrigin)), "Too many login attempts")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)

	if rec := env.do(http.MethodGet, "/logout", nil, withCookie(cookie)); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET logout status = %d, want 405", rec.Code)
	}

	rec := env.do(http.MethodPost, "/logout", url.Values{}, withCookie(cookie), withOrigin(testOrigin))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, err := env.store.GetSession(context.Background(), cookie.Value); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("session err = %v, want ErrNotFound", err)
	}
}

func TestHomePage(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, `hx-get="/server-map"`, `hx-get="/tickets/raw"`, "Reload Servers", "Reload Tickets", `<span class="operator">admin</span>`)

	if rec := env.do(http.MethodGet, "/nope", nil, withCookie(cookie)); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestServerMapFragment(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{serverMap: json.RawMessage(`{"1":{"guild_name":"Donde","channels":2}}`)})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/server-map", nil, withCookie(cookie), withHTMX())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, `<pre class="json">`, `&#34;guild_name&#34;: &#34;Donde&#34;`)
	if env.backend.tokens[0] != testToken {
		t.Fatalf("token = %q", env.backend.tokens[0])
	}
}

func TestRawTicketsFragment(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/raw", nil, withCookie(cookie), withHTMX())
	requireBody(t, rec, `&#34;ticket_id&#34;: &#34;42&#34;`, `my order is late`)
}

func TestRawTicketsPassesBackendJSONThrough(t *testing.T) {
	raw := `[{"ticket_id":1234567890,"opened_by":"bob","messages":[{"role":"user","text":"hi","timestamp":1700000000}]}]`
	env := newTestEnv(t, &fakeBackend{ticketsRaw: json.RawMessage(raw)})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/raw", nil, withCookie(cookie), withHTMX())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec,
		`&#34;ticket_id&#34;: 1234567890`,
		`&#34;opened_by&#34;: &#34;bob&#34;`,
		`&#34;role&#34;: &#34;user&#34;`,
		`&#34;text&#34;: &#34;hi&#34;`,
		`&#34;timestamp&#34;: 1700000000`,
	)
	body := rec.Body.String()
	for _, added := range []string{"&#34;author&#34;", "&#34;content&#34;", "&#34;attachments&#34;", "null"} {
		if strings.Contains(body, added) {
			t.Fatalf("raw tickets gained %s:\n%s", added, body)
		}
	}
}

func TestServerMapUnavailableRendersInline(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{mapErr: fmt.Errorf("server_map: %w", backend.ErrUnavailable)})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/server-map", nil, withCookie(cookie), withHTMX())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Ticket backend unavailable.")
}

func TestTicketsPage(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets?closed=9", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec,
		"Ticket #42",
		`<span class="badge badge-open">OPEN</span>`,
		`<span class="badge badge-closed">CLOSED</span>`,
		"2 messages",
		strings.Repeat("x", previewLimit)+"...",
		`href="/tickets/42"`,
		`hx-trigger="every 5s"`,
		"Ticket 9 closed.",
	)
}

func TestTicketsTableEmpty(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/table", nil, withCookie(cookie), withHTMX())
	requireBody(t, rec, "No active tickets.", `id="ticket-table"`)
	if strings.Contains(rec.Body.String(), "<html") {
		t.Fatal("fragment must not include the layout")
	}
}

func TestTicketsTableBackendErrorKeepsPolling(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{ticketsErr: &backend.StatusError{Operation: "list_tickets", StatusCode: 500}})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/table", nil, withCookie(cookie), withHTMX())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Ticket backend returned an error.", `hx-trigger="every 5s"`)
}

func TestUnauthorizedBackendEndsSession(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{ticketsErr: fmt.Errorf("list_tickets: %w", backend.ErrUnauthorized)})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/table", nil, withCookie(cookie), withHTMX())
	if rec.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
	}
	if _, err := env.store.GetSession(context.Background(), cookie.Value); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("session err = %v, want ErrNotFound", err)
	}

	cookie = env.signIn(t)
	rec = env.do(http.MethodGet, "/tickets", nil, withCookie(cookie))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHTMXNavigationReturnsMainContent(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets", nil, withCookie(cookie), withHTMX())
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<title>Live Support Tickets</title>") {
		t.Fatalf("expected title prefix, got %q", body[:min(len(body), 80)])
	}
	if strings.Contains(body, "<html") || strings.Contains(body, "<nav") {
		t.Fatal("HTMX navigation should only return main content")
	}
}

func TestTicketDetail(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/42", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec,
		"<h1>Ticket #42</h1>",
		`<div class="message message-user">`,
		`<div class="message message-admin">`,
		`src="http://backend.test/attachments/42/receipt.png"`,
		`hx-get="/tickets/42/messages" hx-trigger="every 4s"`,
		`hx-post="/tickets/42/reply"`,
		`action="/tickets/42/close"`,
		"Type admin reply...",
		">receipt.png</a>",
	)
}

func TestTicketDetailNotFound(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets/999", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Ticket 999 was not found.")
	if strings.Contains(rec.Body.String(), "/tickets/999/reply") {
		t.Fatal("unknown ticket should not render the reply form")
	}

	rec = env.do(http.MethodGet, "/tickets/999/messages", nil, withCookie(cookie), withHTMX())
	requireBody(t, rec, "Ticket 999 was not found.", `id="ticket-messages"`)
}

func TestTicketReplyRequiresMessage(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodPost, "/tickets/42/reply", url.Values{"message": {"   "}}, withCookie(cookie), withOrigin(testOrigin), withHTMX())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Reply message is required.", `id="ticket-messages"`)
	if len(env.backend.replies) != 0 {
		t.Fatalf("backend replies = %d, want 0", len(env.backend.replies))
	}
}

func TestTicketReplyHTMX(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodPost, "/tickets/42/reply", url.Values{"message": {" on it "}}, withCookie(cookie), withOrigin(testOrigin), withHTMX())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Reply sent.", "checking now")
	if strings.Contains(rec.Body.String(), "<html") {
		t.Fatal("HTMX reply should return the messages fragment")
	}
	want := replyCall{token: testToken, ticketID: "42", message: "on it"}
	if len(env.backend.replies) != 1 || env.backend.replies[0] != want {
		t.Fatalf("replies = %+v, want %+v", env.backend.replies, want)
	}
}

func TestTicketReplyFormRedirects(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodPost, "/tickets/42/reply", url.Values{"message": {"hello"}}, withCookie(cookie), withOrigin(testOrigin))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/tickets/42" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestTicketReplyBackendFailure(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets(), replyErr: &backend.StatusError{Operation: "send_reply", StatusCode: 502}})
	cookie := env.signIn(t)

	rec := env.do(http.MethodPost, "/tickets/42/reply", url.Values{"message": {"hello"}}, withCookie(cookie), withOrigin(testOrigin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Reply could not be delivered.", "<h1>Ticket #42</h1>")
}

func TestTicketReplyRejectsCrossOrigin(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	rec := env.do(http.MethodPost, "/tickets/42/reply", url.Values{"message": {"hello"}}, withCookie(cookie), withOrigin("http://evil.test"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(env.backend.replies) != 0 {
		t.Fatal("cross-origin reply must not reach the backend")
	}
}

func TestTicketsPageCloseFlash(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		want     string
		unwanted []string
	}{
		{name: "closed id", query: "?closed=42", want: `alert-success">Ticket 42 closed.`},
		{name: "free text ignored", query: "?message=Your+account+is+suspended", unwanted: []string{"Your account is suspended", "alert-success"}},
		{name: "markup in closed", query: "?closed=%3Cscript%3Ealert(1)%3C%2Fscript%3E", unwanted: []string{"alert-success", "&lt;script&gt;"}},
		{name: "sentence in closed", query: "?closed=42+call+support", unwanted: []string{"call support", "alert-success"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
			cookie := env.signIn(t)

			rec := env.do(http.MethodGet, "/tickets"+tc.query, nil, withCookie(cookie))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if tc.want != "" {
				requireBody(t, rec, tc.want)
			}
			body := rec.Body.String()
			for _, unwanted := range tc.unwanted {
				if strings.Contains(body, unwanted) {
					t.Fatalf("body contains %q:\n%s", unwanted, body)
				}
			}
		})
	}
}

func TestTicketClose(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets()})
	cookie := env.signIn(t)

	if rec := env.do(http.MethodGet, "/tickets/42/close", nil, withCookie(cookie)); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET close status = %d, want 405", rec.Code)
	}

	rec := env.do(http.MethodPost, "/tickets/42/close", url.Values{}, withCookie(cookie), withOrigin(testOrigin))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/tickets?closed=42" {
		t.Fatalf("location = %q", loc)
	}
	if len(env.backend.closed) != 1 || env.backend.closed[0] != "42" {
		t.Fatalf("closed = %v", env.backend.closed)
	}
}

func TestTicketCloseFailure(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{tickets: sampleTickets(), closeErr: &backend.StatusError{Operation: "close_ticket", StatusCode: 500}})
	cookie := env.signIn(t)

	rec := env.do(http.MethodPost, "/tickets/42/close", url.Values{}, withCookie(cookie), withOrigin(testOrigin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec, "Ticket could not be closed.")
}

func TestAdminLogs(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)
	at := env.now.Add(-3 * time.Minute)
	env.backend.logs = []backend.AdminLogEntry{
		{Admin: "admin", Action: "REPLY", TicketID: "42", Message: "on it", Time: at.Format("2006-01-02T15:04:05.000000")},
		{Action: "CLOSE", TicketID: "43", Time: "not a time"},
	}

	rec := env.do(http.MethodGet, "/admin/logs", nil, withCookie(cookie))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	requireBody(t, rec,
		`<strong class="log-action">REPLY</strong>`,
		at.Format(logTimeLayout),
		"3 minutes ago",
		"Ticket ID: <b>42</b>",
		"by admin",
		"<blockquote>“on it”</blockquote>",
		"not a time",
	)
}

func TestAdminLogsEmpty(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)

	requireBody(t, env.do(http.MethodGet, "/admin/logs", nil, withCookie(cookie)), "No admin activity yet.")
}

func TestLanguageQueryPersistsCookie(t *testing.T) {
	env := newTestEnv(t, &fakeBackend{})
	cookie := env.signIn(t)

	rec := env.do(http.MethodGet, "/tickets?lang=pt-BR", nil, withCookie(cookie))
	requireBody(t, rec, "Nenhum ticket ativo.", `<html lang="pt-BR">`)
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "td_lang" && c.Value == "pt-BR" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected language cookie")
	}
}

func TestBackendMetricsRecorded(t *testing.T) {
	m := metrics.New()
	env := newTestEnv(t, &fakeBackend{}, func(cfg *HandlerConfig) { cfg.Metrics = m })
	cookie := env.signIn(t)

	env.do(http.MethodGet, "/tickets", nil, withCookie(cookie))
	rec := env.do(http.MethodGet, "/metrics", nil)
	requireBody(t, rec, `ticketdesk_http_requests_total{code="200",method="get"}`)
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": expiry.Unix(),
	}).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}
