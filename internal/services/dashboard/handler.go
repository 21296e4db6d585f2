package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/donde/ticketdesk/internal/platform/requestctx"
	"github.com/donde/ticketdesk/internal/platform/telemetry/metrics"
	"github.com/donde/ticketdesk/internal/platform/timeouts"
	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	authmodule "github.com/donde/ticketdesk/internal/services/dashboard/module/auth"
	homemodule "github.com/donde/ticketdesk/internal/services/dashboard/module/home"
	logsmodule "github.com/donde/ticketdesk/internal/services/dashboard/module/logs"
	ticketsmodule "github.com/donde/ticketdesk/internal/services/dashboard/module/tickets"
	"github.com/donde/ticketdesk/internal/services/dashboard/routepath"
	"github.com/donde/ticketdesk/internal/services/dashboard/static"
	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
	"github.com/donde/ticketdesk/internal/services/dashboard/templates"
	"github.com/donde/ticketdesk/internal/services/dashboard/transport/httpmux"
	sharedhtmx "github.com/donde/ticketdesk/internal/services/shared/htmx"
	sharedi18n "github.com/donde/ticketdesk/internal/services/shared/i18nhttp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/time/rate"
)

const (
	// defaultLoginRate is the sustained login attempts per second.
	defaultLoginRate = rate.Limit(1)
	// defaultLoginBurst is the number of back-to-back login attempts allowed.
	defaultLoginBurst = 5
)

// Backend is the subset of the ticket backend the handlers call.
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListTickets(ctx context.Context, token string) ([]backend.Ticket, error)
	TicketsRaw(ctx context.Context, token string) (json.RawMessage, error)
	Ticket(ctx context.Context, token, ticketID string) (backend.Ticket, error)
	SendReply(ctx context.Context, token, ticketID, message string) (backend.ReplyResult, error)
	CloseTicket(ctx context.Context, token, ticketID string) (backend.CloseResult, error)
	AdminLogs(ctx context.Context, token string) ([]backend.AdminLogEntry, error)
	ServerMap(ctx context.Context, token string) (json.RawMessage, error)
	ResolveAttachmentURL(path string) string
	BaseURL() string
}

// HandlerConfig holds the collaborators of the dashboard handler.
type HandlerConfig struct {
	Backend  Backend
	Sessions storage.SessionStore
	// Metrics is optional; nil disables /metrics and request counting.
	Metrics *metrics.Metrics
	// SecureCookies marks session cookies Secure regardless of request scheme.
	SecureCookies bool
	LoginRate     rate.Limit
	LoginBurst    int
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Handler routes dashboard requests.
type Handler struct {
	backend       Backend
	sessions      storage.SessionStore
	metrics       *metrics.Metrics
	secureCookies bool
	loginLimiter  *rate.Limiter
	now           func() time.Time
}

// NewHandler builds the HTTP handler for the dashboard server.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend client is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.LoginRate <= 0 {
		cfg.LoginRate = defaultLoginRate
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = defaultLoginBurst
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &Handler{
		backend:       cfg.Backend,
		sessions:      cfg.Sessions,
		metrics:       cfg.Metrics,
		secureCookies: cfg.SecureCookies,
		loginLimiter:  rate.NewLimiter(cfg.LoginRate, cfg.LoginBurst),
		now:           cfg.Now,
	}
	return h.routes(), nil
}

// routes wires the HTTP routes for the dashboard handler.
func (h *Handler) routes() http.Handler {
	dashboardMux := http.NewServeMux()
	authmodule.RegisterRoutes(dashboardMux, h)
	homemodule.RegisterRoutes(dashboardMux, h)
	ticketsmodule.RegisterRoutes(dashboardMux, h)
	logsmodule.RegisterRoutes(dashboardMux, h)

	rootMux := http.NewServeMux()
	httpmux.MountStatic(rootMux, static.FS)
	var metricsHandler http.Handler
	if h.metrics != nil {
		metricsHandler = h.metrics.Handler()
	}
	httpmux.MountOperational(rootMux, metricsHandler)
	httpmux.MountDashboardRoutes(rootMux, h.requireSession(dashboardMux))

	return h.metrics.InstrumentHandler(rootMux)
}

func (h *Handler) localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, persist := sharedi18n.ResolveTag(r)
	if persist {
		sharedi18n.SetLanguageCookie(w, tag)
	}
	return sharedi18n.Printer(tag), tag.String()
}

func (h *Handler) pageContext(lang string, loc *message.Printer, r *http.Request) templates.PageContext {
	page := templates.PageContext{
		Lang:        lang,
		Loc:         loc,
		CurrentPath: r.URL.Path,
		Languages: sharedi18n.BuildLanguageOptions(r, lang, func(tag language.Tag) string {
			return loc.Sprintf(sharedi18n.LanguageKeyLabel(tag))
		}),
	}
	if operator, ok := requestctx.OperatorFromContext(r.Context()); ok {
		page.Username = operator.Username
		if page.Username == "" {
			page.Username = loc.Sprintf("ticket.admin_author")
		}
	}
	return page
}

// renderPage renders a full page, or only its <main> contents for HTMX navigation.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page templates.PageContext, title string, body templ.Component) {
	sharedhtmx.RenderPage(w, r, body, templates.Layout(page, title, body), sharedhtmx.TitleTag(title))
}

// backendContext bounds a backend call by the request context and timeouts.BackendRequest.
func backendContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.BackendRequest)
}

// operator returns the session operator set by requireSession.
func operator(r *http.Request) requestctx.Operator {
	op, _ := requestctx.OperatorFromContext(r.Context())
	return op
}

// backendFailure maps err to an inline message. It returns false after
// redirecting to login when the backend rejected the session token.
func (h *Handler) backendFailure(w http.ResponseWriter, r *http.Request, loc *message.Printer, operation string, err error) (string, bool) {
	if errors.Is(err, backend.ErrUnauthorized) {
		log.Printf("%s: backend rejected session token; signing out", operation)
		h.endSession(w, r)
		sharedhtmx.Redirect(w, r, routepath.Login, http.StatusSeeOther)
		return "", false
	}
	log.Printf("%s: %v", operation, err)
	if errors.Is(err, backend.ErrUnavailable) {
		return loc.Sprintf("error.backend_unavailable"), true
	}
	return loc.Sprintf("error.backend_failed"), true
}

func requireMethod(w http.ResponseWriter, r *http.Request, loc *message.Printer, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, loc.Sprintf("error.method_not_allowed"), http.StatusMethodNotAllowed)
	return false
}

func requireSameOrigin(w http.ResponseWriter, r *http.Request, loc *message.Printer) bool {
	if r == nil {
		http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
		return false
	}
	source := strings.TrimSpace(r.Header.Get("Origin"))
	if source == "" {
		source = strings.TrimSpace(r.Referer())
	}
	if !sameOrigin(source, r) {
		http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
		return false
	}
	return true
}

func sameOrigin(rawURL string, r *http.Request) bool {
	if rawURL == "" || rawURL == "null" || r == nil {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if !strings.EqualFold(parsed.Host, r.Host) {
		return false
	}
	if parsed.Scheme != "" {
		return strings.EqualFold(parsed.Scheme, requestScheme(r))
	}
	return true
}

func requestScheme(r *http.Request) string {
	if r == nil {
		return "http"
	}
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		parts := strings.Split(proto, ",")
		return strings.ToLower(strings.TrimSpace(parts[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

func isHTTPS(r *http.Request) bool {
	return requestScheme(r) == "https"
}
