package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/donde/ticketdesk/internal/platform/telemetry/metrics"
	"github.com/donde/ticketdesk/internal/platform/timeouts"
	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
	dashboardsqlite "github.com/donde/ticketdesk/internal/services/dashboard/storage/sqlite"
	"golang.org/x/time/rate"
)

// sessionCleanupInterval controls how often expired sessions are purged.
const sessionCleanupInterval = 30 * time.Minute

// Config defines the inputs for the dashboard process.
type Config struct {
	HTTPAddr string
	// BackendURL is the ticket backend origin used for REST calls.
	BackendURL string
	// AttachmentBaseURL is the browser-facing origin for attachment links;
	// empty means BackendURL.
	AttachmentBaseURL string
	DBPath            string
	SecureCookies     bool
	// LoginRate is login attempts per second across all clients.
	LoginRate  float64
	LoginBurst int
}

// Server hosts the dashboard and owns its session store.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	backend    *backend.Client
	store      storage.Store
}

// NewServer builds a configured dashboard server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	dbPath := strings.TrimSpace(config.DBPath)
	if dbPath == "" {
		dbPath = filepath.Join("data", "dashboard.db")
	}

	dashboardMetrics := metrics.New()
	client, err := backend.NewClient(backend.Config{
		BaseURL:           config.BackendURL,
		AttachmentBaseURL: config.AttachmentBaseURL,
		HTTPClient:        &http.Client{Timeout: timeouts.BackendRequest},
		Observer:          dashboardMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("configure backend client: %w", err)
	}

	store, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}

	handler, err := NewHandler(HandlerConfig{
		Backend:       client,
		Sessions:      store,
		Metrics:       dashboardMetrics,
		SecureCookies: config.SecureCookies,
		LoginRate:     rate.Limit(config.LoginRate),
		LoginBurst:    config.LoginBurst,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build handler: %w", err)
	}

	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		backend: client,
		store:   store,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("dashboard server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	go probeBackend(ctx, s.backend)
	go purgeExpiredSessions(ctx, s.store, sessionCleanupInterval)

	serveErr := make(chan error, 1)
	log.Printf("dashboard listening on %s (backend %s)", s.httpAddr, s.backend.BaseURL())
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the session store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close dashboard store: %v", err)
		}
	}
}

func openStore(path string) (*dashboardsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := dashboardsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dashboard sqlite store: %w", err)
	}
	return store, nil
}

// healthChecker is the backend call used by the startup probe.
type healthChecker interface {
	Health(ctx context.Context) (backend.Health, error)
	BaseURL() string
}

// probeBackend logs whether the backend answers at startup.
func probeBackend(ctx context.Context, checker healthChecker) {
	if checker == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeouts.BackendProbe)
	defer cancel()
	health, err := checker.Health(probeCtx)
	if err != nil {
		log.Printf("backend probe %s failed: %v", checker.BaseURL(), err)
		return
	}
	log.Printf("backend %s is up: %s", checker.BaseURL(), health.Status)
}

// purgeExpiredSessions deletes expired sessions every interval until ctx ends.
func purgeExpiredSessions(ctx context.Context, sessions storage.SessionStore, interval time.Duration) {
	if sessions == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := sessions.DeleteExpiredSessions(ctx, now)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("purge expired sessions: %v", err)
				}
				continue
			}
			if removed > 0 {
				log.Printf("purged %d expired sessions", removed)
			}
		}
	}
}
