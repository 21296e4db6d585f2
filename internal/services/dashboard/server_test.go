package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
	dashboardsqlite "github.com/donde/ticketdesk/internal/services/dashboard/storage/sqlite"
)

func TestNewServerValidatesConfig(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "dashboard.db")
	tests := []struct {
		name   string
		config Config
	}{
		{name: "missing address", config: Config{BackendURL: "http://localhost:8081", DBPath: dbPath}},
		{name: "missing backend", config: Config{HTTPAddr: ":0", DBPath: dbPath}},
		{name: "bad backend scheme", config: Config{HTTPAddr: ":0", BackendURL: "ftp://localhost:8081", DBPath: dbPath}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewServer(context.Background(), tc.config); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewServerCreatesStoreDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "dashboard.db")
	server, err := NewServer(context.Background(), Config{
		HTTPAddr:   "127.0.0.1:0",
		BackendURL: "http://localhost:8081",
		DBPath:     dbPath,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(server.Close)

	if server.httpServer.Handler == nil {
		t.Fatal("expected handler")
	}
	if server.httpServer.ReadHeaderTimeout <= 0 {
		t.Fatal("expected read header timeout")
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(upstream.Close)

	server, err := NewServer(context.Background(), Config{
		HTTPAddr:   "127.0.0.1:0",
		BackendURL: upstream.URL,
		DBPath:     filepath.Join(t.TempDir(), "dashboard.db"),
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(server.Close)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.ListenAndServe(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("listen and serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListenAndServeNilServer(t *testing.T) {
	var server *Server
	if err := server.ListenAndServe(context.Background()); err == nil {
		t.Fatal("expected error for nil server")
	}
	server.Close()
}

type fakeHealth struct {
	health backend.Health
	err    error
	called bool
}

func (f *fakeHealth) Health(context.Context) (backend.Health, error) {
	f.called = true
	return f.health, f.err
}

func (f *fakeHealth) BaseURL() string { return "http://backend.test" }

func TestProbeBackend(t *testing.T) {
	probeBackend(context.Background(), nil)

	up := &fakeHealth{health: backend.Health{Status: "ok"}}
	probeBackend(context.Background(), up)
	if !up.called {
		t.Fatal("expected health call")
	}

	down := &fakeHealth{err: backend.ErrUnavailable}
	probeBackend(context.Background(), down)
	if !down.called {
		t.Fatal("expected health call")
	}
}

type purgeRecorder struct {
	storage.SessionStore
	calls chan time.Time
}

func (p *purgeRecorder) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	select {
	case p.calls <- now:
	default:
	}
	return 1, nil
}

func TestPurgeExpiredSessionsRunsOnInterval(t *testing.T) {
	recorder := &purgeRecorder{calls: make(chan time.Time, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		purgeExpiredSessions(ctx, recorder, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-recorder.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a purge within the interval")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("purge loop did not stop")
	}
}

func TestPurgeExpiredSessionsRemovesExpiredRows(t *testing.T) {
	store, err := dashboardsqlite.Open(filepath.Join(t.TempDir(), "dashboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now().UTC()
	sessions := []storage.Session{
		{ID: "old", Token: "t1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: "new", Token: "t2", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	}
	for _, session := range sessions {
		if err := store.PutSession(context.Background(), session); err != nil {
			t.Fatalf("put session %s: %v", session.ID, err)
		}
	}

	removed, err := store.DeleteExpiredSessions(context.Background(), now)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.GetSession(context.Background(), "new"); err != nil {
		t.Fatalf("live session: %v", err)
	}
	if _, err := store.GetSession(context.Background(), "old"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("old session err = %v, want ErrNotFound", err)
	}
}

func TestPurgeExpiredSessionsIgnoresBadInput(t *testing.T) {
	purgeExpiredSessions(context.Background(), nil, time.Second)
	purgeExpiredSessions(context.Background(), &purgeRecorder{}, 0)
}
