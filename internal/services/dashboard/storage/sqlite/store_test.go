package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if err := second.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}
}

func TestPutAndGetSession(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session := storage.Session{
		ID:        "session-1",
		Token:     "token-1",
		Username:  "admin",
		CreatedAt: now,
		ExpiresAt: now.Add(12 * time.Hour),
	}
	if err := store.PutSession(context.Background(), session); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Token != "token-1" || got.Username != "admin" {
		t.Fatalf("session = %+v", got)
	}
	if !got.CreatedAt.Equal(now) || !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Fatalf("times = %s / %s", got.CreatedAt, got.ExpiresAt)
	}
}

func TestPutSessionReplaces(t *testing.T) {
	store := openTempStore(t)
	expires := time.Now().Add(time.Hour)

	if err := store.PutSession(context.Background(), storage.Session{ID: "s", Token: "old", ExpiresAt: expires}); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := store.PutSession(context.Background(), storage.Session{ID: "s", Token: "new", ExpiresAt: expires}); err != nil {
		t.Fatalf("replace session: %v", err)
	}
	got, err := store.GetSession(context.Background(), "s")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Token != "new" {
		t.Fatalf("token = %q, want new", got.Token)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at default")
	}
}

func TestPutSessionValidation(t *testing.T) {
	store := openTempStore(t)
	expires := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		session storage.Session
	}{
		{name: "missing id", session: storage.Session{Token: "t", ExpiresAt: expires}},
		{name: "missing token", session: storage.Session{ID: "s", ExpiresAt: expires}},
		{name: "missing expiry", session: storage.Session{ID: "s", Token: "t"}},
	}
	for _, tc := range tests {
		if err := store.PutSession(context.Background(), tc.session); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestPutSessionCanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.PutSession(ctx, storage.Session{ID: "s", Token: "t", ExpiresAt: time.Now().Add(time.Hour)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	store := openTempStore(t)

	for _, id := range []string{"", "missing"} {
		if _, err := store.GetSession(context.Background(), id); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetSession(%q) err = %v, want ErrNotFound", id, err)
		}
	}
}

func TestGetSessionExpired(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.PutSession(context.Background(), storage.Session{ID: "s", Token: "t", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("put session: %v", err)
	}
	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	if _, err := store.GetSession(context.Background(), "s"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteSession(t *testing.T) {
	store := openTempStore(t)

	if err := store.PutSession(context.Background(), storage.Session{ID: "s", Token: "t", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if err := store.DeleteSession(context.Background(), "s"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := store.GetSession(context.Background(), "s"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteSession(context.Background(), "s"); err != nil {
		t.Fatalf("delete missing session: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	sessions := []storage.Session{
		{ID: "expired", Token: "t", ExpiresAt: now.Add(-time.Minute)},
		{ID: "boundary", Token: "t", ExpiresAt: now},
		{ID: "live", Token: "t", ExpiresAt: now.Add(time.Minute)},
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
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	var count int
	if err := store.sqlDB.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("remaining = %d, want 1", count)
	}
}

func TestNilStore(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.GetSession(context.Background(), "s"); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashboard.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
