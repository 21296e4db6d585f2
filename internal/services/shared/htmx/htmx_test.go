package htmx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type testComponent struct {
	body string
}

func (c testComponent) Render(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, c.body)
	return err
}

func htmxRequest(path string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set(RequestHeaderKey, "true")
	return r
}

func TestIsHTMXRequest(t *testing.T) {
	t.Parallel()
	if IsHTMXRequest(nil) {
		t.Fatal("IsHTMXRequest(nil) = true, want false")
	}
	if IsHTMXRequest(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("plain request reported as HTMX")
	}
	if !IsHTMXRequest(htmxRequest("/")) {
		t.Fatal("HTMX request not detected")
	}
}

func TestTitleTag(t *testing.T) {
	t.Parallel()
	if got, want := TitleTag("Ticket <#42>"), "<title>Ticket &lt;#42&gt;</title>"; got != want {
		t.Fatalf("TitleTag() = %q, want %q", got, want)
	}
	if got := TitleTag("   "); got != "" {
		t.Fatalf("TitleTag(blank) = %q, want empty", got)
	}
}

func TestRenderPageForNonHTMXUsesFullRender(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()

	RenderPage(w, httptest.NewRequest(http.MethodGet, "/tickets", nil),
		testComponent{body: "<div>fragment</div>"},
		testComponent{body: "<html><body><main>full</main></body></html>"},
		TitleTag("Tickets"))

	if got := w.Body.String(); got != "<html><body><main>full</main></body></html>" {
		t.Fatalf("body = %q, want full page", got)
	}
}

func TestRenderPageForHTMXExtractsMainAndInjectsTitle(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()

	RenderPage(w, htmxRequest("/tickets"), nil,
		testComponent{body: "<html><body><nav>x</nav><main class=\"page\"><h1>Tickets</h1></main></body></html>"},
		TitleTag("Tickets"))

	if got, want := w.Body.String(), "<title>Tickets</title><h1>Tickets</h1>"; got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestRenderPageForHTMXPreservesExistingTitle(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()

	RenderPage(w, htmxRequest("/"), testComponent{body: "<title>Set</title><p>x</p>"}, nil, TitleTag("Injected"))

	got := w.Body.String()
	if strings.Contains(got, "Injected") {
		t.Fatalf("expected existing title to be kept, got %q", got)
	}
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	t.Run("plain request", func(t *testing.T) {
		w := httptest.NewRecorder()
		Redirect(w, httptest.NewRequest(http.MethodGet, "/tickets", nil), "/login", http.StatusFound)
		if w.Code != http.StatusFound {
			t.Fatalf("status = %d, want 302", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/login" {
			t.Fatalf("Location = %q, want /login", got)
		}
	})

	t.Run("htmx request", func(t *testing.T) {
		w := httptest.NewRecorder()
		Redirect(w, htmxRequest("/tickets/table"), "/login", http.StatusFound)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if got := w.Header().Get(RedirectHeaderKey); got != "/login" {
			t.Fatalf("HX-Redirect = %q, want /login", got)
		}
	})
}

func TestCopyHeadersKeepsAllCookies(t *testing.T) {
	t.Parallel()
	dst := http.Header{}
	src := http.Header{}
	src.Add("Content-Type", "text/plain")
	src.Add("Content-Type", "text/html; charset=utf-8")
	src.Add("Set-Cookie", "a=1")
	src.Add("Set-Cookie", "b=2")

	copyHeaders(dst, src)

	if got := dst.Values("Content-Type"); len(got) != 1 || got[0] != "text/html; charset=utf-8" {
		t.Fatalf("Content-Type = %v, want last value only", got)
	}
	if got := dst.Values("Set-Cookie"); len(got) != 2 {
		t.Fatalf("Set-Cookie = %v, want both cookies", got)
	}
}
