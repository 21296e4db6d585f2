// Package htmx adapts templ rendering to HTMX partial requests.
package htmx

import (
	"bytes"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

const (
	// RequestHeaderKey marks requests issued by HTMX.
	RequestHeaderKey = "HX-Request"
	// RedirectHeaderKey asks HTMX to perform a full client-side navigation.
	RedirectHeaderKey = "HX-Redirect"
)

// responseBuffer captures a component render so the body can be trimmed
// before it reaches the client.
type responseBuffer struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	headerWrote bool
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), statusCode: http.StatusOK}
}

func (w *responseBuffer) Header() http.Header {
	return w.header
}

func (w *responseBuffer) WriteHeader(status int) {
	if w.headerWrote {
		return
	}
	w.headerWrote = true
	w.statusCode = status
}

func (w *responseBuffer) Write(body []byte) (int, error) {
	return w.body.Write(body)
}

// IsHTMXRequest reports whether the request was initiated by HTMX.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(RequestHeaderKey), "true")
}

// TitleTag formats an escaped <title> element, or "" for a blank title.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// Redirect sends the client to target. HTMX requests get an HX-Redirect
// header so the browser navigates instead of swapping the login page into a
// fragment target.
func Redirect(w http.ResponseWriter, r *http.Request, target string, status int) {
	if IsHTMXRequest(r) {
		w.Header().Set(RedirectHeaderKey, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, status)
}

// RenderPage renders full for normal requests. For HTMX requests it renders
// full (or fragment when full is nil), keeps only the <main> contents, and
// prepends htmxTitle when the body has no <title> of its own.
func RenderPage(w http.ResponseWriter, r *http.Request, fragment templ.Component, full templ.Component, htmxTitle string) {
	if !IsHTMXRequest(r) {
		if full == nil {
			full = fragment
		}
		if full != nil {
			templ.Handler(full).ServeHTTP(w, r)
		}
		return
	}

	target := fragment
	fromFull := full != nil
	if fromFull {
		target = full
	}
	if target == nil {
		return
	}

	capture := newResponseBuffer()
	templ.Handler(target).ServeHTTP(capture, r)
	body := capture.body.Bytes()
	if fromFull {
		if mainContent, ok := extractMainContent(body); ok {
			body = mainContent
		}
	}
	body = prependTitleIfMissing(body, htmxTitle)

	copyHeaders(w.Header(), capture.Header())
	if capture.statusCode != http.StatusOK {
		w.WriteHeader(capture.statusCode)
	}
	_, _ = w.Write(body)
}

// RenderFragment renders a component verbatim; used for polled partials.
func RenderFragment(w http.ResponseWriter, r *http.Request, fragment templ.Component) {
	if fragment == nil {
		return
	}
	templ.Handler(fragment).ServeHTTP(w, r)
}

func prependTitleIfMissing(body []byte, title string) []byte {
	if strings.TrimSpace(title) == "" {
		return body
	}
	if bytes.Contains(bytes.ToLower(body), []byte("<title")) {
		return body
	}
	return append([]byte(title), body...)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Set-Cookie") {
			for _, value := range values {
				dst.Add(key, value)
			}
			continue
		}
		// Last value wins for single-valued headers.
		for _, value := range values {
			dst.Set(key, value)
		}
	}
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.IndexByte(body[start:], '>')
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
