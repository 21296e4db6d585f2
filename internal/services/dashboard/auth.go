package dashboard

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/donde/ticketdesk/internal/platform/requestctx"
	"github.com/donde/ticketdesk/internal/services/dashboard/routepath"
	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
	sharedhtmx "github.com/donde/ticketdesk/internal/services/shared/htmx"
	"github.com/golang-jwt/jwt/v5"
)

// sessionCookieName holds the opaque dashboard session id.
const sessionCookieName = "td_session"

// defaultSessionTTL applies when the backend token carries no usable exp claim.
const defaultSessionTTL = 12 * time.Hour

// requireSession resolves the session cookie into a request operator and
// sends anonymous requests to the login page.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, ok := h.currentSession(r); ok {
			ctx := requestctx.WithOperator(r.Context(), requestctx.Operator{
				SessionID: session.ID,
				Username:  session.Username,
				Token:     session.Token,
			})
			r = r.WithContext(ctx)
		} else if !isAuthExempt(r.URL.Path) {
			if _, err := r.Cookie(sessionCookieName); err == nil {
				h.clearSessionCookie(w, r)
			}
			sharedhtmx.Redirect(w, r, routepath.Login, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isAuthExempt returns true for paths served without a session.
func isAuthExempt(path string) bool {
	return path == routepath.Login
}

func (h *Handler) currentSession(r *http.Request) (storage.Session, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return storage.Session{}, false
	}
	session, err := h.sessions.GetSession(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("load session: %v", err)
		}
		return storage.Session{}, false
	}
	return session, true
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, session storage.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies || isHTTPS(r),
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies || isHTTPS(r),
	})
}

// endSession deletes the request's session record and clears its cookie.
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteSession(r.Context(), cookie.Value); err != nil {
			log.Printf("delete session: %v", err)
		}
	}
	h.clearSessionCookie(w, r)
}

// tokenExpiry reads the exp claim of a backend JWT without verifying it; the
// signing key belongs to the backend. Tokens without a future exp get
// defaultSessionTTL.
func tokenExpiry(token string, now time.Time) time.Time {
	fallback := now.Add(defaultSessionTTL)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fallback
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil || !exp.After(now) {
		return fallback
	}
	return exp.Time
}
