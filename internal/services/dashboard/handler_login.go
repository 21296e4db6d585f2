package dashboard

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/donde/ticketdesk/internal/platform/id"
	"github.com/donde/ticketdesk/internal/services/dashboard/backend"
	"github.com/donde/ticketdesk/internal/services/dashboard/routepath"
	"github.com/donde/ticketdesk/internal/services/dashboard/storage"
	"github.com/donde/ticketdesk/internal/services/dashboard/templates"
	"golang.org/x/text/message"
)

// HandleLogin renders the login form and exchanges submitted credentials for
// a backend token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodGet, http.MethodHead, http.MethodPost) {
		return
	}
	if r.Method != http.MethodPost {
		if _, ok := h.currentSession(r); ok {
			http.Redirect(w, r, routepath.Root, http.StatusFound)
			return
		}
		h.renderLogin(w, r, lang, loc, templates.LoginView{})
		return
	}
	if !requireSameOrigin(w, r, loc) {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	view := templates.LoginView{Username: username}
	if username == "" || password == "" {
		view.Error = loc.Sprintf("login.required")
		h.renderLogin(w, r, lang, loc, view)
		return
	}
	if !h.loginLimiter.Allow() {
		view.Error = loc.Sprintf("login.rate_limited")
		h.renderLogin(w, r, lang, loc, view)
		return
	}

	ctx, cancel := backendContext(r)
	defer cancel()
	token, err := h.backend.Login(ctx, username, password)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrUnavailable):
			log.Printf("login: %v", err)
			view.Error = loc.Sprintf("login.unreachable", h.backend.BaseURL())
		case errors.Is(err, backend.ErrUnauthorized):
			view.Error = loc.Sprintf("login.failed")
		default:
			log.Printf("login: %v", err)
			view.Error = loc.Sprintf("login.failed")
		}
		h.renderLogin(w, r, lang, loc, view)
		return
	}

	sessionID, err := id.NewID()
	if err != nil {
		log.Printf("login: generate session id: %v", err)
		view.Error = loc.Sprintf("login.failed")
		h.renderLogin(w, r, lang, loc, view)
		return
	}
	now := h.now().UTC()
	session := storage.Session{
		ID:        sessionID,
		Token:     token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: tokenExpiry(token, now),
	}
	if err := h.sessions.PutSession(r.Context(), session); err != nil {
		log.Printf("login: store session: %v", err)
		view.Error = loc.Sprintf("login.failed")
		h.renderLogin(w, r, lang, loc, view)
		return
	}
	h.setSessionCookie(w, r, session)
	http.Redirect(w, r, routepath.Root, http.StatusSeeOther)
}

// HandleLogout ends the operator session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	loc, _ := h.localizer(w, r)
	if !requireMethod(w, r, loc, http.MethodPost) {
		return
	}
	if !requireSameOrigin(w, r, loc) {
		return
	}
	h.endSession(w, r)
	http.Redirect(w, r, routepath.Login, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, lang string, loc *message.Printer, view templates.LoginView) {
	page := h.pageContext(lang, loc, r)
	page.Username = ""
	h.renderPage(w, r, page, loc.Sprintf("title.login"), templates.LoginPage(view, page))
}
