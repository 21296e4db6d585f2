package templates

import sharedi18n "github.com/donde/ticketdesk/internal/services/shared/i18nhttp"

// LanguageOption is one entry of the language switcher.
type LanguageOption = sharedi18n.LanguageOption

// PageContext provides shared layout context for dashboard pages.
type PageContext struct {
	Lang        string
	Loc         Localizer
	CurrentPath string
	// Username is the signed-in operator; empty on the login page.
	Username  string
	Languages []LanguageOption
}

// Authenticated reports whether the layout should show operator navigation.
func (p PageContext) Authenticated() bool {
	return p.Username != ""
}
