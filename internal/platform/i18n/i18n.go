// Package i18n defines the locales the dashboard supports and how request
// language values map onto them.
package i18n

import (
	"strings"

	"github.com/donde/ticketdesk/internal/platform/i18n/catalog"
	"golang.org/x/text/language"
)

var supportedTags = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("pt-BR"),
}

var matcher = language.NewMatcher(supportedTags)

func init() {
	// Loading the default bundle registers catalog strings with x/text.
	_ = catalog.Default()
}

// SupportedTags returns a copy of the supported language tags.
func SupportedTags() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// DefaultTag returns the fallback language.
func DefaultTag() language.Tag {
	return supportedTags[0]
}

// ParseTag maps a raw value onto a supported tag.
//
// Base-language values resolve to their supported regional variant, so "pt"
// maps to pt-BR and "en" to en-US.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Tag{}, false
	}
	parsed, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	_, index, confidence := matcher.Match(parsed)
	if confidence < language.High {
		return language.Tag{}, false
	}
	return supportedTags[index], true
}

// MatchTags returns the best supported tag for an Accept-Language list.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultTag()
	}
	return supportedTags[index]
}
