package templates

import (
	"net/url"
	"strings"

	"github.com/donde/ticketdesk/internal/services/dashboard/routepath"
)

// BreadcrumbItem is one entry of a page trail.
type BreadcrumbItem struct {
	Label string
	// URL is empty for the current page.
	URL string
}

// BreadcrumbSegmentLabeler returns the label for a path segment. parent is the
// accumulated path before segment, e.g. "/tickets" for "/tickets/42".
type BreadcrumbSegmentLabeler func(segment, parent string, loc Localizer) string

// BuildPathBreadcrumbs builds a trail from a request path. Every entry but the
// last links to its accumulated path; single-segment paths get no trail.
func BuildPathBreadcrumbs(path string, loc Localizer, label BreadcrumbSegmentLabeler) []BreadcrumbItem {
	segments := make([]string, 0, 4)
	for _, segment := range strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/") {
		if segment = strings.TrimSpace(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	if len(segments) < 2 {
		return nil
	}
	if label == nil {
		label = dashboardSegmentLabel
	}

	items := make([]BreadcrumbItem, 0, len(segments))
	parent := ""
	for i, segment := range segments {
		name := segment
		if unescaped, err := url.PathUnescape(segment); err == nil {
			name = unescaped
		}
		item := BreadcrumbItem{Label: label(name, parent, loc)}
		if strings.TrimSpace(item.Label) == "" {
			item.Label = name
		}
		parent += "/" + segment
		if i < len(segments)-1 {
			item.URL = parent
		}
		items = append(items, item)
	}
	return items
}

func dashboardSegmentLabel(segment, parent string, loc Localizer) string {
	switch {
	case parent == "" && "/"+segment == routepath.Tickets:
		return T(loc, "nav.tickets")
	case parent == routepath.Tickets:
		return T(loc, "tickets.label", segment)
	default:
		return segment
	}
}
