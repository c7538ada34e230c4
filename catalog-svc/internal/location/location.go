package location

import (
	"net/url"
	"strings"
)

// RoutingPrefix is the first path segment of primary-format URLs:
// /menu/{admin|user}/{hotelSlug}[/{branchSlug}].
const RoutingPrefix = "menu"

// Page kinds carried by primary-format URLs.
const (
	PageKindAdmin = "admin"
	PageKindUser  = "user"
)

// Query parameter names of the legacy fallback (?hotel=&branch=).
const (
	queryHotelParam  = "hotel"
	queryBranchParam = "branch"
)

// Info is the raw outcome of parsing a navigation location. Keys are
// normalized but not yet resolved against any branch list.
type Info struct {
	HotelKey      string `json:"hotel_key"`
	BranchKey     string `json:"branch_key"`
	PageKind      string `json:"page_kind"`
	PrimaryFormat bool   `json:"primary_format"`
}

// Normalize URL-decodes, trims and lower-cases an identifier. Undecodable
// input is used as-is; the result for empty input is the empty string.
// Total and idempotent.
func Normalize(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return strings.ToLower(strings.TrimSpace(decoded))
}

// SlugifyName derives a URL-safe slug from a display name: Normalize plus
// internal whitespace runs collapsed to single hyphens. Hotels have no stored
// slug, so their URL segment is always derived from the name with this.
func SlugifyName(name string) string {
	fields := strings.Fields(Normalize(name))
	return strings.Join(fields, "-")
}

// Parse extracts raw tenant keys from a navigation location. The fragment is
// passed without its leading '#'; when it begins with '/' it replaces the
// path (static hosting without server-side rewrites). Pure: identical input
// always yields identical output.
func Parse(path, rawQuery, fragment string) Info {
	effective := path
	if strings.HasPrefix(fragment, "/") {
		effective = fragment
	}

	segments := splitSegments(effective)

	var info Info
	switch {
	case len(segments) >= 3 && segments[0] == RoutingPrefix && validPageKind(segments[1]):
		info.PrimaryFormat = true
		info.PageKind = segments[1]
		info.HotelKey = segments[2]
		if len(segments) >= 4 {
			info.BranchKey = segments[3]
		}
	case len(segments) == 1:
		info.HotelKey = segments[0]
	case len(segments) >= 2:
		info.HotelKey = segments[0]
		info.BranchKey = segments[1]
	}

	if info.HotelKey == "" && info.BranchKey == "" {
		info.HotelKey, info.BranchKey = parseQueryKeys(rawQuery)
	}

	return info
}

// validPageKind guards the primary format: an unknown page-kind segment
// means the path is not one of ours and parses as legacy instead.
func validPageKind(kind string) bool {
	return kind == PageKindAdmin || kind == PageKindUser
}

func splitSegments(path string) []string {
	var segments []string
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if normalized := Normalize(seg); normalized != "" {
			segments = append(segments, normalized)
		}
	}
	return segments
}

func parseQueryKeys(rawQuery string) (hotelKey, branchKey string) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", ""
	}
	return Normalize(values.Get(queryHotelParam)), Normalize(values.Get(queryBranchParam))
}
