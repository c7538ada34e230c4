package tenant

import (
	"strings"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/location"
)

// Selection is the resolver's verdict. An empty BranchID with a set HotelID
// is the hotel-only state: every branch of that hotel is selectable, none is
// pre-selected. MatchedViaRouting reports whether the selection came from the
// URL rather than from fallbacks.
type Selection struct {
	HotelID           string         `json:"hotel_id"`
	BranchID          string         `json:"branch_id"`
	Branch            *domain.Branch `json:"branch,omitempty"`
	MatchedViaRouting bool           `json:"matched_via_routing"`
}

// ResolveSelection deterministically picks the active tenant from a candidate
// branch list and raw location keys. Rules run in priority order, first match
// wins; the function is total and never guesses across hotel boundaries.
func ResolveSelection(branches []domain.Branch, hotels []domain.Hotel, loc location.Info, fallbackHotelID, fallbackBranchID string) Selection {
	if len(branches) == 0 {
		return Selection{HotelID: fallbackHotelID, BranchID: fallbackBranchID}
	}

	hotelKey := loc.HotelKey
	branchKey := loc.BranchKey

	if hotelKey != "" && branchKey != "" {
		for i := range branches {
			b := branches[i]
			if hotelMatches(b, hotels, hotelKey, loc.PrimaryFormat) && branchMatches(b, branchKey) {
				return Selection{HotelID: b.HotelID, BranchID: b.ID, Branch: &branches[i], MatchedViaRouting: true}
			}
		}
		// The branch key matched nothing under this hotel. Keep the hotel
		// scope if it resolves and surface the explicit no-branch state
		// instead of latching onto a branch of another hotel.
		if hotelID := matchHotel(branches, hotels, hotelKey, loc.PrimaryFormat); hotelID != "" {
			return Selection{HotelID: hotelID, MatchedViaRouting: true}
		}
	}

	if hotelKey != "" && branchKey == "" {
		if hotelID := matchHotel(branches, hotels, hotelKey, loc.PrimaryFormat); hotelID != "" {
			return Selection{HotelID: hotelID, MatchedViaRouting: true}
		}
	}

	if hotelKey == "" && branchKey != "" {
		if sel, ok := matchBranchAnyHotel(branches, branchKey); ok {
			return sel
		}
	}

	if fallbackBranchID != "" {
		for i := range branches {
			if branches[i].ID == fallbackBranchID {
				return Selection{HotelID: branches[i].HotelID, BranchID: branches[i].ID, Branch: &branches[i]}
			}
		}
	}

	return Selection{HotelID: branches[0].HotelID, BranchID: branches[0].ID, Branch: &branches[0]}
}

// FilterByHotel is the defense-in-depth scope filter applied at every fetch
// boundary: only branches owned by hotelID survive.
func FilterByHotel(branches []domain.Branch, hotelID string) []domain.Branch {
	if hotelID == "" {
		return nil
	}
	scoped := make([]domain.Branch, 0, len(branches))
	for _, b := range branches {
		if b.HotelID == hotelID {
			scoped = append(scoped, b)
		}
	}
	return scoped
}

// matchBranchAnyHotel handles legacy branch-only URLs. A key matching
// branches under more than one hotel is ambiguous: refuse to select rather
// than guess an owner.
func matchBranchAnyHotel(branches []domain.Branch, branchKey string) (Selection, bool) {
	matchedHotel := ""
	matchedIdx := -1
	for i := range branches {
		if !branchMatches(branches[i], branchKey) {
			continue
		}
		if matchedIdx == -1 {
			matchedIdx = i
			matchedHotel = branches[i].HotelID
			continue
		}
		if branches[i].HotelID != matchedHotel {
			return Selection{}, true
		}
	}
	if matchedIdx == -1 {
		return Selection{}, false
	}
	b := branches[matchedIdx]
	return Selection{HotelID: b.HotelID, BranchID: b.ID, Branch: &branches[matchedIdx], MatchedViaRouting: true}, true
}

func matchHotel(branches []domain.Branch, hotels []domain.Hotel, hotelKey string, primaryFormat bool) string {
	for _, h := range hotels {
		if hotelKeyMatchesHotel(h, hotelKey, primaryFormat) {
			return h.ID
		}
	}
	// Hotels list may be partial; fall back to ids carried on the branches.
	if !primaryFormat {
		for _, b := range branches {
			if location.Normalize(b.HotelID) == hotelKey {
				return b.HotelID
			}
		}
	}
	return ""
}

func hotelMatches(b domain.Branch, hotels []domain.Hotel, hotelKey string, primaryFormat bool) bool {
	for _, h := range hotels {
		if h.ID == b.HotelID {
			return hotelKeyMatchesHotel(h, hotelKey, primaryFormat)
		}
	}
	if !primaryFormat {
		return location.Normalize(b.HotelID) == hotelKey
	}
	return false
}

func hotelKeyMatchesHotel(h domain.Hotel, hotelKey string, primaryFormat bool) bool {
	if location.SlugifyName(h.Name) == hotelKey {
		return true
	}
	// Legacy URLs may carry the raw hotel id instead of the name slug.
	return !primaryFormat && location.Normalize(h.ID) == hotelKey
}

func branchMatches(b domain.Branch, branchKey string) bool {
	if branchKey == "" {
		return false
	}
	if location.Normalize(b.ID) == branchKey || location.Normalize(b.Slug) == branchKey {
		return true
	}
	return urlTail(b.AdminURL) == branchKey || urlTail(b.UserURL) == branchKey
}

func urlTail(rawURL string) string {
	trimmed := strings.Trim(rawURL, "/")
	if trimmed == "" {
		return ""
	}
	parts := strings.Split(trimmed, "/")
	return location.Normalize(parts[len(parts)-1])
}
