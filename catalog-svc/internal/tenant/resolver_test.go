package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotelmenu/catalog-svc/internal/domain"
	"hotelmenu/catalog-svc/internal/location"
)

var (
	testHotels = []domain.Hotel{
		{ID: "H1", Name: "H1"},
		{ID: "H2", Name: "Sea View"},
	}

	testBranches = []domain.Branch{
		{ID: "1", HotelID: "H1", Name: "Downtown", Slug: "downtown"},
		{ID: "2", HotelID: "H1", Name: "Airport", Slug: "airport"},
		{ID: "3", HotelID: "H2", Name: "Harbor", Slug: "downtown", UserURL: "/sea-view/harbor-east"},
	}
)

func TestResolveSelection_HotelAndBranch(t *testing.T) {
	loc := location.Info{HotelKey: "h1", BranchKey: "downtown", PrimaryFormat: true}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.True(t, sel.MatchedViaRouting)
	assert.Equal(t, "H1", sel.HotelID)
	assert.Equal(t, "1", sel.BranchID)
}

func TestResolveSelection_IsolationAcrossHotels(t *testing.T) {
	// "downtown" also names a branch under H2; the hotel key must pin H1.
	loc := location.Info{HotelKey: "sea-view", BranchKey: "downtown", PrimaryFormat: true}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.True(t, sel.MatchedViaRouting)
	assert.Equal(t, "H2", sel.HotelID)
	assert.Equal(t, "3", sel.BranchID)
}

func TestResolveSelection_HotelOnly(t *testing.T) {
	loc := location.Info{HotelKey: "h1", PrimaryFormat: true}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.True(t, sel.MatchedViaRouting)
	assert.Equal(t, "H1", sel.HotelID)
	assert.Empty(t, sel.BranchID)
	assert.Nil(t, sel.Branch)

	selectable := FilterByHotel(testBranches, sel.HotelID)
	assert.Len(t, selectable, 2)
	for _, b := range selectable {
		assert.Equal(t, "H1", b.HotelID)
	}
}

func TestResolveSelection_HotelScopedBranchMiss(t *testing.T) {
	// Branch key matches only under another hotel: stay in the resolved
	// hotel's scope with no branch selected.
	loc := location.Info{HotelKey: "h1", BranchKey: "harbor", PrimaryFormat: true}
	sel := ResolveSelection(
		[]domain.Branch{testBranches[0], testBranches[1], {ID: "3", HotelID: "H2", Slug: "harbor"}},
		testHotels, loc, "", "")

	assert.Equal(t, "H1", sel.HotelID)
	assert.Empty(t, sel.BranchID)
}

func TestResolveSelection_BranchOnlyLegacy(t *testing.T) {
	loc := location.Info{BranchKey: "airport"}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.True(t, sel.MatchedViaRouting)
	assert.Equal(t, "H1", sel.HotelID)
	assert.Equal(t, "2", sel.BranchID)
}

func TestResolveSelection_BranchOnlyAmbiguous(t *testing.T) {
	// "downtown" exists under H1 and H2; without a hotel key the resolver
	// refuses to guess an owner.
	loc := location.Info{BranchKey: "downtown"}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.False(t, sel.MatchedViaRouting)
	assert.Empty(t, sel.HotelID)
	assert.Empty(t, sel.BranchID)
	assert.Nil(t, sel.Branch)
}

func TestResolveSelection_FallbackBranchID(t *testing.T) {
	sel := ResolveSelection(testBranches, testHotels, location.Info{}, "", "2")

	assert.False(t, sel.MatchedViaRouting)
	assert.Equal(t, "H1", sel.HotelID)
	assert.Equal(t, "2", sel.BranchID)
}

func TestResolveSelection_FirstBranchDefault(t *testing.T) {
	sel := ResolveSelection(testBranches, testHotels, location.Info{}, "", "missing")

	assert.False(t, sel.MatchedViaRouting)
	assert.Equal(t, "H1", sel.HotelID)
	assert.Equal(t, "1", sel.BranchID)
}

func TestResolveSelection_EmptyList(t *testing.T) {
	sel := ResolveSelection(nil, nil, location.Info{HotelKey: "h1"}, "FH", "FB")

	assert.False(t, sel.MatchedViaRouting)
	assert.Equal(t, "FH", sel.HotelID)
	assert.Equal(t, "FB", sel.BranchID)
	assert.Nil(t, sel.Branch)
}

func TestResolveSelection_LegacyHotelIDKey(t *testing.T) {
	loc := location.Info{HotelKey: "h2", BranchKey: "downtown"}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.True(t, sel.MatchedViaRouting)
	assert.Equal(t, "H2", sel.HotelID)
	assert.Equal(t, "3", sel.BranchID)
}

func TestResolveSelection_MatchesURLTail(t *testing.T) {
	loc := location.Info{HotelKey: "sea-view", BranchKey: "harbor-east", PrimaryFormat: true}
	sel := ResolveSelection(testBranches, testHotels, loc, "", "")

	assert.Equal(t, "3", sel.BranchID)
}

func TestResolveSelection_Deterministic(t *testing.T) {
	loc := location.Info{HotelKey: "h1", BranchKey: "downtown", PrimaryFormat: true}

	first := ResolveSelection(testBranches, testHotels, loc, "", "")
	second := ResolveSelection(testBranches, testHotels, loc, "", "")
	assert.Equal(t, first, second)
}

func TestFilterByHotel_EmptyHotel(t *testing.T) {
	assert.Empty(t, FilterByHotel(testBranches, ""))
}
